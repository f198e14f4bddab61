// classnow/internal/routes/router.go
package routes

import (
	"github.com/Githubuser102234/ClassNow/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine) {
	// --- Публичные маршруты ---
	// Сначала регистрируем маршруты, которые не требуют аутентификации.
	RegisterAuthRoutes(r)

	// --- Защищенная группа маршрутов ---
	// Все маршруты в этой группе требуют, чтобы пользователь был
	// аутентифицирован: middleware проверяет токен и отзыв сессии.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
