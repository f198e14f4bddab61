// classnow/internal/routes/auth_routes.go
package routes

import (
	"github.com/Githubuser102234/ClassNow/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes регистрирует публичные маршруты.
// Эти маршруты не требуют middleware для проверки токена.
func RegisterAuthRoutes(r *gin.Engine) {
	// Регистрация и вход.
	r.POST("/api/signup", handlers.SignupHandler)
	r.POST("/api/login", handlers.LoginHandler)

	// Публичный каталог классов.
	r.GET("/api/classes", handlers.ListClassesHandler)
}
