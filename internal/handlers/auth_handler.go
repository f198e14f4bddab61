// classnow/internal/handlers/auth_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Githubuser102234/ClassNow/config"
	"github.com/Githubuser102234/ClassNow/internal/middleware"
	"github.com/Githubuser102234/ClassNow/models"
)

// sessionTTL - срок жизни сессии и cookie.
const sessionTTL = 72 * time.Hour

const defaultPhotoURL = "/static/placeholder.png"

// issueSession выдает подписанный токен с идентификатором сессии, кладет
// сессию в Redis (если он доступен) и ставит http-only cookie.
func issueSession(c *gin.Context, user models.User) error {
	sessionID := uuid.NewString()

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"sid":     sessionID,
		"exp":     time.Now().Add(sessionTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString(config.JwtKey)
	if err != nil {
		return err
	}

	if config.RDB != nil {
		if err := config.RDB.Set(config.Ctx, middleware.SessionKey(sessionID), user.ID, sessionTTL).Err(); err != nil {
			slog.Error("Не удалось сохранить сессию в Redis", "error", err, "user_id", user.ID)
		}
	}

	c.SetCookie("auth_token", tokenStr, int(sessionTTL.Seconds()), "/", "", false, true)
	return nil
}

// SignupHandler регистрирует нового пользователя и сразу открывает сессию.
func SignupHandler(c *gin.Context) {
	var input models.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
		return
	}

	user := models.User{
		DisplayName: input.DisplayName,
		Email:       input.Email,
		Password:    string(hashedPassword),
		PhotoURL:    defaultPhotoURL,
	}
	if err := Repo.CreateUser(c.Request.Context(), &user); err != nil {
		respondRepoError(c, err, "Пользователь не найден")
		return
	}

	if err := issueSession(c, user); err != nil {
		slog.Error("Не удалось выдать сессию", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
		return
	}

	slog.Info("Зарегистрирован новый пользователь", "user_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Регистрация прошла успешно", "user": user.ToResponse()})
}

// LoginHandler проверяет учетные данные и открывает сессию.
func LoginHandler(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	user, err := Repo.UserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		// Не раскрываем, что именно не подошло.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный email или пароль"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Неверный email или пароль"})
		return
	}

	if err := issueSession(c, user); err != nil {
		slog.Error("Не удалось выдать сессию", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Вход выполнен", "user": user.ToResponse()})
}

// LogoutHandler отзывает сессию и сбрасывает cookie.
func LogoutHandler(c *gin.Context) {
	if sessionID := c.GetString("session_id"); sessionID != "" && config.RDB != nil {
		if err := config.RDB.Del(config.Ctx, middleware.SessionKey(sessionID)).Err(); err != nil {
			slog.Error("Не удалось отозвать сессию", "error", err, "session_id", sessionID)
		}
	}
	// Чтобы при следующем входе пользователь читался заново из БД.
	middleware.DropUserCache(c.GetUint("user_id"))

	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "Выход выполнен"})
}

// CurrentUserHandler возвращает пользователя текущей сессии.
func CurrentUserHandler(c *gin.Context) {
	user := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, gin.H{"user": user.ToResponse()})
}
