package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Githubuser102234/ClassNow/config"
	"github.com/Githubuser102234/ClassNow/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// SessionUser - единая структура для данных пользователя сессии в кэше и
// контексте запроса. Флаг бана едет вместе с пользователем: движок
// авторизации проверяет его на каждом действии.
type SessionUser struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photo_url"`
	IsBanned    bool   `json:"is_banned"`
}

// userCacheTTL ограничивает, насколько долго бан может "не замечаться"
// из-за кэша.
const userCacheTTL = 5 * time.Minute

// AuthMiddleware проверяет сессионный токен (cookie или Bearer-заголовок),
// отзыв сессии в Redis и загружает пользователя в контекст запроса.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})

		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Invalid token claims")
			return
		}

		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		sessionID, _ := claims["sid"].(string)

		// Проверка отзыва: после logout ключ сессии удален, и токен,
		// даже формально валидный, больше не принимается.
		if config.RDB != nil && sessionID != "" {
			exists, err := config.RDB.Exists(config.Ctx, SessionKey(sessionID)).Result()
			if err != nil {
				slog.Error("Redis EXISTS command failed", "error", err, "session_id", sessionID)
			} else if exists == 0 {
				c.SetCookie("auth_token", "", -1, "/", "", false, true)
				handleAuthError(c, "Session revoked")
				return
			}
		}

		cacheKey := fmt.Sprintf("user:%d:data", userID)
		if config.RDB != nil {
			cachedData, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var userData SessionUser
				if json.Unmarshal([]byte(cachedData), &userData) == nil {
					setContextAndProceed(c, sessionID, &userData)
					return
				}
				slog.Warn("Failed to unmarshal cached user data", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Redis GET command failed", "error", err, "user_id", userID)
			}
		}

		var dbUser models.User
		if err := config.DB.First(&dbUser, userID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "User from token not found")
			return
		}

		userData := SessionUser{
			UserID:      dbUser.ID,
			DisplayName: dbUser.DisplayName,
			Email:       dbUser.Email,
			PhotoURL:    dbUser.PhotoURL,
			IsBanned:    dbUser.IsBanned,
		}

		if config.RDB != nil {
			jsonData, err := json.Marshal(userData)
			if err != nil {
				slog.Error("Failed to marshal user data for caching", "error", err, "user_id", userID)
			} else if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, userCacheTTL).Err(); err != nil {
				slog.Error("Failed to SET user data to cache", "error", err, "user_id", userID)
			}
		}

		setContextAndProceed(c, sessionID, &userData)
	}
}

func setContextAndProceed(c *gin.Context, sessionID string, userData *SessionUser) {
	c.Set("user_id", userData.UserID)
	c.Set("userName", userData.DisplayName)
	c.Set("session_id", sessionID)
	c.Set("session_user", userData)
	c.Next()
}

// CurrentUser возвращает пользователя текущей сессии из контекста запроса.
func CurrentUser(c *gin.Context) models.User {
	value, exists := c.Get("session_user")
	if !exists {
		return models.User{}
	}
	userData, ok := value.(*SessionUser)
	if !ok {
		return models.User{}
	}
	return models.User{
		ID:          userData.UserID,
		DisplayName: userData.DisplayName,
		Email:       userData.Email,
		PhotoURL:    userData.PhotoURL,
		IsBanned:    userData.IsBanned,
	}
}

// SessionKey - ключ Redis для сессии; используется и при выдаче, и при
// отзыве токена.
func SessionKey(sessionID string) string {
	return "session:" + sessionID
}

// DropUserCache сбрасывает кэш пользователя (например, после смены профиля
// или бана), чтобы изменения применились без ожидания TTL.
func DropUserCache(userID uint) {
	if config.RDB == nil {
		return
	}
	if err := config.RDB.Del(config.Ctx, fmt.Sprintf("user:%d:data", userID)).Err(); err != nil {
		slog.Error("Failed to drop user cache", "error", err, "user_id", userID)
	}
}

func handleAuthError(c *gin.Context, message string) {
	if strings.Contains(c.GetHeader("Accept"), "text/html") {
		c.Redirect(http.StatusFound, "/")
	} else {
		c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	}
	c.Abort()
}
