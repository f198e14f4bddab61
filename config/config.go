// classnow/config/config.go
package config

import (
	"log/slog"
	"os"
)

// JwtKey - секретный ключ для подписи сессионных токенов.
var JwtKey []byte

func LoadSecrets() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Warn("Переменная окружения JWT_SECRET не установлена, используется небезопасный ключ разработки.")
		secret = "classnow-dev-secret"
	}
	JwtKey = []byte(secret)
}
