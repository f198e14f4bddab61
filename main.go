// classnow/main.go
package main

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Githubuser102234/ClassNow/config"
	"github.com/Githubuser102234/ClassNow/internal/handlers"
	"github.com/Githubuser102234/ClassNow/internal/repository"
	"github.com/Githubuser102234/ClassNow/internal/routes"
	"github.com/Githubuser102234/ClassNow/models"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("Файл .env не найден, используются переменные окружения")
	}

	config.LoadSecrets()
	config.ConnectDB()
	config.ConnectRedis()

	if err := config.DB.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Membership{},
		&models.Assignment{},
		&models.Submission{},
		&models.ChatMessage{},
	); err != nil {
		slog.Error("Ошибка миграции схемы", "error", err)
		os.Exit(1)
	}

	handlers.Repo = repository.New(config.DB)

	// Хаб websocket-рассылки чата работает все время жизни процесса.
	go handlers.GlobalHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	slog.Info("Сервер запущен", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер завершился с ошибкой", "error", err)
		os.Exit(1)
	}
}
