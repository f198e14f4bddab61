// classnow/internal/routes/api_routes.go
package routes

import (
	"github.com/Githubuser102234/ClassNow/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	// Группа для всех API-запросов с префиксом /api
	apiGroup := api.Group("/api")
	{
		// --- СЕССИЯ ---
		apiGroup.POST("/logout", handlers.LogoutHandler)
		apiGroup.GET("/user", handlers.CurrentUserHandler)

		// --- КЛАССЫ ---
		apiGroup.POST("/createClass", handlers.CreateClassHandler)
		apiGroup.POST("/joinClass", handlers.JoinClassHandler)

		// --- СТРАНИЦА КЛАССА ---
		classroom := apiGroup.Group("/classroom/:id")
		{
			classroom.GET("", handlers.GetClassroomHandler)
			classroom.DELETE("", handlers.DeleteClassHandler)
			classroom.PUT("/settings", handlers.UpdateSettingsHandler)

			// Участники
			classroom.GET("/members", handlers.ListMembersHandler)
			classroom.DELETE("/members/:userId", handlers.RemoveMemberHandler)

			// Задания и отметки о выполнении
			classroom.GET("/assignments", handlers.ListAssignmentsHandler)
			classroom.POST("/assignments", handlers.CreateAssignmentHandler)
			classroom.DELETE("/assignments/:aid", handlers.DeleteAssignmentHandler)
			classroom.POST("/assignments/:aid/submit", handlers.ToggleSubmissionHandler)
			classroom.GET("/assignments/status", handlers.StatusMatrixHandler)
			classroom.GET("/assignments/export", handlers.ExportStatusMatrixHandler)

			// Чат
			classroom.GET("/chat", handlers.ListChatMessagesHandler)
			classroom.POST("/chat", handlers.PostChatMessageHandler)
			classroom.GET("/chat/ws", handlers.ChatWSEndpoint)
		}
	}
}
