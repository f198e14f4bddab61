// classnow/internal/handlers/chat_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Githubuser102234/ClassNow/internal/authz"
	"github.com/Githubuser102234/ClassNow/models"
)

// PostChatMessageHandler добавляет сообщение в чат класса. Правила:
// при выключенном чате не пишет никто, при закрытом - только владелец.
func PostChatMessageHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionPostChatMessage)
	if !ok {
		return
	}

	var input models.ChatMessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	msg, err := Repo.AppendChatMessage(c.Request.Context(), class.ID, user, input.Message)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	// Рассылаем сообщение подписчикам класса по websocket.
	GlobalHub.Publish(class.ID, msg)

	c.JSON(http.StatusCreated, gin.H{"message": "Сообщение отправлено", "chatMessage": msg})
}

// ListChatMessagesHandler возвращает историю чата по времени отправки.
// Выключенный чат скрыт целиком, в том числе от владельца.
func ListChatMessagesHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionViewChat)
	if !ok {
		return
	}

	messages, err := Repo.ListChatMessages(c.Request.Context(), class.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
