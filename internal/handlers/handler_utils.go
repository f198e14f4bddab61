// classnow/internal/handlers/handler_utils.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Githubuser102234/ClassNow/internal/authz"
	"github.com/Githubuser102234/ClassNow/internal/middleware"
	"github.com/Githubuser102234/ClassNow/internal/repository"
	"github.com/Githubuser102234/ClassNow/models"
)

// Repo - хранилище, общее для всех обработчиков. Устанавливается при старте
// приложения (и в тестах - поверх sqlite).
var Repo repository.Repository

// reasonMessages - сообщения для клиента по каждому отказу движка
// авторизации.
var reasonMessages = map[authz.Reason]string{
	authz.ReasonBanned:       "Доступ заблокирован администратором",
	authz.ReasonNotOwner:     "Действие доступно только владельцу класса",
	authz.ReasonNotMember:    "Вы не состоите в этом классе",
	authz.ReasonChatDisabled: "Чат в этом классе отключен",
	authz.ReasonChatLocked:   "Чат закрыт владельцем класса",
}

func forbid(c *gin.Context, reason authz.Reason) {
	msg, ok := reasonMessages[reason]
	if !ok {
		msg = "Доступ запрещен"
	}
	c.JSON(http.StatusForbidden, gin.H{"error": msg, "reason": string(reason)})
}

// respondRepoError переводит ошибку хранилища в HTTP-ответ: известные
// сентинелы - в 404/409, остальное - в 500 с деталями только в лог.
func respondRepoError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, repository.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": repository.ErrEmailTaken.Error()})
	default:
		slog.Error("Ошибка хранилища", "error", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Внутренняя ошибка сервера"})
	}
}

// loadClassAndAuthorize загружает класс из параметра :id, выясняет членство
// и прогоняет действие через движок авторизации. При отказе сам пишет ответ
// и возвращает ok=false.
func loadClassAndAuthorize(c *gin.Context, action authz.Action) (models.Class, models.User, bool) {
	user := middleware.CurrentUser(c)

	class, err := Repo.ClassByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return models.Class{}, user, false
	}

	isMember, err := Repo.IsMember(c.Request.Context(), class.ID, user.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return models.Class{}, user, false
	}

	decision := authz.CanPerform(authz.Input{Actor: user, Class: class, IsMember: isMember}, action)
	if !decision.Allowed {
		forbid(c, decision.Reason)
		return models.Class{}, user, false
	}
	return class, user, true
}
