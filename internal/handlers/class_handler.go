// classnow/internal/handlers/class_handler.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Githubuser102234/ClassNow/internal/authz"
	"github.com/Githubuser102234/ClassNow/internal/middleware"
	"github.com/Githubuser102234/ClassNow/models"
)

// ListClassesHandler возвращает публичный каталог классов.
// Поддерживает пагинацию и может вернуть все классы, если передан
// параметр `?all=true`. Авторизация не требуется.
func ListClassesHandler(c *gin.Context) {
	if c.Query("all") == "true" {
		classes, err := Repo.ListClasses(c.Request.Context(), 0, 0)
		if err != nil {
			respondRepoError(c, err, "Классы не найдены")
			return
		}
		c.JSON(http.StatusOK, gin.H{"classes": classes})
		return
	}

	_, pageSize, offset := pageParams(c)
	classes, err := Repo.ListClasses(c.Request.Context(), offset, pageSize)
	if err != nil {
		respondRepoError(c, err, "Классы не найдены")
		return
	}
	totalRows, err := Repo.CountClasses(c.Request.Context())
	if err != nil {
		respondRepoError(c, err, "Классы не найдены")
		return
	}
	c.JSON(http.StatusOK, CreatePaginatedResponse(c, classes, totalRows))
}

// CreateClassHandler создает новый класс; создатель становится владельцем
// и первым участником.
func CreateClassHandler(c *gin.Context) {
	user := middleware.CurrentUser(c)

	decision := authz.CanPerform(authz.Input{Actor: user}, authz.ActionCreateClass)
	if !decision.Allowed {
		forbid(c, decision.Reason)
		return
	}

	var input models.CreateClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	class, err := Repo.CreateClass(c.Request.Context(), user, input.Title)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	slog.Info("Создан класс", "class_id", class.ID, "creator_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{"classId": class.ID, "message": "Класс успешно создан"})
}

// JoinClassHandler добавляет текущего пользователя в класс. Повторное
// вступление не считается ошибкой и не создает дубликата.
func JoinClassHandler(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var input models.JoinClassInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	class, err := Repo.ClassByID(c.Request.Context(), input.ClassID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	isMember, err := Repo.IsMember(c.Request.Context(), class.ID, user.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	decision := authz.CanPerform(authz.Input{Actor: user, Class: class, IsMember: isMember}, authz.ActionJoinClass)
	if !decision.Allowed {
		forbid(c, decision.Reason)
		return
	}

	if isMember {
		c.JSON(http.StatusOK, gin.H{"message": "Вы уже состоите в этом классе"})
		return
	}

	if err := Repo.AddMember(c.Request.Context(), class.ID, user); err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Вы вступили в класс"})
}

// GetClassroomHandler возвращает класс вместе со списком участников и
// флагом владельца для текущего пользователя.
func GetClassroomHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionViewClass)
	if !ok {
		return
	}

	members, err := Repo.ListMembers(c.Request.Context(), class.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"classroom": class,
		"members":   members,
		"isOwner":   class.CreatorID == user.ID,
	})
}

// DeleteClassHandler удаляет класс со всем содержимым. Доступно только
// владельцу; каскад выполняется одной транзакцией.
func DeleteClassHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionDeleteClass)
	if !ok {
		return
	}

	if err := Repo.DeleteClass(c.Request.Context(), class.ID); err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	slog.Info("Класс удален", "class_id", class.ID, "owner_id", user.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Класс успешно удален"})
}

// UpdateSettingsHandler - частичное обновление настроек чата класса.
// Пропущенные поля сохраняют прежние значения.
func UpdateSettingsHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionChangeSettings)
	if !ok {
		return
	}

	var input models.SettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	updated, err := Repo.UpdateChatSettings(c.Request.Context(), class.ID, input)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Настройки обновлены", "classroom": updated})
}

// ListMembersHandler возвращает участников класса (без забаненных).
func ListMembersHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionViewClass)
	if !ok {
		return
	}

	members, err := Repo.ListMembers(c.Request.Context(), class.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

// RemoveMemberHandler исключает участника из класса. Доступно только
// владельцу; владельца исключить нельзя.
func RemoveMemberHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionRemoveMember)
	if !ok {
		return
	}

	memberID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректный ID участника"})
		return
	}
	if uint(memberID) == class.CreatorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Владелец не может покинуть собственный класс"})
		return
	}

	if err := Repo.RemoveMember(c.Request.Context(), class.ID, uint(memberID)); err != nil {
		respondRepoError(c, err, "Участник не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Участник исключен из класса"})
}
