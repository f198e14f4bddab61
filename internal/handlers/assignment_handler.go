// classnow/internal/handlers/assignment_handler.go
package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/Githubuser102234/ClassNow/internal/authz"
	"github.com/Githubuser102234/ClassNow/models"
)

// CreateAssignmentHandler размещает новое задание. Доступно только
// владельцу класса.
func CreateAssignmentHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionPostAssignment)
	if !ok {
		return
	}

	var input models.AssignmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Некорректные данные: " + err.Error()})
		return
	}

	assignment, err := Repo.CreateAssignment(c.Request.Context(), class.ID, user.ID, input)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Задание размещено", "assignment": assignment})
}

// DeleteAssignmentHandler удаляет задание вместе с отметками о выполнении.
func DeleteAssignmentHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionDeleteAssignment)
	if !ok {
		return
	}

	if err := Repo.DeleteAssignment(c.Request.Context(), class.ID, c.Param("aid")); err != nil {
		respondRepoError(c, err, "Задание не найдено")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Задание удалено"})
}

// ListAssignmentsHandler возвращает задания класса в порядке создания,
// каждое - с отметкой выполнения текущего пользователя.
func ListAssignmentsHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionViewClass)
	if !ok {
		return
	}

	assignments, err := Repo.ListAssignments(c.Request.Context(), class.ID, user.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignments": assignments})
}

// ToggleSubmissionHandler переключает отметку "выполнено" текущего
// пользователя: повторный вызов снимает отметку. Владелец отмечать
// собственные задания не может.
func ToggleSubmissionHandler(c *gin.Context) {
	class, user, ok := loadClassAndAuthorize(c, authz.ActionToggleSubmission)
	if !ok {
		return
	}

	marked, err := Repo.ToggleSubmission(c.Request.Context(), class.ID, c.Param("aid"), user.ID)
	if err != nil {
		respondRepoError(c, err, "Задание не найдено")
		return
	}

	message := "Отметка о выполнении снята"
	if marked {
		message = "Задание отмечено выполненным"
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "submitted": marked})
}

// StatusMatrixHandler возвращает сводную таблицу выполнения: строки -
// участники без бана, столбцы - задания в порядке создания. Таблица
// собирается заново на каждый запрос.
func StatusMatrixHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionViewStatusMatrix)
	if !ok {
		return
	}

	matrix, err := Repo.StatusMatrix(c.Request.Context(), class.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}
	c.JSON(http.StatusOK, matrix)
}

// ExportStatusMatrixHandler - выгрузка той же сводной таблицы в Excel.
func ExportStatusMatrixHandler(c *gin.Context) {
	class, _, ok := loadClassAndAuthorize(c, authz.ActionViewStatusMatrix)
	if !ok {
		return
	}

	matrix, err := Repo.StatusMatrix(c.Request.Context(), class.ID)
	if err != nil {
		respondRepoError(c, err, "Класс не найден")
		return
	}

	f := excelize.NewFile()
	sheetName := "Выполнение заданий"
	index, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(index)
	// Убираем пустой лист по умолчанию, чтобы в книге остался только отчет.
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheetName, "A1", "Участник")
	for i, a := range matrix.Assignments {
		cell, _ := excelize.CoordinatesToCellName(i+2, 1)
		f.SetCellValue(sheetName, cell, a.Title)
	}

	for rowIdx, row := range matrix.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		f.SetCellValue(sheetName, cell, row.DisplayName)
		for colIdx, done := range row.Done {
			cell, _ := excelize.CoordinatesToCellName(colIdx+2, rowIdx+2)
			if done {
				f.SetCellValue(sheetName, cell, "✓")
			}
		}
	}

	fileName := fmt.Sprintf("class_status_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Не удалось сформировать файл"})
	}
}
