// classnow/models/classroom.go

package models

import "time"

// Class представляет учебный класс. Создатель класса становится его
// владельцем; владелец не меняется за все время жизни класса.
type Class struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Title        string    `json:"title" gorm:"not null"`
	CreatorID    uint      `json:"creatorId" gorm:"not null;index"`
	CreatorName  string    `json:"creatorName"`
	CreatedAt    time.Time `json:"createdAt"`
	ChatDisabled bool      `json:"chatDisabled" gorm:"default:false"`
	ChatLocked   bool      `json:"chatLocked" gorm:"default:false"`
}

// Membership - связующая таблица "кто состоит в каком классе".
// Одна строка на пару (класс, пользователь). Внешний ключ на класс не дает
// вставить членство после каскадного удаления класса.
type Membership struct {
	ClassID     string    `json:"classId" gorm:"primaryKey;size:36"`
	UserID      uint      `json:"userId" gorm:"primaryKey"`
	DisplayName string    `json:"displayName"`
	PhotoURL    string    `json:"photoUrl"`
	CreatedAt   time.Time `json:"joinedAt"`
	Class       Class     `json:"-"`
}

// Assignment представляет задание, размещенное владельцем класса.
type Assignment struct {
	ID          string     `json:"id" gorm:"primaryKey;size:36"`
	ClassID     string     `json:"classId" gorm:"size:36;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
	CreatorID   uint       `json:"creatorId"`
	CreatedAt   time.Time  `json:"createdAt"`
	Class       Class      `json:"-"`
}

// Submission - отметка "задание выполнено". Наличие строки и есть статус:
// отдельного поля состояния нет, повторная отправка снимает отметку.
type Submission struct {
	AssignmentID string     `json:"assignmentId" gorm:"primaryKey;size:36"`
	UserID       uint       `json:"userId" gorm:"primaryKey"`
	CreatedAt    time.Time  `json:"timestamp"`
	Assignment   Assignment `json:"-"`
}

// ChatMessage представляет одно сообщение в чате класса.
// Сообщения не редактируются и не удаляются по одному, только каскадом
// вместе с классом.
type ChatMessage struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	ClassID    string    `json:"classId" gorm:"size:36;not null;index"`
	SenderID   uint      `json:"senderId"`
	SenderName string    `json:"senderName"`
	Message    string    `json:"message" gorm:"type:text"`
	CreatedAt  time.Time `json:"timestamp"`
	Class      Class     `json:"-"`
}

// ClassSummary - строка публичного каталога классов.
type ClassSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	CreatorName string    `json:"creatorName"`
	CreatedAt   time.Time `json:"createdAt"`
	MemberCount int       `json:"memberCount"`
}

// AssignmentView - задание вместе с отметкой выполнения для конкретного
// участника (используется на странице класса).
type AssignmentView struct {
	Assignment
	Submitted bool `json:"submitted"`
}

// StatusMatrixRow - строка сводной таблицы: один участник и его отметки
// по всем заданиям класса (в порядке создания заданий).
type StatusMatrixRow struct {
	UserID      uint   `json:"userId"`
	DisplayName string `json:"displayName"`
	Done        []bool `json:"done"`
}

// StatusMatrix - сводная таблица выполнения заданий. Строки - участники
// без бана, столбцы - задания в порядке создания. Собирается заново на
// каждый запрос.
type StatusMatrix struct {
	Assignments []Assignment      `json:"assignments"`
	Rows        []StatusMatrixRow `json:"rows"`
}

// CreateClassInput используется при создании класса.
type CreateClassInput struct {
	Title string `json:"title" binding:"required"`
}

// JoinClassInput используется при вступлении в класс.
type JoinClassInput struct {
	ClassID string `json:"classId" binding:"required"`
}

// AssignmentInput используется при размещении задания.
type AssignmentInput struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// ChatMessageInput используется при отправке сообщения в чат.
type ChatMessageInput struct {
	Message string `json:"message" binding:"required"`
}

// SettingsInput - частичное обновление настроек чата: nil-поле оставляет
// прежнее значение, а не сбрасывает его.
type SettingsInput struct {
	ChatDisabled *bool `json:"chatDisabled"`
	ChatLocked   *bool `json:"chatLocked"`
}
