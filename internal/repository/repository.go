// classnow/internal/repository/repository.go

// Package repository скрывает хранилище за одним интерфейсом. Бизнес-правила
// живут в authz и обработчиках, здесь - только контракты атомарности:
// идемпотентное вступление, каскадное удаление класса целиком,
// безопасный к гонкам переключатель отметки о выполнении.
package repository

import (
	"context"
	"errors"

	"github.com/Githubuser102234/ClassNow/models"
)

var (
	// ErrNotFound возвращается, когда запись (класс, задание, участник)
	// не существует. Обработчики переводят его в 404.
	ErrNotFound = errors.New("запись не найдена")

	// ErrEmailTaken возвращается при попытке регистрации с занятым email.
	ErrEmailTaken = errors.New("пользователь с таким email уже существует")
)

// Repository - единственная реализация хранилища для обоих движков
// (Postgres в проде, sqlite в тестах). Контракт операций не зависит от
// движка.
type Repository interface {
	// --- Пользователи ---
	CreateUser(ctx context.Context, user *models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id uint) (models.User, error)

	// --- Классы ---
	CreateClass(ctx context.Context, owner models.User, title string) (models.Class, error)
	ClassByID(ctx context.Context, id string) (models.Class, error)
	ListClasses(ctx context.Context, offset, limit int) ([]models.ClassSummary, error)
	CountClasses(ctx context.Context) (int64, error)
	// DeleteClass удаляет класс и все вложенные сущности одной транзакцией:
	// либо каскад завершается целиком, либо запись класса остается на месте
	// и операцию можно безопасно повторить.
	DeleteClass(ctx context.Context, id string) error
	UpdateChatSettings(ctx context.Context, id string, in models.SettingsInput) (models.Class, error)

	// --- Участники ---
	// AddMember идемпотентен: повторное вступление не создает дубликата
	// и не считается ошибкой.
	AddMember(ctx context.Context, classID string, user models.User) error
	RemoveMember(ctx context.Context, classID string, userID uint) error
	ListMembers(ctx context.Context, classID string) ([]models.Membership, error)
	IsMember(ctx context.Context, classID string, userID uint) (bool, error)

	// --- Задания и отметки ---
	CreateAssignment(ctx context.Context, classID string, creatorID uint, in models.AssignmentInput) (models.Assignment, error)
	DeleteAssignment(ctx context.Context, classID, assignmentID string) error
	ListAssignments(ctx context.Context, classID string, userID uint) ([]models.AssignmentView, error)
	// ToggleSubmission снимает отметку, если она есть, и ставит, если нет.
	// Возвращает true, когда задание отмечено выполненным. Две одновременные
	// попытки одного пользователя не создают двух строк.
	ToggleSubmission(ctx context.Context, classID, assignmentID string, userID uint) (bool, error)
	StatusMatrix(ctx context.Context, classID string) (models.StatusMatrix, error)

	// --- Чат ---
	AppendChatMessage(ctx context.Context, classID string, sender models.User, text string) (models.ChatMessage, error)
	ListChatMessages(ctx context.Context, classID string) ([]models.ChatMessage, error)
}
