// classnow/internal/repository/gorm.go

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Githubuser102234/ClassNow/models"
)

type gormRepository struct {
	db *gorm.DB
}

// New создает репозиторий поверх подключения GORM.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	// Нарушение внешнего ключа означает, что родительская запись (класс,
	// задание) исчезла между проверкой и вставкой - для вызывающего это
	// то же "не найдено".
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ErrNotFound
	}
	return err
}

// --- Пользователи ---

func (r *gormRepository) CreateUser(ctx context.Context, user *models.User) error {
	// Занятость email решает уникальный индекс, а не предварительная
	// проверка: две одновременные регистрации обе прошли бы проверку,
	// но вставка проиграет ровно у одной.
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *gormRepository) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return user, translate(err)
}

func (r *gormRepository) UserByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, translate(err)
}

// --- Классы ---

func (r *gormRepository) CreateClass(ctx context.Context, owner models.User, title string) (models.Class, error) {
	class := models.Class{
		ID:          uuid.NewString(),
		Title:       title,
		CreatorID:   owner.ID,
		CreatorName: owner.DisplayName,
		CreatedAt:   time.Now(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&class).Error; err != nil {
			return err
		}
		// Владелец сразу становится первым участником.
		member := models.Membership{
			ClassID:     class.ID,
			UserID:      owner.ID,
			DisplayName: owner.DisplayName,
			PhotoURL:    owner.PhotoURL,
			CreatedAt:   time.Now(),
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return models.Class{}, err
	}
	return class, nil
}

func (r *gormRepository) ClassByID(ctx context.Context, id string) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&class).Error
	return class, translate(err)
}

func (r *gormRepository) ListClasses(ctx context.Context, offset, limit int) ([]models.ClassSummary, error) {
	var summaries []models.ClassSummary
	query := r.db.WithContext(ctx).Table("classes c").
		Select(`c.id, c.title, c.creator_name, c.created_at,
            (SELECT COUNT(*) FROM memberships m WHERE m.class_id = c.id) AS member_count`).
		Order("c.created_at DESC, c.id")
	if limit > 0 {
		query = query.Offset(offset).Limit(limit)
	}
	if err := query.Scan(&summaries).Error; err != nil {
		return nil, err
	}
	if summaries == nil {
		summaries = make([]models.ClassSummary, 0)
	}
	return summaries, nil
}

func (r *gormRepository) CountClasses(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Class{}).Count(&total).Error
	return total, err
}

func (r *gormRepository) DeleteClass(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Сначала вложенные сущности, запись класса - последней: при сбое
		// каскада класс остается и удаление можно повторить.
		if err := tx.Where("assignment_id IN (SELECT id FROM assignments WHERE class_id = ?)", id).
			Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.Assignment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("class_id = ?", id).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Class{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRepository) UpdateChatSettings(ctx context.Context, id string, in models.SettingsInput) (models.Class, error) {
	var class models.Class
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&class).Error; err != nil {
			return translate(err)
		}
		// Частичное обновление: nil-поле сохраняет прежнее значение.
		updates := map[string]interface{}{}
		if in.ChatDisabled != nil {
			updates["chat_disabled"] = *in.ChatDisabled
			class.ChatDisabled = *in.ChatDisabled
		}
		if in.ChatLocked != nil {
			updates["chat_locked"] = *in.ChatLocked
			class.ChatLocked = *in.ChatLocked
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Class{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return models.Class{}, err
	}
	return class, nil
}

// --- Участники ---

func (r *gormRepository) AddMember(ctx context.Context, classID string, user models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Class{}).Where("id = ?", classID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		member := models.Membership{
			ClassID:     classID,
			UserID:      user.ID,
			DisplayName: user.DisplayName,
			PhotoURL:    user.PhotoURL,
			CreatedAt:   time.Now(),
		}
		// Повторное вступление не создает дубликата и не является ошибкой.
		// Если класс удален между проверкой и вставкой, внешний ключ
		// вернет отказ, который translate превратит в ErrNotFound.
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&member).Error)
	})
}

func (r *gormRepository) RemoveMember(ctx context.Context, classID string, userID uint) error {
	// Отметки о выполнении не трогаем: членство удаляется, история остается.
	result := r.db.WithContext(ctx).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Delete(&models.Membership{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepository) ListMembers(ctx context.Context, classID string) ([]models.Membership, error) {
	var members []models.Membership
	// Забаненные пользователи в списках не показываются, хотя их строки
	// членства сохраняются.
	err := r.db.WithContext(ctx).Table("memberships m").
		Select("m.class_id, m.user_id, m.display_name, m.photo_url, m.created_at").
		Joins("JOIN users u ON u.id = m.user_id").
		Where("m.class_id = ? AND u.is_banned = ?", classID, false).
		Order("m.created_at, m.user_id").
		Scan(&members).Error
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = make([]models.Membership, 0)
	}
	return members, nil
}

func (r *gormRepository) IsMember(ctx context.Context, classID string, userID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Membership{}).
		Where("class_id = ? AND user_id = ?", classID, userID).
		Count(&count).Error
	return count > 0, err
}

// --- Задания и отметки ---

func (r *gormRepository) CreateAssignment(ctx context.Context, classID string, creatorID uint, in models.AssignmentInput) (models.Assignment, error) {
	assignment := models.Assignment{
		ID:          uuid.NewString(),
		ClassID:     classID,
		Title:       in.Title,
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatorID:   creatorID,
		CreatedAt:   time.Now(),
	}
	// Класс мог быть удален после проверки в обработчике; гонку закрывает
	// внешний ключ на classes.
	if err := r.db.WithContext(ctx).Create(&assignment).Error; err != nil {
		return models.Assignment{}, translate(err)
	}
	return assignment, nil
}

func (r *gormRepository) DeleteAssignment(ctx context.Context, classID, assignmentID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", assignmentID).Delete(&models.Submission{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND class_id = ?", assignmentID, classID).Delete(&models.Assignment{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *gormRepository) ListAssignments(ctx context.Context, classID string, userID uint) ([]models.AssignmentView, error) {
	var assignments []models.Assignment
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at, id").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}

	var submissions []models.Submission
	if len(assignments) > 0 {
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.ID)
		}
		if err := r.db.WithContext(ctx).
			Where("assignment_id IN ? AND user_id = ?", ids, userID).
			Find(&submissions).Error; err != nil {
			return nil, err
		}
	}

	submitted := make(map[string]bool, len(submissions))
	for _, s := range submissions {
		submitted[s.AssignmentID] = true
	}

	views := make([]models.AssignmentView, 0, len(assignments))
	for _, a := range assignments {
		views = append(views, models.AssignmentView{Assignment: a, Submitted: submitted[a.ID]})
	}
	return views, nil
}

func (r *gormRepository) ToggleSubmission(ctx context.Context, classID, assignmentID string, userID uint) (bool, error) {
	var marked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Assignment{}).
			Where("id = ? AND class_id = ?", assignmentID, classID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		result := tx.Where("assignment_id = ? AND user_id = ?", assignmentID, userID).
			Delete(&models.Submission{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			marked = false
			return nil
		}

		sub := models.Submission{
			AssignmentID: assignmentID,
			UserID:       userID,
			CreatedAt:    time.Now(),
		}
		// OnConflict DoNothing закрывает гонку двух одновременных вставок:
		// строка в любом случае будет ровно одна. Удаление задания в
		// параллельной транзакции упрется во внешний ключ.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sub).Error; err != nil {
			return translate(err)
		}
		marked = true
		return nil
	})
	return marked, err
}

func (r *gormRepository) StatusMatrix(ctx context.Context, classID string) (models.StatusMatrix, error) {
	matrix := models.StatusMatrix{
		Assignments: make([]models.Assignment, 0),
		Rows:        make([]models.StatusMatrixRow, 0),
	}

	if err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at, id").
		Find(&matrix.Assignments).Error; err != nil {
		return models.StatusMatrix{}, err
	}

	members, err := r.ListMembers(ctx, classID)
	if err != nil {
		return models.StatusMatrix{}, err
	}

	type pair struct {
		AssignmentID string
		UserID       uint
	}
	done := make(map[pair]bool)
	if len(matrix.Assignments) > 0 {
		ids := make([]string, 0, len(matrix.Assignments))
		for _, a := range matrix.Assignments {
			ids = append(ids, a.ID)
		}
		var submissions []models.Submission
		if err := r.db.WithContext(ctx).
			Where("assignment_id IN ?", ids).
			Find(&submissions).Error; err != nil {
			return models.StatusMatrix{}, err
		}
		for _, s := range submissions {
			done[pair{s.AssignmentID, s.UserID}] = true
		}
	}

	for _, m := range members {
		row := models.StatusMatrixRow{
			UserID:      m.UserID,
			DisplayName: m.DisplayName,
			Done:        make([]bool, len(matrix.Assignments)),
		}
		for i, a := range matrix.Assignments {
			row.Done[i] = done[pair{a.ID, m.UserID}]
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix, nil
}

// --- Чат ---

func (r *gormRepository) AppendChatMessage(ctx context.Context, classID string, sender models.User, text string) (models.ChatMessage, error) {
	msg := models.ChatMessage{
		ClassID:    classID,
		SenderID:   sender.ID,
		SenderName: sender.DisplayName,
		Message:    text,
		CreatedAt:  time.Now(),
	}
	// Вставка в чат удаленного класса отбивается внешним ключом.
	if err := r.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return models.ChatMessage{}, translate(err)
	}
	return msg, nil
}

func (r *gormRepository) ListChatMessages(ctx context.Context, classID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	// Порядок: по времени, при равенстве - по порядку вставки.
	err := r.db.WithContext(ctx).
		Where("class_id = ?", classID).
		Order("created_at, id").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = make([]models.ChatMessage, 0)
	}
	return messages, nil
}
