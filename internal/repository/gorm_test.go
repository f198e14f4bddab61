package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Githubuser102234/ClassNow/models"
)

func testRepo(t *testing.T) Repository {
	t.Helper()
	// Внешние ключи в sqlite выключены по умолчанию, а контракты хранилища
	// на них опираются.
	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Одно соединение, чтобы in-memory база не исчезала между запросами пула.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{}, &models.Class{}, &models.Membership{},
		&models.Assignment{}, &models.Submission{}, &models.ChatMessage{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db)
}

func seedUser(t *testing.T, repo Repository, name, email string) models.User {
	t.Helper()
	user := models.User{DisplayName: name, Email: email, Password: "x"}
	if err := repo.CreateUser(context.Background(), &user); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := testRepo(t)
	seedUser(t, repo, "First", "dup@example.com")

	second := models.User{DisplayName: "Second", Email: "dup@example.com", Password: "x"}
	if err := repo.CreateUser(context.Background(), &second); err != ErrEmailTaken {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestCreateClassInsertsOwnerMembership(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")

	class, err := repo.CreateClass(ctx, owner, "Algebra")
	if err != nil {
		t.Fatalf("create class: %v", err)
	}
	if class.ChatDisabled || class.ChatLocked {
		t.Fatalf("chat flags must default to false, got %+v", class)
	}

	ok, err := repo.IsMember(ctx, class.ID, owner.ID)
	if err != nil || !ok {
		t.Fatalf("owner must be auto-joined, ok=%v err=%v", ok, err)
	}
}

func TestAddMemberIdempotent(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")

	if err := repo.AddMember(ctx, class.ID, student); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := repo.AddMember(ctx, class.ID, student); err != nil {
		t.Fatalf("re-join must succeed: %v", err)
	}

	members, err := repo.ListMembers(ctx, class.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("want 2 memberships (owner + student), got %d", len(members))
	}

	if err := repo.AddMember(ctx, "no-such-class", student); err != ErrNotFound {
		t.Fatalf("join of missing class: want ErrNotFound, got %v", err)
	}
}

func TestToggleSubmissionRoundTrip(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	assignment, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})

	marked, err := repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)
	if err != nil || !marked {
		t.Fatalf("first toggle: marked=%v err=%v", marked, err)
	}
	marked, err = repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)
	if err != nil || marked {
		t.Fatalf("second toggle must unmark: marked=%v err=%v", marked, err)
	}

	// Пара переключений возвращает исходное состояние.
	views, err := repo.ListAssignments(ctx, class.ID, student.ID)
	if err != nil {
		t.Fatalf("list assignments: %v", err)
	}
	if len(views) != 1 || views[0].Submitted {
		t.Fatalf("after toggle pair submission must be gone, got %+v", views)
	}

	if _, err := repo.ToggleSubmission(ctx, class.ID, "no-such-assignment", student.ID); err != ErrNotFound {
		t.Fatalf("toggle on missing assignment: want ErrNotFound, got %v", err)
	}
}

func TestDeleteClassCascades(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	assignment, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})
	repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)
	repo.AppendChatMessage(ctx, class.ID, student, "привет")

	if err := repo.DeleteClass(ctx, class.ID); err != nil {
		t.Fatalf("delete class: %v", err)
	}

	if _, err := repo.ClassByID(ctx, class.ID); err != ErrNotFound {
		t.Fatalf("class must be gone, got %v", err)
	}
	members, _ := repo.ListMembers(ctx, class.ID)
	if len(members) != 0 {
		t.Fatalf("orphaned memberships: %+v", members)
	}
	views, _ := repo.ListAssignments(ctx, class.ID, student.ID)
	if len(views) != 0 {
		t.Fatalf("orphaned assignments: %+v", views)
	}
	messages, _ := repo.ListChatMessages(ctx, class.ID)
	if len(messages) != 0 {
		t.Fatalf("orphaned chat messages: %+v", messages)
	}

	if err := repo.DeleteClass(ctx, class.ID); err != ErrNotFound {
		t.Fatalf("repeat delete: want ErrNotFound, got %v", err)
	}
}

func TestDeleteAssignmentCascadesSubmissions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	assignment, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})
	repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)

	if err := repo.DeleteAssignment(ctx, class.ID, assignment.ID); err != nil {
		t.Fatalf("delete assignment: %v", err)
	}
	matrix, err := repo.StatusMatrix(ctx, class.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Assignments) != 0 {
		t.Fatalf("assignment must be gone, got %+v", matrix.Assignments)
	}
	if err := repo.DeleteAssignment(ctx, class.ID, assignment.ID); err != ErrNotFound {
		t.Fatalf("repeat delete: want ErrNotFound, got %v", err)
	}
}

func TestUpdateChatSettingsPartial(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")

	yes := true
	updated, err := repo.UpdateChatSettings(ctx, class.ID, models.SettingsInput{ChatDisabled: &yes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.ChatDisabled || updated.ChatLocked {
		t.Fatalf("only chatDisabled had to change, got %+v", updated)
	}

	// Пропущенное поле сохраняет прежнее значение.
	updated, err = repo.UpdateChatSettings(ctx, class.ID, models.SettingsInput{ChatLocked: &yes})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.ChatDisabled || !updated.ChatLocked {
		t.Fatalf("chatDisabled must survive the second update, got %+v", updated)
	}

	if _, err := repo.UpdateChatSettings(ctx, "no-such-class", models.SettingsInput{ChatLocked: &yes}); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestRemoveMemberKeepsSubmissions(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	assignment, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})
	repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)

	if err := repo.RemoveMember(ctx, class.ID, student.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	ok, _ := repo.IsMember(ctx, class.ID, student.ID)
	if ok {
		t.Fatalf("membership must be gone")
	}
	// Отметка остается (историческое поведение), но в матрице строки
	// бывшего участника больше нет.
	matrix, _ := repo.StatusMatrix(ctx, class.ID)
	for _, row := range matrix.Rows {
		if row.UserID == student.ID {
			t.Fatalf("removed member must not appear in matrix rows")
		}
	}

	if err := repo.RemoveMember(ctx, class.ID, student.ID); err != ErrNotFound {
		t.Fatalf("repeat removal: want ErrNotFound, got %v", err)
	}
}

func TestStatusMatrixExcludesBanned(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	troll := seedUser(t, repo, "Troll", "troll@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	repo.AddMember(ctx, class.ID, troll)
	first, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})
	second, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 2"})
	repo.ToggleSubmission(ctx, class.ID, first.ID, student.ID)
	repo.ToggleSubmission(ctx, class.ID, first.ID, troll.ID)

	// Бан после отправки: строка пользователя исчезает из матрицы,
	// несмотря на историю отметок.
	store := repo.(*gormRepository)
	if err := store.db.Model(&models.User{}).Where("id = ?", troll.ID).
		Update("is_banned", true).Error; err != nil {
		t.Fatalf("ban: %v", err)
	}

	matrix, err := repo.StatusMatrix(ctx, class.ID)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	if len(matrix.Assignments) != 2 {
		t.Fatalf("want 2 assignment columns, got %d", len(matrix.Assignments))
	}
	if matrix.Assignments[0].ID != first.ID || matrix.Assignments[1].ID != second.ID {
		t.Fatalf("columns must keep creation order")
	}
	for _, row := range matrix.Rows {
		if row.UserID == troll.ID {
			t.Fatalf("banned member must be excluded from rows")
		}
		if row.UserID == student.ID && (!row.Done[0] || row.Done[1]) {
			t.Fatalf("student row wrong: %+v", row)
		}
	}
}

func TestWritesIntoDeletedClassFail(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")

	if err := repo.DeleteClass(ctx, class.ID); err != nil {
		t.Fatalf("delete class: %v", err)
	}

	// Запись, начавшаяся до удаления, коммитится после него: защищает
	// внешний ключ, а не проверка существования в обработчике.
	if _, err := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW"}); err != ErrNotFound {
		t.Fatalf("assignment into deleted class: want ErrNotFound, got %v", err)
	}
	if _, err := repo.AppendChatMessage(ctx, class.ID, student, "есть кто?"); err != ErrNotFound {
		t.Fatalf("chat message into deleted class: want ErrNotFound, got %v", err)
	}
	if err := repo.AddMember(ctx, class.ID, student); err != ErrNotFound {
		t.Fatalf("join of deleted class: want ErrNotFound, got %v", err)
	}
}

func TestSubmissionDuplicateInsertGuard(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	assignment, _ := repo.CreateAssignment(ctx, class.ID, owner.ID, models.AssignmentInput{Title: "HW 1"})

	marked, err := repo.ToggleSubmission(ctx, class.ID, assignment.ID, student.ID)
	if err != nil || !marked {
		t.Fatalf("toggle: marked=%v err=%v", marked, err)
	}

	// Второй участник гонки выполняет ту же вставку, что и ветка отметки:
	// она не должна ни упасть, ни создать вторую строку.
	store := repo.(*gormRepository)
	racer := models.Submission{
		AssignmentID: assignment.ID,
		UserID:       student.ID,
		CreatedAt:    time.Now(),
	}
	if err := store.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&racer).Error; err != nil {
		t.Fatalf("duplicate insert must be a no-op, got %v", err)
	}

	var count int64
	if err := store.db.Model(&models.Submission{}).
		Where("assignment_id = ? AND user_id = ?", assignment.ID, student.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("want exactly one submission row, got %d", count)
	}
}

func TestChatAppendOnlyOrdering(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)

	texts := []string{"первое", "второе", "третье"}
	for _, txt := range texts {
		if _, err := repo.AppendChatMessage(ctx, class.ID, student, txt); err != nil {
			t.Fatalf("append %q: %v", txt, err)
		}
	}

	messages, err := repo.ListChatMessages(ctx, class.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(messages) != len(texts) {
		t.Fatalf("want %d messages, got %d", len(texts), len(messages))
	}
	for i, msg := range messages {
		if msg.Message != texts[i] {
			t.Fatalf("order broken at %d: %q", i, msg.Message)
		}
		if msg.SenderName != student.DisplayName {
			t.Fatalf("sender name must be denormalized into the message")
		}
	}
}

func TestListClassesSummary(t *testing.T) {
	repo := testRepo(t)
	ctx := context.Background()
	owner := seedUser(t, repo, "Owner", "owner@example.com")
	student := seedUser(t, repo, "Student", "student@example.com")
	class, _ := repo.CreateClass(ctx, owner, "Algebra")
	repo.AddMember(ctx, class.ID, student)
	repo.CreateClass(ctx, owner, "Geometry")

	total, err := repo.CountClasses(ctx)
	if err != nil || total != 2 {
		t.Fatalf("count: total=%d err=%v", total, err)
	}

	summaries, err := repo.ListClasses(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("want 2 classes, got %d", len(summaries))
	}
	for _, s := range summaries {
		if s.ID == class.ID && s.MemberCount != 2 {
			t.Fatalf("member count for %s: want 2, got %d", s.Title, s.MemberCount)
		}
		if s.CreatorName != owner.DisplayName {
			t.Fatalf("creator name missing in summary: %+v", s)
		}
	}
}
