package services

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type transferTestEnv struct {
	db      *gorm.DB
	service *TransferService
	owner   *models.User
}

func setupTransferTestEnv(t *testing.T) transferTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Todo{},
		&models.TodoAttachment{},
		&models.TodoShare{},
	)
	require.NoError(t, err)

	owner := &models.User{Username: "alice", PasswordHash: "hashedpassword"}
	require.NoError(t, db.Create(owner).Error)

	todoRepo := repository.NewTodoRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	service := NewTransferService(todoRepo, categoryRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return transferTestEnv{db: db, service: service, owner: owner}
}

func (env transferTestEnv) createTodo(t *testing.T, todo *models.Todo) *models.Todo {
	t.Helper()
	todo.UserID = env.owner.ID
	if todo.Priority == "" {
		todo.Priority = models.PriorityMedium
	}
	if todo.Status == "" {
		todo.Status = models.StatusPending
	}
	require.NoError(t, env.db.Create(todo).Error)
	return todo
}

func TestExportFileName(t *testing.T) {
	name := ExportFileName("alice", "csv")
	require.True(t, strings.HasPrefix(name, "todos_alice_"))
	require.True(t, strings.HasSuffix(name, ".csv"))

	// The embedded timestamp must parse back
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, "todos_alice_"), ".csv")
	_, err := time.Parse("20060102_150405", stamp)
	require.NoError(t, err)
}

func TestTransferService_ExportJSON(t *testing.T) {
	env := setupTransferTestEnv(t)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	env.createTodo(t, &models.Todo{
		Title:       "Write report",
		Description: "Quarterly numbers",
		Priority:    models.PriorityHigh,
		DueDate:     &due,
	})

	data, err := env.service.ExportJSON(env.owner.ID, true)
	require.NoError(t, err)

	var records []TransferRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	require.Equal(t, "Write report", records[0].Title)
	require.Equal(t, "high", records[0].Priority)
	require.NotNil(t, records[0].DueDate)

	// JSON exports carry RFC 3339 timestamps
	parsed, err := time.Parse(time.RFC3339, *records[0].DueDate)
	require.NoError(t, err)
	require.True(t, parsed.Equal(due))
}

func TestTransferService_ExportJSON_ExcludeCompleted(t *testing.T) {
	env := setupTransferTestEnv(t)

	env.createTodo(t, &models.Todo{Title: "Open item"})
	env.createTodo(t, &models.Todo{Title: "Closed item", Status: models.StatusCompleted})

	data, err := env.service.ExportJSON(env.owner.ID, false)
	require.NoError(t, err)

	var records []TransferRecord
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 1)
	require.Equal(t, "Open item", records[0].Title)
}

func TestTransferService_ExportCSV_Header(t *testing.T) {
	env := setupTransferTestEnv(t)

	env.createTodo(t, &models.Todo{Title: "Only one"})

	data, err := env.service.ExportCSV(env.owner.ID, true)
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, []string{
		"Title", "Description", "Created At", "Updated At", "Due Date",
		"Priority", "Status", "Completed At", "Category", "Is Shared",
	}, rows[0])
	require.Equal(t, "Only one", rows[1][0])
	require.Equal(t, "false", rows[1][9])
}

func TestTransferService_JSONRoundTrip(t *testing.T) {
	env := setupTransferTestEnv(t)

	env.createTodo(t, &models.Todo{Title: "First", Priority: models.PriorityLow})
	env.createTodo(t, &models.Todo{Title: "Second", Status: models.StatusInProgress})

	data, err := env.service.ExportJSON(env.owner.ID, true)
	require.NoError(t, err)

	// Import into a fresh account
	other := &models.User{Username: "bob", PasswordHash: "hashedpassword"}
	require.NoError(t, env.db.Create(other).Error)

	imported, err := env.service.ImportJSON(other.ID, data)
	require.NoError(t, err)
	require.Equal(t, 2, imported)

	var todos []models.Todo
	require.NoError(t, env.db.Where("user_id = ?", other.ID).Order("title").Find(&todos).Error)
	require.Len(t, todos, 2)
	require.Equal(t, models.PriorityLow, todos[0].Priority)
	require.Equal(t, models.StatusInProgress, todos[1].Status)
}

func TestTransferService_ImportIsIdempotent(t *testing.T) {
	env := setupTransferTestEnv(t)

	env.createTodo(t, &models.Todo{Title: "Keep me", Description: "original"})

	data, err := env.service.ExportJSON(env.owner.ID, true)
	require.NoError(t, err)

	// Re-importing over the same account must not duplicate or overwrite
	imported, err := env.service.ImportJSON(env.owner.ID, data)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var todos []models.Todo
	require.NoError(t, env.db.Where("user_id = ?", env.owner.ID).Find(&todos).Error)
	require.Len(t, todos, 1)
	require.Equal(t, "original", todos[0].Description)
}

func TestTransferService_ImportJSON_CreatesCategories(t *testing.T) {
	env := setupTransferTestEnv(t)

	category := "Errands"
	payload, err := json.Marshal([]TransferRecord{
		{Title: "Post office", Category: &category},
	})
	require.NoError(t, err)

	imported, err := env.service.ImportJSON(env.owner.ID, payload)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var created models.Category
	require.NoError(t, env.db.Where("user_id = ? AND name = ?", env.owner.ID, "Errands").First(&created).Error)
	require.Equal(t, constants.DefaultCategoryColor, created.Color)

	var todo models.Todo
	require.NoError(t, env.db.Where("title = ?", "Post office").First(&todo).Error)
	require.NotNil(t, todo.CategoryID)
	require.Equal(t, created.ID, *todo.CategoryID)
}

func TestTransferService_ImportJSON_SkipsBlankTitlesAndBadValues(t *testing.T) {
	env := setupTransferTestEnv(t)

	payload := []byte(`[
		{"title": "  ", "priority": "high"},
		{"title": "Valid", "priority": "urgent", "status": "someday"}
	]`)

	imported, err := env.service.ImportJSON(env.owner.ID, payload)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var todo models.Todo
	require.NoError(t, env.db.Where("title = ?", "Valid").First(&todo).Error)
	require.Equal(t, models.PriorityMedium, todo.Priority)
	require.Equal(t, models.StatusPending, todo.Status)
}

func TestTransferService_ImportJSON_ParseError(t *testing.T) {
	env := setupTransferTestEnv(t)

	_, err := env.service.ImportJSON(env.owner.ID, []byte("not json at all"))
	require.ErrorIs(t, err, ErrParse)
}

func TestTransferService_ImportCSV_ReorderedColumns(t *testing.T) {
	env := setupTransferTestEnv(t)

	payload := []byte("Priority,Title,Status\nhigh,Reordered import,in_progress\n")

	imported, err := env.service.ImportCSV(env.owner.ID, payload)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var todo models.Todo
	require.NoError(t, env.db.Where("title = ?", "Reordered import").First(&todo).Error)
	require.Equal(t, models.PriorityHigh, todo.Priority)
	require.Equal(t, models.StatusInProgress, todo.Status)
}

func TestTransferService_ImportCSV_ParseError(t *testing.T) {
	env := setupTransferTestEnv(t)

	// A quoting error is unrecoverable for the CSV reader
	_, err := env.service.ImportCSV(env.owner.ID, []byte("Title\n\"unterminated\n"))
	require.ErrorIs(t, err, ErrParse)
}

func TestTransferService_CSVRoundTrip(t *testing.T) {
	env := setupTransferTestEnv(t)

	due := time.Date(2026, 10, 1, 9, 30, 0, 0, time.UTC)
	env.createTodo(t, &models.Todo{Title: "Round trip", DueDate: &due})

	data, err := env.service.ExportCSV(env.owner.ID, true)
	require.NoError(t, err)

	other := &models.User{Username: "bob", PasswordHash: "hashedpassword"}
	require.NoError(t, env.db.Create(other).Error)

	imported, err := env.service.ImportCSV(other.ID, data)
	require.NoError(t, err)
	require.Equal(t, 1, imported)

	var todo models.Todo
	require.NoError(t, env.db.Where("user_id = ?", other.ID).First(&todo).Error)
	require.Equal(t, "Round trip", todo.Title)
	require.NotNil(t, todo.DueDate)
	require.Equal(t, due.Format(csvTimeLayout), todo.DueDate.Format(csvTimeLayout))
}
