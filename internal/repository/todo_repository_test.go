package repository

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockRepo(t *testing.T) (TodoRepository, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewTodoRepository(db), mock
}

// Stats issues one count per bucket, each constrained to the viewer's
// visibility set (owned rows or rows with a share grant).
func TestGormTodoRepository_Stats(t *testing.T) {
	repo, mock := setupMockRepo(t)

	countPattern := regexp.MustCompile(
		`SELECT count\(\*\) FROM .todos. WHERE \(todos\.user_id = \? OR EXISTS \(SELECT 1 FROM todo_shares WHERE todo_shares\.todo_id = todos\.id AND todo_shares\.shared_with_id = \?\)\)`,
	)

	countRow := func(n int64) *sqlmock.Rows {
		return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
	}

	// total
	mock.ExpectQuery(countPattern.String()).
		WithArgs(42, 42).
		WillReturnRows(countRow(7))
	// completed
	mock.ExpectQuery(countPattern.String()).
		WithArgs(42, 42, "completed").
		WillReturnRows(countRow(3))
	// pending
	mock.ExpectQuery(countPattern.String()).
		WithArgs(42, 42, "pending").
		WillReturnRows(countRow(2))
	// in_progress
	mock.ExpectQuery(countPattern.String()).
		WithArgs(42, 42, "in_progress").
		WillReturnRows(countRow(2))
	// high priority
	mock.ExpectQuery(countPattern.String()).
		WithArgs(42, 42, "high").
		WillReturnRows(countRow(4))

	stats, err := repo.Stats(42)
	require.NoError(t, err)
	require.Equal(t, int64(7), stats.Total)
	require.Equal(t, int64(3), stats.Completed)
	require.Equal(t, int64(2), stats.Pending)
	require.Equal(t, int64(2), stats.InProgress)
	require.Equal(t, int64(4), stats.HighPriority)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormTodoRepository_ListAppliesStatusFilter(t *testing.T) {
	repo, mock := setupMockRepo(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM .todos.`).
		WithArgs(42, 42, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM .todos. WHERE \(todos\.user_id = \? OR EXISTS .* AND todos\.status = \?.*ORDER BY todos\.created_at DESC LIMIT 10`).
		WithArgs(42, 42, "completed").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "user_id"}).
			AddRow(1, "Done", "completed", 42))

	status := models.StatusCompleted
	todos, total, err := repo.List(TodoFilter{
		ViewerID: 42,
		Status:   &status,
		Page:     1,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Len(t, todos, 1)
	require.Equal(t, "Done", todos[0].Title)

	require.NoError(t, mock.ExpectationsWereMet())
}
