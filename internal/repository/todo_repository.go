package repository

import (
	"errors"

	"github.com/mtsuzuki/todo-collab-api/internal/database"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/utils"
	"gorm.io/gorm"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(todo *models.Todo) error {
	return r.db.Create(todo).Error
}

// FindByID finds a todo by ID with optional preloading
func (r *GormTodoRepository) FindByID(id uint64, preload ...string) (*models.Todo, error) {
	var todo models.Todo
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&todo, id).Error; err != nil {
		return nil, err
	}

	return &todo, nil
}

// visibleScope limits a todo query to rows the viewer owns or has been
// granted a share on. The EXISTS form keeps the result free of join
// duplicates, so an owned-and-shared todo appears once.
func visibleScope(viewerID uint64) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(
			"todos.user_id = ? OR EXISTS (SELECT 1 FROM todo_shares WHERE todo_shares.todo_id = todos.id AND todo_shares.shared_with_id = ?)",
			viewerID, viewerID,
		)
	}
}

// List retrieves todos visible to the filter's viewer, newest first
func (r *GormTodoRepository) List(filter TodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	query := r.db.Model(&models.Todo{}).Scopes(visibleScope(filter.ViewerID))

	if filter.Status != nil {
		query = query.Where("todos.status = ?", *filter.Status)
	}
	if filter.CategoryID != nil {
		query = query.Where("todos.category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"LOWER(todos.title) LIKE LOWER(?) OR LOWER(todos.description) LIKE LOWER(?)",
			pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("todos.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			Offset:   (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Preload("Category").Find(&todos).Error; err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// ListOwned retrieves all todos owned by a user, newest first
func (r *GormTodoRepository) ListOwned(ownerID uint64, includeCompleted bool) ([]models.Todo, error) {
	var todos []models.Todo

	query := r.db.Where("user_id = ?", ownerID)
	if !includeCompleted {
		query = query.Where("status <> ?", models.StatusCompleted)
	}

	if err := query.Preload("Category").Order("created_at DESC").Find(&todos).Error; err != nil {
		return nil, err
	}

	return todos, nil
}

// Update updates a todo
func (r *GormTodoRepository) Update(todo *models.Todo) error {
	return r.db.Save(todo).Error
}

// Delete deletes a todo together with its shares and attachments
func (r *GormTodoRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", id).Delete(&models.TodoShare{}).Error; err != nil {
			return err
		}

		if err := tx.Where("todo_id = ?", id).Delete(&models.TodoAttachment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Todo{}, id).Error
	})
}

// FirstOrCreateByTitle creates the todo unless one with the same title
// already exists for the owner
func (r *GormTodoRepository) FirstOrCreateByTitle(todo *models.Todo) (bool, error) {
	var existing models.Todo
	err := r.db.Where("title = ? AND user_id = ?", todo.Title, todo.UserID).First(&existing).Error
	if err == nil {
		*todo = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if err := r.db.Create(todo).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Stats aggregates counts over the viewer's visibility set
func (r *GormTodoRepository) Stats(viewerID uint64) (*TodoStats, error) {
	base := func() *gorm.DB {
		return r.db.Model(&models.Todo{}).Scopes(visibleScope(viewerID))
	}

	stats := &TodoStats{}
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base().Where("todos.status = ?", models.StatusCompleted).Count(&stats.Completed).Error; err != nil {
		return nil, err
	}
	if err := base().Where("todos.status = ?", models.StatusPending).Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := base().Where("todos.status = ?", models.StatusInProgress).Count(&stats.InProgress).Error; err != nil {
		return nil, err
	}
	if err := base().Where("todos.priority = ?", models.PriorityHigh).Count(&stats.HighPriority).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
