package repository

import (
	"github.com/mtsuzuki/todo-collab-api/internal/models"
)

// TodoFilter holds filtering options for listing todos visible to a user
type TodoFilter struct {
	// ViewerID scopes the result to todos the viewer owns or has been
	// granted a share on.
	ViewerID   uint64
	Status     *models.TodoStatus
	CategoryID *uint64
	// Search applies a case-insensitive substring match on title and
	// description.
	Search   string
	Page     int
	PageSize int
}

// TodoStats aggregates counts over a user's visibility set
type TodoStats struct {
	Total        int64 `json:"total"`
	Completed    int64 `json:"completed"`
	Pending      int64 `json:"pending"`
	InProgress   int64 `json:"in_progress"`
	HighPriority int64 `json:"high_priority"`
}

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(todo *models.Todo) error

	// FindByID finds a todo by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Todo, error)

	// List retrieves todos visible to the filter's viewer, newest first
	List(filter TodoFilter) ([]models.Todo, int64, error)

	// ListOwned retrieves all todos owned by a user, newest first,
	// with categories preloaded
	ListOwned(ownerID uint64, includeCompleted bool) ([]models.Todo, error)

	// Update updates a todo
	Update(todo *models.Todo) error

	// Delete deletes a todo together with its shares and attachments
	Delete(id uint64) error

	// FirstOrCreateByTitle creates the todo unless one with the same
	// title already exists for the owner. Reports whether a row was
	// created.
	FirstOrCreateByTitle(todo *models.Todo) (bool, error)

	// Stats aggregates counts over the viewer's visibility set
	Stats(viewerID uint64) (*TodoStats, error)
}

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	// Create creates a new category
	Create(category *models.Category) error

	// FindByID finds a category by ID
	FindByID(id uint64) (*models.Category, error)

	// FindForUser finds a category by ID scoped to an owner
	FindForUser(id, userID uint64) (*models.Category, error)

	// ListByUser lists a user's categories ordered by name
	ListByUser(userID uint64) ([]models.Category, error)

	// Update updates a category
	Update(category *models.Category) error

	// Delete detaches the category from its todos and deletes it
	Delete(id uint64) error

	// FirstOrCreateByName resolves a category by (name, owner),
	// creating it with the given color when absent
	FirstOrCreateByName(userID uint64, name, color string) (*models.Category, error)
}

// ShareRepository defines the interface for share-grant data access
type ShareRepository interface {
	// Upsert creates the share or updates can_edit on the existing row
	// for the same (todo, shared_with) pair
	Upsert(share *models.TodoShare) error

	// Find finds a share grant for a (todo, user) pair
	Find(todoID, sharedWithID uint64) (*models.TodoShare, error)

	// ListByTodo lists all grants on a todo with recipients preloaded
	ListByTodo(todoID uint64) ([]models.TodoShare, error)

	// Delete revokes a grant
	Delete(todoID, sharedWithID uint64) error

	// CountByTodo counts grants on a todo
	CountByTodo(todoID uint64) (int64, error)
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}

// AttachmentRepository defines the interface for attachment metadata access
type AttachmentRepository interface {
	// Create records an attachment
	Create(attachment *models.TodoAttachment) error

	// FindByID finds an attachment by ID
	FindByID(id uint64) (*models.TodoAttachment, error)

	// ListByTodo lists attachments of a todo
	ListByTodo(todoID uint64) ([]models.TodoAttachment, error)

	// Delete removes an attachment record
	Delete(id uint64) error
}
