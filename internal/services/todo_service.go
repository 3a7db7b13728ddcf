package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTodoNotFound         = errors.New("todo not found")
	ErrTodoPermissionDenied = errors.New("user does not have permission to modify this todo")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidPriority      = errors.New("invalid priority")
	ErrInvalidStatus        = errors.New("invalid status")
)

// Todo event actions broadcast to realtime subscribers.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Publisher broadcasts todo mutation events to the owner's realtime
// group. Implementations must not block the caller.
type Publisher interface {
	PublishTodo(ownerID uint64, action string, todo *models.Todo)
}

// TodoService handles todo business logic
type TodoService struct {
	todoRepo       repository.TodoRepository
	categoryRepo   repository.CategoryRepository
	attachmentRepo repository.AttachmentRepository
	authorizer     *Authorizer
	blobs          *BlobStore
	publisher      Publisher
}

// NewTodoService creates a new TodoService. publisher may be nil when
// no realtime hub is running (tests, one-off tools).
func NewTodoService(
	todoRepo repository.TodoRepository,
	categoryRepo repository.CategoryRepository,
	attachmentRepo repository.AttachmentRepository,
	authorizer *Authorizer,
	blobs *BlobStore,
	publisher Publisher,
) *TodoService {
	return &TodoService{
		todoRepo:       todoRepo,
		categoryRepo:   categoryRepo,
		attachmentRepo: attachmentRepo,
		authorizer:     authorizer,
		blobs:          blobs,
		publisher:      publisher,
	}
}

// ListTodosInput represents filters for listing todos
type ListTodosInput struct {
	ViewerID   uint64
	Status     *models.TodoStatus
	CategoryID *uint64
	Search     string
	Page       int
	PageSize   int
}

// CreateTodoInput represents input for creating a todo
type CreateTodoInput struct {
	Title       string
	Description string
	Priority    models.TodoPriority
	Status      models.TodoStatus
	DueDate     *time.Time
	CategoryID  *uint64
	OwnerID     uint64
}

// UpdateTodoInput represents input for updating a todo. Only supplied
// fields are applied; CategorySet distinguishes "clear the category"
// from "leave it alone".
type UpdateTodoInput struct {
	Title        *string
	Description  *string
	Priority     *models.TodoPriority
	Status       *models.TodoStatus
	DueDate      *time.Time
	ClearDueDate bool
	CategorySet  bool
	CategoryID   *uint64
}

// ListTodos returns the viewer's visibility set, filtered and paginated
func (s *TodoService) ListTodos(input ListTodosInput) ([]models.Todo, int64, error) {
	filter := repository.TodoFilter{
		ViewerID:   input.ViewerID,
		Status:     input.Status,
		CategoryID: input.CategoryID,
		Search:     input.Search,
		Page:       input.Page,
		PageSize:   input.PageSize,
	}

	todos, total, err := s.todoRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}

	return todos, total, nil
}

// GetTodo returns a todo the viewer may see
func (s *TodoService) GetTodo(viewerID, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID, "Category", "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	visible, err := s.authorizer.CanView(viewerID, todo)
	if err != nil {
		return nil, err
	}
	if !visible {
		// Existence is not leaked to users without a grant.
		return nil, ErrTodoNotFound
	}

	return todo, nil
}

// CreateTodo creates a todo owned by the caller
func (s *TodoService) CreateTodo(input CreateTodoInput) (*models.Todo, error) {
	if input.Title == "" {
		return nil, ErrTitleRequired
	}

	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	} else if !models.ValidPriority(input.Priority) {
		return nil, ErrInvalidPriority
	}

	if input.Status == "" {
		input.Status = models.StatusPending
	} else if !models.ValidStatus(input.Status) {
		return nil, ErrInvalidStatus
	}

	todo := &models.Todo{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		DueDate:     input.DueDate,
		UserID:      input.OwnerID,
	}

	if todo.Status == models.StatusCompleted {
		now := time.Now()
		todo.CompletedAt = &now
	}

	// A category reference is attached only when it belongs to the
	// caller; anything else is dropped without failing the create.
	if input.CategoryID != nil {
		if _, err := s.categoryRepo.FindForUser(*input.CategoryID, input.OwnerID); err == nil {
			todo.CategoryID = input.CategoryID
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to verify category: %w", err)
		}
	}

	if err := s.todoRepo.Create(todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	created, err := s.todoRepo.FindByID(todo.ID, "Category")
	if err != nil {
		return nil, fmt.Errorf("failed to reload todo: %w", err)
	}

	s.publish(created.UserID, ActionCreate, created)
	return created, nil
}

// UpdateTodo applies a field-level patch to a todo
func (s *TodoService) UpdateTodo(actorID, todoID uint64, input UpdateTodoInput) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	allowed, err := s.authorizer.CanEdit(actorID, todo)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTodoPermissionDenied
	}

	if input.Title != nil {
		if *input.Title == "" {
			return nil, ErrTitleEmpty
		}
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = *input.Description
	}
	if input.Priority != nil {
		if !models.ValidPriority(*input.Priority) {
			return nil, ErrInvalidPriority
		}
		todo.Priority = *input.Priority
	}
	if input.Status != nil {
		if !models.ValidStatus(*input.Status) {
			return nil, ErrInvalidStatus
		}
		applyStatus(todo, *input.Status)
	}
	if input.ClearDueDate {
		todo.DueDate = nil
	} else if input.DueDate != nil {
		todo.DueDate = input.DueDate
	}

	if input.CategorySet {
		todo.CategoryID = nil
		if input.CategoryID != nil {
			if _, err := s.categoryRepo.FindForUser(*input.CategoryID, actorID); err == nil {
				todo.CategoryID = input.CategoryID
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("failed to verify category: %w", err)
			}
		}
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}

	updated, err := s.todoRepo.FindByID(todo.ID, "Category", "Attachments")
	if err != nil {
		return nil, fmt.Errorf("failed to reload todo: %w", err)
	}

	s.publish(updated.UserID, ActionUpdate, updated)
	return updated, nil
}

// DeleteTodo removes a todo with its shares, attachment records, and
// attachment blobs
func (s *TodoService) DeleteTodo(actorID, todoID uint64) error {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTodoNotFound
		}
		return fmt.Errorf("failed to find todo: %w", err)
	}

	allowed, err := s.authorizer.CanDelete(actorID, todo)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTodoPermissionDenied
	}

	attachments, err := s.attachmentRepo.ListByTodo(todoID)
	if err != nil {
		return fmt.Errorf("failed to list attachments: %w", err)
	}

	if err := s.todoRepo.Delete(todoID); err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	// Blob removal is best effort once the rows are gone.
	for _, a := range attachments {
		s.blobs.Remove(a.FileKey)
	}

	s.publish(todo.UserID, ActionDelete, todo)
	return nil
}

// ToggleStatus flips a todo between completed and pending. A todo that
// is in progress completes; only a completed todo reverts to pending.
func (s *TodoService) ToggleStatus(actorID, todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}

	allowed, err := s.authorizer.CanEdit(actorID, todo)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTodoPermissionDenied
	}

	if todo.Status == models.StatusCompleted {
		applyStatus(todo, models.StatusPending)
	} else {
		applyStatus(todo, models.StatusCompleted)
	}

	if err := s.todoRepo.Update(todo); err != nil {
		return nil, fmt.Errorf("failed to toggle status: %w", err)
	}

	s.publish(todo.UserID, ActionUpdate, todo)
	return todo, nil
}

// Stats aggregates counts over the viewer's visibility set
func (s *TodoService) Stats(viewerID uint64) (*repository.TodoStats, error) {
	stats, err := s.todoRepo.Stats(viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// applyStatus sets the status and keeps completed_at in step: it is
// stamped exactly on the transition into completed and cleared on the
// transition out.
func applyStatus(todo *models.Todo, status models.TodoStatus) {
	if status == models.StatusCompleted && todo.Status != models.StatusCompleted {
		now := time.Now()
		todo.CompletedAt = &now
	} else if status != models.StatusCompleted && todo.Status == models.StatusCompleted {
		todo.CompletedAt = nil
	}
	todo.Status = status
}

func (s *TodoService) publish(ownerID uint64, action string, todo *models.Todo) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishTodo(ownerID, action, todo)
}
