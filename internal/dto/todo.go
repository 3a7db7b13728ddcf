package dto

import (
	"time"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// CategoryDTO represents a category in API responses
type CategoryDTO struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// AttachmentDTO represents an attachment in API responses
type AttachmentDTO struct {
	ID         uint64    `json:"id"`
	FileName   string    `json:"file_name"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TodoPriority `json:"priority"`
	Status      models.TodoStatus   `json:"status"`
	DueDate     *time.Time          `json:"due_date"`
	CompletedAt *time.Time          `json:"completed_at"`
	IsShared    bool                `json:"is_shared"`
	OwnerID     uint64              `json:"owner_id"`
	CategoryID  *uint64             `json:"category_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Category    *CategoryDTO        `json:"category,omitempty"`
	Attachments []AttachmentDTO     `json:"attachments,omitempty"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO `json:"todos"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
}

// ToCategoryDTO converts a Category model to CategoryDTO
func ToCategoryDTO(category models.Category) CategoryDTO {
	return CategoryDTO{
		ID:    category.ID,
		Name:  category.Name,
		Color: category.Color,
	}
}

// ToAttachmentDTO converts a TodoAttachment model to AttachmentDTO
func ToAttachmentDTO(attachment models.TodoAttachment) AttachmentDTO {
	return AttachmentDTO{
		ID:         attachment.ID,
		FileName:   attachment.FileName,
		UploadedAt: attachment.UploadedAt,
	}
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	dto := TodoDTO{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Priority:    todo.Priority,
		Status:      todo.Status,
		DueDate:     todo.DueDate,
		CompletedAt: todo.CompletedAt,
		IsShared:    todo.IsShared,
		OwnerID:     todo.UserID,
		CategoryID:  todo.CategoryID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
	}

	// Include category if preloaded
	if todo.Category != nil {
		category := ToCategoryDTO(*todo.Category)
		dto.Category = &category
	}

	// Include attachments if preloaded
	if len(todo.Attachments) > 0 {
		dto.Attachments = make([]AttachmentDTO, len(todo.Attachments))
		for i, attachment := range todo.Attachments {
			dto.Attachments[i] = ToAttachmentDTO(attachment)
		}
	}

	return dto
}

// ToTodoListResponse converts a slice of todos to TodoListResponse
func ToTodoListResponse(todos []models.Todo, page, pageSize int, totalCount int64) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}

	totalPages := int(totalCount) / pageSize
	if int(totalCount)%pageSize > 0 {
		totalPages++
	}

	return TodoListResponse{
		Todos:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}
