package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mtsuzuki/todo-collab-api/internal/dto"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
	"github.com/mtsuzuki/todo-collab-api/internal/utils"
)

// TodoHandler coordinates todo-related HTTP handlers.
type TodoHandler struct {
	todoService *services.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns todos visible to the caller, filtered and paginated.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	input := services.ListTodosInput{
		ViewerID: userID,
		Search:   c.Query("search"),
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	if raw := c.Query("status"); raw != "" {
		status := models.TodoStatus(raw)
		if !models.ValidStatus(status) {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		input.Status = &status
	}

	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid category ID")
			return
		}
		input.CategoryID = &categoryID
	}

	todos, total, err := h.todoService.ListTodos(input)
	if err != nil {
		apierrors.InternalError(c, "Failed to list todos")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, params.Page, params.PageSize, total))
}

// GetTodo returns a single todo loaded by the access middleware.
func (h *TodoHandler) GetTodo(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(todo))
}

// CreateTodo creates a todo owned by the caller.
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	type CreateTodoRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Priority    string     `json:"priority"`
		Status      string     `json:"status"`
		DueDate     *time.Time `json:"due_date"`
		CategoryID  *uint64    `json:"category_id"`
	}

	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	todo, err := h.todoService.CreateTodo(services.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TodoPriority(req.Priority),
		Status:      models.TodoStatus(req.Status),
		DueDate:     req.DueDate,
		CategoryID:  req.CategoryID,
		OwnerID:     userID,
	})
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a field-level patch to a todo. The raw body is
// inspected so that an explicit null can clear due_date or category_id
// while an absent key leaves the field alone.
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	var raw map[string]json.RawMessage
	if err := c.ShouldBindJSON(&raw); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := buildUpdateInput(raw)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	updated, err := h.todoService.UpdateTodo(userID, todo.ID, input)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*updated))
}

// DeleteTodo removes a todo with its shares and attachments.
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.todoService.DeleteTodo(userID, todo.ID); err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo deleted successfully",
	})
}

// ToggleStatus flips a todo between completed and pending.
func (h *TodoHandler) ToggleStatus(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	userID, _ := middleware.GetUserID(c)
	toggled, err := h.todoService.ToggleStatus(userID, todo.ID)
	if err != nil {
		respondTodoError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*toggled))
}

// SearchTodos performs a substring search over visible todos.
func (h *TodoHandler) SearchTodos(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusOK, gin.H{
			"results": []dto.TodoDTO{},
		})
		return
	}

	userID, _ := middleware.GetUserID(c)
	params := utils.GetPaginationParams(c)

	todos, _, err := h.todoService.ListTodos(services.ListTodosInput{
		ViewerID: userID,
		Search:   query,
		Page:     params.Page,
		PageSize: params.PageSize,
	})
	if err != nil {
		apierrors.InternalError(c, "Failed to search todos")
		return
	}

	results := make([]dto.TodoDTO, 0, len(todos))
	for _, t := range todos {
		results = append(results, dto.ToTodoDTO(t))
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
	})
}

// Stats aggregates counts over the caller's visible todos.
func (h *TodoHandler) Stats(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	stats, err := h.todoService.Stats(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

func buildUpdateInput(raw map[string]json.RawMessage) (services.UpdateTodoInput, error) {
	var input services.UpdateTodoInput

	if v, ok := raw["title"]; ok {
		var title string
		if err := json.Unmarshal(v, &title); err != nil {
			return input, errors.New("title must be a string")
		}
		input.Title = &title
	}
	if v, ok := raw["description"]; ok {
		var description string
		if err := json.Unmarshal(v, &description); err != nil {
			return input, errors.New("description must be a string")
		}
		input.Description = &description
	}
	if v, ok := raw["priority"]; ok {
		var priority models.TodoPriority
		if err := json.Unmarshal(v, &priority); err != nil {
			return input, errors.New("priority must be a string")
		}
		input.Priority = &priority
	}
	if v, ok := raw["status"]; ok {
		var status models.TodoStatus
		if err := json.Unmarshal(v, &status); err != nil {
			return input, errors.New("status must be a string")
		}
		input.Status = &status
	}
	if v, ok := raw["due_date"]; ok {
		if string(v) == "null" {
			input.ClearDueDate = true
		} else {
			var dueDate time.Time
			if err := json.Unmarshal(v, &dueDate); err != nil {
				return input, errors.New("due_date must be an RFC 3339 timestamp")
			}
			input.DueDate = &dueDate
		}
	}
	if v, ok := raw["category_id"]; ok {
		input.CategorySet = true
		if string(v) != "null" {
			var categoryID uint64
			if err := json.Unmarshal(v, &categoryID); err != nil {
				return input, errors.New("category_id must be a number")
			}
			input.CategoryID = &categoryID
		}
	}

	return input, nil
}

func respondTodoError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTodoPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
