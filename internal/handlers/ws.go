package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/realtime"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

// Inbound websocket frame types.
const (
	frameTodoCreate = "todo.create"
	frameTodoUpdate = "todo.update"
	frameTodoDelete = "todo.delete"
)

// WSHandler upgrades websocket connections and dispatches inbound todo
// frames to the todo service. Mutation results come back to all of the
// owner's sessions through the hub broadcast, the frame itself gets no
// direct reply.
type WSHandler struct {
	hub         *realtime.Hub
	todoService *services.TodoService
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub, todoService *services.TodoService) *WSHandler {
	return &WSHandler{
		hub:         hub,
		todoService: todoService,
	}
}

// TodoSocket subscribes the caller to their todo group and accepts
// inbound mutation frames.
func (h *WSHandler) TodoSocket(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := realtime.Serve(h.hub, c.Writer, c.Request, userID, realtime.TodoGroup(userID), h.handleTodoFrame); err != nil {
		log.Printf("websocket upgrade failed for user %d: %v", userID, err)
	}
}

// NotificationSocket subscribes the caller to their notification group.
// The connection is receive only.
func (h *WSHandler) NotificationSocket(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	if err := realtime.Serve(h.hub, c.Writer, c.Request, userID, realtime.NotificationGroup(userID), nil); err != nil {
		log.Printf("websocket upgrade failed for user %d: %v", userID, err)
	}
}

type inboundTodoFrame struct {
	Type   string       `json:"type"`
	TodoID uint64       `json:"todo_id"`
	Todo   *inboundTodo `json:"todo"`
}

type inboundTodo struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *WSHandler) handleTodoFrame(userID uint64, data []byte) {
	var frame inboundTodoFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		log.Printf("dropping malformed websocket frame from user %d: %v", userID, err)
		return
	}

	var err error
	switch frame.Type {
	case frameTodoCreate:
		err = h.createFromFrame(userID, frame)
	case frameTodoUpdate:
		err = h.updateFromFrame(userID, frame)
	case frameTodoDelete:
		err = h.todoService.DeleteTodo(userID, frame.TodoID)
	default:
		log.Printf("dropping websocket frame with unknown type %q from user %d", frame.Type, userID)
		return
	}
	if err != nil {
		log.Printf("websocket %s failed for user %d: %v", frame.Type, userID, err)
	}
}

func (h *WSHandler) createFromFrame(userID uint64, frame inboundTodoFrame) error {
	if frame.Todo == nil {
		return services.ErrTitleRequired
	}

	input := services.CreateTodoInput{
		DueDate: frame.Todo.DueDate,
		OwnerID: userID,
	}
	if frame.Todo.Title != nil {
		input.Title = *frame.Todo.Title
	}
	if frame.Todo.Description != nil {
		input.Description = *frame.Todo.Description
	}
	if frame.Todo.Priority != nil {
		input.Priority = models.TodoPriority(*frame.Todo.Priority)
	}
	if frame.Todo.Status != nil {
		input.Status = models.TodoStatus(*frame.Todo.Status)
	}

	_, err := h.todoService.CreateTodo(input)
	return err
}

func (h *WSHandler) updateFromFrame(userID uint64, frame inboundTodoFrame) error {
	if frame.Todo == nil {
		return nil
	}

	input := services.UpdateTodoInput{
		Title:       frame.Todo.Title,
		Description: frame.Todo.Description,
		DueDate:     frame.Todo.DueDate,
	}
	if frame.Todo.Priority != nil {
		priority := models.TodoPriority(*frame.Todo.Priority)
		input.Priority = &priority
	}
	if frame.Todo.Status != nil {
		status := models.TodoStatus(*frame.Todo.Status)
		input.Status = &status
	}

	_, err := h.todoService.UpdateTodo(userID, frame.TodoID, input)
	return err
}
