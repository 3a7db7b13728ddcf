package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mtsuzuki/todo-collab-api/internal/dto"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

// ShareHandler coordinates sharing-related HTTP handlers.
type ShareHandler struct {
	shareService *services.ShareService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(shareService *services.ShareService) *ShareHandler {
	return &ShareHandler{
		shareService: shareService,
	}
}

// ShareTodo grants or updates another user's access to a todo.
func (h *ShareHandler) ShareTodo(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	type ShareRequest struct {
		Username string `json:"username" binding:"required"`
		CanEdit  bool   `json:"can_edit"`
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	share, err := h.shareService.Share(userID, todo.ID, req.Username, req.CanEdit)
	if err != nil {
		respondShareError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo shared successfully",
		"share":   dto.ToShareDTO(*share),
	})
}

// UnshareTodo revokes another user's access to a todo.
func (h *ShareHandler) UnshareTodo(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	type UnshareRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req UnshareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.shareService.Unshare(userID, todo.ID, req.Username); err != nil {
		respondShareError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Share removed successfully",
	})
}

// ListShares returns the active grants on a todo, owner only.
func (h *ShareHandler) ListShares(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	userID, _ := middleware.GetUserID(c)
	shares, err := h.shareService.ListShares(userID, todo.ID)
	if err != nil {
		respondShareError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shares": dto.ToShareDTOs(shares),
	})
}

func respondShareError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotTodoOwner):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrShareUserNotFound),
		errors.Is(err, services.ErrShareNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrShareWithSelf):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
