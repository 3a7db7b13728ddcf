package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mtsuzuki/todo-collab-api/internal/dto"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/middleware"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

// AttachmentHandler coordinates attachment-related HTTP handlers.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

// NewAttachmentHandler creates a new AttachmentHandler.
func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentService: attachmentService,
	}
}

// UploadAttachment stores an uploaded file against a todo.
func (h *AttachmentHandler) UploadAttachment(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		apierrors.BadRequest(c, "No file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		apierrors.InternalError(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	userID, _ := middleware.GetUserID(c)
	attachment, err := h.attachmentService.Add(userID, todo.ID, fileHeader.Filename, file)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToAttachmentDTO(*attachment))
}

// ListAttachments returns the attachment records of a todo.
func (h *AttachmentHandler) ListAttachments(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	userID, _ := middleware.GetUserID(c)
	attachments, err := h.attachmentService.List(userID, todo.ID)
	if err != nil {
		respondAttachmentError(c, err)
		return
	}

	dtos := make([]dto.AttachmentDTO, 0, len(attachments))
	for _, a := range attachments {
		dtos = append(dtos, dto.ToAttachmentDTO(a))
	}

	c.JSON(http.StatusOK, gin.H{
		"attachments": dtos,
	})
}

// DeleteAttachment removes an attachment record and its stored file.
func (h *AttachmentHandler) DeleteAttachment(c *gin.Context) {
	todo, exists := middleware.GetTodo(c)
	if !exists {
		apierrors.NotFound(c, "Todo not found")
		return
	}

	attachmentID, err := strconv.ParseUint(c.Param("attachment_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid attachment ID")
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.attachmentService.Remove(userID, todo.ID, attachmentID); err != nil {
		respondAttachmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Attachment deleted successfully",
	})
}

func respondAttachmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTodoNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAttachmentNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrTodoPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
