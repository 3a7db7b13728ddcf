package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/mtsuzuki/todo-collab-api/internal/errors"
	"github.com/mtsuzuki/todo-collab-api/internal/services"
)

// AIHandler coordinates AI suggestion HTTP handlers.
type AIHandler struct {
	aiService *services.AIService
}

// NewAIHandler creates a new AIHandler.
func NewAIHandler(aiService *services.AIService) *AIHandler {
	return &AIHandler{
		aiService: aiService,
	}
}

// SuggestTodos extracts actionable todos from free-form text.
func (h *AIHandler) SuggestTodos(c *gin.Context) {
	type SuggestRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.aiService.SuggestTodos(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAIServiceNotConfigured):
			apierrors.ServiceUnavailable(c, err.Error())
		case errors.Is(err, services.ErrAINoSuggestions):
			apierrors.BadRequest(c, err.Error())
		default:
			apierrors.InternalError(c, "Failed to generate suggestions")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"suggestions": suggestions,
	})
}
