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

// CategoryHandler coordinates category-related HTTP handlers.
type CategoryHandler struct {
	categoryService *services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
	}
}

// ListCategories returns the caller's categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	categories, err := h.categoryService.ListCategories(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to list categories")
		return
	}

	dtos := make([]dto.CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, dto.ToCategoryDTO(category))
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": dtos,
	})
}

// CreateCategory creates a category owned by the caller.
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	type CreateCategoryRequest struct {
		Name  string `json:"name" binding:"required"`
		Color string `json:"color"`
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	category, err := h.categoryService.CreateCategory(services.CreateCategoryInput{
		Name:    req.Name,
		Color:   req.Color,
		OwnerID: userID,
	})
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCategoryDTO(*category))
}

// GetCategory returns one of the caller's categories.
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	categoryID, ok := parseCategoryID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	category, err := h.categoryService.GetCategory(userID, categoryID)
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// UpdateCategory renames or recolors one of the caller's categories.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	categoryID, ok := parseCategoryID(c)
	if !ok {
		return
	}

	type UpdateCategoryRequest struct {
		Name  *string `json:"name"`
		Color *string `json:"color"`
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserID(c)
	category, err := h.categoryService.UpdateCategory(userID, categoryID, services.UpdateCategoryInput{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCategoryDTO(*category))
}

// DeleteCategory removes one of the caller's categories. Todos keep
// existing with their category reference cleared.
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	categoryID, ok := parseCategoryID(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.categoryService.DeleteCategory(userID, categoryID); err != nil {
		respondCategoryError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Category deleted successfully",
	})
}

func parseCategoryID(c *gin.Context) (uint64, bool) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid category ID")
		return 0, false
	}
	return categoryID, true
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrCategoryNameEmpty),
		errors.Is(err, services.ErrInvalidCategoryColor):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
