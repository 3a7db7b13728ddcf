package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mtsuzuki/todo-collab-api/internal/constants"
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategoryNameEmpty    = errors.New("category name cannot be empty")
	ErrInvalidCategoryColor = errors.New("color must be a #rrggbb hex string")
)

// CategoryService provides business logic for category operations.
// Categories are strictly owner-scoped; sharing never exposes them.
type CategoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// CreateCategoryInput represents parameters to create a category
type CreateCategoryInput struct {
	Name    string
	Color   string
	OwnerID uint64
}

// CreateCategory creates a category for the owner
func (s *CategoryService) CreateCategory(input CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameEmpty
	}

	color := input.Color
	if color == "" {
		color = constants.DefaultCategoryColor
	}
	if !validHexColor(color) {
		return nil, ErrInvalidCategoryColor
	}

	category := &models.Category{
		Name:   name,
		Color:  color,
		UserID: input.OwnerID,
	}

	if err := s.categoryRepo.Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	return category, nil
}

// ListCategories returns the owner's categories ordered by name
func (s *CategoryService) ListCategories(ownerID uint64) ([]models.Category, error) {
	categories, err := s.categoryRepo.ListByUser(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns a category owned by the caller
func (s *CategoryService) GetCategory(ownerID, categoryID uint64) (*models.Category, error) {
	category, err := s.categoryRepo.FindForUser(categoryID, ownerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return category, nil
}

// UpdateCategoryInput represents a category patch
type UpdateCategoryInput struct {
	Name  *string
	Color *string
}

// UpdateCategory updates name and/or color of an owned category
func (s *CategoryService) UpdateCategory(ownerID, categoryID uint64, input UpdateCategoryInput) (*models.Category, error) {
	category, err := s.GetCategory(ownerID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrCategoryNameEmpty
		}
		category.Name = name
	}
	if input.Color != nil {
		if !validHexColor(*input.Color) {
			return nil, ErrInvalidCategoryColor
		}
		category.Color = *input.Color
	}

	if err := s.categoryRepo.Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	return category, nil
}

// DeleteCategory removes an owned category; its todos survive with the
// category reference cleared
func (s *CategoryService) DeleteCategory(ownerID, categoryID uint64) error {
	if _, err := s.GetCategory(ownerID, categoryID); err != nil {
		return err
	}

	if err := s.categoryRepo.Delete(categoryID); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	return nil
}

func validHexColor(color string) bool {
	if len(color) != 7 || color[0] != '#' {
		return false
	}
	for _, r := range color[1:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
