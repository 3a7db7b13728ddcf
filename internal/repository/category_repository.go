package repository

import (
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"gorm.io/gorm"
)

// GormCategoryRepository is a GORM implementation of CategoryRepository
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository creates a new CategoryRepository
func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(id uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// FindForUser finds a category by ID scoped to an owner
func (r *GormCategoryRepository) FindForUser(id, userID uint64) (*models.Category, error) {
	var category models.Category
	if err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// ListByUser lists a user's categories ordered by name
func (r *GormCategoryRepository) ListByUser(userID uint64) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.Where("user_id = ?", userID).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Update updates a category
func (r *GormCategoryRepository) Update(category *models.Category) error {
	return r.db.Save(category).Error
}

// Delete detaches the category from its todos and deletes it. Todos
// survive category deletion with a cleared category reference.
func (r *GormCategoryRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Todo{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Category{}, id).Error
	})
}

// FirstOrCreateByName resolves a category by (name, owner), creating it
// with the given color when absent
func (r *GormCategoryRepository) FirstOrCreateByName(userID uint64, name, color string) (*models.Category, error) {
	var category models.Category
	err := r.db.Attrs(models.Category{Color: color}).
		FirstOrCreate(&category, models.Category{Name: name, UserID: userID}).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}
