package repository

import (
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"gorm.io/gorm"
)

// GormAttachmentRepository is a GORM implementation of AttachmentRepository
type GormAttachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository creates a new AttachmentRepository
func NewAttachmentRepository(db *gorm.DB) AttachmentRepository {
	return &GormAttachmentRepository{db: db}
}

// Create records an attachment
func (r *GormAttachmentRepository) Create(attachment *models.TodoAttachment) error {
	return r.db.Create(attachment).Error
}

// FindByID finds an attachment by ID
func (r *GormAttachmentRepository) FindByID(id uint64) (*models.TodoAttachment, error) {
	var attachment models.TodoAttachment
	if err := r.db.First(&attachment, id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByTodo lists attachments of a todo
func (r *GormAttachmentRepository) ListByTodo(todoID uint64) ([]models.TodoAttachment, error) {
	var attachments []models.TodoAttachment
	if err := r.db.Where("todo_id = ?", todoID).Order("uploaded_at").Find(&attachments).Error; err != nil {
		return nil, err
	}
	return attachments, nil
}

// Delete removes an attachment record
func (r *GormAttachmentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.TodoAttachment{}, id).Error
}
