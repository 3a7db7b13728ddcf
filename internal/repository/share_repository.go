package repository

import (
	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShareRepository is a GORM implementation of ShareRepository
type GormShareRepository struct {
	db *gorm.DB
}

// NewShareRepository creates a new ShareRepository
func NewShareRepository(db *gorm.DB) ShareRepository {
	return &GormShareRepository{db: db}
}

// Upsert creates the share or updates can_edit on the existing row.
// The ON CONFLICT target is the composite primary key, so sharing the
// same todo to the same user twice never produces a second row.
func (r *GormShareRepository) Upsert(share *models.TodoShare) error {
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "todo_id"}, {Name: "shared_with_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"can_edit"}),
		}).
		Create(share).Error
}

// Find finds a share grant for a (todo, user) pair
func (r *GormShareRepository) Find(todoID, sharedWithID uint64) (*models.TodoShare, error) {
	var share models.TodoShare
	if err := r.db.Where("todo_id = ? AND shared_with_id = ?", todoID, sharedWithID).
		First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}

// ListByTodo lists all grants on a todo with recipients preloaded
func (r *GormShareRepository) ListByTodo(todoID uint64) ([]models.TodoShare, error) {
	var shares []models.TodoShare
	if err := r.db.Preload("SharedWith").
		Where("todo_id = ?", todoID).
		Find(&shares).Error; err != nil {
		return nil, err
	}
	return shares, nil
}

// Delete revokes a grant
func (r *GormShareRepository) Delete(todoID, sharedWithID uint64) error {
	return r.db.Where("todo_id = ? AND shared_with_id = ?", todoID, sharedWithID).
		Delete(&models.TodoShare{}).Error
}

// CountByTodo counts grants on a todo
func (r *GormShareRepository) CountByTodo(todoID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.TodoShare{}).Where("todo_id = ?", todoID).Count(&count).Error
	return count, err
}
