package services

import (
	"errors"
	"fmt"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/gorm"
)

// Authorizer decides what a user may do with a todo. Predicates are
// evaluated against current ownership and share state on every call;
// results must not be cached across requests since grants can be
// revoked concurrently.
type Authorizer struct {
	shareRepo repository.ShareRepository
}

// NewAuthorizer creates a new Authorizer
func NewAuthorizer(shareRepo repository.ShareRepository) *Authorizer {
	return &Authorizer{shareRepo: shareRepo}
}

// CanView reports whether the user owns the todo or holds any share
// grant on it.
func (a *Authorizer) CanView(userID uint64, todo *models.Todo) (bool, error) {
	if todo.UserID == userID {
		return true, nil
	}

	_, err := a.shareRepo.Find(todo.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check share grant: %w", err)
	}
	return true, nil
}

// CanEdit reports whether the user owns the todo or holds an edit
// grant on it.
func (a *Authorizer) CanEdit(userID uint64, todo *models.Todo) (bool, error) {
	if todo.UserID == userID {
		return true, nil
	}

	share, err := a.shareRepo.Find(todo.ID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check share grant: %w", err)
	}
	return share.CanEdit, nil
}

// CanDelete follows the same rule as CanEdit: the owner or an edit
// grant holder may delete.
func (a *Authorizer) CanDelete(userID uint64, todo *models.Todo) (bool, error) {
	return a.CanEdit(userID, todo)
}

// CanShare reports whether the user owns the todo. Sharing is not
// delegable; an edit grant does not allow re-sharing.
func (a *Authorizer) CanShare(userID uint64, todo *models.Todo) bool {
	return todo.UserID == userID
}
