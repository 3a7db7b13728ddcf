package services

import (
	"errors"
	"fmt"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotTodoOwner      = errors.New("only the todo owner can manage sharing")
	ErrShareUserNotFound = errors.New("target user not found")
	ErrShareWithSelf     = errors.New("cannot share a todo with its owner")
	ErrShareNotFound     = errors.New("share grant not found")
)

// ShareService manages per-user grants on todos
type ShareService struct {
	todoRepo   repository.TodoRepository
	shareRepo  repository.ShareRepository
	userRepo   repository.UserRepository
	authorizer *Authorizer
}

// NewShareService creates a new ShareService
func NewShareService(
	todoRepo repository.TodoRepository,
	shareRepo repository.ShareRepository,
	userRepo repository.UserRepository,
	authorizer *Authorizer,
) *ShareService {
	return &ShareService{
		todoRepo:   todoRepo,
		shareRepo:  shareRepo,
		userRepo:   userRepo,
		authorizer: authorizer,
	}
}

// Share grants or updates access for target username on a todo. The
// call is an idempotent upsert: repeating it updates can_edit on the
// existing grant instead of adding a second row.
func (s *ShareService) Share(actorID, todoID uint64, targetUsername string, canEdit bool) (*models.TodoShare, error) {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return nil, err
	}

	if !s.authorizer.CanShare(actorID, todo) {
		return nil, ErrNotTodoOwner
	}

	target, err := s.userRepo.FindByUsername(targetUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShareUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if target.ID == todo.UserID {
		return nil, ErrShareWithSelf
	}

	share := &models.TodoShare{
		TodoID:       todo.ID,
		SharedWithID: target.ID,
		SharedByID:   actorID,
		CanEdit:      canEdit,
	}

	if err := s.shareRepo.Upsert(share); err != nil {
		return nil, fmt.Errorf("failed to upsert share: %w", err)
	}

	if err := s.markShared(todo, true); err != nil {
		return nil, err
	}

	share.SharedWith = *target
	return share, nil
}

// Unshare revokes a grant previously given to target username
func (s *ShareService) Unshare(actorID, todoID uint64, targetUsername string) error {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return err
	}

	if !s.authorizer.CanShare(actorID, todo) {
		return ErrNotTodoOwner
	}

	target, err := s.userRepo.FindByUsername(targetUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShareUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if _, err := s.shareRepo.Find(todo.ID, target.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrShareNotFound
		}
		return fmt.Errorf("failed to find share: %w", err)
	}

	if err := s.shareRepo.Delete(todo.ID, target.ID); err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}

	remaining, err := s.shareRepo.CountByTodo(todo.ID)
	if err != nil {
		return fmt.Errorf("failed to count shares: %w", err)
	}
	if remaining == 0 {
		if err := s.markShared(todo, false); err != nil {
			return err
		}
	}

	return nil
}

// ListShares returns all grants on a todo, owner only
func (s *ShareService) ListShares(actorID, todoID uint64) ([]models.TodoShare, error) {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return nil, err
	}

	if !s.authorizer.CanShare(actorID, todo) {
		return nil, ErrNotTodoOwner
	}

	shares, err := s.shareRepo.ListByTodo(todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	return shares, nil
}

func (s *ShareService) findTodo(todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// markShared keeps the informational is_shared flag in step with the
// existence of grants. Authorization never reads this flag.
func (s *ShareService) markShared(todo *models.Todo, shared bool) error {
	if todo.IsShared == shared {
		return nil
	}
	todo.IsShared = shared
	if err := s.todoRepo.Update(todo); err != nil {
		return fmt.Errorf("failed to update todo share flag: %w", err)
	}
	return nil
}
