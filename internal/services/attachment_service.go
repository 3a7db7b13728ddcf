package services

import (
	"errors"
	"fmt"
	"io"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
	"github.com/mtsuzuki/todo-collab-api/internal/repository"
	"gorm.io/gorm"
)

var ErrAttachmentNotFound = errors.New("attachment not found")

// AttachmentService manages attachment metadata and the backing blobs.
// Mutations follow the todo edit rule: the owner or an edit-grant
// holder may add and remove attachments.
type AttachmentService struct {
	attachmentRepo repository.AttachmentRepository
	todoRepo       repository.TodoRepository
	authorizer     *Authorizer
	blobs          *BlobStore
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo repository.AttachmentRepository,
	todoRepo repository.TodoRepository,
	authorizer *Authorizer,
	blobs *BlobStore,
) *AttachmentService {
	return &AttachmentService{
		attachmentRepo: attachmentRepo,
		todoRepo:       todoRepo,
		authorizer:     authorizer,
		blobs:          blobs,
	}
}

// Add stores the content and records the attachment on a todo
func (s *AttachmentService) Add(actorID, todoID uint64, fileName string, content io.Reader) (*models.TodoAttachment, error) {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.authorizer.CanEdit(actorID, todo)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrTodoPermissionDenied
	}

	key, err := s.blobs.Save(fileName, content)
	if err != nil {
		return nil, err
	}

	attachment := &models.TodoAttachment{
		TodoID:   todoID,
		FileKey:  key,
		FileName: fileName,
	}

	if err := s.attachmentRepo.Create(attachment); err != nil {
		s.blobs.Remove(key)
		return nil, fmt.Errorf("failed to record attachment: %w", err)
	}

	return attachment, nil
}

// List returns the attachments of a todo the viewer may see
func (s *AttachmentService) List(viewerID, todoID uint64) ([]models.TodoAttachment, error) {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return nil, err
	}

	visible, err := s.authorizer.CanView(viewerID, todo)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrTodoNotFound
	}

	attachments, err := s.attachmentRepo.ListByTodo(todoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	return attachments, nil
}

// Remove deletes an attachment record and its blob
func (s *AttachmentService) Remove(actorID, todoID, attachmentID uint64) error {
	todo, err := s.findTodo(todoID)
	if err != nil {
		return err
	}

	allowed, err := s.authorizer.CanEdit(actorID, todo)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrTodoPermissionDenied
	}

	attachment, err := s.attachmentRepo.FindByID(attachmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttachmentNotFound
		}
		return fmt.Errorf("failed to find attachment: %w", err)
	}
	if attachment.TodoID != todoID {
		return ErrAttachmentNotFound
	}

	if err := s.attachmentRepo.Delete(attachmentID); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}

	s.blobs.Remove(attachment.FileKey)
	return nil
}

func (s *AttachmentService) findTodo(todoID uint64) (*models.Todo, error) {
	todo, err := s.todoRepo.FindByID(todoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}
