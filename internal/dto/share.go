package dto

import (
	"time"

	"github.com/mtsuzuki/todo-collab-api/internal/models"
)

// ShareDTO represents a share grant in API responses
type ShareDTO struct {
	TodoID     uint64    `json:"todo_id"`
	SharedWith UserDTO   `json:"shared_with"`
	CanEdit    bool      `json:"can_edit"`
	SharedAt   time.Time `json:"shared_at"`
}

// ToShareDTO converts a TodoShare model to ShareDTO
func ToShareDTO(share models.TodoShare) ShareDTO {
	return ShareDTO{
		TodoID:     share.TodoID,
		SharedWith: ToUserDTO(share.SharedWith),
		CanEdit:    share.CanEdit,
		SharedAt:   share.SharedAt,
	}
}

// ToShareDTOs converts a slice of share grants
func ToShareDTOs(shares []models.TodoShare) []ShareDTO {
	dtos := make([]ShareDTO, len(shares))
	for i, share := range shares {
		dtos[i] = ToShareDTO(share)
	}
	return dtos
}
