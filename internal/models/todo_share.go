package models

import "time"

// TodoShare grants a non-owner user access to a todo. The composite
// primary key guarantees at most one row per (todo, shared_with) pair.
type TodoShare struct {
	TodoID       uint64    `gorm:"primarykey" json:"todo_id"`
	SharedWithID uint64    `gorm:"primarykey" json:"shared_with_id"`
	SharedByID   uint64    `gorm:"not null" json:"shared_by_id"`
	CanEdit      bool      `gorm:"not null;default:false" json:"can_edit"`
	SharedAt     time.Time `gorm:"autoCreateTime" json:"shared_at"`

	// Relations
	Todo       Todo `gorm:"foreignKey:TodoID" json:"-"`
	SharedWith User `gorm:"foreignKey:SharedWithID" json:"shared_with,omitempty"`
	SharedBy   User `gorm:"foreignKey:SharedByID" json:"-"`
}
