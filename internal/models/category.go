package models

import (
	"time"

	"gorm.io/gorm"
)

type Category struct {
	ID        uint64         `gorm:"primarykey" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null" json:"name"`
	Color     string         `gorm:"type:varchar(7);not null;default:'#007bff'" json:"color"`
	UserID    uint64         `gorm:"not null;index" json:"user_id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User  User   `gorm:"foreignKey:UserID" json:"-"`
	Todos []Todo `gorm:"foreignKey:CategoryID" json:"todos,omitempty"`
}
