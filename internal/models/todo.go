package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoPriority string

const (
	PriorityLow    TodoPriority = "low"
	PriorityMedium TodoPriority = "medium"
	PriorityHigh   TodoPriority = "high"
)

type TodoStatus string

const (
	StatusPending    TodoStatus = "pending"
	StatusInProgress TodoStatus = "in_progress"
	StatusCompleted  TodoStatus = "completed"
)

// ValidPriority reports whether p is one of the known priority values.
func ValidPriority(p TodoPriority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s TodoStatus) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

type Todo struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Priority    TodoPriority   `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	Status      TodoStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	DueDate     *time.Time     `json:"due_date"`
	CompletedAt *time.Time     `json:"completed_at"`
	// IsShared is informational; authorization is decided by TodoShare rows.
	IsShared   bool           `gorm:"not null;default:false" json:"is_shared"`
	UserID     uint64         `gorm:"not null;index" json:"user_id"`
	CategoryID *uint64        `json:"category_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	User        User             `gorm:"foreignKey:UserID" json:"-"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Attachments []TodoAttachment `gorm:"foreignKey:TodoID" json:"attachments,omitempty"`
	Shares      []TodoShare      `gorm:"foreignKey:TodoID" json:"shares,omitempty"`
}
