package models

import "time"

// TodoAttachment references an externally stored blob by key; file
// content is never stored inline.
type TodoAttachment struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	TodoID     uint64    `gorm:"not null;index" json:"todo_id"`
	FileKey    string    `gorm:"type:varchar(255);not null" json:"-"`
	FileName   string    `gorm:"type:varchar(255);not null" json:"file_name"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`

	// Relations
	Todo Todo `gorm:"foreignKey:TodoID" json:"-"`
}
