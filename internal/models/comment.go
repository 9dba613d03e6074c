package models

import "time"

// Comment is an append-only staff note on a complaint. There is no edit or
// delete operation.
type Comment struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	ComplaintID uint64    `gorm:"not null;index" json:"complaint_id"`
	AuthorID    uint64    `gorm:"not null" json:"author_id"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	CreatedAt   time.Time `json:"created_at"`

	// Relations
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
