package models

import "time"

type ComplaintStatus string

const (
	StatusPending  ComplaintStatus = "Pending"
	StatusResolved ComplaintStatus = "Resolved"
)

type ComplaintUrgency string

const (
	UrgencyLow    ComplaintUrgency = "Low"
	UrgencyMedium ComplaintUrgency = "Medium"
	UrgencyHigh   ComplaintUrgency = "High"
)

type Complaint struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	UserID      uint64           `gorm:"not null;index" json:"user_id"`
	Title       string           `gorm:"not null" json:"title"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Category    string           `gorm:"type:varchar(100);not null" json:"category"`
	Urgency     ComplaintUrgency `gorm:"type:varchar(10);not null" json:"urgency"`
	Location    string           `gorm:"type:varchar(255);not null" json:"location"`

	// ComplaintNumber is the public tracking number. It is assigned once at
	// creation and the unique index is the authoritative collision guard.
	ComplaintNumber string `gorm:"type:varchar(30);uniqueIndex;not null" json:"complaint_number"`

	ImageURL string          `gorm:"type:varchar(255)" json:"image_url,omitempty"`
	Status   ComplaintStatus `gorm:"type:varchar(10);not null;default:'Pending'" json:"status"`

	// AssignedToID references the staff account a support agent routed the
	// complaint to. Nullable until assignment happens.
	AssignedToID *uint64 `gorm:"index" json:"assigned_to_id,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	// Relations
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AssignedTo *User     `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`
	Comments   []Comment `gorm:"foreignKey:ComplaintID" json:"comments,omitempty"`
}
