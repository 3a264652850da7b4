package assignment

import (
	"time"

	"gorm.io/gorm"
)

// Assignment pairs a giver with a receiver for one event. Rows are
// created unapproved and become visible to givers only after an admin
// approves them.
type Assignment struct {
	gorm.Model
	EventID    uint `json:"event_id" gorm:"not null;uniqueIndex:idx_event_giver"`
	GiverID    uint `json:"giver_id" gorm:"not null;uniqueIndex:idx_event_giver"`
	ReceiverID uint `json:"receiver_id" gorm:"not null"`

	Approved   bool       `json:"approved" gorm:"default:false"`
	ApprovedAt *time.Time `json:"approved_at,omitempty"`
	ApprovedBy *uint      `json:"approved_by,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}
