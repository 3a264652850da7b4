package event

import (
	"time"

	"gorm.io/gorm"
)

// Event is a gift exchange round. SequenceID is the participant-facing
// number: strictly increasing, never reused, distinct from the internal
// key.
type Event struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description"`
	SequenceID  uint   `json:"sequence_id" gorm:"uniqueIndex;not null"`

	PreregistrationStart time.Time  `json:"preregistration_start" gorm:"not null"`
	RegistrationStart    time.Time  `json:"registration_start" gorm:"not null"`
	RegistrationEnd      time.Time  `json:"registration_end" gorm:"not null"`
	StartsAt             *time.Time `json:"starts_at,omitempty"`

	IsActive bool `json:"is_active" gorm:"default:true"`
}

func (Event) TableName() string {
	return "events"
}
