package registration

import (
	"time"

	"gorm.io/gorm"
)

const (
	KindPreregistration = "preregistration"
	KindRegistration    = "registration"
)

// Registration ties an account to an event. At most one row per
// (account, event); the kind records which window admitted it.
type Registration struct {
	gorm.Model
	AccountID uint   `json:"account_id" gorm:"not null;uniqueIndex:idx_account_event"`
	EventID   uint   `json:"event_id" gorm:"not null;uniqueIndex:idx_account_event"`
	Kind      string `json:"kind" gorm:"not null"`

	Confirmed       bool       `json:"confirmed" gorm:"default:false"`
	ConfirmedAt     *time.Time `json:"confirmed_at,omitempty"`
	DeliveryAddress string     `json:"delivery_address"`
}

func (Registration) TableName() string {
	return "registrations"
}
