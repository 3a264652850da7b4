package verification

import (
	"gorm.io/gorm"
)

// VerificationToken is an append-only ledger row. Issuing a new token
// deactivates the previous active one; rows are never deleted except by
// an account purge.
type VerificationToken struct {
	gorm.Model
	AccountID uint   `json:"account_id" gorm:"index;not null"`
	Value     string `json:"-" gorm:"uniqueIndex;not null"`
	Active    bool   `json:"active" gorm:"default:true"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}
