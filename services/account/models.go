package account

import (
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account is a portal user, optionally bound to a GWars character.
// GWarsID and GWarsProfileURL are unique when present: one local account
// per external character.
type Account struct {
	gorm.Model
	Email       string  `json:"email" gorm:"uniqueIndex;not null"`
	Password    string  `json:"-" gorm:"not null"`
	Role        string  `json:"role" gorm:"default:user"`
	IsActive    bool    `json:"is_active" gorm:"default:true"`
	BlockReason *string `json:"block_reason,omitempty"`

	FullName         string `json:"full_name"`
	Address          string `json:"address"`
	Interests        string `json:"interests"`
	Phone            string `json:"phone"`
	TelegramNickname string `json:"telegram_nickname"`
	AvatarURL        string `json:"avatar_url"`
	ProfileCompleted bool   `json:"profile_completed" gorm:"default:false"`

	GWarsID           *int64  `json:"gwars_id,omitempty" gorm:"column:gwars_id;uniqueIndex"`
	GWarsNickname     string  `json:"gwars_nickname" gorm:"column:gwars_nickname"`
	GWarsProfileURL   *string `json:"gwars_profile_url,omitempty" gorm:"column:gwars_profile_url;uniqueIndex"`
	GWarsVerified     bool    `json:"gwars_verified" gorm:"column:gwars_verified;default:false"`
	VerificationToken string  `json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}
