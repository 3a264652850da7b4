package settings

import (
	"gorm.io/gorm"
)

type Setting struct {
	gorm.Model
	Key   string `json:"key" gorm:"uniqueIndex;not null"`
	Value string `json:"value"`
}

func (Setting) TableName() string {
	return "settings"
}
