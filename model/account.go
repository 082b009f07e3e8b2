package model

import (
	"time"

	"gorm.io/datatypes"
)

// Account represents a registered neighbor.
type Account struct {
	ID           int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:32;not null" json:"username"`
	PasswordHash string         `gorm:"size:64;not null" json:"-"`
	Balance      int64          `gorm:"not null;default:0" json:"balance"`
	Status       int            `gorm:"default:1" json:"status"` // 0=banned 1=normal
	VisitHistory datatypes.JSON `json:"visit_history"`           // unix-milli timestamps of logins
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	LastLoginAt  *time.Time     `json:"last_login_at"`
	LastLoginIP  string         `gorm:"size:45" json:"last_login_ip"`
}

// Banned reports whether the account is banned.
func (a *Account) Banned() bool {
	return a.Status == 0
}
