package models

import (
	"time"

	"gorm.io/gorm"
)

type Wallet struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"uniqueIndex;not null" json:"user_id"`
	BalanceCents     int64          `gorm:"not null;default:0" json:"balance_cents"`
	Currency         string         `gorm:"size:3;default:'USD'" json:"currency"`
	StripeCustomerID string         `gorm:"size:100;index" json:"-"`
	IsActive         bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (Wallet) TableName() string {
	return "wallets"
}
