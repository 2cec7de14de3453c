package models

import (
	"time"
)

// Transaction is one ledger line against a wallet. AmountCents is always positive;
// Type says which way the money moved.
type Transaction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	WalletID              uint      `gorm:"not null;index" json:"wallet_id"`
	AmountCents           int64     `gorm:"not null" json:"amount_cents"`
	Type                  string    `gorm:"size:10;not null;index" json:"transaction_type"` // deposit | withdrawal | transfer
	Status                string    `gorm:"size:10;not null;default:'pending';index" json:"status"`
	RecipientID           *uint     `gorm:"index" json:"recipient_id"`
	StripePaymentIntentID string    `gorm:"size:255;index" json:"-"` // checkout session or payment intent ID
	Reference             string    `gorm:"size:100;index" json:"reference"`
	Description           string    `gorm:"type:text" json:"description"`
	CreatedAt             time.Time `gorm:"index" json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`

	Recipient *User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}
