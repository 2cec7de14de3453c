package models

import (
	"time"
)

type AuditLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     *uint     `gorm:"index" json:"user_id"`
	Action     string    `gorm:"size:100;not null;index" json:"action"`
	Resource   string    `gorm:"size:100;index" json:"resource"`
	ResourceID string    `gorm:"size:100;index" json:"resource_id"`
	IP         string    `gorm:"size:45" json:"ip"`
	UserAgent  string    `gorm:"size:512" json:"user_agent"`
	Metadata   string    `gorm:"type:text" json:"metadata"`
	CreatedAt  time.Time `json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// ProcessedStripeEvent marks a webhook event ID as handled.
type ProcessedStripeEvent struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EventID     string    `gorm:"uniqueIndex;size:255;not null" json:"event_id"`
	EventType   string    `gorm:"size:100" json:"event_type"`
	ProcessedAt time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

func (ProcessedStripeEvent) TableName() string {
	return "processed_stripe_events"
}

type AccountDeletionLog struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	UserID              uint       `gorm:"index" json:"user_id"`
	Email               string     `gorm:"size:255" json:"email"`
	Firstname           string     `gorm:"size:100" json:"firstname"`
	Lastname            string     `gorm:"size:100" json:"lastname"`
	Phone               string     `gorm:"size:20" json:"phone"`
	DateJoined          *time.Time `json:"date_joined"`
	DeletedAt           time.Time  `gorm:"autoCreateTime" json:"deleted_at"`
	Reason              string     `gorm:"type:text" json:"reason"`
	WalletBalanceCents  int64      `gorm:"default:0" json:"wallet_balance_at_deletion_cents"`
}

func (AccountDeletionLog) TableName() string {
	return "account_deletion_logs"
}
