package models

import (
	"time"
)

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Type      string    `gorm:"size:30;not null;index" json:"notification_type"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	BookingID *uint     `gorm:"index" json:"booking"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

type SupportTicket struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	Subject   string    `gorm:"size:255;not null" json:"subject"`
	Status    string    `gorm:"size:20;default:'open';index" json:"status"`
	Priority  string    `gorm:"size:10;default:'medium';index" json:"priority"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Messages []SupportMessage `gorm:"foreignKey:TicketID" json:"messages"`
}

func (SupportTicket) TableName() string {
	return "support_tickets"
}

type SupportMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TicketID    uint      `gorm:"not null;index" json:"-"`
	SenderID    uint      `gorm:"not null" json:"-"`
	SenderEmail string    `gorm:"-" json:"sender_email"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `json:"created_at"`

	Sender *User `gorm:"foreignKey:SenderID" json:"-"`
}

func (SupportMessage) TableName() string {
	return "support_messages"
}
