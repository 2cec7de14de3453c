package models

import (
	"time"
)

type Invoice struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	InvoiceID       string    `gorm:"uniqueIndex;size:32;not null" json:"invoice_id"` // INV-000001
	BookingID       uint      `gorm:"not null;uniqueIndex" json:"booking"`
	Status          string    `gorm:"size:50;default:'pending';index" json:"status"`
	Items           string    `gorm:"type:text" json:"items"` // JSON [[name, qty, kind, unit, total]]
	SubtotalCents   int64     `gorm:"not null" json:"subtotal_cents"`
	Tax             float64   `gorm:"not null" json:"tax"` // percent
	TaxAmountCents  int64     `gorm:"not null" json:"tax_amount_cents"`
	AdminPercentage float64   `gorm:"not null;default:0" json:"admin_percentage"`
	AdminFeeCents   int64     `gorm:"not null;default:0" json:"admin_fee_cents"`
	TotalCents      int64     `gorm:"not null" json:"total_cents"`
	Paid            bool      `gorm:"default:false" json:"paid"`
	TransactionID   string    `gorm:"size:255" json:"transaction_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (Invoice) TableName() string {
	return "invoices"
}

// Payment records settlement of an invoice.
type Payment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	InvoiceID     uint      `gorm:"not null;index" json:"invoice"`
	PaymentID     string    `gorm:"uniqueIndex;size:32;not null" json:"payment_id"` // PMT + 6 hex
	TransactionID string    `gorm:"size:64;index" json:"transaction_id"`
	Status        string    `gorm:"size:50;default:'pending';index" json:"status"`
	AmountCents   int64     `gorm:"not null" json:"amount_cents"`
	AdminFeeCents int64     `gorm:"not null;default:0" json:"admin_fee_cents"`
	VATCents      int64     `gorm:"not null;default:0" json:"vat_cents"`
	TotalCents    int64     `gorm:"not null" json:"total_cents"`
	Paid          bool      `gorm:"default:false" json:"paid"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

type PromoCode struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Code           string    `gorm:"uniqueIndex;size:50;not null" json:"code"`
	DiscountType   string    `gorm:"size:10;not null" json:"discount_type"` // percentage | fixed
	PercentOff     float64   `gorm:"default:0" json:"percent_off"`
	AmountOffCents int64     `gorm:"default:0" json:"amount_off_cents"`
	MinOrderCents  int64     `gorm:"default:0" json:"min_order_amount_cents"`
	MaxUses        int       `gorm:"default:0" json:"max_uses"` // 0 = unlimited
	CurrentUses    int       `gorm:"default:0" json:"current_uses"`
	ValidFrom      time.Time `json:"valid_from"`
	ValidTo        time.Time `json:"valid_to"`
	IsActive       bool      `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

func (PromoCode) TableName() string {
	return "promo_codes"
}

type Review struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_review_user_package,unique" json:"user_id"`
	PackageID uint      `gorm:"not null;index:idx_review_user_package,unique" json:"package"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Review) TableName() string {
	return "reviews"
}
