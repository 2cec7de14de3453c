package models

import (
	"time"
)

type Booking struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	BookingID     string    `gorm:"uniqueIndex;size:32;not null" json:"booking_id"`
	Package       string    `gorm:"size:255;index" json:"package"` // Package.PackageID
	UserID        uint      `gorm:"not null;index" json:"customer"`
	CruiseType    string    `gorm:"type:text" json:"cruise_type"`
	Purpose       string    `gorm:"type:text" json:"purpose"`
	DateFrom      time.Time `gorm:"type:date" json:"datefrom"`
	DateTo        time.Time `gorm:"type:date" json:"dateto"`
	Continent     string    `gorm:"size:50" json:"continent"`
	TravelCountry string    `gorm:"size:50" json:"travelcountry"`
	TravelState   string    `gorm:"size:200" json:"travelstate"`
	Destinations  string    `gorm:"type:text" json:"destinations"`
	Guests        int       `gorm:"default:0" json:"guests"`
	Duration      int       `json:"duration"`
	Adult         int       `json:"adult"`
	Children      int       `gorm:"default:0" json:"children"`
	Service       string    `gorm:"type:text" json:"service"`
	PriceCents    int64     `gorm:"not null;default:0" json:"price_cents"`
	Comment       string    `gorm:"type:text" json:"comment"`

	Lastname   string `gorm:"size:100" json:"lastname"`
	Firstname  string `gorm:"size:100" json:"firstname"`
	Profession string `gorm:"size:100" json:"profession"`
	Email      string `gorm:"size:255" json:"email"`
	Phone      string `gorm:"size:20" json:"phone"`
	Gender     string `gorm:"size:10" json:"gender"`
	Country    string `gorm:"size:100" json:"country"`
	Address    string `gorm:"size:255" json:"address"`
	City       string `gorm:"size:100" json:"city"`
	State      string `gorm:"size:100" json:"state"`

	Invoiced            bool   `gorm:"default:false" json:"invoiced"`
	InvoiceID           string `gorm:"size:255" json:"invoice_id"`
	CheckoutSessionID   string `gorm:"size:255;index" json:"checkout_session_id"`
	PaymentStatus       string `gorm:"size:64;index" json:"payment_status"`
	PaymentMethod       string `gorm:"size:20" json:"payment_method"` // wallet | stripe | split
	WalletAmountCents   int64  `gorm:"default:0" json:"wallet_amount_paid_cents"`
	StripeAmountCents   int64  `gorm:"default:0" json:"stripe_amount_due_cents"`
	WalletTransactionID string `gorm:"size:64" json:"wallet_transaction_id"`

	CancelledAt        *time.Time `json:"cancelled_at"`
	CancellationReason string     `gorm:"type:text" json:"cancellation_reason"`
	RefundCents        int64      `gorm:"default:0" json:"refund_amount_cents"`
	RefundStatus       string     `gorm:"size:20" json:"refund_status"` // "" | pending | processed | denied

	PromoCodeID   *uint      `gorm:"index" json:"promo_code"`
	PromoCode     *PromoCode `gorm:"foreignKey:PromoCodeID" json:"-"`
	DiscountCents int64      `gorm:"default:0" json:"discount_amount_cents"`

	Status    string    `gorm:"size:50;default:'pending';index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

// TotalPaidCents is what the customer actually parted with across wallet and card.
func (b *Booking) TotalPaidCents() int64 {
	return b.WalletAmountCents + b.StripeAmountCents
}

type PersonalisedBooking struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	UserID               uint      `gorm:"not null;index" json:"user"`
	EventType            string    `gorm:"size:30;index" json:"event_type"`
	DateFrom             time.Time `gorm:"type:date" json:"date_from"`
	DateTo               time.Time `gorm:"type:date" json:"date_to"`
	DurationHours        *int      `json:"duration_hours"`
	DurationDays         *int      `json:"duration_days"`
	CruiseType           string    `gorm:"size:20" json:"cruise_type"`
	Continent            string    `gorm:"size:100" json:"continent"`
	Country              string    `gorm:"size:100" json:"country"`
	State                string    `gorm:"size:200" json:"state"`
	PreferredDestination string    `gorm:"size:255" json:"preferred_destination"`
	Guests               int       `gorm:"default:0" json:"guests"`
	Adults               int       `gorm:"default:1" json:"adults"`
	Children             int       `gorm:"default:0" json:"children"`
	Catering             bool      `json:"catering"`
	BarAttendance        bool      `json:"bar_attendance"`
	Decoration           bool      `json:"decoration"`
	SpecialSecurity      bool      `json:"special_security"`
	Photography          bool      `json:"photography"`
	Entertainment        bool      `json:"entertainment"`
	AdditionalComments   string    `gorm:"type:text" json:"additional_comments"`
	Status               string    `gorm:"size:20;default:'pending';index" json:"status"`
	AdminNotes           string    `gorm:"type:text" json:"admin_notes"`
	CreatedAt            time.Time `gorm:"index" json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (PersonalisedBooking) TableName() string {
	return "personalised_bookings"
}

type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Fullname  string    `gorm:"size:255" json:"fullname"`
	Subject   string    `gorm:"size:255" json:"subject"`
	Email     string    `gorm:"size:255" json:"email"`
	Message   string    `gorm:"type:text" json:"message"`
	Status    string    `gorm:"size:50;default:'pending'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Contact) TableName() string {
	return "contacts"
}
