package models

import (
	"time"
)

type Package struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	PackageID       string    `gorm:"uniqueIndex;size:255;not null" json:"package_id"`
	Name            string    `gorm:"size:255;index" json:"name"`
	Category        string    `gorm:"size:255;index" json:"category"`
	VAT             float64   `gorm:"not null;default:0" json:"vat"` // percent
	PriceOption     string    `gorm:"size:32" json:"price_option"`  // fixed | offer
	FixedPriceCents int64     `gorm:"default:0" json:"fixed_price_cents"`
	DiscountPrice   string    `gorm:"type:text" json:"discount_price"` // "adult,children,price-adult,children,price"
	MaxAdultLimit   *int      `json:"max_adult_limit"`
	MaxChildLimit   *int      `json:"max_child_limit"`
	DateFrom        time.Time `gorm:"type:date" json:"date_from"`
	DateTo          time.Time `gorm:"type:date" json:"date_to"`
	Duration        int       `json:"duration"`
	Availability    int       `json:"availability"`
	Virtual         int       `gorm:"default:0" json:"virtual"`
	Country         string    `gorm:"size:255;index" json:"country"`
	Continent       string    `gorm:"size:255;index" json:"continent"`
	Applications    int       `gorm:"default:0" json:"applications"`
	Submissions     int       `gorm:"default:0" json:"submissions"`
	Description     string    `gorm:"type:text" json:"description"`
	MainImage       string    `gorm:"size:512" json:"main_image"`
	Destinations    string    `gorm:"type:text" json:"destinations"`
	Services        string    `gorm:"type:text" json:"services"`
	FeaturedEvents  string    `gorm:"type:text" json:"featured_events"`
	FeaturedGuests  string    `gorm:"type:text" json:"featured_guests"`
	Status          string    `gorm:"size:50;default:'active';index" json:"status"`
	CreatedAt       time.Time `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	IsSaved bool `gorm:"-" json:"is_saved"`
}

func (Package) TableName() string {
	return "packages"
}

type PackageImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PackageID uint   `gorm:"not null;index" json:"package"`
	Image     string `gorm:"size:512" json:"image"`
}

func (PackageImage) TableName() string {
	return "package_images"
}

type GuestImage struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PackageID uint   `gorm:"not null;index" json:"package"`
	Image     string `gorm:"size:512" json:"image"`
}

func (GuestImage) TableName() string {
	return "guest_images"
}

type Location struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:255" json:"title"`
	Type    string `gorm:"size:255;index" json:"type"`
	City    string `gorm:"size:255" json:"city"`
	State   string `gorm:"size:255;index" json:"state"`
	Country string `gorm:"size:255;index" json:"country"`
}

func (Location) TableName() string {
	return "locations"
}

type Destination struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Country     string    `gorm:"size:255" json:"country"`
	Continent   string    `gorm:"size:255" json:"continent"`
	Trips       int       `gorm:"default:0" json:"trips"`
	Description string    `gorm:"type:text" json:"description"`
	MainImage   string    `gorm:"size:512" json:"main_image"`
	Locations   string    `gorm:"type:text" json:"locations"`
	Services    string    `gorm:"type:text" json:"services"`
	Features    string    `gorm:"type:text" json:"features"`
	Languages   string    `gorm:"type:text" json:"languages"`
	Status      string    `gorm:"size:50;default:'active';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Destination) TableName() string {
	return "destinations"
}

type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:255" json:"name"`
	Country     string    `gorm:"size:255" json:"country"`
	Continent   string    `gorm:"size:255" json:"continent"`
	Description string    `gorm:"type:text" json:"description"`
	MainImage   string    `gorm:"size:512" json:"main_image"`
	Services    string    `gorm:"type:text" json:"services"`
	Status      string    `gorm:"size:50;default:'active';index" json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Event) TableName() string {
	return "events"
}

type Carousel struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Subtitle  string    `gorm:"size:500" json:"subtitle"`
	Image     string    `gorm:"size:512" json:"image"`
	CTAText   string    `gorm:"size:100;default:'Explore'" json:"cta_text"`
	Category  string    `gorm:"size:20;index" json:"category"` // personalise | cruise | packages
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Carousel) TableName() string {
	return "carousel"
}
