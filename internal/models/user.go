package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Email            string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Firstname        string         `gorm:"size:100" json:"firstname"`
	Lastname         string         `gorm:"size:100" json:"lastname"`
	PasswordHash     string         `gorm:"size:255" json:"-"`
	IsActive         bool           `gorm:"default:false" json:"is_active"`
	IsStaff          bool           `gorm:"default:false" json:"is_staff"`
	Status           string         `gorm:"size:50;default:'active';index" json:"status"`
	GoogleID         *string        `gorm:"uniqueIndex;size:255" json:"-"` // nil for email signups
	ActivationSentAt time.Time      `json:"-"`
	CreatedAt        time.Time      `json:"date_joined"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Profile *CustomerProfile `gorm:"foreignKey:UserID" json:"profile,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	if u.Lastname == "" {
		return u.Firstname
	}
	return u.Firstname + " " + u.Lastname
}

type CustomerProfile struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Address       string     `gorm:"size:255" json:"address"`
	City          string     `gorm:"size:100" json:"city"`
	State         string     `gorm:"size:100" json:"state"`
	Country       string     `gorm:"size:100" json:"country"`
	Phone         string     `gorm:"size:20" json:"phone"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	MaritalStatus string     `gorm:"size:20" json:"marital_status"`
	Profession    string     `gorm:"size:100" json:"profession"`
	Gender        string     `gorm:"size:10" json:"gender"`
	ImageURL      string     `gorm:"size:512;default:'default.svg'" json:"image"`
	Status        string     `gorm:"size:50;default:'active'" json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CustomerProfile) TableName() string {
	return "customer_profiles"
}

// SavedPackage is a user bookmark on a package.
type SavedPackage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_saved_user_package,unique" json:"user_id"`
	PackageID uint      `gorm:"not null;index:idx_saved_user_package,unique" json:"package_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (SavedPackage) TableName() string {
	return "saved_packages"
}
