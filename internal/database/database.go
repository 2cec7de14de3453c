package database

import (
	"errors"
	"fmt"

	"leisuretimez/config"
	"leisuretimez/internal/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// sqlite allows a single writer; serialize through one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CustomerProfile{},
		&models.SavedPackage{},
		&models.Package{},
		&models.PackageImage{},
		&models.GuestImage{},
		&models.Location{},
		&models.Destination{},
		&models.Event{},
		&models.Carousel{},
		&models.PromoCode{},
		&models.Booking{},
		&models.PersonalisedBooking{},
		&models.Contact{},
		&models.Invoice{},
		&models.Payment{},
		&models.Review{},
		&models.Wallet{},
		&models.Transaction{},
		&models.Notification{},
		&models.SupportTicket{},
		&models.SupportMessage{},
		&models.BlogPost{},
		&models.BlogComment{},
		&models.BlogReaction{},
		&models.AuditLog{},
		&models.ProcessedStripeEvent{},
		&models.AccountDeletionLog{},
	)
}

// SeedAdmin creates the first staff account when ADMIN credentials are provided and
// no account with that email exists yet.
func SeedAdmin(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := &models.User{
		Email:        email,
		Firstname:    "Site",
		Lastname:     "Admin",
		PasswordHash: string(hash),
		IsActive:     true,
		IsStaff:      true,
		Status:       "active",
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}
	log.WithField("email", email).Info("seeded admin account")
	return db.Create(&models.CustomerProfile{UserID: admin.ID}).Error
}
