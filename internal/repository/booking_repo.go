package repository

import (
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByBookingID(bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Where("booking_id = ?", bookingID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// LockByBookingID reads the booking with a row lock; call inside a transaction.
func (r *BookingRepository) LockByBookingID(bookingID string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", bookingID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) GetByCheckoutSession(sessionID string) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Where("checkout_session_id = ?", sessionID).First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByUser(userID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// List returns bookings with optional status and search filters, paginated.
func (r *BookingRepository) List(status, search string, page, limit int) ([]models.Booking, int64, error) {
	q := r.db.Model(&models.Booking{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("booking_id LIKE ? OR email LIKE ? OR lastname LIKE ? OR package LIKE ?", like, like, like, like)
	}
	var total int64
	q.Count(&total)
	var list []models.Booking
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

// HasPaidBooking reports whether the user has a paid booking for the package.
func (r *BookingRepository) HasPaidBooking(userID uint, packageID string) bool {
	var n int64
	r.db.Model(&models.Booking{}).
		Where("user_id = ? AND package = ? AND (status = ? OR payment_status = ?)", userID, packageID, domain.BookingPaid, domain.BookingPaid).
		Count(&n)
	return n > 0
}

func (r *BookingRepository) Update(b *models.Booking) error {
	return r.db.Omit("PromoCode").Save(b).Error
}

func (r *BookingRepository) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.Model(&models.Booking{}).Select("status, COUNT(*) as count").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Count
	}
	return out, nil
}

type PersonalisedBookingRepository struct {
	db *gorm.DB
}

func NewPersonalisedBookingRepository(db *gorm.DB) *PersonalisedBookingRepository {
	return &PersonalisedBookingRepository{db: db}
}

func (r *PersonalisedBookingRepository) Create(b *models.PersonalisedBooking) error {
	return r.db.Create(b).Error
}

func (r *PersonalisedBookingRepository) GetByID(id uint) (*models.PersonalisedBooking, error) {
	var b models.PersonalisedBooking
	if err := r.db.First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns requests for userID (all users when userID is 0), optionally restricted
// to one event type.
func (r *PersonalisedBookingRepository) List(userID uint, eventType string) ([]models.PersonalisedBooking, error) {
	q := r.db.Model(&models.PersonalisedBooking{})
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	var list []models.PersonalisedBooking
	err := q.Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *PersonalisedBookingRepository) Update(b *models.PersonalisedBooking) error {
	return r.db.Save(b).Error
}

func (r *PersonalisedBookingRepository) Delete(id uint) error {
	return r.db.Delete(&models.PersonalisedBooking{}, id).Error
}

type ContactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

func (r *ContactRepository) Create(c *models.Contact) error {
	return r.db.Create(c).Error
}
