package repository

import (
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"gorm.io/gorm"
)

type DashboardStats struct {
	TotalUsers        int64            `json:"total_users"`
	ActiveUsers       int64            `json:"active_users"`
	TotalBookings     int64            `json:"total_bookings"`
	BookingsByStatus  map[string]int64 `json:"bookings_by_status"`
	RevenueCents      int64            `json:"revenue_cents"`
	TotalTransactions int64            `json:"total_transactions"`
	OpenTickets       int64            `json:"open_tickets"`
	PendingRequests   int64            `json:"pending_personalised_requests"`
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetDashboardStats() (*DashboardStats, error) {
	var s DashboardStats
	r.db.Model(&models.User{}).Count(&s.TotalUsers)
	r.db.Model(&models.User{}).Where("is_active = ?", true).Count(&s.ActiveUsers)
	r.db.Model(&models.Booking{}).Count(&s.TotalBookings)

	byStatus, err := NewBookingRepository(r.db).CountByStatus()
	if err != nil {
		return nil, err
	}
	s.BookingsByStatus = byStatus

	rev, err := NewInvoiceRepository(r.db).PaidRevenue()
	if err != nil {
		return nil, err
	}
	s.RevenueCents = rev

	s.TotalTransactions = NewTransactionRepository(r.db).Count()
	s.OpenTickets = NewSupportRepository(r.db).CountOpen()
	r.db.Model(&models.PersonalisedBooking{}).Where("status = ?", domain.RequestPending).Count(&s.PendingRequests)
	return &s, nil
}

// ListUsers returns users with search and pagination.
func (r *AdminRepository) ListUsers(search string, page, limit int) ([]models.User, int64, error) {
	q := r.db.Model(&models.User{})
	if search != "" {
		like := "%" + search + "%"
		q = q.Where("email LIKE ? OR firstname LIKE ? OR lastname LIKE ?", like, like, like)
	}
	var total int64
	q.Count(&total)
	var users []models.User
	err := q.Preload("Profile").Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&users).Error
	return users, total, err
}
