package repository

import (
	"errors"

	"leisuretimez/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

func (r *InvoiceRepository) WithTx(tx *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: tx}
}

// LatestNumber returns the highest invoice number, or "" when there are none.
// Padding stops at six digits, so longer numbers sort first.
func (r *InvoiceRepository) LatestNumber() (string, error) {
	var inv models.Invoice
	err := r.db.Select("invoice_id").Order("LENGTH(invoice_id) DESC, invoice_id DESC").First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return inv.InvoiceID, nil
}

func (r *InvoiceRepository) Create(inv *models.Invoice) error {
	return r.db.Omit("Booking").Create(inv).Error
}

func (r *InvoiceRepository) GetByInvoiceID(invoiceID string) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Preload("Booking").Where("invoice_id = ?", invoiceID).First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByBooking(bookingID uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := r.db.Where("booking_id = ?", bookingID).Order("id DESC").First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// LockByID reads the invoice with a row lock; call inside a transaction.
func (r *InvoiceRepository) LockByID(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) Update(inv *models.Invoice) error {
	return r.db.Omit("Booking").Save(inv).Error
}

func (r *InvoiceRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

// PaidRevenue sums totals of paid invoices.
func (r *InvoiceRepository) PaidRevenue() (int64, error) {
	var rev struct{ Total int64 }
	err := r.db.Model(&models.Invoice{}).Select("COALESCE(SUM(total_cents), 0) as total").Where("paid = ?", true).Scan(&rev).Error
	return rev.Total, err
}
