package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"leisuretimez/config"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/pdfshift"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvoiceNotFound    = errors.New("invoice not found")
	ErrInvoicePaid        = errors.New("invoice already paid")
	ErrInvoiceNumber      = errors.New("could not allocate a unique invoice number")
	ErrInvalidInvoicePath = errors.New("invalid invoice path")
	ErrPackageNotFound    = errors.New("package not found")
	ErrForbidden          = errors.New("Not authorized")
	ErrPDFUnavailable     = errors.New("Invoice PDF not available")
)

const invoiceNumberAttempts = 3

type InvoiceService struct {
	cfg      *config.Config
	db       *gorm.DB
	invoices *repository.InvoiceRepository
	bookings *repository.BookingRepository
	packages *repository.PackageRepository
	notify   *NotificationService
	mail     *MailService
	pdf      pdfshift.Renderer
}

func NewInvoiceService(cfg *config.Config, db *gorm.DB, invoices *repository.InvoiceRepository, bookings *repository.BookingRepository,
	packages *repository.PackageRepository, notify *NotificationService, mail *MailService, pdf pdfshift.Renderer) *InvoiceService {
	return &InvoiceService{cfg: cfg, db: db, invoices: invoices, bookings: bookings, packages: packages, notify: notify, mail: mail, pdf: pdf}
}

// NextInvoiceNumber is one past the highest existing number. The first is INV-000001.
func (s *InvoiceService) NextInvoiceNumber() (string, error) {
	return nextInvoiceNumber(s.invoices)
}

func nextInvoiceNumber(invoices *repository.InvoiceRepository) (string, error) {
	latest, err := invoices.LatestNumber()
	if err != nil {
		return "", err
	}
	n := 0
	if latest != "" {
		_, digits, ok := strings.Cut(latest, "-")
		if !ok {
			return "", fmt.Errorf("malformed invoice number %q", latest)
		}
		if n, err = strconv.Atoi(digits); err != nil {
			return "", fmt.Errorf("malformed invoice number %q", latest)
		}
	}
	return fmt.Sprintf("INV-%06d", n+1), nil
}

// CreatePackageInvoice invoices a booking at its current price plus package VAT, then
// marks the booking invoiced and counts an application on the package.
func (s *InvoiceService) CreatePackageInvoice(b *models.Booking, pkg *models.Package) (*models.Invoice, error) {
	return s.createWithRetry(b, pkg, nil)
}

// createWithRetry allocates a number, inserts, and retries on a unique collision. next
// overrides number allocation; nil uses the database.
func (s *InvoiceService) createWithRetry(b *models.Booking, pkg *models.Package, next func(*repository.InvoiceRepository) (string, error)) (*models.Invoice, error) {
	if next == nil {
		next = nextInvoiceNumber
	}
	subtotal := b.PriceCents
	var scPercent float64
	sc := PercentOf(subtotal, scPercent)
	tax := TaxCents(pkg.VAT, subtotal+sc)
	items, _ := json.Marshal([][]interface{}{{pkg.Name, 1, "package", FormatCents(subtotal), FormatCents(subtotal)}})

	for attempt := 1; attempt <= invoiceNumberAttempts; attempt++ {
		var inv *models.Invoice
		err := s.db.Transaction(func(tx *gorm.DB) error {
			invRepo := s.invoices.WithTx(tx)
			number, err := next(invRepo)
			if err != nil {
				return err
			}
			inv = &models.Invoice{
				InvoiceID:       number,
				BookingID:       b.ID,
				Status:          domain.InvoicePending,
				Items:           string(items),
				SubtotalCents:   subtotal,
				Tax:             pkg.VAT,
				TaxAmountCents:  tax,
				AdminPercentage: scPercent,
				AdminFeeCents:   sc,
				TotalCents:      subtotal + tax + sc,
			}
			if err := invRepo.Create(inv); err != nil {
				return err
			}
			b.Status = domain.BookingInvoiced
			b.Invoiced = true
			b.InvoiceID = number
			if err := s.bookings.WithTx(tx).Update(b); err != nil {
				return err
			}
			return s.packages.WithTx(tx).IncrementApplications(pkg.ID)
		})
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, err
		}
		if existing, err := s.invoices.GetByBooking(b.ID); err == nil {
			// another request invoiced this booking first
			b.Invoiced = true
			b.InvoiceID = existing.InvoiceID
			return existing, nil
		}
		log.WithFields(log.Fields{"booking_id": b.BookingID, "attempt": attempt}).Warn("invoice number collision")
	}
	return nil, ErrInvoiceNumber
}

// PayInvoice records the payment and marks invoice and booking paid.
func (s *InvoiceService) PayInvoice(inv *models.Invoice) (*models.Payment, error) {
	if inv.Paid {
		return nil, ErrInvoicePaid
	}
	var p *models.Payment
	err := s.db.Transaction(func(tx *gorm.DB) error {
		invRepo := s.invoices.WithTx(tx)
		locked, err := invRepo.LockByID(inv.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvoiceNotFound
			}
			return err
		}
		if locked.Paid {
			return ErrInvoicePaid
		}
		txn := "TXN" + randomHex(16)
		p = &models.Payment{
			InvoiceID:     inv.ID,
			PaymentID:     "PMT" + randomHex(6),
			TransactionID: txn,
			Status:        domain.InvoicePaid,
			AmountCents:   inv.SubtotalCents,
			AdminFeeCents: inv.AdminFeeCents,
			VATCents:      inv.TaxAmountCents,
			TotalCents:    inv.TotalCents,
			Paid:          true,
		}
		if err := invRepo.CreatePayment(p); err != nil {
			return err
		}
		inv.Status = domain.InvoicePaid
		inv.Paid = true
		inv.TransactionID = txn
		if err := invRepo.Update(inv); err != nil {
			return err
		}
		b, err := s.bookings.WithTx(tx).GetByID(inv.BookingID)
		if err != nil {
			return err
		}
		b.Status = domain.BookingPaid
		b.PaymentStatus = domain.BookingPaid
		return s.bookings.WithTx(tx).Update(b)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Prepare runs the full post-payment pipeline for a booking: invoice, payment record,
// PDF, email and notifications. Only invoice and payment failures are returned; the
// rest is logged.
func (s *InvoiceService) Prepare(ctx context.Context, b *models.Booking) (*models.Invoice, error) {
	pkg, err := s.packages.GetByPackageID(b.Package)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	inv, err := s.invoiceFor(b, pkg)
	if err != nil {
		return nil, err
	}
	if _, err := s.PayInvoice(inv); err != nil {
		// a paid invoice means another confirmation already ran the pipeline
		if errors.Is(err, ErrInvoicePaid) {
			return nil, ErrBookingCompleted
		}
		return nil, err
	}
	b.Status = domain.BookingPaid
	b.PaymentStatus = domain.BookingPaid
	if err := s.packages.IncrementSubmissions(pkg.ID); err != nil {
		log.WithError(err).WithField("package", pkg.PackageID).Warn("count submission")
	}

	logger := log.WithFields(log.Fields{"booking_id": b.BookingID, "invoice_id": inv.InvoiceID})
	pdfPath, err := s.publish(ctx, inv.InvoiceID, b.BookingID)
	if err != nil {
		logger.WithError(err).Error("render invoice pdf")
	}
	if s.mail != nil {
		name := strings.TrimSpace(b.Lastname + " " + b.Firstname)
		if err := s.mail.SendInvoice(ctx, b.Email, name, inv.InvoiceID, pdfPath); err != nil {
			logger.WithError(err).Error("send invoice email")
		}
	}
	if s.notify != nil {
		s.notify.NotifyPaymentReceived(b, b.PriceCents)
		s.notify.NotifyBookingConfirmed(b)
	}
	return inv, nil
}

// invoiceFor returns the booking's existing invoice, or creates one.
func (s *InvoiceService) invoiceFor(b *models.Booking, pkg *models.Package) (*models.Invoice, error) {
	if b.Invoiced {
		inv, err := s.invoices.GetByBooking(b.ID)
		if err == nil {
			return inv, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return s.CreatePackageInvoice(b, pkg)
}

// publish renders the print page to PDF and stores it under the invoices directory.
func (s *InvoiceService) publish(ctx context.Context, invoiceID, bookingID string) (string, error) {
	if s.pdf == nil {
		return "", pdfshift.ErrNotConfigured
	}
	path, err := s.PDFPath(bookingID)
	if err != nil {
		return "", err
	}
	data, err := s.pdf.RenderURL(ctx, fmt.Sprintf("%s/invoice/%s/print", s.cfg.Server.SiteURL, invoiceID))
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func (s *InvoiceService) invoiceDir() string {
	return filepath.Join(s.cfg.Server.MediaRoot, "customer", "invoices")
}

// PDFPath is where a booking's invoice PDF lives. Names that would escape the invoices
// directory are rejected.
func (s *InvoiceService) PDFPath(bookingID string) (string, error) {
	name := strings.ReplaceAll(filepath.Base(bookingID), " ", "_")
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", ErrInvalidInvoicePath
	}
	dir, err := filepath.Abs(s.invoiceDir())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, name+".pdf")
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrInvalidInvoicePath
	}
	return path, nil
}

func (s *InvoiceService) Get(invoiceID string) (*models.Invoice, error) {
	inv, err := s.invoices.GetByInvoiceID(invoiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return inv, nil
}

// Owned loads an invoice with its booking. Only the booking's customer or staff may see it.
func (s *InvoiceService) Owned(invoiceID string, userID uint, staff bool) (*models.Invoice, error) {
	inv, err := s.Get(invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Booking == nil {
		return nil, ErrBookingNotFound
	}
	if !staff && inv.Booking.UserID != userID {
		return nil, ErrForbidden
	}
	return inv, nil
}

// Pay settles an unpaid invoice on behalf of its owner.
func (s *InvoiceService) Pay(invoiceID string, userID uint, staff bool) (*models.Payment, error) {
	inv, err := s.Owned(invoiceID, userID, staff)
	if err != nil {
		return nil, err
	}
	return s.PayInvoice(inv)
}

// EnsurePDF returns the path of the invoice PDF, rendering it again when the file is
// missing.
func (s *InvoiceService) EnsurePDF(ctx context.Context, inv *models.Invoice) (string, error) {
	path, err := s.PDFPath(inv.Booking.BookingID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	path, err = s.publish(ctx, inv.InvoiceID, inv.Booking.BookingID)
	if err != nil {
		log.WithError(err).WithField("invoice_id", inv.InvoiceID).Error("regenerate invoice pdf")
		return "", ErrPDFUnavailable
	}
	return path, nil
}

// InvoiceItem is one decoded row of Invoice.Items.
type InvoiceItem struct {
	Name     string
	Quantity int
	Kind     string
	Unit     string
	Total    string
}

func ParseInvoiceItems(raw string) []InvoiceItem {
	var rows [][]interface{}
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		return nil
	}
	items := make([]InvoiceItem, 0, len(rows))
	for _, r := range rows {
		if len(r) < 5 {
			continue
		}
		it := InvoiceItem{
			Name:  fmt.Sprint(r[0]),
			Kind:  fmt.Sprint(r[2]),
			Unit:  fmt.Sprint(r[3]),
			Total: fmt.Sprint(r[4]),
		}
		if q, ok := r[1].(float64); ok {
			it.Quantity = int(q)
		}
		items = append(items, it)
	}
	return items
}

func randomHex(n int) string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:n])
}
