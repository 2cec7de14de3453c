package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"leisuretimez/config"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/payment"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingPaid          = errors.New("Booking is already paid")
	ErrBookingCompleted     = errors.New("Booking already completed")
	ErrBookingNotPending    = errors.New("booking is not pending")
	ErrBookingCancelled     = errors.New("Booking is already cancelled")
	ErrNotCancellable       = errors.New("booking cannot be cancelled in its current status")
	ErrInvalidDates         = errors.New("dateto cannot be before datefrom")
	ErrInvalidGuests        = errors.New("adult must be at least 1 and children or guests cannot be negative")
	ErrPaymentMode          = errors.New("mode must be wallet, stripe or split")
	ErrPaymentInProgress    = errors.New("a split payment is already in progress for this booking")
	ErrWalletEmpty          = errors.New("Wallet has no balance. Use stripe mode instead.")
	ErrNoCheckoutSession    = errors.New("No checkout session found")
	ErrInvalidSession       = errors.New("Invalid checkout session")
	ErrPaymentIncomplete    = errors.New("Payment not completed")
	ErrWalletPaymentMissing = errors.New("Wallet transaction not found")
	ErrConfirmParams        = errors.New("identifier and mode are required.")
	ErrPromoNotFound        = errors.New("Invalid promo code")
	ErrPromoInvalid         = errors.New("Promo code is expired or no longer valid")
	ErrPromoMinimum         = errors.New("Minimum order amount for this promo code not met")
	ErrPromoApplied         = errors.New("A promo code is already applied to this booking")
	ErrNoPromo              = errors.New("No promo code applied to this booking")
)

// BookingInput is the customer-supplied part of a booking.
type BookingInput struct {
	CruiseType    string
	Purpose       string
	DateFrom      time.Time
	DateTo        time.Time
	Continent     string
	TravelCountry string
	TravelState   string
	Destinations  string
	Guests        int
	Duration      int
	Adult         int
	Children      int
	Service       string
	Comment       string
	Lastname      string
	Firstname     string
	Profession    string
	Email         string
	Phone         string
	Gender        string
	Country       string
	Address       string
	City          string
	State         string
}

// ModifyInput carries the fields a pending booking may change; nil means unchanged.
type ModifyInput struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Adult    *int
	Children *int
	Guests   *int
}

type PayResult struct {
	Mode              string
	BookingID         string
	CheckoutURL       string
	SessionID         string
	WalletAmountCents int64
	StripeAmountCents int64
	Message           string
}

type PromoResult struct {
	Booking            *models.Booking
	Code               string
	DiscountCents      int64
	OriginalPriceCents int64
}

type BookingService struct {
	cfg      *config.Config
	db       *gorm.DB
	bookings *repository.BookingRepository
	packages *repository.PackageRepository
	promos   *repository.PromoRepository
	txns     *repository.TransactionRepository
	wallets  *WalletService
	invoices *InvoiceService
	notify   *NotificationService
	gateway  payment.Gateway
	now      func() time.Time
}

func NewBookingService(cfg *config.Config, db *gorm.DB, bookings *repository.BookingRepository, packages *repository.PackageRepository,
	promos *repository.PromoRepository, txns *repository.TransactionRepository, wallets *WalletService, invoices *InvoiceService,
	notify *NotificationService, gateway payment.Gateway) *BookingService {
	return &BookingService{
		cfg:      cfg,
		db:       db,
		bookings: bookings,
		packages: packages,
		promos:   promos,
		txns:     txns,
		wallets:  wallets,
		invoices: invoices,
		notify:   notify,
		gateway:  gateway,
		now:      time.Now,
	}
}

func newBookingID() string {
	return "BKN" + randomHex(6)
}

// Create books package pid for the user at the package price for the party size.
func (s *BookingService) Create(userID uint, pid string, in BookingInput) (*models.Booking, error) {
	pkg, err := s.packages.GetByPackageID(pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if in.Adult < 1 || in.Children < 0 || in.Guests < 0 {
		return nil, ErrInvalidGuests
	}
	if !in.DateFrom.IsZero() && !in.DateTo.IsZero() && in.DateTo.Before(in.DateFrom) {
		return nil, ErrInvalidDates
	}
	b := &models.Booking{
		BookingID:     newBookingID(),
		Package:       pkg.PackageID,
		UserID:        userID,
		CruiseType:    in.CruiseType,
		Purpose:       in.Purpose,
		DateFrom:      in.DateFrom,
		DateTo:        in.DateTo,
		Continent:     in.Continent,
		TravelCountry: in.TravelCountry,
		TravelState:   in.TravelState,
		Destinations:  in.Destinations,
		Guests:        in.Guests,
		Duration:      in.Duration,
		Adult:         in.Adult,
		Children:      in.Children,
		Service:       in.Service,
		Comment:       in.Comment,
		PriceCents:    Price(pkg, in.Adult, in.Children),
		Lastname:      in.Lastname,
		Firstname:     in.Firstname,
		Profession:    in.Profession,
		Email:         in.Email,
		Phone:         in.Phone,
		Gender:        in.Gender,
		Country:       in.Country,
		Address:       in.Address,
		City:          in.City,
		State:         in.State,
		Status:        domain.BookingPending,
	}
	if err := s.bookings.Create(b); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"booking_id": b.BookingID, "package": pkg.PackageID, "user_id": userID}).Info("booking created")
	return b, nil
}

// List returns the user's bookings, or every booking for staff.
func (s *BookingService) List(userID uint, staff bool, status, search string, page, limit int) ([]models.Booking, int64, error) {
	if staff {
		return s.bookings.List(status, search, page, limit)
	}
	list, err := s.bookings.ListByUser(userID)
	return list, int64(len(list)), err
}

// Get returns the booking when the caller owns it or is staff.
func (s *BookingService) Get(bookingID string, userID uint, staff bool) (*models.Booking, error) {
	b, err := s.bookings.GetByBookingID(bookingID)
	if err != nil {
		return nil, bookingErr(err)
	}
	if !staff && b.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

func (s *BookingService) owned(repo *repository.BookingRepository, bookingID string, userID uint, lock bool) (*models.Booking, error) {
	var (
		b   *models.Booking
		err error
	)
	if lock {
		b, err = repo.LockByBookingID(bookingID)
	} else {
		b, err = repo.GetByBookingID(bookingID)
	}
	if err != nil {
		return nil, bookingErr(err)
	}
	if b.UserID != userID {
		return nil, ErrBookingNotFound
	}
	return b, nil
}

// Cancel cancels a booking and credits any refund due to the wallet in the same
// transaction. Refunds follow the day tiers against what was actually paid.
func (s *BookingService) Cancel(bookingID string, userID uint, reason string) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		var err error
		b, err = s.owned(repo, bookingID, userID, true)
		if err != nil {
			return err
		}
		switch b.Status {
		case domain.BookingCancelled:
			return ErrBookingCancelled
		case domain.BookingPending, domain.BookingPaid, domain.BookingInvoiced:
		default:
			return fmt.Errorf("%w: %s", ErrNotCancellable, b.Status)
		}

		// a card payment can land before the booking is finalized
		paidUp := b.Status == domain.BookingPaid || b.Status == domain.BookingInvoiced || b.PaymentStatus == domain.BookingPaid
		if !paidUp && b.PaymentMethod == domain.PaymentMethodSplit {
			// wallet portion of an unfinished split checkout goes back in full
			if id, err := strconv.ParseUint(b.WalletTransactionID, 10, 64); err == nil {
				if _, err := s.wallets.ReverseWithdrawalTx(tx, uint(id), "Refund: booking "+b.BookingID+" cancelled before payment"); err != nil {
					return err
				}
			}
		}

		var refund int64
		paid := b.TotalPaidCents()
		if paidUp && paid > 0 {
			refund = RefundCents(paid, DaysUntil(b.DateFrom, s.now()))
		}
		now := s.now()
		b.Status = domain.BookingCancelled
		b.CancelledAt = &now
		b.CancellationReason = reason
		b.RefundCents = refund
		b.RefundStatus = domain.RefundDenied
		if refund > 0 {
			b.RefundStatus = domain.RefundPending
			w, err := s.wallets.wallets.WithTx(tx).GetByUserID(userID)
			switch {
			case err == nil:
				if _, err := s.wallets.DepositTx(tx, w.ID, refund, b.BookingID, "Refund for cancelled booking "+b.BookingID); err != nil {
					return err
				}
				b.RefundStatus = domain.RefundProcessed
			case errors.Is(err, gorm.ErrRecordNotFound):
				log.WithField("booking_id", b.BookingID).Warn("no wallet for refund")
			default:
				return err
			}
		}
		return repo.Update(b)
	})
	if err != nil {
		return nil, err
	}
	if s.notify != nil {
		if b.RefundStatus == domain.RefundProcessed {
			s.notify.NotifyRefundProcessed(b)
		}
		s.notify.NotifyBookingCancelled(b)
	}
	log.WithFields(log.Fields{"booking_id": b.BookingID, "refund_cents": b.RefundCents, "refund_status": b.RefundStatus}).Info("booking cancelled")
	return b, nil
}

// Modify changes dates or party size of a pending booking and reprices it.
func (s *BookingService) Modify(bookingID string, userID uint, in ModifyInput) (*models.Booking, error) {
	b, err := s.owned(s.bookings, bookingID, userID, false)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending || b.PaymentStatus == domain.BookingPaid {
		return nil, ErrBookingNotPending
	}
	if in.DateFrom != nil {
		b.DateFrom = *in.DateFrom
	}
	if in.DateTo != nil {
		b.DateTo = *in.DateTo
	}
	if in.Adult != nil {
		b.Adult = *in.Adult
	}
	if in.Children != nil {
		b.Children = *in.Children
	}
	if in.Guests != nil {
		b.Guests = *in.Guests
	}
	if b.Adult < 1 || b.Children < 0 || b.Guests < 0 {
		return nil, ErrInvalidGuests
	}
	if !b.DateFrom.IsZero() && !b.DateTo.IsZero() {
		if b.DateTo.Before(b.DateFrom) {
			return nil, ErrInvalidDates
		}
		b.Duration = DaysUntil(b.DateTo, b.DateFrom)
	}
	if in.Adult != nil || in.Children != nil {
		pkg, err := s.packages.GetByPackageID(b.Package)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrPackageNotFound
			}
			return nil, err
		}
		if price := Price(pkg, b.Adult, b.Children); price > 0 {
			b.PriceCents = price - b.DiscountCents
			if b.PriceCents < 0 {
				b.PriceCents = 0
			}
		}
	}
	if err := s.bookings.Update(b); err != nil {
		return nil, err
	}
	return b, nil
}

// PayBooking starts payment of a pending booking. Wallet mode settles immediately;
// stripe and split return a hosted checkout for the card portion.
func (s *BookingService) PayBooking(ctx context.Context, bookingID string, u *models.User, mode string) (*PayResult, error) {
	switch mode {
	case domain.PaymentMethodWallet, domain.PaymentMethodSplit, domain.PaymentMethodStripe:
	default:
		return nil, ErrPaymentMode
	}
	b, err := s.owned(s.bookings, bookingID, u.ID, false)
	if err != nil {
		return nil, err
	}
	if err := payable(b); err != nil {
		return nil, err
	}
	pkg, err := s.packages.GetByPackageID(b.Package)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPackageNotFound
		}
		return nil, err
	}
	if b.PriceCents <= 0 {
		return nil, ErrInvalidAmount
	}

	switch mode {
	case domain.PaymentMethodWallet:
		w, err := s.wallets.GetByUser(u.ID)
		if err != nil {
			return nil, err
		}
		err = s.db.Transaction(func(tx *gorm.DB) error {
			locked, err := s.owned(s.bookings.WithTx(tx), bookingID, u.ID, true)
			if err != nil {
				return err
			}
			if err := payable(locked); err != nil {
				return err
			}
			b = locked
			return s.settleFromWalletTx(tx, b, w.ID)
		})
		if err != nil {
			return nil, err
		}
		return &PayResult{Mode: domain.PaymentMethodWallet, BookingID: b.BookingID, WalletAmountCents: b.PriceCents}, nil
	case domain.PaymentMethodSplit:
		return s.paySplit(ctx, b, pkg, u)
	}
	return s.payStripe(ctx, b, pkg, u)
}

func payable(b *models.Booking) error {
	if b.Status == domain.BookingPaid || b.PaymentStatus == domain.BookingPaid {
		return ErrBookingPaid
	}
	if b.Status != domain.BookingPending {
		return fmt.Errorf("%w: status is %s", ErrBookingNotPending, b.Status)
	}
	if b.PaymentMethod == domain.PaymentMethodSplit && b.WalletAmountCents > 0 {
		return ErrPaymentInProgress
	}
	return nil
}

// settleFromWalletTx pays the whole price from the wallet and marks the booking paid.
func (s *BookingService) settleFromWalletTx(tx *gorm.DB, b *models.Booking, walletID uint) error {
	t, err := s.wallets.WithdrawTx(tx, walletID, b.PriceCents, b.BookingID, "Full wallet payment for booking "+b.BookingID)
	if err != nil {
		return err
	}
	b.Status = domain.BookingPaid
	b.PaymentStatus = domain.BookingPaid
	b.PaymentMethod = domain.PaymentMethodWallet
	b.WalletAmountCents = b.PriceCents
	b.StripeAmountCents = 0
	b.WalletTransactionID = strconv.FormatUint(uint64(t.ID), 10)
	b.CheckoutSessionID = domain.WalletCheckoutSession
	return s.bookings.WithTx(tx).Update(b)
}

func (s *BookingService) paySplit(ctx context.Context, b *models.Booking, pkg *models.Package, u *models.User) (*PayResult, error) {
	w, err := s.wallets.GetByUser(u.ID)
	if err != nil {
		return nil, err
	}
	var walletPart, cardPart int64
	covered := false
	err = s.db.Transaction(func(tx *gorm.DB) error {
		locked, err := s.owned(s.bookings.WithTx(tx), b.BookingID, u.ID, true)
		if err != nil {
			return err
		}
		if err := payable(locked); err != nil {
			return err
		}
		*b = *locked
		lw, err := s.wallets.wallets.WithTx(tx).LockByID(w.ID)
		if err != nil {
			return walletErr(err)
		}
		if lw.BalanceCents <= 0 {
			return ErrWalletEmpty
		}
		walletPart = min(lw.BalanceCents, b.PriceCents)
		cardPart = b.PriceCents - walletPart
		if cardPart <= 0 {
			covered = true
			return s.settleFromWalletTx(tx, b, w.ID)
		}
		desc := fmt.Sprintf("Split payment (%s from wallet, %s via Stripe) for booking %s",
			FormatCents(walletPart), FormatCents(cardPart), b.BookingID)
		t, err := s.wallets.WithdrawTx(tx, w.ID, walletPart, b.BookingID, desc)
		if err != nil {
			return err
		}
		b.PaymentMethod = domain.PaymentMethodSplit
		b.WalletAmountCents = walletPart
		b.StripeAmountCents = cardPart
		b.WalletTransactionID = strconv.FormatUint(uint64(t.ID), 10)
		return s.bookings.WithTx(tx).Update(b)
	})
	if err != nil {
		return nil, err
	}
	if covered {
		return &PayResult{
			Mode:              domain.PaymentMethodWallet,
			BookingID:         b.BookingID,
			WalletAmountCents: b.PriceCents,
			Message:           "Wallet balance covered the full amount.",
		}, nil
	}

	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Currency: s.cfg.Stripe.Currency,
		Items: []payment.LineItem{
			{Name: fmt.Sprintf("%s remaining balance (wallet covered $%s)", pkg.Name, FormatCents(walletPart)), AmountCents: cardPart, Quantity: 1},
			taxLine(pkg, b.PriceCents),
		},
		SuccessURL:    s.cfg.Server.SiteURL + "/payment/success",
		CancelURL:     s.cfg.Server.SiteURL + "/payment/cancel",
		CustomerEmail: u.Email,
		Metadata: map[string]string{
			"booking_id":    b.BookingID,
			"type":          domain.CheckoutSplitBooking,
			"wallet_amount": FormatCents(walletPart),
			"stripe_amount": FormatCents(cardPart),
		},
	})
	if err != nil {
		log.WithError(err).WithField("booking_id", b.BookingID).Error("split checkout failed, returning wallet portion")
		if rerr := s.releaseSplit(b, "Refund: split checkout could not be created for booking "+b.BookingID); rerr != nil {
			log.WithError(rerr).WithField("booking_id", b.BookingID).Error("return wallet portion")
		}
		return nil, err
	}
	b.CheckoutSessionID = sess.ID
	if err := s.bookings.Update(b); err != nil {
		return nil, err
	}
	return &PayResult{
		Mode:              domain.PaymentMethodSplit,
		BookingID:         b.BookingID,
		CheckoutURL:       sess.URL,
		SessionID:         sess.ID,
		WalletAmountCents: walletPart,
		StripeAmountCents: cardPart,
	}, nil
}

// releaseSplit returns the wallet portion of an unfinished split payment and puts the
// booking back to an unpaid pending state.
func (s *BookingService) releaseSplit(b *models.Booking, note string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		locked, err := repo.LockByBookingID(b.BookingID)
		if err != nil {
			return bookingErr(err)
		}
		if locked.PaymentStatus == domain.BookingPaid || locked.PaymentMethod != domain.PaymentMethodSplit {
			return nil
		}
		if id, err := strconv.ParseUint(locked.WalletTransactionID, 10, 64); err == nil {
			if _, err := s.wallets.ReverseWithdrawalTx(tx, uint(id), note); err != nil {
				return err
			}
		}
		locked.PaymentMethod = ""
		locked.WalletAmountCents = 0
		locked.StripeAmountCents = 0
		locked.WalletTransactionID = ""
		locked.CheckoutSessionID = ""
		locked.Status = domain.BookingPending
		if err := repo.Update(locked); err != nil {
			return err
		}
		*b = *locked
		return nil
	})
}

// MarkCardPaid records that the card checkout for a booking was paid. Finalizing and
// invoicing still happen on Complete or Confirm.
func (s *BookingService) MarkCardPaid(bookingID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		b, err := repo.LockByBookingID(bookingID)
		if err != nil {
			return bookingErr(err)
		}
		if b.PaymentStatus == domain.BookingPaid {
			return nil
		}
		if b.Status == domain.BookingCancelled {
			log.WithField("booking_id", b.BookingID).Warn("card payment received for cancelled booking")
		}
		b.PaymentStatus = domain.BookingPaid
		return repo.Update(b)
	})
}

// ReleaseExpiredSplit handles an abandoned split checkout.
func (s *BookingService) ReleaseExpiredSplit(bookingID string) error {
	b, err := s.bookings.GetByBookingID(bookingID)
	if err != nil {
		return bookingErr(err)
	}
	if b.PaymentStatus == domain.BookingPaid || b.WalletAmountCents <= 0 {
		return nil
	}
	return s.releaseSplit(b, "Refund: split payment expired for booking "+b.BookingID)
}

func (s *BookingService) payStripe(ctx context.Context, b *models.Booking, pkg *models.Package, u *models.User) (*PayResult, error) {
	sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Currency: s.cfg.Stripe.Currency,
		Items: []payment.LineItem{
			{Name: fmt.Sprintf("%s with %d adult and %d children", pkg.Name, b.Adult, b.Children), AmountCents: b.PriceCents, Quantity: 1},
			taxLine(pkg, b.PriceCents),
		},
		SuccessURL:    s.cfg.Server.SiteURL + "/payment/success",
		CancelURL:     s.cfg.Server.SiteURL + "/payment/cancel",
		CustomerEmail: u.Email,
		Metadata: map[string]string{
			"booking_id": b.BookingID,
			"type":       domain.CheckoutBooking,
		},
	})
	if err != nil {
		return nil, err
	}
	b.CheckoutSessionID = sess.ID
	b.PaymentMethod = domain.PaymentMethodStripe
	b.StripeAmountCents = b.PriceCents
	if err := s.bookings.Update(b); err != nil {
		return nil, err
	}
	return &PayResult{
		Mode:              domain.PaymentMethodStripe,
		BookingID:         b.BookingID,
		CheckoutURL:       sess.URL,
		SessionID:         sess.ID,
		StripeAmountCents: b.PriceCents,
	}, nil
}

func taxLine(pkg *models.Package, priceCents int64) payment.LineItem {
	return payment.LineItem{
		Name:        strconv.FormatFloat(pkg.VAT, 'f', -1, 64) + "% Tax",
		AmountCents: TaxCents(pkg.VAT, priceCents),
		Quantity:    1,
	}
}

// Complete finishes a card checkout after the customer is redirected back.
func (s *BookingService) Complete(ctx context.Context, bookingID string, userID uint) (*models.Booking, error) {
	b, err := s.owned(s.bookings, bookingID, userID, false)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.BookingPaid {
		return nil, ErrBookingCompleted
	}
	if b.CheckoutSessionID == "" {
		return nil, ErrNoCheckoutSession
	}
	if err := s.requirePaidSession(ctx, b.CheckoutSessionID); err != nil {
		return nil, err
	}
	return b, s.finalize(ctx, b)
}

// Confirm verifies a payment by mode and runs the invoice pipeline. identifier is the
// booking ID for wallet and split payments and the checkout session ID for stripe.
func (s *BookingService) Confirm(ctx context.Context, identifier, mode string, userID uint) (*models.Booking, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || mode == "" {
		return nil, ErrConfirmParams
	}
	var (
		b   *models.Booking
		err error
	)
	switch mode {
	case domain.PaymentMethodWallet:
		if b, err = s.owned(s.bookings, identifier, userID, false); err != nil {
			return nil, err
		}
		if b.CheckoutSessionID == "" {
			return nil, ErrBookingNotFound
		}
		if b.PaymentMethod != domain.PaymentMethodWallet || b.WalletAmountCents != b.PriceCents {
			return nil, ErrWalletPaymentMissing
		}
		if err := s.requireWalletPayment(b); err != nil {
			return nil, err
		}
	case domain.PaymentMethodSplit:
		if b, err = s.owned(s.bookings, identifier, userID, false); err != nil {
			return nil, err
		}
		if b.PaymentMethod != domain.PaymentMethodSplit {
			return nil, ErrBookingNotFound
		}
		if err := s.requireWalletPayment(b); err != nil {
			return nil, err
		}
		if b.CheckoutSessionID == "" {
			return nil, ErrNoCheckoutSession
		}
		if err := s.requirePaidSession(ctx, b.CheckoutSessionID); err != nil {
			return nil, err
		}
	case domain.PaymentMethodStripe:
		if err := s.requirePaidSession(ctx, identifier); err != nil {
			return nil, err
		}
		if b, err = s.bookings.GetByCheckoutSession(identifier); err != nil {
			return nil, bookingErr(err)
		}
		if b.UserID != userID {
			return nil, ErrBookingNotFound
		}
	default:
		return nil, ErrPaymentMode
	}
	if b.Invoiced && b.Status == domain.BookingPaid {
		return nil, ErrBookingCompleted
	}
	return b, s.finalize(ctx, b)
}

func (s *BookingService) requireWalletPayment(b *models.Booking) error {
	if _, err := s.txns.GetCompletedByReference(b.BookingID, domain.TxnWithdrawal); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWalletPaymentMissing
		}
		return err
	}
	return nil
}

func (s *BookingService) requirePaidSession(ctx context.Context, sessionID string) error {
	sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
	if err != nil {
		log.WithError(err).WithField("session_id", sessionID).Warn("retrieve checkout session")
		return ErrInvalidSession
	}
	if !sess.Paid() {
		return ErrPaymentIncomplete
	}
	return nil
}

// finalize records the payment under the booking lock and runs the invoice pipeline.
func (s *BookingService) finalize(ctx context.Context, b *models.Booking) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		locked, err := repo.LockByBookingID(b.BookingID)
		if err != nil {
			return bookingErr(err)
		}
		if locked.Invoiced && locked.Status == domain.BookingPaid {
			return ErrBookingCompleted
		}
		locked.PaymentStatus = domain.BookingPaid
		if err := repo.Update(locked); err != nil {
			return err
		}
		*b = *locked
		return nil
	})
	if err != nil {
		return err
	}
	if _, err := s.invoices.Prepare(ctx, b); err != nil {
		return err
	}
	b.Status = domain.BookingPaid
	return s.bookings.Update(b)
}

// ApplyPromo takes a promo discount off a pending booking. The promo row stays locked
// until the use count is written.
func (s *BookingService) ApplyPromo(bookingID string, userID uint, code string) (*PromoResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrPromoNotFound
	}
	var res *PromoResult
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		b, err := s.owned(repo, bookingID, userID, true)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending || b.PaymentStatus == domain.BookingPaid {
			return ErrBookingNotPending
		}
		if b.PromoCodeID != nil {
			return ErrPromoApplied
		}
		promos := s.promos.WithTx(tx)
		p, err := promos.LockByCode(code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPromoNotFound
			}
			return err
		}
		if !PromoValid(p, s.now()) {
			return ErrPromoInvalid
		}
		discount := PromoDiscount(p, b.PriceCents)
		if discount <= 0 {
			return ErrPromoMinimum
		}
		b.PriceCents -= discount
		b.DiscountCents = discount
		b.PromoCodeID = &p.ID
		if err := repo.Update(b); err != nil {
			return err
		}
		if err := promos.SetUses(p.ID, p.CurrentUses+1); err != nil {
			return err
		}
		res = &PromoResult{Booking: b, Code: p.Code, DiscountCents: discount, OriginalPriceCents: b.PriceCents + discount}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// RemovePromo restores the undiscounted price and gives the use back.
func (s *BookingService) RemovePromo(bookingID string, userID uint) (*models.Booking, error) {
	var b *models.Booking
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.bookings.WithTx(tx)
		var err error
		b, err = s.owned(repo, bookingID, userID, true)
		if err != nil {
			return err
		}
		if b.Status != domain.BookingPending || b.PaymentStatus == domain.BookingPaid {
			return ErrBookingNotPending
		}
		if b.PromoCodeID == nil {
			return ErrNoPromo
		}
		promos := s.promos.WithTx(tx)
		p, err := promos.LockByID(*b.PromoCodeID)
		switch {
		case err == nil:
			if err := promos.SetUses(p.ID, max(p.CurrentUses-1, 0)); err != nil {
				return err
			}
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		b.PriceCents += b.DiscountCents
		b.DiscountCents = 0
		b.PromoCodeID = nil
		return repo.Update(b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CheckOffer returns the first offer tier that fits the party.
func (s *BookingService) CheckOffer(pid string, adult, children int) (Offer, error) {
	pkg, err := s.packages.GetByPackageID(pid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Offer{}, ErrPackageNotFound
		}
		return Offer{}, err
	}
	if pkg.DiscountPrice == "" {
		return Offer{}, ErrNoOfferPricing
	}
	o, ok := MatchOffer(ParseOffers(pkg.DiscountPrice), adult, children)
	if !ok {
		return Offer{}, ErrNoMatchingOffer
	}
	return o, nil
}

var (
	ErrNoOfferPricing  = errors.New("No discount pricing available")
	ErrNoMatchingOffer = errors.New("No matching offer found")
)

func bookingErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookingNotFound
	}
	return err
}
