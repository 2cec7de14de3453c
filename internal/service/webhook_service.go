package service

import (
	"errors"
	"strconv"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/payment"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// WebhookService applies Stripe events to wallets and bookings. Each handler is safe to
// run twice; the processed-event table keeps replays from reaching them at all.
type WebhookService struct {
	events   *repository.StripeEventRepository
	txns     *repository.TransactionRepository
	wallets  *repository.WalletRepository
	ledger   *WalletService
	bookings *repository.BookingRepository
	booking  *BookingService
	gateway  payment.Gateway
}

func NewWebhookService(events *repository.StripeEventRepository, txns *repository.TransactionRepository, wallets *repository.WalletRepository,
	ledger *WalletService, bookings *repository.BookingRepository, booking *BookingService, gateway payment.Gateway) *WebhookService {
	return &WebhookService{events: events, txns: txns, wallets: wallets, ledger: ledger, bookings: bookings, booking: booking, gateway: gateway}
}

// Handle verifies and applies one webhook delivery. duplicate is true when the event ID
// was seen before and nothing was done.
func (s *WebhookService) Handle(body []byte, signature string) (duplicate bool, err error) {
	ev, err := s.gateway.ParseWebhook(body, signature)
	if err != nil {
		return false, err
	}
	logger := log.WithFields(log.Fields{"event_id": ev.ID, "event_type": ev.Type})
	if s.events.IsProcessed(ev.ID) {
		logger.Info("duplicate stripe event ignored")
		return true, nil
	}
	switch ev.Type {
	case payment.EventIntentSucceeded:
		err = s.intentSucceeded(ev.Intent)
	case payment.EventIntentFailed:
		err = s.intentFailed(ev.Intent)
	case payment.EventSessionCompleted:
		err = s.sessionCompleted(ev.Session)
	case payment.EventSessionExpired:
		err = s.sessionExpired(ev.Session)
	default:
		logger.Info("unhandled stripe event")
	}
	if err != nil {
		logger.WithError(err).Error("stripe event failed")
		return false, err
	}
	if _, err := s.events.MarkProcessed(ev.ID, ev.Type); err != nil {
		logger.WithError(err).Warn("record stripe event")
	}
	return false, nil
}

func (s *WebhookService) intentSucceeded(pi *payment.PaymentIntent) error {
	if pi == nil {
		return nil
	}
	t, err := s.txns.GetByProviderRef(pi.ID)
	if err == nil {
		credited, err := s.ledger.CompletePending(t.ID)
		if credited {
			log.WithFields(log.Fields{"transaction_id": t.ID, "amount_cents": t.AmountCents}).Info("deposit completed")
		}
		return err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if pi.Metadata["type"] != domain.CheckoutWalletDeposit || pi.CustomerID == "" {
		return nil
	}
	w, err := s.wallets.GetByStripeCustomer(pi.CustomerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("customer", pi.CustomerID).Warn("wallet not found for stripe customer")
			return nil
		}
		return err
	}
	_, err = s.ledger.RecordExternalDeposit(w.ID, pi.AmountCents, pi.ID, "Deposit via Stripe")
	return err
}

func (s *WebhookService) intentFailed(pi *payment.PaymentIntent) error {
	if pi == nil {
		return nil
	}
	t, err := s.txns.GetByProviderRef(pi.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("intent", pi.ID).Warn("transaction not found for failed payment")
			return nil
		}
		return err
	}
	return s.ledger.FailPending(t.ID)
}

func (s *WebhookService) sessionCompleted(sess *payment.CheckoutSession) error {
	if sess == nil {
		return nil
	}
	switch sess.Metadata["type"] {
	case domain.CheckoutBooking, domain.CheckoutSplitBooking:
		return s.markBookingPaid(sess)
	}

	if t, err := s.txns.GetByProviderRef(sess.ID); err == nil {
		_, err := s.ledger.CompletePending(t.ID)
		return err
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if raw := sess.Metadata["transaction_id"]; raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			_, err := s.ledger.CompletePending(uint(id))
			if err == nil || !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
	}
	if raw := sess.Metadata["wallet_id"]; raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil
		}
		if _, err := s.wallets.GetByID(uint(id)); err != nil {
			log.WithFields(log.Fields{"wallet_id": raw, "session": sess.ID}).Warn("wallet not found for checkout session")
			return nil
		}
		_, err = s.ledger.RecordExternalDeposit(uint(id), sess.AmountTotal, sess.ID, "Deposit via Stripe Checkout")
		return err
	}
	return nil
}

func (s *WebhookService) markBookingPaid(sess *payment.CheckoutSession) error {
	b, err := s.bookings.GetByCheckoutSession(sess.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) && sess.Metadata["booking_id"] != "" {
		b, err = s.bookings.GetByBookingID(sess.Metadata["booking_id"])
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.WithField("session", sess.ID).Warn("booking not found for checkout session")
			return nil
		}
		return err
	}
	return s.booking.MarkCardPaid(b.BookingID)
}

func (s *WebhookService) sessionExpired(sess *payment.CheckoutSession) error {
	if sess == nil {
		return nil
	}
	switch sess.Metadata["type"] {
	case domain.CheckoutSplitBooking:
		bookingID := sess.Metadata["booking_id"]
		if bookingID == "" {
			return nil
		}
		err := s.booking.ReleaseExpiredSplit(bookingID)
		if errors.Is(err, ErrBookingNotFound) {
			log.WithFields(log.Fields{"booking_id": bookingID, "session": sess.ID}).Warn("booking not found for expired split checkout")
			return nil
		}
		return err
	case domain.CheckoutWalletDeposit:
		t, err := s.txns.GetByProviderRef(sess.ID)
		if err != nil {
			return nil
		}
		return s.ledger.FailPending(t.ID)
	}
	return nil
}
