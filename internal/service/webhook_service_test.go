package service

import (
	"encoding/json"
	"testing"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/pkg/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventBody(t *testing.T, ev payment.Event) []byte {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return b
}

// settleCard marks a booking checkout paid at the gateway and delivers the webhook.
func settleCard(t *testing.T, f *fixture, sessionID, bookingID, kind string) {
	t.Helper()
	f.gateway.MarkPaid(sessionID)
	_, err := f.webhooks.Handle(eventBody(t, payment.Event{
		ID:   "evt_" + sessionID,
		Type: payment.EventSessionCompleted,
		Session: &payment.CheckoutSession{
			ID:       sessionID,
			Metadata: map[string]string{"type": kind, "booking_id": bookingID},
		},
	}), "")
	require.NoError(t, err)
}

func TestWebhookCreditsDepositOnce(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 0)
	res, err := f.wallets.StartDeposit(t.Context(), w, DepositRequest{AmountCents: 4000})
	require.NoError(t, err)

	body := eventBody(t, payment.Event{
		ID:   "evt_1",
		Type: payment.EventSessionCompleted,
		Session: &payment.CheckoutSession{
			ID:       res.SessionID,
			Metadata: map[string]string{"type": domain.CheckoutWalletDeposit},
		},
	})
	dup, err := f.webhooks.Handle(body, "sig")
	require.NoError(t, err)
	assert.False(t, dup)
	assert.Equal(t, int64(4000), f.balance(t, w.ID))

	dup, err = f.webhooks.Handle(body, "sig")
	require.NoError(t, err)
	assert.True(t, dup)
	assert.Equal(t, int64(4000), f.balance(t, w.ID))
}

func TestWebhookSameSessionDifferentEvent(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 0)
	res, err := f.wallets.StartDeposit(t.Context(), w, DepositRequest{AmountCents: 4000})
	require.NoError(t, err)

	for _, id := range []string{"evt_a", "evt_b"} {
		_, err := f.webhooks.Handle(eventBody(t, payment.Event{
			ID:      id,
			Type:    payment.EventSessionCompleted,
			Session: &payment.CheckoutSession{ID: res.SessionID},
		}), "")
		require.NoError(t, err)
	}
	assert.Equal(t, int64(4000), f.balance(t, w.ID))
}

func TestWebhookRejectsBadPayload(t *testing.T) {
	f := newFixture(t)
	_, err := f.webhooks.Handle([]byte("garbage"), "sig")
	assert.ErrorIs(t, err, payment.ErrInvalidSignature)
}

func TestWebhookIntentFailedMarksPending(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 0)
	f.gateway.IntentStatus = payment.IntentRequiresPaymentMethod
	res, err := f.wallets.StartDeposit(t.Context(), w, DepositRequest{AmountCents: 1000, PaymentMethodID: "pm_x"})
	require.NoError(t, err)

	_, err = f.webhooks.Handle(eventBody(t, payment.Event{
		ID:     "evt_fail",
		Type:   payment.EventIntentFailed,
		Intent: &payment.PaymentIntent{ID: res.IntentID},
	}), "")
	require.NoError(t, err)

	txn, err := f.txns.GetByID(res.Transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TxnFailed, txn.Status)
	assert.Equal(t, int64(0), f.balance(t, w.ID))
}

func TestWebhookExternalIntentDeposit(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 0)

	body := eventBody(t, payment.Event{
		ID:   "evt_pi",
		Type: payment.EventIntentSucceeded,
		Intent: &payment.PaymentIntent{
			ID:          "pi_external",
			AmountCents: 2200,
			CustomerID:  w.StripeCustomerID,
			Metadata:    map[string]string{"type": domain.CheckoutWalletDeposit},
		},
	})
	_, err := f.webhooks.Handle(body, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2200), f.balance(t, w.ID))
}

func TestWebhookExpiredSplitReleasesWallet(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 30000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)
	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.NoError(t, err)

	_, err = f.webhooks.Handle(eventBody(t, payment.Event{
		ID:   "evt_exp",
		Type: payment.EventSessionExpired,
		Session: &payment.CheckoutSession{
			ID:       res.SessionID,
			Metadata: map[string]string{"type": domain.CheckoutSplitBooking, "booking_id": b.BookingID},
		},
	}), "")
	require.NoError(t, err)
	assert.Equal(t, int64(30000), f.balance(t, w.ID))

	got, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Empty(t, got.CheckoutSessionID)
}

func TestWebhookBookingCheckoutMarksPaid(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)
	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodStripe)
	require.NoError(t, err)

	_, err = f.webhooks.Handle(eventBody(t, payment.Event{
		ID:   "evt_book",
		Type: payment.EventSessionCompleted,
		Session: &payment.CheckoutSession{
			ID:       res.SessionID,
			Metadata: map[string]string{"type": domain.CheckoutBooking, "booking_id": b.BookingID},
		},
	}), "")
	require.NoError(t, err)

	got, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, got.PaymentStatus)
}

func TestCardPaidBookingCannotBePaidAgain(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 200000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)
	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodStripe)
	require.NoError(t, err)
	settleCard(t, f, res.SessionID, b.BookingID, domain.CheckoutBooking)

	for _, mode := range []string{domain.PaymentMethodWallet, domain.PaymentMethodSplit, domain.PaymentMethodStripe} {
		_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, mode)
		assert.ErrorIs(t, err, ErrBookingPaid, mode)
	}
	assert.Equal(t, int64(200000), f.balance(t, w.ID))

	done, err := f.bookings.Complete(t.Context(), b.BookingID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, done.Status)
	assert.True(t, done.Invoiced)
}

func TestCancelAfterCardPaymentRefundsWhatWasPaid(t *testing.T) {
	tests := []struct {
		name       string
		mode       string
		kind       string
		seed       int64
		daysAhead  int
		wantRefund int64
	}{
		{"card ten days out", domain.PaymentMethodStripe, domain.CheckoutBooking, 0, 10, 100000},
		{"split ten days out", domain.PaymentMethodSplit, domain.CheckoutSplitBooking, 30000, 10, 100000},
		{"split five days out", domain.PaymentMethodSplit, domain.CheckoutSplitBooking, 30000, 5, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.bookings.now = func() time.Time { return fixedNow }
			u := f.user(t, "ada@example.com")
			w := f.walletWith(t, u, tt.seed)
			f.fixedPackage(t, "PKG-1", 100000)
			b := f.booking(t, u, "PKG-1", fixedNow.AddDate(0, 0, tt.daysAhead))
			res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, tt.mode)
			require.NoError(t, err)
			require.Equal(t, int64(0), f.balance(t, w.ID))
			settleCard(t, f, res.SessionID, b.BookingID, tt.kind)

			got, err := f.bookings.Cancel(b.BookingID, u.ID, "change of plans")
			require.NoError(t, err)
			assert.Equal(t, domain.BookingCancelled, got.Status)
			assert.Equal(t, tt.wantRefund, got.RefundCents)
			assert.Equal(t, domain.RefundProcessed, got.RefundStatus)
			assert.Equal(t, tt.wantRefund, f.balance(t, w.ID))
		})
	}
}
