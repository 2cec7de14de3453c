package service

import (
	"os"
	"strings"
	"testing"
	"time"

	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCreateBookingPricesParty(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	require.NoError(t, f.packages.Create(&models.Package{
		PackageID:     "PKG-OFFER",
		Name:          "Safari",
		PriceOption:   domain.PriceOptionOffer,
		DiscountPrice: "1,0,500-2,2,900",
		Status:        domain.StatusActive,
	}))

	b, err := f.bookings.Create(u.ID, "PKG-OFFER", BookingInput{Adult: 2, Children: 1, DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, 3)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b.BookingID, "BKN"))
	assert.Equal(t, int64(90000), b.PriceCents)
	assert.Equal(t, domain.BookingPending, b.Status)

	_, err = f.bookings.Create(u.ID, "PKG-OFFER", BookingInput{Adult: 0})
	assert.ErrorIs(t, err, ErrInvalidGuests)
	_, err = f.bookings.Create(u.ID, "PKG-OFFER", BookingInput{Adult: 1, DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrInvalidDates)
	_, err = f.bookings.Create(u.ID, "NOPE", BookingInput{Adult: 1})
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestBookingsAreScopedToOwner(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, owner, "PKG-1", fixedNow)

	_, err := f.bookings.Get(b.BookingID, other.ID, false)
	assert.ErrorIs(t, err, ErrBookingNotFound)
	got, err := f.bookings.Get(b.BookingID, other.ID, true)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = f.bookings.Cancel(b.BookingID, other.ID, "")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestPayBookingFromWalletThenConfirm(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 200000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow.AddDate(0, 1, 0))

	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodWallet)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), res.WalletAmountCents)
	assert.Equal(t, int64(100000), f.balance(t, w.ID))

	_, err = f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodWallet)
	assert.ErrorIs(t, err, ErrBookingPaid)

	confirmed, err := f.bookings.Confirm(t.Context(), b.BookingID, domain.PaymentMethodWallet, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, confirmed.Status)
	assert.True(t, confirmed.Invoiced)
	assert.Equal(t, "INV-000001", confirmed.InvoiceID)

	inv, err := f.invoices.Get("INV-000001")
	require.NoError(t, err)
	assert.True(t, inv.Paid)
	assert.Equal(t, int64(100000), inv.SubtotalCents)
	assert.Equal(t, int64(7500), inv.TaxAmountCents)
	assert.Equal(t, int64(107500), inv.TotalCents)

	path, err := f.invoices.PDFPath(b.BookingID)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	msg, ok := f.mail.Last()
	require.True(t, ok)
	assert.Equal(t, []string{u.Email}, msg.To)
	assert.Equal(t, []string{path}, msg.Attachments)

	_, err = f.bookings.Confirm(t.Context(), b.BookingID, domain.PaymentMethodWallet, u.ID)
	assert.ErrorIs(t, err, ErrBookingCompleted)
}

func TestConfirmWalletModeRejectsSplitBooking(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.walletWith(t, u, 100)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.NoError(t, err)
	require.Equal(t, int64(100), res.WalletAmountCents)

	_, err = f.bookings.Confirm(t.Context(), b.BookingID, domain.PaymentMethodWallet, u.ID)
	assert.ErrorIs(t, err, ErrWalletPaymentMissing)

	got, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.NotEqual(t, domain.BookingPaid, got.PaymentStatus)
	assert.False(t, got.Invoiced)
}

func TestSecondConfirmationKeepsOneInvoice(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.walletWith(t, u, 100000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)
	_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodWallet)
	require.NoError(t, err)
	stale, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)

	_, err = f.bookings.Confirm(t.Context(), b.BookingID, domain.PaymentMethodWallet, u.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.bookings.finalize(t.Context(), stale), ErrBookingCompleted)
	_, err = f.invoices.Prepare(t.Context(), stale)
	assert.ErrorIs(t, err, ErrBookingCompleted)

	var invoices, payments int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Count(&invoices).Error)
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(1), invoices)
	assert.Equal(t, int64(1), payments)

	pkg, err := f.packages.GetByPackageID("PKG-1")
	require.NoError(t, err)
	assert.Equal(t, 1, pkg.Applications)
}

func TestPayBookingRejectsUnknownMode(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, "cash")
	assert.ErrorIs(t, err, ErrPaymentMode)
}

func TestPayBookingByCardCompletesAfterCheckout(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodStripe)
	require.NoError(t, err)
	require.NotEmpty(t, res.SessionID)
	require.Len(t, f.gateway.Requests, 1)
	items := f.gateway.Requests[0].Items
	require.Len(t, items, 2)
	assert.Equal(t, int64(7500), items[1].AmountCents)

	_, err = f.bookings.Complete(t.Context(), b.BookingID, u.ID)
	assert.ErrorIs(t, err, ErrPaymentIncomplete)

	f.gateway.MarkPaid(res.SessionID)
	done, err := f.bookings.Complete(t.Context(), b.BookingID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, done.Status)

	_, err = f.bookings.Complete(t.Context(), b.BookingID, u.ID)
	assert.ErrorIs(t, err, ErrBookingCompleted)
}

func TestSplitPayment(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 30000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodSplit, res.Mode)
	assert.Equal(t, int64(30000), res.WalletAmountCents)
	assert.Equal(t, int64(70000), res.StripeAmountCents)
	assert.Equal(t, int64(0), f.balance(t, w.ID))

	_, err = f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	assert.ErrorIs(t, err, ErrPaymentInProgress)

	f.gateway.MarkPaid(res.SessionID)
	done, err := f.bookings.Confirm(t.Context(), b.BookingID, domain.PaymentMethodSplit, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, done.Status)
	assert.Equal(t, int64(100000), done.TotalPaidCents())
}

func TestSplitPaymentCoveredByWallet(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 150000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	res, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentMethodWallet, res.Mode)
	assert.Empty(t, res.CheckoutURL)
	assert.Equal(t, int64(50000), f.balance(t, w.ID))
}

func TestSplitPaymentEmptyWallet(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	f.walletWith(t, u, 0)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	assert.ErrorIs(t, err, ErrWalletEmpty)
}

func TestSplitCheckoutFailureReturnsWalletPortion(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 30000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)
	f.gateway.FailCheckout = true

	_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.Error(t, err)
	assert.Equal(t, int64(30000), f.balance(t, w.ID))

	got, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)
	assert.Empty(t, got.PaymentMethod)
	assert.Zero(t, got.WalletAmountCents)

	f.gateway.FailCheckout = false
	_, err = f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	assert.NoError(t, err)
}

func TestCancelRefundTiers(t *testing.T) {
	tests := []struct {
		name       string
		daysAhead  int
		wantRefund int64
		wantStatus string
	}{
		{"full refund a week out", 10, 100000, domain.RefundProcessed},
		{"half refund five days out", 5, 50000, domain.RefundProcessed},
		{"nothing in the last days", 1, 0, domain.RefundDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.bookings.now = func() time.Time { return fixedNow }
			u := f.user(t, "ada@example.com")
			w := f.walletWith(t, u, 100000)
			f.fixedPackage(t, "PKG-1", 100000)
			b := f.booking(t, u, "PKG-1", fixedNow.AddDate(0, 0, tt.daysAhead))
			_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodWallet)
			require.NoError(t, err)

			got, err := f.bookings.Cancel(b.BookingID, u.ID, "change of plans")
			require.NoError(t, err)
			assert.Equal(t, domain.BookingCancelled, got.Status)
			assert.Equal(t, tt.wantRefund, got.RefundCents)
			assert.Equal(t, tt.wantStatus, got.RefundStatus)
			assert.Equal(t, tt.wantRefund, f.balance(t, w.ID))

			_, err = f.bookings.Cancel(b.BookingID, u.ID, "")
			assert.ErrorIs(t, err, ErrBookingCancelled)
		})
	}
}

func TestCancelUnpaidSplitReturnsWalletPortion(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	w := f.walletWith(t, u, 30000)
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	_, err := f.bookings.PayBooking(t.Context(), b.BookingID, u, domain.PaymentMethodSplit)
	require.NoError(t, err)
	require.Equal(t, int64(0), f.balance(t, w.ID))

	got, err := f.bookings.Cancel(b.BookingID, u.ID, "")
	require.NoError(t, err)
	assert.Zero(t, got.RefundCents)
	assert.Equal(t, int64(30000), f.balance(t, w.ID))
}

func TestModifyReprices(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	require.NoError(t, f.packages.Create(&models.Package{
		PackageID:     "PKG-OFFER",
		PriceOption:   domain.PriceOptionOffer,
		DiscountPrice: "1,0,500-4,2,1500",
		Status:        domain.StatusActive,
	}))
	b, err := f.bookings.Create(u.ID, "PKG-OFFER", BookingInput{Adult: 1, DateFrom: fixedNow, DateTo: fixedNow.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Equal(t, int64(50000), b.PriceCents)

	adults := 3
	to := fixedNow.AddDate(0, 0, 6)
	got, err := f.bookings.Modify(b.BookingID, u.ID, ModifyInput{Adult: &adults, DateTo: &to})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), got.PriceCents)
	assert.Equal(t, 6, got.Duration)

	zero := 0
	_, err = f.bookings.Modify(b.BookingID, u.ID, ModifyInput{Adult: &zero})
	assert.ErrorIs(t, err, ErrInvalidGuests)
}

func newPromo(t *testing.T, f *fixture, code string, from, to time.Time) *models.PromoCode {
	t.Helper()
	p := &models.PromoCode{
		Code:         code,
		DiscountType: domain.DiscountPercentage,
		PercentOff:   10,
		MaxUses:      1,
		ValidFrom:    from,
		ValidTo:      to,
		IsActive:     true,
	}
	require.NoError(t, f.promos.Create(p))
	return p
}

func TestApplyAndRemovePromo(t *testing.T) {
	f := newFixture(t)
	f.bookings.now = func() time.Time { return fixedNow }
	u := f.user(t, "ada@example.com")
	f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow.AddDate(0, 1, 0))
	newPromo(t, f, "SUMMER10", fixedNow.Add(-time.Hour), fixedNow.Add(24*time.Hour))
	newPromo(t, f, "OLD", fixedNow.AddDate(0, -2, 0), fixedNow.AddDate(0, -1, 0))

	_, err := f.bookings.ApplyPromo(b.BookingID, u.ID, "NOPE")
	assert.ErrorIs(t, err, ErrPromoNotFound)
	_, err = f.bookings.ApplyPromo(b.BookingID, u.ID, "OLD")
	assert.ErrorIs(t, err, ErrPromoInvalid)

	res, err := f.bookings.ApplyPromo(b.BookingID, u.ID, "SUMMER10")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), res.DiscountCents)
	assert.Equal(t, int64(100000), res.OriginalPriceCents)
	assert.Equal(t, int64(90000), res.Booking.PriceCents)

	_, err = f.bookings.ApplyPromo(b.BookingID, u.ID, "SUMMER10")
	assert.ErrorIs(t, err, ErrPromoApplied)

	got, err := f.bookings.RemovePromo(b.BookingID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got.PriceCents)
	assert.Nil(t, got.PromoCodeID)

	_, err = f.bookings.RemovePromo(b.BookingID, u.ID)
	assert.ErrorIs(t, err, ErrNoPromo)

	// the use was given back, so the single-use code works again
	_, err = f.bookings.ApplyPromo(b.BookingID, u.ID, "SUMMER10")
	assert.NoError(t, err)
}

func TestCheckOffer(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.packages.Create(&models.Package{
		PackageID:     "PKG-OFFER",
		PriceOption:   domain.PriceOptionOffer,
		DiscountPrice: "2,0,800-4,2,1500",
		Status:        domain.StatusActive,
	}))
	f.fixedPackage(t, "PKG-FIXED", 1000)

	o, err := f.bookings.CheckOffer("PKG-OFFER", 3, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), o.PriceCents)

	_, err = f.bookings.CheckOffer("PKG-OFFER", 5, 0)
	assert.ErrorIs(t, err, ErrNoMatchingOffer)
	_, err = f.bookings.CheckOffer("PKG-FIXED", 1, 0)
	assert.ErrorIs(t, err, ErrNoOfferPricing)
}
