package service

import (
	"testing"

	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceNumbersIncrease(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)

	n, err := f.invoices.NextInvoiceNumber()
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", n)

	first, err := f.invoices.CreatePackageInvoice(f.booking(t, u, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)
	second, err := f.invoices.CreatePackageInvoice(f.booking(t, u, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)
	assert.Equal(t, "INV-000001", first.InvoiceID)
	assert.Equal(t, "INV-000002", second.InvoiceID)

	got, err := f.packages.GetByPackageID("PKG-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Applications)
}

func TestInvoiceNumberCollisionRetries(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)
	_, err := f.invoices.CreatePackageInvoice(f.booking(t, u, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)

	calls := 0
	stale := func(r *repository.InvoiceRepository) (string, error) {
		calls++
		if calls == 1 {
			return "INV-000001", nil
		}
		return nextInvoiceNumber(r)
	}
	inv, err := f.invoices.createWithRetry(f.booking(t, u, "PKG-1", fixedNow), pkg, stale)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "INV-000002", inv.InvoiceID)

	always := func(*repository.InvoiceRepository) (string, error) { return "INV-000001", nil }
	b := f.booking(t, u, "PKG-1", fixedNow)
	_, err = f.invoices.createWithRetry(b, pkg, always)
	assert.ErrorIs(t, err, ErrInvoiceNumber)

	reloaded, err := f.bookings.Get(b.BookingID, u.ID, false)
	require.NoError(t, err)
	assert.False(t, reloaded.Invoiced)
}

func TestInvoiceOnePerBooking(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)
	b := f.booking(t, u, "PKG-1", fixedNow)

	first, err := f.invoices.CreatePackageInvoice(b, pkg)
	require.NoError(t, err)
	again, err := f.invoices.CreatePackageInvoice(b, pkg)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	var n int64
	require.NoError(t, f.db.Model(&models.Invoice{}).Where("booking_id = ?", b.ID).Count(&n).Error)
	assert.Equal(t, int64(1), n)
	got, err := f.packages.GetByPackageID("PKG-1")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Applications)
}

func TestInvoiceNumbersPastSixDigits(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)
	seeded := f.booking(t, u, "PKG-1", fixedNow)
	require.NoError(t, f.db.Create(&models.Invoice{InvoiceID: "INV-999999", BookingID: seeded.ID}).Error)

	n, err := f.invoices.NextInvoiceNumber()
	require.NoError(t, err)
	assert.Equal(t, "INV-1000000", n)

	inv, err := f.invoices.CreatePackageInvoice(f.booking(t, u, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)
	assert.Equal(t, "INV-1000000", inv.InvoiceID)

	n, err = f.invoices.NextInvoiceNumber()
	require.NoError(t, err)
	assert.Equal(t, "INV-1000001", n)
}

func TestPayInvoiceFromStaleCopy(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ada@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)
	inv, err := f.invoices.CreatePackageInvoice(f.booking(t, u, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)
	stale := *inv

	_, err = f.invoices.PayInvoice(inv)
	require.NoError(t, err)
	_, err = f.invoices.PayInvoice(&stale)
	assert.ErrorIs(t, err, ErrInvoicePaid)

	var n int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestInvoiceOwnershipAndPayment(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "owner@example.com")
	other := f.user(t, "other@example.com")
	pkg := f.fixedPackage(t, "PKG-1", 100000)
	inv, err := f.invoices.CreatePackageInvoice(f.booking(t, owner, "PKG-1", fixedNow), pkg)
	require.NoError(t, err)

	_, err = f.invoices.Owned(inv.InvoiceID, other.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.invoices.Owned("INV-999999", owner.ID, false)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	p, err := f.invoices.Pay(inv.InvoiceID, owner.ID, false)
	require.NoError(t, err)
	assert.Regexp(t, `^PMT[0-9A-F]{6}$`, p.PaymentID)
	assert.Equal(t, inv.TotalCents, p.TotalCents)

	_, err = f.invoices.Pay(inv.InvoiceID, owner.ID, false)
	assert.ErrorIs(t, err, ErrInvoicePaid)
}

func TestPDFPathStaysInInvoiceDir(t *testing.T) {
	f := newFixture(t)

	p, err := f.invoices.PDFPath("BKN123ABC")
	require.NoError(t, err)
	assert.Contains(t, p, "BKN123ABC.pdf")

	p, err = f.invoices.PDFPath("../../etc/passwd")
	require.NoError(t, err)
	assert.Contains(t, p, "passwd.pdf")
	assert.NotContains(t, p, "..")

	_, err = f.invoices.PDFPath("..")
	assert.ErrorIs(t, err, ErrInvalidInvoicePath)
}

func TestParseInvoiceItems(t *testing.T) {
	items := ParseInvoiceItems(`[["Safari", 1, "package", "1000.00", "1000.00"], ["short"]]`)
	require.Len(t, items, 1)
	assert.Equal(t, InvoiceItem{Name: "Safari", Quantity: 1, Kind: "package", Unit: "1000.00", Total: "1000.00"}, items[0])
	assert.Nil(t, ParseInvoiceItems("not json"))
}
