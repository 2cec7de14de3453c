package service

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"leisuretimez/config"
	"leisuretimez/internal/database"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/cache"
	"leisuretimez/pkg/mailer"
	"leisuretimez/pkg/payment"
	"leisuretimez/pkg/pdfshift"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Server.SiteURL = "http://api.test"
	cfg.Server.FrontendURL = "http://app.test"
	cfg.Server.MediaRoot = t.TempDir()
	cfg.JWT = config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "leisuretimez",
	}
	cfg.Stripe.Currency = "usd"
	cfg.SMTP.AdminEmail = "admin@leisuretimez.test"
	cfg.Lockout.MaxAttempts = 3
	cfg.Lockout.Window = time.Minute
	cfg.Throttle.AnonPerMinute = 1000
	cfg.Throttle.UserPerMinute = 1000
	return cfg
}

// fixture wires every service against one sqlite database with stubbed gateways.
type fixture struct {
	cfg      *config.Config
	db       *gorm.DB
	gateway  *payment.StubGateway
	mail     *mailer.Recorder
	pdf      *pdfshift.Static
	counter  *cache.MemoryCounter
	users    *repository.UserRepository
	packages *repository.PackageRepository
	promos   *repository.PromoRepository
	txns     *repository.TransactionRepository
	bookRepo *repository.BookingRepository

	notify   *NotificationService
	wallets  *WalletService
	invoices *InvoiceService
	bookings *BookingService
	webhooks *WebhookService
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		cfg:     testConfig(t),
		db:      newTestDB(t),
		gateway: payment.NewStubGateway(),
		mail:    &mailer.Recorder{},
		pdf:     &pdfshift.Static{PDF: []byte("%PDF-1.4 test")},
		counter: cache.NewMemoryCounter(),
	}
	f.users = repository.NewUserRepository(f.db)
	f.packages = repository.NewPackageRepository(f.db)
	f.promos = repository.NewPromoRepository(f.db)
	f.txns = repository.NewTransactionRepository(f.db)
	f.bookRepo = repository.NewBookingRepository(f.db)
	walletRepo := repository.NewWalletRepository(f.db)

	mail := NewMailService(f.cfg, f.mail)
	f.notify = NewNotificationService(repository.NewNotificationRepository(f.db), f.users, nil)
	f.wallets = NewWalletService(f.cfg, f.db, walletRepo, f.txns, f.gateway)
	f.invoices = NewInvoiceService(f.cfg, f.db, repository.NewInvoiceRepository(f.db), f.bookRepo, f.packages, f.notify, mail, f.pdf)
	f.bookings = NewBookingService(f.cfg, f.db, f.bookRepo, f.packages, f.promos, f.txns, f.wallets, f.invoices, f.notify, f.gateway)
	f.webhooks = NewWebhookService(repository.NewStripeEventRepository(f.db), f.txns, walletRepo, f.wallets, f.bookRepo, f.bookings, f.gateway)
	f.auth = NewAuthService(f.cfg, f.db, f.users, repository.NewProfileRepository(f.db), repository.NewAuditLogRepository(f.db), f.wallets, mail, f.counter)
	return f
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Firstname: "Ada", Lastname: "Obi", IsActive: true, Status: domain.StatusActive}
	require.NoError(t, f.users.Create(u))
	return u
}

// walletWith creates the user's wallet and credits it.
func (f *fixture) walletWith(t *testing.T, u *models.User, cents int64) *models.Wallet {
	t.Helper()
	w, err := f.wallets.Create(t.Context(), u)
	require.NoError(t, err)
	if cents > 0 {
		_, err = f.wallets.Deposit(w.ID, cents, "seed", "seed funds")
		require.NoError(t, err)
	}
	return w
}

func (f *fixture) fixedPackage(t *testing.T, pid string, priceCents int64) *models.Package {
	t.Helper()
	p := &models.Package{
		PackageID:       pid,
		Name:            "Zanzibar Escape",
		VAT:             7.5,
		PriceOption:     domain.PriceOptionFixed,
		FixedPriceCents: priceCents,
		Status:          domain.StatusActive,
	}
	require.NoError(t, f.packages.Create(p))
	return p
}

func (f *fixture) booking(t *testing.T, u *models.User, pid string, start time.Time) *models.Booking {
	t.Helper()
	b, err := f.bookings.Create(u.ID, pid, BookingInput{
		DateFrom:  start,
		DateTo:    start.AddDate(0, 0, 5),
		Adult:     2,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Email:     u.Email,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) balance(t *testing.T, walletID uint) int64 {
	t.Helper()
	w, err := repository.NewWalletRepository(f.db).GetByID(walletID)
	require.NoError(t, err)
	return w.BalanceCents
}
