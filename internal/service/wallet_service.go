package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"leisuretimez/config"
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"
	"leisuretimez/internal/repository"
	"leisuretimez/pkg/payment"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount     = errors.New("Amount must be positive")
	ErrBelowMinimum      = errors.New("amount must be at least 1.00")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrWalletExists      = errors.New("wallet already exists")
	ErrWalletInactive    = errors.New("wallet is inactive")
	ErrRecipientNotFound = errors.New("recipient wallet not found")
	ErrSelfTransfer      = errors.New("cannot transfer to the same wallet")
	ErrPaymentNotDone    = errors.New("payment not completed")
)

// MinAmountCents is the smallest deposit, withdrawal or transfer accepted from users.
const MinAmountCents = 100

type WalletService struct {
	cfg     *config.Config
	db      *gorm.DB
	wallets *repository.WalletRepository
	txns    *repository.TransactionRepository
	gateway payment.Gateway
}

func NewWalletService(cfg *config.Config, db *gorm.DB, wallets *repository.WalletRepository, txns *repository.TransactionRepository, gateway payment.Gateway) *WalletService {
	return &WalletService{cfg: cfg, db: db, wallets: wallets, txns: txns, gateway: gateway}
}

// DepositTx credits the wallet inside tx with the wallet row locked and records a
// completed deposit.
func (s *WalletService) DepositTx(tx *gorm.DB, walletID uint, amountCents int64, reference, description string) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	w, err := s.wallets.WithTx(tx).LockByID(walletID)
	if err != nil {
		return nil, walletErr(err)
	}
	if err := s.wallets.WithTx(tx).SetBalance(w.ID, w.BalanceCents+amountCents); err != nil {
		return nil, err
	}
	t := &models.Transaction{
		WalletID:    w.ID,
		AmountCents: amountCents,
		Type:        domain.TxnDeposit,
		Status:      domain.TxnCompleted,
		Reference:   reference,
		Description: description,
	}
	if err := s.txns.WithTx(tx).Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

// WithdrawTx debits the wallet inside tx. The balance check and the debit happen under
// the same row lock, so the balance cannot go negative.
func (s *WalletService) WithdrawTx(tx *gorm.DB, walletID uint, amountCents int64, reference, description string) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	w, err := s.wallets.WithTx(tx).LockByID(walletID)
	if err != nil {
		return nil, walletErr(err)
	}
	if w.BalanceCents < amountCents {
		return nil, ErrInsufficientFunds
	}
	if err := s.wallets.WithTx(tx).SetBalance(w.ID, w.BalanceCents-amountCents); err != nil {
		return nil, err
	}
	t := &models.Transaction{
		WalletID:    w.ID,
		AmountCents: amountCents,
		Type:        domain.TxnWithdrawal,
		Status:      domain.TxnCompleted,
		Reference:   reference,
		Description: description,
	}
	if err := s.txns.WithTx(tx).Create(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *WalletService) Deposit(walletID uint, amountCents int64, reference, description string) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.DepositTx(tx, walletID, amountCents, reference, description)
		out = t
		return err
	})
	return out, err
}

func (s *WalletService) Withdraw(walletID uint, amountCents int64, reference, description string) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.WithdrawTx(tx, walletID, amountCents, reference, description)
		out = t
		return err
	})
	return out, err
}

// Transfer moves funds between wallets. Both rows are locked in ID order so two opposite
// transfers cannot deadlock.
func (s *WalletService) Transfer(fromWalletID, toWalletID uint, amountCents int64, description string) (*models.Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if fromWalletID == toWalletID {
		return nil, ErrSelfTransfer
	}
	var out *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		wr := s.wallets.WithTx(tx)
		first, second := fromWalletID, toWalletID
		if second < first {
			first, second = second, first
		}
		locked := map[uint]*models.Wallet{}
		for _, id := range []uint{first, second} {
			w, err := wr.LockByID(id)
			if err != nil {
				if id == toWalletID && errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRecipientNotFound
				}
				return walletErr(err)
			}
			locked[id] = w
		}
		from, to := locked[fromWalletID], locked[toWalletID]
		if !to.IsActive {
			return ErrWalletInactive
		}
		if from.BalanceCents < amountCents {
			return ErrInsufficientFunds
		}
		if err := wr.SetBalance(from.ID, from.BalanceCents-amountCents); err != nil {
			return err
		}
		if err := wr.SetBalance(to.ID, to.BalanceCents+amountCents); err != nil {
			return err
		}
		recipient := to.UserID
		t := &models.Transaction{
			WalletID:    from.ID,
			AmountCents: amountCents,
			Type:        domain.TxnTransfer,
			Status:      domain.TxnCompleted,
			RecipientID: &recipient,
			Description: description,
		}
		if err := s.txns.WithTx(tx).Create(t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

// CompletePending credits a pending deposit exactly once. It returns false when the
// transaction had already left the pending state.
func (s *WalletService) CompletePending(txnID uint) (bool, error) {
	credited := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.txns.WithTx(tx).LockByID(txnID)
		if err != nil {
			return err
		}
		if t.Status != domain.TxnPending {
			return nil
		}
		if t.Type == domain.TxnDeposit {
			w, err := s.wallets.WithTx(tx).LockByID(t.WalletID)
			if err != nil {
				return walletErr(err)
			}
			if err := s.wallets.WithTx(tx).SetBalance(w.ID, w.BalanceCents+t.AmountCents); err != nil {
				return err
			}
		}
		t.Status = domain.TxnCompleted
		if err := s.txns.WithTx(tx).Update(t); err != nil {
			return err
		}
		credited = true
		return nil
	})
	return credited, err
}

// FailPending marks a pending transaction failed; completed ones are left alone.
func (s *WalletService) FailPending(txnID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		t, err := s.txns.WithTx(tx).LockByID(txnID)
		if err != nil {
			return err
		}
		if t.Status != domain.TxnPending {
			return nil
		}
		t.Status = domain.TxnFailed
		return s.txns.WithTx(tx).Update(t)
	})
}

// RecordExternalDeposit creates and credits a deposit for a card payment that has no
// matching pending transaction. providerRef is recorded so a replay finds it.
func (s *WalletService) RecordExternalDeposit(walletID uint, amountCents int64, providerRef, description string) (*models.Transaction, error) {
	var out *models.Transaction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		// the wallet lock serialises deliveries for the same ref before the lookup
		if _, err := s.wallets.WithTx(tx).LockByID(walletID); err != nil {
			return walletErr(err)
		}
		existing, err := s.txns.WithTx(tx).GetByProviderRef(providerRef)
		if err == nil {
			out = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		t, err := s.DepositTx(tx, walletID, amountCents, "", description)
		if err != nil {
			return err
		}
		t.StripePaymentIntentID = providerRef
		if err := s.txns.WithTx(tx).Update(t); err != nil {
			return err
		}
		out = t
		return nil
	})
	return out, err
}

func (s *WalletService) GetByUser(userID uint) (*models.Wallet, error) {
	w, err := s.wallets.GetByUserID(userID)
	if err != nil {
		return nil, walletErr(err)
	}
	return w, nil
}

// GetOwned returns the wallet only if it belongs to userID.
func (s *WalletService) GetOwned(walletID, userID uint) (*models.Wallet, error) {
	w, err := s.wallets.GetByID(walletID)
	if err != nil {
		return nil, walletErr(err)
	}
	if w.UserID != userID {
		return nil, ErrWalletNotFound
	}
	return w, nil
}

// Create opens a wallet for the user with a Stripe customer attached.
func (s *WalletService) Create(ctx context.Context, u *models.User) (*models.Wallet, error) {
	if _, err := s.wallets.GetByUserID(u.ID); err == nil {
		return nil, ErrWalletExists
	}
	return s.create(ctx, u)
}

// EnsureWallet returns the user's wallet, creating one if needed.
func (s *WalletService) EnsureWallet(ctx context.Context, u *models.User) (*models.Wallet, error) {
	if w, err := s.wallets.GetByUserID(u.ID); err == nil {
		return w, nil
	}
	return s.create(ctx, u)
}

func (s *WalletService) create(ctx context.Context, u *models.User) (*models.Wallet, error) {
	w := &models.Wallet{UserID: u.ID, Currency: "USD", IsActive: true}
	if s.gateway != nil {
		cid, err := s.gateway.CreateCustomer(ctx, u.Email, u.FullName())
		if err != nil {
			// wallet still works for internal moves; deposits create the customer lazily
			log.WithError(err).WithField("user_id", u.ID).Warn("create stripe customer")
		}
		w.StripeCustomerID = cid
	}
	if err := s.wallets.Create(w); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrWalletExists
		}
		return nil, err
	}
	return w, nil
}

func (s *WalletService) Transactions(walletID uint, txType string) ([]models.Transaction, error) {
	return s.txns.ListByWallet(walletID, txType)
}

// History lists settled transactions only.
func (s *WalletService) History(walletID uint) ([]models.Transaction, error) {
	return s.txns.ListByWallet(walletID, "", domain.TxnCompleted, domain.TxnFailed)
}

type DepositRequest struct {
	AmountCents     int64
	PaymentMethodID string
	SuccessURL      string
	CancelURL       string
}

// DepositResult carries whichever of the deposit outcomes applies.
type DepositResult struct {
	CheckoutURL    string
	SessionID      string
	Transaction    *models.Transaction
	RequiresAction bool
	ClientSecret   string
	IntentID       string
	IntentStatus   string
}

// StartDeposit tops up a wallet by card. Without a saved payment method (or when the
// caller supplies redirect URLs) a hosted checkout is opened and the webhook completes
// the pending transaction; otherwise a PaymentIntent is confirmed immediately.
func (s *WalletService) StartDeposit(ctx context.Context, w *models.Wallet, req DepositRequest) (*DepositResult, error) {
	if req.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if req.AmountCents < MinAmountCents {
		return nil, ErrBelowMinimum
	}
	currency := s.cfg.Stripe.Currency
	if (req.SuccessURL != "" && req.CancelURL != "") || req.PaymentMethodID == "" {
		success := req.SuccessURL
		if success == "" {
			success = s.cfg.Server.SiteURL + "/wallet/deposit/success"
		}
		cancel := req.CancelURL
		if cancel == "" {
			cancel = s.cfg.Server.SiteURL + "/wallet/deposit/cancel"
		}
		t := &models.Transaction{
			WalletID:    w.ID,
			AmountCents: req.AmountCents,
			Type:        domain.TxnDeposit,
			Status:      domain.TxnPending,
			Description: "Wallet deposit",
		}
		if err := s.txns.Create(t); err != nil {
			return nil, err
		}
		sess, err := s.gateway.CreateCheckoutSession(ctx, payment.CheckoutRequest{
			Currency:   currency,
			Items:      []payment.LineItem{{Name: "Wallet Deposit", AmountCents: req.AmountCents, Quantity: 1}},
			SuccessURL: success,
			CancelURL:  cancel,
			CustomerID: w.StripeCustomerID,
			Metadata: map[string]string{
				"transaction_id": strconv.FormatUint(uint64(t.ID), 10),
				"wallet_id":      strconv.FormatUint(uint64(w.ID), 10),
				"user_id":        strconv.FormatUint(uint64(w.UserID), 10),
				"type":           domain.CheckoutWalletDeposit,
			},
		})
		if err != nil {
			if ferr := s.FailPending(t.ID); ferr != nil {
				log.WithError(ferr).WithField("transaction_id", t.ID).Error("fail pending deposit")
			}
			return nil, err
		}
		t.StripePaymentIntentID = sess.ID
		if err := s.txns.Update(t); err != nil {
			return nil, err
		}
		return &DepositResult{CheckoutURL: sess.URL, SessionID: sess.ID, Transaction: t}, nil
	}

	pi, err := s.gateway.CreatePaymentIntent(ctx, payment.IntentRequest{
		AmountCents:     req.AmountCents,
		Currency:        currency,
		CustomerID:      w.StripeCustomerID,
		PaymentMethodID: req.PaymentMethodID,
		Description:     "Wallet deposit",
		Metadata: map[string]string{
			"wallet_id": strconv.FormatUint(uint64(w.ID), 10),
			"type":      domain.CheckoutWalletDeposit,
		},
	})
	if err != nil {
		return nil, err
	}
	res := &DepositResult{IntentID: pi.ID, IntentStatus: pi.Status, ClientSecret: pi.ClientSecret}
	switch pi.Status {
	case payment.IntentSucceeded:
		t, err := s.RecordExternalDeposit(w.ID, req.AmountCents, pi.ID, "Wallet deposit")
		if err != nil {
			return nil, err
		}
		res.Transaction = t
	case payment.IntentRequiresAction, payment.IntentRequiresConfirmation:
		res.RequiresAction = true
	case payment.IntentRequiresPaymentMethod:
		t := &models.Transaction{
			WalletID:              w.ID,
			AmountCents:           req.AmountCents,
			Type:                  domain.TxnDeposit,
			Status:                domain.TxnPending,
			StripePaymentIntentID: pi.ID,
			Description:           "Wallet deposit",
		}
		if err := s.txns.Create(t); err != nil {
			return nil, err
		}
		res.Transaction = t
	default:
		return res, fmt.Errorf("%w: status %s", ErrPaymentNotDone, pi.Status)
	}
	return res, nil
}

func walletErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrWalletNotFound
	}
	return err
}

// ReverseWithdrawalTx puts a completed withdrawal back into its wallet and marks it
// failed, so it no longer counts as a settled payment.
func (s *WalletService) ReverseWithdrawalTx(tx *gorm.DB, txnID uint, note string) (*models.Transaction, error) {
	t, err := s.txns.WithTx(tx).LockByID(txnID)
	if err != nil {
		return nil, err
	}
	if t.Type != domain.TxnWithdrawal || t.Status != domain.TxnCompleted {
		return t, nil
	}
	w, err := s.wallets.WithTx(tx).LockByID(t.WalletID)
	if err != nil {
		return nil, walletErr(err)
	}
	if err := s.wallets.WithTx(tx).SetBalance(w.ID, w.BalanceCents+t.AmountCents); err != nil {
		return nil, err
	}
	t.Status = domain.TxnFailed
	if note != "" {
		t.Description = note
	}
	if err := s.txns.WithTx(tx).Update(t); err != nil {
		return nil, err
	}
	return t, nil
}

// VerifyDeposit asks Stripe about a deposit checkout and credits the pending transaction
// if it was paid. It is safe to call after the webhook already did.
func (s *WalletService) VerifyDeposit(ctx context.Context, sessionID string, userID uint) (*models.Transaction, error) {
	t, err := s.txns.GetByProviderRef(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCheckoutSession
		}
		return nil, err
	}
	if _, err := s.GetOwned(t.WalletID, userID); err != nil {
		return nil, ErrNoCheckoutSession
	}
	if t.Status == domain.TxnPending {
		sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if !sess.Paid() {
			return t, ErrPaymentNotDone
		}
		if _, err := s.CompletePending(t.ID); err != nil {
			return nil, err
		}
	}
	return s.txns.GetByID(t.ID)
}
