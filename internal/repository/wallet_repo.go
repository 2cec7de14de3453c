package repository

import (
	"leisuretimez/internal/domain"
	"leisuretimez/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) WithTx(tx *gorm.DB) *WalletRepository {
	return &WalletRepository{db: tx}
}

func (r *WalletRepository) Create(w *models.Wallet) error {
	return r.db.Omit("User").Create(w).Error
}

func (r *WalletRepository) GetByID(id uint) (*models.Wallet, error) {
	var w models.Wallet
	if err := r.db.First(&w, id).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetByUserID(userID uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("user_id = ?", userID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) GetByStripeCustomer(customerID string) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&w).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LockByID reads the wallet with SELECT ... FOR UPDATE; call inside a transaction.
func (r *WalletRepository) LockByID(id uint) (*models.Wallet, error) {
	var w models.Wallet
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, id).Error
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WalletRepository) SetBalance(id uint, balanceCents int64) error {
	return r.db.Model(&models.Wallet{}).Where("id = ?", id).Update("balance_cents", balanceCents).Error
}

func (r *WalletRepository) Update(w *models.Wallet) error {
	return r.db.Omit("User").Save(w).Error
}

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Omit("Recipient").Create(t).Error
}

func (r *TransactionRepository) Update(t *models.Transaction) error {
	return r.db.Omit("Recipient").Save(t).Error
}

func (r *TransactionRepository) GetByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// LockByID reads the transaction row with a row lock; call inside a transaction.
func (r *TransactionRepository) LockByID(id uint) (*models.Transaction, error) {
	var t models.Transaction
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByProviderRef finds the transaction created for a checkout session or payment intent.
func (r *TransactionRepository) GetByProviderRef(ref string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("stripe_payment_intent_id = ?", ref).Order("id DESC").First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) GetCompletedByReference(ref, txType string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("reference = ? AND type = ? AND status = ?", ref, txType, domain.TxnCompleted).Order("id DESC").First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ListByWallet returns the wallet's transactions, newest first. Empty filters are ignored.
func (r *TransactionRepository) ListByWallet(walletID uint, txType string, statuses ...string) ([]models.Transaction, error) {
	q := r.db.Where("wallet_id = ?", walletID)
	if txType != "" {
		q = q.Where("type = ?", txType)
	}
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var list []models.Transaction
	err := q.Preload("Recipient").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *TransactionRepository) Count() int64 {
	var n int64
	r.db.Model(&models.Transaction{}).Count(&n)
	return n
}
