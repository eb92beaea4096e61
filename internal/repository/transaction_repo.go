package repository

import (
	"github.com/DHFin/dhf-pay-back-private/internal/models"

	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create persists the transaction in a single write. The unique index on
// tx_hash is the authoritative duplicate guard; the caller translates
// gorm.ErrDuplicatedKey.
func (r *TransactionRepository) Create(t *models.Transaction) error {
	return r.db.Create(t).Error
}

func (r *TransactionRepository) GetByTxHash(txHash string) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Preload("Payment.Store").Preload("Payment").
		Where("tx_hash = ?", txHash).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByPaymentID returns the earliest transaction recorded for a payment.
func (r *TransactionRepository) GetByPaymentID(paymentID uint) (*models.Transaction, error) {
	var t models.Transaction
	err := r.db.Where("payment_id = ?", paymentID).Order("id").First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListAll() ([]models.Transaction, error) {
	var ts []models.Transaction
	err := r.db.Preload("Payment.Store").Preload("Payment").Find(&ts).Error
	return ts, err
}

// ListByStoreApiKey returns the transactions whose payment belongs to the
// store identified by apiKey.
func (r *TransactionRepository) ListByStoreApiKey(apiKey string) ([]models.Transaction, error) {
	var ts []models.Transaction
	err := r.db.
		Select("transactions.*").
		Joins("JOIN payments ON payments.id = transactions.payment_id").
		Joins("JOIN stores ON stores.id = payments.store_id").
		Where("stores.api_key = ?", apiKey).
		Find(&ts).Error
	return ts, err
}

func (r *TransactionRepository) CountByPaymentID(paymentID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Transaction{}).Where("payment_id = ?", paymentID).Count(&n).Error
	return n, err
}
