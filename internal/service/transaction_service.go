package service

import (
	"context"
	"errors"
	"time"

	"github.com/DHFin/dhf-pay-back-private/internal/metrics"
	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/DHFin/dhf-pay-back-private/internal/repository"
	"github.com/DHFin/dhf-pay-back-private/pkg/mempool"
	"github.com/DHFin/dhf-pay-back-private/pkg/wallet"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// estimatedTxVSize is the assumed size of a 1-in/2-out P2PKH spend, in
// vbytes. Fee tiers are quoted as rate * estimatedTxVSize without
// constructing a real transaction.
const estimatedTxVSize = 204

// TransactionService is the workflow engine for transaction creation:
// it gates new transactions on payment state, snapshots amounts,
// generates receiving wallets on demand and fires best-effort receipts.
type TransactionService struct {
	transactions *repository.TransactionRepository
	payments     *repository.PaymentRepository
	stores       *repository.StoreRepository
	users        *repository.UserRepository
	fees         *mempool.Client
	mailer       Mailer
	log          *zap.Logger
}

func NewTransactionService(
	transactions *repository.TransactionRepository,
	payments *repository.PaymentRepository,
	stores *repository.StoreRepository,
	users *repository.UserRepository,
	fees *mempool.Client,
	mailer Mailer,
	log *zap.Logger,
) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		payments:     payments,
		stores:       stores,
		users:        users,
		fees:         fees,
		mailer:       mailer,
		log:          log,
	}
}

// CreateTransactionInput is a direct creation request with a
// caller-supplied transaction hash.
type CreateTransactionInput struct {
	TxHash    string
	PaymentID uint
	Email     string
	Sender    string
}

// PaymentSummary is the reduced payment view exposed on creation.
type PaymentSummary struct {
	ID       uint      `json:"id"`
	Datetime time.Time `json:"datetime"`
	Status   string    `json:"status"`
	Store    StoreRef  `json:"store"`
}

type StoreRef struct {
	ID uint `json:"id"`
}

// CreatedTransaction is the trimmed projection returned from direct
// creation; the full payment record stays private.
type CreatedTransaction struct {
	ID      uint           `json:"id"`
	Email   string         `json:"email"`
	TxHash  string         `json:"txHash"`
	Sender  string         `json:"sender"`
	Amount  string         `json:"amount"`
	Status  string         `json:"status"`
	Payment PaymentSummary `json:"payment"`
}

// Create registers a caller-supplied transaction against a payment.
// Gating order: duplicate hash, payment existence, completed, cancelled.
// The tx_hash unique index closes the check-then-act race: two
// concurrent creations with one hash cannot both commit.
func (s *TransactionService) Create(ctx context.Context, in CreateTransactionInput) (*CreatedTransaction, error) {
	if _, err := s.transactions.GetByTxHash(in.TxHash); err == nil {
		metrics.TransactionsRejected.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateTransaction
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	payment, err := s.payments.GetByID(in.PaymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.TransactionsRejected.WithLabelValues("payment_not_found").Inc()
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if err := gatePayment(payment); err != nil {
		return nil, err
	}

	txHash := in.TxHash
	tx := &models.Transaction{
		TxHash:    &txHash,
		PaymentID: payment.ID,
		Amount:    payment.Amount.String(),
		Status:    models.TransactionStatusProcessing,
		Email:     in.Email,
		Sender:    in.Sender,
		Updated:   time.Now(),
	}
	if err := s.transactions.Create(tx); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			metrics.TransactionsRejected.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicateTransaction
		}
		return nil, err
	}
	metrics.TransactionsCreated.WithLabelValues("direct").Inc()

	s.notify(tx.Email, payment.Store.Name, tx.Status)

	return &CreatedTransaction{
		ID:     tx.ID,
		Email:  tx.Email,
		TxHash: in.TxHash,
		Sender: tx.Sender,
		Amount: tx.Amount,
		Status: tx.Status,
		Payment: PaymentSummary{
			ID:       payment.ID,
			Datetime: payment.Datetime,
			Status:   payment.Status,
			Store:    StoreRef{ID: payment.StoreID},
		},
	}, nil
}

// WalletTransaction is the wallet-generation response. The generated
// record keeps the private key and fee tiers in storage, but only the
// public address is echoed back.
type WalletTransaction struct {
	ID                   uint      `json:"id"`
	PaymentID            uint      `json:"payment_id"`
	Sender               string    `json:"sender"`
	Amount               string    `json:"amount"`
	Status               string    `json:"status"`
	Updated              time.Time `json:"updated"`
	WalletForTransaction string    `json:"walletForTransaction"`
}

// CreateWithWallet creates a transaction funded through a freshly
// generated receiving address. Fee tiers are computed best-effort at the
// fixed estimated size; an unavailable oracle leaves them absent and
// never fails the creation.
func (s *TransactionService) CreateWithWallet(ctx context.Context, paymentID uint, email string) (*WalletTransaction, error) {
	payment, err := s.payments.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.TransactionsRejected.WithLabelValues("payment_not_found").Inc()
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if !payment.Currency.WalletSupported() {
		metrics.TransactionsRejected.WithLabelValues("unsupported_currency").Inc()
		return nil, ErrUnsupportedCurrency
	}
	if err := gatePayment(payment); err != nil {
		return nil, err
	}

	pair, err := wallet.Generate(networkFor(payment.Currency))
	if err != nil {
		return nil, err
	}
	generated := &models.GeneratedWallet{
		PublicKey:  pair.Address,
		PrivateKey: pair.PrivateWIF,
	}

	if rates, err := s.fees.GetRecommendedFees(ctx); err != nil {
		metrics.FeeOracleErrors.Inc()
		s.log.Warn("fee oracle unavailable, creating transaction without fee estimate",
			zap.Uint("payment_id", paymentID), zap.Error(err))
	} else {
		economy := rates.EconomyFee * estimatedTxVSize
		average := rates.HourFee * estimatedTxVSize
		fastest := rates.FastestFee * estimatedTxVSize
		generated.EconomyFee = &economy
		generated.AverageFee = &average
		generated.FastestFee = &fastest
	}

	tx := &models.Transaction{
		PaymentID:            payment.ID,
		Amount:               payment.Amount.String(),
		Status:               models.TransactionStatusProcessing,
		Sender:               email,
		Updated:              time.Now(),
		WalletForTransaction: generated,
	}
	if err := s.transactions.Create(tx); err != nil {
		return nil, err
	}
	metrics.TransactionsCreated.WithLabelValues("wallet").Inc()

	if email != "" {
		s.notify(email, payment.Store.Name, tx.Status)
	}

	return &WalletTransaction{
		ID:                   tx.ID,
		PaymentID:            payment.ID,
		Sender:               tx.Sender,
		Amount:               tx.Amount,
		Status:               tx.Status,
		Updated:              tx.Updated,
		WalletForTransaction: generated.PublicKey,
	}, nil
}

// gatePayment applies the payment-state invariant shared by both
// creation paths.
func gatePayment(p *models.Payment) error {
	if p.Completed() {
		metrics.TransactionsRejected.WithLabelValues("payment_completed").Inc()
		return ErrPaymentCompleted
	}
	if p.Cancelled {
		metrics.TransactionsRejected.WithLabelValues("payment_cancelled").Inc()
		return ErrPaymentCancelled
	}
	return nil
}

func networkFor(c models.Currency) wallet.Network {
	if c == models.CurrencyDoge {
		return wallet.DogeMain
	}
	return wallet.BitcoinMain
}

// notify sends the receipt after a confirmed persist. Failures are
// logged and swallowed; they never unwind the created transaction.
func (s *TransactionService) notify(email, storeName, status string) {
	if email == "" {
		return
	}
	if err := s.mailer.SendTransactionCreated(email, storeName, status); err != nil {
		metrics.MailFailures.Inc()
		s.log.Warn("transaction receipt mail failed", zap.String("store", storeName), zap.Error(err))
	}
}

// Commission quotes the current fee tiers at the fixed estimated size.
type Commission struct {
	EconomyFee int64 `json:"economyFee"`
	AverageFee int64 `json:"averageFee"`
	FastestFee int64 `json:"fastestFee"`
}

func (s *TransactionService) BtcCommission(ctx context.Context) (*Commission, error) {
	rates, err := s.fees.GetRecommendedFees(ctx)
	if err != nil {
		metrics.FeeOracleErrors.Inc()
		return nil, ErrFeeOracleUnavailable
	}
	return &Commission{
		EconomyFee: rates.EconomyFee * estimatedTxVSize,
		AverageFee: rates.HourFee * estimatedTxVSize,
		FastestFee: rates.FastestFee * estimatedTxVSize,
	}, nil
}

// TransactionWithReceiver augments a transaction with the store wallet
// the payment currency settles into.
type TransactionWithReceiver struct {
	models.Transaction
	Receiver *models.StoreWallet `json:"receiver,omitempty"`
}

// GetByTxHash returns one transaction for an authenticated user. Admins
// see any transaction; a store owner only their own.
func (s *TransactionService) GetByTxHash(txHash string, user *models.User) (*TransactionWithReceiver, error) {
	tx, err := s.transactions.GetByTxHash(txHash)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if user.Role == models.RoleAdmin {
		return &TransactionWithReceiver{Transaction: *tx}, nil
	}

	store, err := s.stores.GetByID(tx.Payment.StoreID)
	if err != nil {
		return nil, err
	}
	if store.User.Token != user.Token {
		return nil, ErrNoAccess
	}
	var receiver *models.StoreWallet
	for i := range store.Wallets {
		if store.Wallets[i].Currency == tx.Payment.Currency {
			receiver = &store.Wallets[i]
			break
		}
	}
	return &TransactionWithReceiver{Transaction: *tx, Receiver: receiver}, nil
}

// ListForToken lists transactions visible to a bearer token: all of them
// for an admin user token, otherwise the transactions of the store whose
// API key equals the token.
func (s *TransactionService) ListForToken(token string) ([]models.Transaction, error) {
	if user, err := s.users.GetByToken(token); err == nil && user.Role == models.RoleAdmin {
		return s.transactions.ListAll()
	}
	return s.transactions.ListByStoreApiKey(token)
}

// LastTransaction is the txHash/status projection of the first
// transaction recorded for a payment.
type LastTransaction struct {
	TxHash string `json:"txHash"`
	Status string `json:"status"`
}

func (s *TransactionService) LastForPayment(paymentID uint) (*LastTransaction, error) {
	tx, err := s.transactions.GetByPaymentID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	out := &LastTransaction{Status: tx.Status}
	if tx.TxHash != nil {
		out.TxHash = *tx.TxHash
	}
	return out, nil
}

// WalletTransactionForPayment returns the wallet-backed transaction of a
// payment with the generated wallet collapsed to its public address.
func (s *TransactionService) WalletTransactionForPayment(paymentID uint) (*WalletTransaction, error) {
	tx, err := s.transactions.GetByPaymentID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	out := &WalletTransaction{
		ID:        tx.ID,
		PaymentID: tx.PaymentID,
		Sender:    tx.Sender,
		Amount:    tx.Amount,
		Status:    tx.Status,
		Updated:   tx.Updated,
	}
	if tx.WalletForTransaction != nil {
		out.WalletForTransaction = tx.WalletForTransaction.PublicKey
	}
	return out, nil
}
