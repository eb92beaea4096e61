package service

import (
	"errors"
	"time"

	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/DHFin/dhf-pay-back-private/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PaymentService owns payment creation and lookup. Transaction gating
// reads payments through PaymentRepository directly; this service is the
// store-facing surface.
type PaymentService struct {
	payments *repository.PaymentRepository
	stores   *repository.StoreRepository
	mailer   Mailer
	log      *zap.Logger
}

func NewPaymentService(
	payments *repository.PaymentRepository,
	stores *repository.StoreRepository,
	mailer Mailer,
	log *zap.Logger,
) *PaymentService {
	return &PaymentService{payments: payments, stores: stores, mailer: mailer, log: log}
}

type CreatePaymentInput struct {
	Amount   decimal.Decimal
	Currency models.Currency
	Comment  string
	Text     string
	Type     *int
}

// Create registers a payment for the store owning apiKey. New payments
// always start Not_paid with a fresh datetime.
func (s *PaymentService) Create(in CreatePaymentInput, apiKey string) (*models.Payment, error) {
	store, err := s.stores.GetByApiKey(apiKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	payment := &models.Payment{
		StoreID:  store.ID,
		Amount:   in.Amount,
		Currency: in.Currency,
		Status:   models.PaymentStatusNotPaid,
		Comment:  in.Comment,
		Text:     in.Text,
		Type:     in.Type,
		Datetime: time.Now(),
	}
	if err := s.payments.Create(payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// PaymentView is the reduced projection handed to non-admin callers.
type PaymentView struct {
	ID       uint             `json:"id"`
	Datetime time.Time        `json:"datetime"`
	Amount   decimal.Decimal  `json:"amount"`
	Status   string           `json:"status"`
	Comment  string           `json:"comment"`
	Type     *int             `json:"type"`
	Text     string           `json:"text"`
	Store    PaymentViewStore `json:"store"`
}

type PaymentViewStore struct {
	ID      uint                 `json:"id"`
	Wallets []models.StoreWallet `json:"wallets"`
}

// FindByID returns the payment for an authenticated user: the raw record
// for admins, the trimmed view for everyone else.
func (s *PaymentService) FindByID(id uint, user *models.User) (interface{}, error) {
	payment, err := s.payments.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if user != nil && user.Role == models.RoleAdmin {
		return payment, nil
	}
	return &PaymentView{
		ID:       payment.ID,
		Datetime: payment.Datetime,
		Amount:   payment.Amount,
		Status:   payment.Status,
		Comment:  payment.Comment,
		Type:     payment.Type,
		Text:     payment.Text,
		Store: PaymentViewStore{
			ID:      payment.Store.ID,
			Wallets: payment.Store.Wallets,
		},
	}, nil
}

// SendBillMail emails a payment link. Unlike transaction receipts this
// is a caller-requested send, so failures are returned.
func (s *PaymentService) SendBillMail(paymentID uint, email, billURL string) error {
	payment, err := s.payments.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}
	return s.mailer.SendPaymentBill(email, billURL, payment.Store.Name, payment.Comment, payment.Amount)
}
