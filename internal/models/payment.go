package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentStatusNotPaid          = "Not_paid"
	PaymentStatusParticularlyPaid = "Particularly_paid"
	PaymentStatusPaid             = "Paid"
)

type Payment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	StoreID   uint            `gorm:"not null;index" json:"store_id"`
	Amount    decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"amount"`
	Currency  Currency        `gorm:"size:20;not null" json:"currency"`
	Status    string          `gorm:"size:20;not null;default:'Not_paid';index" json:"status"`
	Type      *int            `json:"type"`
	Cancelled bool            `gorm:"not null;default:false" json:"cancelled"`
	Comment   string          `gorm:"size:255" json:"comment"`
	Text      string          `gorm:"type:text" json:"text"`
	Datetime  time.Time       `json:"datetime"`

	Store Store `gorm:"foreignKey:StoreID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}

// Completed reports the terminal "settled via the external path" state.
// A nil Type together with status Paid means the payment was closed
// without a typed settlement flow attached.
func (p *Payment) Completed() bool {
	return p.Type == nil && p.Status == PaymentStatusPaid
}

// AcceptsTransactions is the gating invariant for transaction creation.
func (p *Payment) AcceptsTransactions() bool {
	return !p.Cancelled && !p.Completed()
}
