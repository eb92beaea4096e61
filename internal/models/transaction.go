package models

import "time"

const (
	TransactionStatusProcessing = "processing"
	TransactionStatusConfirmed  = "confirmed"
	TransactionStatusFailed     = "failed"
)

// GeneratedWallet is the key pair minted for a wallet-backed transaction.
// Fee fields are sat totals for an estimated transaction size and are
// absent when the fee oracle was unavailable at creation time.
//
// PrivateKey is stored in the clear. Custody of generated keys is an open
// concern tracked in DESIGN.md; nothing in this service signs with them.
type GeneratedWallet struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
	EconomyFee *int64 `json:"economyFee,omitempty"`
	AverageFee *int64 `json:"averageFee,omitempty"`
	FastestFee *int64 `json:"fastestFee,omitempty"`
}

type Transaction struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	TxHash    *string `gorm:"size:128;uniqueIndex" json:"txHash,omitempty"`
	PaymentID uint    `gorm:"not null;index" json:"payment_id"`
	// Amount snapshots the payment amount at creation time; it is not
	// live-linked to the payment row.
	Amount  string    `gorm:"size:64;not null" json:"amount"`
	Status  string    `gorm:"size:20;not null;index" json:"status"`
	Email   string    `gorm:"size:255" json:"email"`
	Sender  string    `gorm:"size:255" json:"sender"`
	Updated time.Time `json:"updated"`

	WalletForTransaction *GeneratedWallet `gorm:"serializer:json" json:"-"`

	CreatedAt time.Time `json:"created_at"`

	Payment Payment `gorm:"foreignKey:PaymentID" json:"-"`
}

func (Transaction) TableName() string {
	return "transactions"
}
