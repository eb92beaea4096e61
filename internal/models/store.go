package models

import "time"

// Store is a merchant account. Each store holds one receiving wallet per
// currency; generated payment wallets ultimately forward to these.
type Store struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"not null;index" json:"user_id"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	URL         string        `gorm:"size:255" json:"url"`
	Description string        `gorm:"size:255" json:"description"`
	ApiKey      string        `gorm:"size:64;uniqueIndex;not null" json:"-"`
	Blocked     bool          `gorm:"not null;default:false" json:"blocked"`
	CreatedAt   time.Time     `json:"created_at"`
	Wallets     []StoreWallet `gorm:"foreignKey:StoreID" json:"wallets,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Store) TableName() string {
	return "stores"
}

// StoreWallet is a merchant-owned receiving address for one currency.
type StoreWallet struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	StoreID  uint     `gorm:"not null;index" json:"store_id"`
	Currency Currency `gorm:"size:20;not null" json:"currency"`
	Value    string   `gorm:"size:128;not null" json:"value"`
}

func (StoreWallet) TableName() string {
	return "store_wallets"
}
