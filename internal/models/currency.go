package models

// Currency identifies the blockchain a payment is denominated in.
type Currency string

const (
	CurrencyBitcoin Currency = "Bitcoin"
	CurrencyDoge    Currency = "Doge"
)

// WalletSupported reports whether the engine can generate a receiving
// address for the currency.
func (c Currency) WalletSupported() bool {
	return c == CurrencyBitcoin || c == CurrencyDoge
}
