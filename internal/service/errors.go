package service

import "errors"

// Creation-gating rejections surfaced to the API layer. All of them are
// non-retryable without a corrected request; ErrFeeOracleUnavailable is
// recoverable and never blocks persistence.
var (
	ErrDuplicateTransaction = errors.New("transaction already exist")
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentCompleted     = errors.New("payment already completed")
	ErrPaymentCancelled     = errors.New("payment already cancelled")
	ErrUnsupportedCurrency  = errors.New("currency not found")
	ErrStoreNotFound        = errors.New("store not found")
	ErrTransactionNotFound  = errors.New("transaction not exist")
	ErrNoAccess             = errors.New("no access to this transaction")
	ErrFeeOracleUnavailable = errors.New("fee estimation unavailable")
)
