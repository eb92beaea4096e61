package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DHFin/dhf-pay-back-private/internal/middleware"
	"github.com/DHFin/dhf-pay-back-private/internal/service"

	"github.com/gin-gonic/gin"
)

type TransactionHandler struct {
	svc *service.TransactionService
}

func NewTransactionHandler(svc *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{svc: svc}
}

type createTransactionRequest struct {
	TxHash  string `json:"txHash" binding:"required"`
	Email   string `json:"email"`
	Sender  string `json:"sender"`
	Payment struct {
		ID uint `json:"id"`
	} `json:"payment"`
}

// Create registers a transaction with a caller-supplied hash.
func (h *TransactionHandler) Create(c *gin.Context) {
	var req createTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Payment.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cant create transaction without payment ID"})
		return
	}
	res, err := h.svc.Create(c.Request.Context(), service.CreateTransactionInput{
		TxHash:    req.TxHash,
		PaymentID: req.Payment.ID,
		Email:     req.Email,
		Sender:    req.Sender,
	})
	if err != nil {
		rejectTransaction(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type generateWalletRequest struct {
	PaymentID uint   `json:"paymentId" binding:"required"`
	Email     string `json:"email"`
}

// GenerateWallet creates a transaction funded through a freshly
// generated receiving address.
func (h *TransactionHandler) GenerateWallet(c *gin.Context) {
	var req generateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.CreateWithWallet(c.Request.Context(), req.PaymentID, req.Email)
	if err != nil {
		rejectTransaction(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// List returns all transactions for an admin token, or the owning
// store's transactions when the bearer token is a store API key.
func (h *TransactionHandler) List(c *gin.Context) {
	ts, err := h.svc.ListForToken(middleware.GetToken(c))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This store does not have such a payments"})
		return
	}
	c.JSON(http.StatusOK, ts)
}

// GetByTxHash looks up one transaction, enforcing store ownership for
// non-admin users.
func (h *TransactionHandler) GetByTxHash(c *gin.Context) {
	user := middleware.GetUser(c)
	res, err := h.svc.GetByTxHash(c.Param("txHash"), user)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTransactionNotFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNoAccess):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "This store does not have such a transaction"})
		}
		return
	}
	c.JSON(http.StatusOK, res)
}

// Last returns the txHash/status of the first transaction for a payment.
func (h *TransactionHandler) Last(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	res, err := h.svc.LastForPayment(uint(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This payment does not have such a transaction"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// BtcCommission quotes current fee tiers.
func (h *TransactionHandler) BtcCommission(c *gin.Context) {
	res, err := h.svc.BtcCommission(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server Error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// BtcByPayment returns the wallet-backed transaction of a payment, with
// only the public address exposed.
func (h *TransactionHandler) BtcByPayment(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	res, err := h.svc.WalletTransactionForPayment(uint(id))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Transaction not exist"})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Reject answers PATCH/PUT: transactions are immutable from the API.
func (h *TransactionHandler) Reject(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Error"})
}

func rejectTransaction(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDuplicateTransaction):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrPaymentCompleted),
		errors.Is(err, service.ErrPaymentCancelled),
		errors.Is(err, service.ErrUnsupportedCurrency):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
