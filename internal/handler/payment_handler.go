package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/DHFin/dhf-pay-back-private/internal/middleware"
	"github.com/DHFin/dhf-pay-back-private/internal/models"
	"github.com/DHFin/dhf-pay-back-private/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type createPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Currency models.Currency `json:"currency" binding:"required"`
	Comment  string          `json:"comment"`
	Text     string          `json:"text"`
	Type     *int            `json:"type"`
}

// Create registers a payment for the store whose API key is carried as
// the bearer token.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	payment, err := h.svc.Create(service.CreatePaymentInput{
		Amount:   req.Amount,
		Currency: req.Currency,
		Comment:  req.Comment,
		Text:     req.Text,
		Type:     req.Type,
	}, middleware.GetToken(c))
	if err != nil {
		if errors.Is(err, service.ErrStoreNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// GetByID returns a payment; admins get the full record, everyone else
// the reduced view.
func (h *PaymentHandler) GetByID(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payment id"})
		return
	}
	res, err := h.svc.FindByID(uint(id), middleware.GetUser(c))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, res)
}

type sendBillRequest struct {
	ID      uint   `json:"id" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	BillURL string `json:"billUrl" binding:"required"`
}

// SendBill emails a payment link to a customer.
func (h *PaymentHandler) SendBill(c *gin.Context) {
	var req sendBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SendBillMail(req.ID, req.Email, req.BillURL); err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send bill"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "sent"})
}
