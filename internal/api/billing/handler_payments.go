package billing

import (
	"net/http"
	"time"

	"tubelens-api/internal/app/http/middleware"
	billingdomain "tubelens-api/internal/domain/billing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentDTO struct {
	ID         uuid.UUID `json:"id"`
	Plan       string    `json:"plan"`
	Amount     float64   `json:"amount"` // in major units
	Currency   string    `json:"currency"`
	Status     string    `json:"status"`
	InvoiceID  string    `json:"invoice_id"`
	ReceiptURL *string   `json:"receipt_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GET /payments
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return
	}

	var payments []billingdomain.Payment
	if err := h.db.WithContext(c.Request.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	out := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentDTO{
			ID:         p.ID,
			Plan:       p.Plan,
			Amount:     float64(p.AmountCents) / 100.0,
			Currency:   p.Currency,
			Status:     p.Status,
			InvoiceID:  p.StripeInvoiceID,
			ReceiptURL: p.ReceiptURL,
			CreatedAt:  p.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
