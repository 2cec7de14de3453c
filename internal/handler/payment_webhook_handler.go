package handler

import (
	"errors"
	"io"
	"net/http"

	"leisuretimez/internal/service"
	"leisuretimez/pkg/payment"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// maxWebhookBody matches Stripe's documented payload ceiling.
const maxWebhookBody = 65536

type PaymentWebhookHandler struct {
	svc *service.WebhookService
}

func NewPaymentWebhookHandler(svc *service.WebhookService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{svc: svc}
}

// Handle receives Stripe events. Replayed event IDs are acknowledged without work.
func (h *PaymentWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	dup, err := h.svc.Handle(body, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			log.WithError(err).Warn("stripe webhook rejected")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		log.WithError(err).Error("stripe webhook failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": dup})
}
