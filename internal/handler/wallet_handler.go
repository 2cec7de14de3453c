package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"leisuretimez/internal/middleware"
	"leisuretimez/internal/service"

	"github.com/gin-gonic/gin"
)

// amountField accepts an amount sent either as a JSON number or as a decimal string.
type amountField string

func (a *amountField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.New("amount must be a number")
	}
	*a = amountField(n.String())
	return nil
}

func (a amountField) cents() (int64, error) {
	return service.ParseAmount(string(a))
}

type WalletHandler struct {
	svc  *service.WalletService
	auth *service.AuthService
}

func NewWalletHandler(svc *service.WalletService, auth *service.AuthService) *WalletHandler {
	return &WalletHandler{svc: svc, auth: auth}
}

// Get returns the caller's wallet.
func (h *WalletHandler) Get(c *gin.Context) {
	w, err := h.svc.GetByUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                 w.ID,
		"balance":            service.FormatCents(w.BalanceCents),
		"balance_cents":      w.BalanceCents,
		"currency":           w.Currency,
		"is_active":          w.IsActive,
		"stripe_customer_id": w.StripeCustomerID,
	})
}

func (h *WalletHandler) Create(c *gin.Context) {
	u, err := h.auth.GetUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	w, err := h.svc.Create(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, service.ErrWalletExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

func (h *WalletHandler) Deposit(c *gin.Context) {
	var req struct {
		Amount          amountField `json:"amount" binding:"required"`
		PaymentMethodID string      `json:"payment_method_id"`
		SuccessURL      string      `json:"success_url"`
		CancelURL       string      `json:"cancel_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := req.Amount.cents()
	if err != nil {
		fail(c, err)
		return
	}
	w, err := h.svc.GetByUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.svc.StartDeposit(c.Request.Context(), w, service.DepositRequest{
		AmountCents:     amount,
		PaymentMethodID: req.PaymentMethodID,
		SuccessURL:      req.SuccessURL,
		CancelURL:       req.CancelURL,
	})
	if err != nil {
		fail(c, err)
		return
	}
	switch {
	case res.CheckoutURL != "":
		c.JSON(http.StatusOK, gin.H{"checkout_url": res.CheckoutURL, "session_id": res.SessionID, "transaction": res.Transaction})
	case res.RequiresAction:
		c.JSON(http.StatusOK, gin.H{"requires_action": true, "payment_intent_client_secret": res.ClientSecret, "payment_intent_id": res.IntentID})
	default:
		c.JSON(http.StatusOK, gin.H{"status": res.IntentStatus, "payment_intent_id": res.IntentID, "transaction": res.Transaction})
	}
}

func (h *WalletHandler) owned(c *gin.Context) (uint, bool) {
	id, ok := paramID(c, "id")
	if !ok {
		return 0, false
	}
	if _, err := h.svc.GetOwned(id, middleware.GetUserID(c)); err != nil {
		fail(c, err)
		return 0, false
	}
	return id, true
}

func (h *WalletHandler) Withdraw(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	var req struct {
		Amount      amountField `json:"amount" binding:"required"`
		Description string      `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := req.Amount.cents()
	if err != nil {
		fail(c, err)
		return
	}
	desc := req.Description
	if desc == "" {
		desc = "Wallet withdrawal"
	}
	t, err := h.svc.Withdraw(id, amount, "", desc)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *WalletHandler) Transfer(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	var req struct {
		RecipientID uint        `json:"recipient_id" binding:"required"`
		Amount      amountField `json:"amount" binding:"required"`
		Description string      `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	amount, err := req.Amount.cents()
	if err != nil {
		fail(c, err)
		return
	}
	t, err := h.svc.Transfer(id, req.RecipientID, amount, req.Description)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *WalletHandler) Transactions(c *gin.Context) {
	id, ok := h.owned(c)
	if !ok {
		return
	}
	list, err := h.svc.Transactions(id, c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// History lists the caller's settled transactions.
func (h *WalletHandler) History(c *gin.Context) {
	w, err := h.svc.GetByUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.svc.History(w.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// AllTransactions lists every transaction on the caller's wallet.
func (h *WalletHandler) AllTransactions(c *gin.Context) {
	w, err := h.svc.GetByUser(middleware.GetUserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	list, err := h.svc.Transactions(w.ID, c.Query("type"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *WalletHandler) VerifyPayment(c *gin.Context) {
	t, err := h.svc.VerifyDeposit(c.Request.Context(), c.Param("session_id"), middleware.GetUserID(c))
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotDone) && t != nil {
			c.JSON(http.StatusBadRequest, gin.H{"status": "pending", "message": err.Error(), "transaction_id": t.ID})
			return
		}
		failStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"amount":      service.FormatCents(t.AmountCents),
		"transaction": t,
	})
}
