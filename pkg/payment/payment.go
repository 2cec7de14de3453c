package payment

import (
	"context"
	"errors"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// LineItem is one priced row on a hosted checkout page.
type LineItem struct {
	Name        string
	AmountCents int64
	Quantity    int64
}

type CheckoutRequest struct {
	Currency      string
	Items         []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerID    string
	CustomerEmail string
	Metadata      map[string]string
}

type CheckoutSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"` // paid | unpaid | no_payment_required
	Status          string            `json:"status"`
	CustomerEmail   string            `json:"customer_email"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	PaymentIntentID string            `json:"payment_intent"`
	Metadata        map[string]string `json:"metadata"`
}

func (s *CheckoutSession) Paid() bool { return s.PaymentStatus == "paid" }

type IntentRequest struct {
	AmountCents     int64
	Currency        string
	CustomerID      string
	PaymentMethodID string
	Description     string
	Metadata        map[string]string
}

type PaymentIntent struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	ClientSecret string            `json:"client_secret"`
	AmountCents  int64             `json:"amount"`
	CustomerID   string            `json:"customer"`
	Metadata     map[string]string `json:"metadata"`
}

// PaymentIntent statuses the wallet deposit flow branches on.
const (
	IntentSucceeded             = "succeeded"
	IntentRequiresAction        = "requires_action"
	IntentRequiresConfirmation  = "requires_confirmation"
	IntentRequiresPaymentMethod = "requires_payment_method"
)

// Event types handled by the webhook.
const (
	EventIntentSucceeded  = "payment_intent.succeeded"
	EventIntentFailed     = "payment_intent.payment_failed"
	EventSessionCompleted = "checkout.session.completed"
	EventSessionExpired   = "checkout.session.expired"
)

// Event is a verified webhook notification. Exactly one of Session or Intent is set
// for the event types above.
type Event struct {
	ID      string           `json:"id"`
	Type    string           `json:"type"`
	Session *CheckoutSession `json:"session,omitempty"`
	Intent  *PaymentIntent   `json:"intent,omitempty"`
}

// Gateway is the card processor used for wallet top-ups and booking checkouts.
type Gateway interface {
	CreateCustomer(ctx context.Context, email, name string) (string, error)
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error)
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}
