package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// StubGateway is an in-memory Gateway for development and tests. Webhook payloads are
// plain Event JSON and signatures are not checked.
type StubGateway struct {
	mu       sync.Mutex
	sessions map[string]*CheckoutSession
	// IntentStatus is returned by CreatePaymentIntent; defaults to succeeded.
	IntentStatus string
	// FailCheckout makes CreateCheckoutSession return an error.
	FailCheckout bool
	Requests     []CheckoutRequest
}

func NewStubGateway() *StubGateway {
	return &StubGateway{sessions: make(map[string]*CheckoutSession)}
}

func (s *StubGateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	return "cus_" + uuid.NewString()[:14], nil
}

func (s *StubGateway) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailCheckout {
		return nil, errors.New("stub checkout unavailable")
	}
	s.Requests = append(s.Requests, req)
	var total int64
	for _, it := range req.Items {
		q := it.Quantity
		if q <= 0 {
			q = 1
		}
		total += it.AmountCents * q
	}
	id := "cs_test_" + uuid.NewString()
	sess := &CheckoutSession{
		ID:            id,
		URL:           "https://checkout.stripe.test/" + id,
		PaymentStatus: "unpaid",
		Status:        "open",
		CustomerEmail: req.CustomerEmail,
		AmountTotal:   total,
		Currency:      req.Currency,
		Metadata:      req.Metadata,
	}
	s.sessions[id] = sess
	cp := *sess
	return &cp, nil
}

func (s *StubGateway) GetCheckoutSession(ctx context.Context, id string) (*CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	cp := *sess
	return &cp, nil
}

// MarkPaid flips a stored session to paid, as if the customer completed checkout.
func (s *StubGateway) MarkPaid(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.PaymentStatus = "paid"
		sess.Status = "complete"
	}
}

func (s *StubGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*PaymentIntent, error) {
	status := s.IntentStatus
	if status == "" {
		status = IntentSucceeded
	}
	id := "pi_" + uuid.NewString()
	return &PaymentIntent{
		ID:           id,
		Status:       status,
		ClientSecret: id + "_secret",
		AmountCents:  req.AmountCents,
		CustomerID:   req.CustomerID,
		Metadata:     req.Metadata,
	}, nil
}

func (s *StubGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil || ev.ID == "" {
		return nil, ErrInvalidSignature
	}
	return &ev, nil
}
