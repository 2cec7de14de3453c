package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
)

func signed(t *testing.T, payload, secret string) string {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    secret,
		Timestamp: time.Now(),
	}).Header
}

func TestStripeWebhookDecodesSession(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_1",
			"object": "checkout.session",
			"payment_status": "paid",
			"status": "complete",
			"amount_total": 4200,
			"currency": "usd",
			"customer_details": {"email": "ada@example.com"},
			"metadata": {"type": "wallet_deposit"}
		}}
	}`

	ev, err := g.ParseWebhook([]byte(payload), signed(t, payload, "whsec_test"))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", ev.ID)
	require.NotNil(t, ev.Session)
	assert.Equal(t, "cs_1", ev.Session.ID)
	assert.Equal(t, "paid", ev.Session.PaymentStatus)
	assert.Equal(t, int64(4200), ev.Session.AmountTotal)
	assert.Equal(t, "ada@example.com", ev.Session.CustomerEmail)
	assert.Equal(t, "wallet_deposit", ev.Session.Metadata["type"])
}

func TestStripeWebhookRejectsBadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := `{"id": "evt_1", "object": "event", "type": "checkout.session.completed"}`
	_, err := g.ParseWebhook([]byte(payload), signed(t, payload, "whsec_other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
	_, err = g.ParseWebhook([]byte(payload), "")
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStubCheckoutLifecycle(t *testing.T) {
	ctx := context.Background()
	g := NewStubGateway()
	sess, err := g.CreateCheckoutSession(ctx, CheckoutRequest{
		Currency: "usd",
		Items:    []LineItem{{Name: "Trip", AmountCents: 500, Quantity: 2}, {Name: "Tax", AmountCents: 75}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1075), sess.AmountTotal)
	assert.Equal(t, "unpaid", sess.PaymentStatus)

	g.MarkPaid(sess.ID)
	got, err := g.GetCheckoutSession(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "paid", got.PaymentStatus)

	_, err = g.GetCheckoutSession(ctx, "cs_missing")
	assert.Error(t, err)

	g.FailCheckout = true
	_, err = g.CreateCheckoutSession(ctx, CheckoutRequest{})
	assert.Error(t, err)
}
