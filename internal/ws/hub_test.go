package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcastReachesOnlyThatUser(t *testing.T) {
	h := NewHub()
	a1, a2, b := NewClient(1), NewClient(1), NewClient(2)
	h.Register(a1)
	h.Register(a2)
	h.Register(b)
	assert.Equal(t, 3, h.ClientCount())

	h.BroadcastToUser(1, map[string]string{"type": "notification"})

	for _, c := range []*Client{a1, a2} {
		select {
		case msg := <-c.Send:
			var got map[string]string
			require.NoError(t, json.Unmarshal(msg, &got))
			assert.Equal(t, "notification", got["type"])
		default:
			t.Fatal("expected a message")
		}
	}
	assert.Empty(t, b.Send)
}

func TestCloseUnregistersAndIsIdempotent(t *testing.T) {
	h := NewHub()
	c := NewClient(1)
	h.Register(c)

	c.Close()
	c.Close()
	assert.Equal(t, 0, h.ClientCount())

	_, open := <-c.Send
	assert.False(t, open)

	assert.NotPanics(t, func() { h.BroadcastToUser(1, "ping") })
}

func TestSlowClientDropsMessages(t *testing.T) {
	h := NewHub()
	c := NewClient(1)
	h.Register(c)
	for i := 0; i < cap(c.Send)+10; i++ {
		h.BroadcastToUser(1, i)
	}
	assert.Len(t, c.Send, cap(c.Send))
}
