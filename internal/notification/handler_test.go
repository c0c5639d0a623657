package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/storefront/internal/activity"
	"github.com/example/storefront/internal/email"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMail struct {
	To      string
	OrderID string
	Total   decimal.Decimal
	Items   []email.OrderItem
}

// mockMailer records confirmations instead of sending them
type mockMailer struct {
	sent []sentMail
	err  error
}

func (m *mockMailer) SendOrderConfirmation(to, orderID string, total decimal.Decimal, items []email.OrderItem) error {
	m.sent = append(m.sent, sentMail{To: to, OrderID: orderID, Total: total, Items: items})
	return m.err
}

func encodeEvent(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	raw, err := json.Marshal(activity.Event{ID: "evt-1", ClientID: "client-1", EventType: eventType, Data: payload})
	require.NoError(t, err)
	return raw
}

func TestHandler_OrderPlacedSendsConfirmation(t *testing.T) {
	mailer := &mockMailer{}
	h := NewHandler(mailer)

	value := encodeEvent(t, activity.EventOrderPlaced, activity.OrderPlaced{
		OrderID: "ORD-1",
		Email:   "jane@example.com",
		Items:   []activity.OrderLine{{ProductID: 1, Name: "Serum", Quantity: 2, Price: "29.99"}},
		Total:   "65.98",
	})

	require.NoError(t, h.HandleEvent(context.Background(), []byte("client-1"), value))

	require.Len(t, mailer.sent, 1)
	mail := mailer.sent[0]
	assert.Equal(t, "jane@example.com", mail.To)
	assert.Equal(t, "ORD-1", mail.OrderID)
	assert.Equal(t, "65.98", mail.Total.StringFixed(2))
	require.Len(t, mail.Items, 1)
	assert.Equal(t, "Serum", mail.Items[0].Name)
}

func TestHandler_OtherEventsAreIgnored(t *testing.T) {
	mailer := &mockMailer{}
	h := NewHandler(mailer)

	value := encodeEvent(t, activity.EventCartUpdated, activity.CartUpdated{Action: "add"})

	require.NoError(t, h.HandleEvent(context.Background(), nil, value))
	assert.Empty(t, mailer.sent)
}

func TestHandler_MissingEmailSkipsSend(t *testing.T) {
	mailer := &mockMailer{}
	h := NewHandler(mailer)

	value := encodeEvent(t, activity.EventOrderPlaced, activity.OrderPlaced{OrderID: "ORD-1", Total: "1.00"})

	require.NoError(t, h.HandleEvent(context.Background(), nil, value))
	assert.Empty(t, mailer.sent)
}

func TestHandler_Errors(t *testing.T) {
	h := NewHandler(&mockMailer{err: errors.New("smtp down")})

	assert.Error(t, h.HandleEvent(context.Background(), nil, []byte("not json")))

	bad := encodeEvent(t, activity.EventOrderPlaced, activity.OrderPlaced{OrderID: "ORD-1", Email: "a@b.co", Total: "abc"})
	assert.Error(t, h.HandleEvent(context.Background(), nil, bad))

	ok := encodeEvent(t, activity.EventOrderPlaced, activity.OrderPlaced{OrderID: "ORD-1", Email: "a@b.co", Total: "1.00"})
	assert.EqualError(t, h.HandleEvent(context.Background(), nil, ok), "smtp down")
}
