package orders

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func history() []Order {
	return []Order{
		{ID: "ORD-001", Status: StatusDelivered, Total: decimal.RequireFromString("89.98"), Items: 3},
		{ID: "ORD-002", Status: StatusProcessing, Total: decimal.RequireFromString("45.99"), Items: 1},
		{ID: "ORD-003", Status: StatusCancelled, Total: decimal.RequireFromString("12.99"), Items: 1},
		{ID: "ORD-004", Status: "delivered", Total: decimal.RequireFromString("9.99"), Items: 1},
		{ID: "ORD-005", Status: StatusShipped, Total: decimal.RequireFromString("30.00"), Items: 2},
	}
}

func orderIDs(orders []Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		tab      Tab
		expected []string
	}{
		{TabAll, []string{"ORD-001", "ORD-002", "ORD-003", "ORD-004", "ORD-005"}},
		{TabProcessing, []string{"ORD-002"}},
		{TabDelivered, []string{"ORD-001", "ORD-004"}},
		{TabCancelled, []string{"ORD-003"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			assert.Equal(t, tt.expected, orderIDs(Filter(history(), tt.tab)))
		})
	}
}

func TestCounts(t *testing.T) {
	counts := Counts(history())

	assert.Equal(t, 5, counts[TabAll])
	assert.Equal(t, 1, counts[TabProcessing])
	assert.Equal(t, 2, counts[TabDelivered])
	assert.Equal(t, 1, counts[TabCancelled])
}

func TestParseTab(t *testing.T) {
	tab, err := ParseTab("")
	require.NoError(t, err)
	assert.Equal(t, TabAll, tab)

	tab, err = ParseTab(" Delivered ")
	require.NoError(t, err)
	assert.Equal(t, TabDelivered, tab)

	_, err = ParseTab("returned")
	assert.ErrorIs(t, err, ErrUnknownStatusTab)
}

func TestOrder_Cancellable(t *testing.T) {
	assert.True(t, Order{Status: StatusProcessing}.Cancellable())
	assert.False(t, Order{Status: StatusShipped}.Cancellable())
	assert.False(t, Order{Status: StatusDelivered}.Cancellable())
	assert.False(t, Order{Status: StatusCancelled}.Cancellable())
}

func TestOrder_DecodesServiceJSON(t *testing.T) {
	raw := `{"id":"ORD-001","date":"2024-01-15","status":"Delivered","total":89.98,"items":3,
		"estimatedDelivery":"2024-01-20","trackingNumber":"TRK-123456789",
		"products":[{"name":"Vintage Camera Print","quantity":1,"price":29.99}]}`

	var o Order
	require.NoError(t, json.Unmarshal([]byte(raw), &o))

	assert.Equal(t, StatusDelivered, o.Status)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("89.98")))
	require.Len(t, o.Products, 1)
	assert.Equal(t, "29.99", o.Products[0].Price.StringFixed(2))
}
