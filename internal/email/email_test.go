package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"0", "$0.00"},
		{"9.5", "$9.50"},
		{"999.99", "$999.99"},
		{"1000", "$1,000.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-42.1", "-$42.10"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(decimal.RequireFromString(tt.input)))
		})
	}
}

func TestBuildOrderConfirmationBody(t *testing.T) {
	body := BuildOrderConfirmationBody("ORD-1234", decimal.RequireFromString("93.47"), []OrderItem{
		{ProductID: 1, Name: "Serum <Deluxe>", Quantity: 2, Price: decimal.RequireFromString("29.99")},
		{ProductID: 5, Quantity: 1, Price: decimal.RequireFromString("24.99")},
	})

	assert.Contains(t, body, "ORD-1234")
	assert.Contains(t, body, "Serum &lt;Deluxe&gt;")
	assert.Contains(t, body, "$59.98")
	assert.Contains(t, body, "Product #5")
	assert.Contains(t, body, "$93.47")
}

func TestService_SendOrderConfirmation(t *testing.T) {
	svc := NewService("smtp.test", "1025", "shop@example.com", "", "")

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := svc.SendOrderConfirmation("jane@example.com", "ORD-1", decimal.RequireFromString("10"), nil)

	require.NoError(t, err)
	assert.Equal(t, "smtp.test:1025", gotAddr)
	assert.Nil(t, gotAuth)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"jane@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(string(gotMsg), "From: shop@example.com\r\nTo: jane@example.com\r\n"))
	assert.Contains(t, string(gotMsg), "Subject: Order confirmation: thank you for your order (ORD-1)")
}

func TestNewService_WithCredentialsUsesPlainAuth(t *testing.T) {
	svc := NewService("smtp.test", "587", "shop@example.com", "user", "pass")

	assert.NotNil(t, svc.auth)
}
