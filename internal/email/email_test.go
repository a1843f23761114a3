package email

import (
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderID:        "0123456789abcdef",
		RestaurantName: "Burger Bar",
		CustomerName:   "Ada <script>",
		Items: []OrderItem{
			{Name: "Burger", Options: []string{"Size: Large"}, Quantity: 2, UnitPrice: "9.50 EUR", Subtotal: "19.00 EUR"},
			{Name: "Fries", Quantity: 1, UnitPrice: "3.00 EUR", Subtotal: "3.00 EUR"},
		},
		Total:       "22.00 EUR",
		PickupTime:  "Mon 12:00",
		TableNumber: "",
	}
}

// ============================================
// Template Tests
// ============================================

func TestBuildOrderConfirmationBody(t *testing.T) {
	body, err := BuildOrderConfirmationBody(confirmation())

	require.NoError(t, err)
	assert.Contains(t, body, "0123456789abcdef")
	assert.Contains(t, body, "Size: Large")
	assert.Contains(t, body, "19.00 EUR")
	assert.Contains(t, body, "22.00 EUR")
	assert.Contains(t, body, "Pickup at Mon 12:00")
	assert.NotContains(t, body, "Table ")
	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "Ada &lt;script&gt;")
}

func TestBuildReservationReceivedBody(t *testing.T) {
	body, err := BuildReservationReceivedBody(ReservationReceived{
		ReservationID: "res-1", RestaurantName: "Burger Bar", Name: "Ada", PartySize: 4, Time: "Mon 1 Jan 19:30",
	})

	require.NoError(t, err)
	assert.Contains(t, body, "a table for 4 on Mon 1 Jan 19:30")
	assert.Contains(t, body, "res-1")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "01234567", ShortID("0123456789"))
	assert.Equal(t, "abc", ShortID("abc"))
}

// ============================================
// Service Tests
// ============================================

func TestService_SendOrderConfirmation(t *testing.T) {
	svc := NewService("smtp.example.com", "2525", "shop@example.com", "", "")
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg string
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		assert.Nil(t, a)
		return nil
	}

	err := svc.SendOrderConfirmation("ada@example.com", confirmation())

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:2525", gotAddr)
	assert.Equal(t, "shop@example.com", gotFrom)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.True(t, strings.HasPrefix(gotMsg, "From: shop@example.com\r\nTo: ada@example.com\r\n"))
	assert.Contains(t, gotMsg, "Subject: Your order at Burger Bar (#01234567)")
}

func TestService_UsesAuthWhenConfigured(t *testing.T) {
	svc := NewService("smtp.example.com", "587", "shop@example.com", "user", "pass")
	svc.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		assert.NotNil(t, a)
		return nil
	}

	err := svc.SendReservationReceived("ada@example.com", ReservationReceived{RestaurantName: "Burger Bar"})

	assert.NoError(t, err)
}
