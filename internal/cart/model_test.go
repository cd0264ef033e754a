package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBasketTotal(t *testing.T) {
	b := Basket{Items: []Item{
		{Total: decimal.RequireFromString("19.99")},
		{Total: decimal.RequireFromString("0.01")},
	}}
	require.True(t, b.Total().Equal(decimal.RequireFromString("20.00")))
	require.True(t, Basket{}.Total().IsZero())
}

func TestGuestEmail(t *testing.T) {
	require.Equal(t, "a@example.com", Basket{Email: " a@example.com "}.GuestEmail())
	require.Equal(t, "b@example.com", Basket{Extra: map[string]string{"email": "b@example.com"}}.GuestEmail())
	// The email column wins over checkout extras.
	require.Equal(t, "a@example.com", Basket{
		Email: "a@example.com",
		Extra: map[string]string{"email": "b@example.com"},
	}.GuestEmail())
	require.Empty(t, Basket{}.GuestEmail())
}
