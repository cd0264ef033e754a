package payment

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/common"
	"github.com/noah-isme/shop-stripe/internal/order"
)

func widgetBasket() cart.Basket {
	return cart.Basket{
		ID:    "42",
		Email: "guest@example.com",
		Items: []cart.Item{{
			Name:      "Widget",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("10.00"),
			Total:     decimal.RequireFromString("20.00"),
		}},
	}
}

func completedSession(reference string, amountCents int64) stripe.CheckoutSession {
	return stripe.CheckoutSession{
		ClientReferenceID: reference,
		AmountTotal:       amountCents,
		PaymentIntent:     &stripe.PaymentIntent{ID: "pi_123"},
	}
}

func TestFulfillBasketSession(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]cart.Basket{"42": widgetBasket()}}
	orders := &memOrders{}
	f := Fulfillment{Baskets: baskets, Orders: orders, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	err := f.Fulfill(context.Background(), completedSession("basket_42", 2000))
	require.NoError(t, err)

	require.Len(t, orders.created, 1)
	created := orders.created[0]
	require.Equal(t, "PROCESSING", created.Status)
	require.Equal(t, "guest@example.com", created.Email)
	require.True(t, created.Total.Equal(decimal.RequireFromString("20.00")))

	require.Len(t, orders.paid, 1)
	paid := orders.paid[0]
	require.Equal(t, created.ID, paid.orderID)
	require.Equal(t, "PROCESSING", paid.status)
	require.Equal(t, Identifier, paid.payment.Method)
	require.Equal(t, "pi_123", paid.payment.TransactionID)
	require.True(t, paid.payment.Amount.Equal(decimal.RequireFromString("20.00")))

	require.Equal(t, []string{"42"}, baskets.deleted)
}

func TestFulfillRedeliveredBasketSession(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]cart.Basket{"42": widgetBasket()}}
	orders := &memOrders{}
	f := Fulfillment{Baskets: baskets, Orders: orders, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	require.NoError(t, f.Fulfill(context.Background(), completedSession("basket_42", 2000)))

	// The basket was consumed on first delivery, so the retry is rejected
	// instead of producing a second order.
	err := f.Fulfill(context.Background(), completedSession("basket_42", 2000))
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "MISSING_BASKET", app.Code)
	require.Equal(t, "Missing basket", app.Message)
	require.Equal(t, http.StatusBadRequest, app.HTTPStatus)
	require.Len(t, orders.created, 1)
	require.Len(t, orders.paid, 1)
}

func TestFulfillOrderSession(t *testing.T) {
	existing := order.Order{
		ID:     "order-7",
		Ref:    "SH-2026-00000007",
		Status: "CREATED",
		Total:  decimal.RequireFromString("49.99"),
	}
	orders := &memOrders{orders: map[string]order.Order{"order-7": existing}}
	f := Fulfillment{Baskets: &memBaskets{}, Orders: orders, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	err := f.Fulfill(context.Background(), completedSession("order_order-7", 4999))
	require.NoError(t, err)

	require.Empty(t, orders.created)
	require.Len(t, orders.paid, 1)
	paid := orders.paid[0]
	require.Equal(t, "order-7", paid.orderID)
	require.True(t, paid.payment.Amount.Equal(decimal.RequireFromString("49.99")))
	require.Equal(t, "PROCESSING", orders.orders["order-7"].Status)
}

func TestFulfillMissingOrder(t *testing.T) {
	f := Fulfillment{Baskets: &memBaskets{}, Orders: &memOrders{}, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	err := f.Fulfill(context.Background(), completedSession("order_99", 100))
	app, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, "MISSING_ORDER", app.Code)
	require.Equal(t, "Missing order", app.Message)
}

func TestFulfillInvalidReference(t *testing.T) {
	f := Fulfillment{Baskets: &memBaskets{}, Orders: &memOrders{}, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	for _, ref := range []string{"", "widget_5", "basket_1_2"} {
		err := f.Fulfill(context.Background(), completedSession(ref, 100))
		app, ok := common.AsAppError(err)
		require.True(t, ok, "reference %q", ref)
		require.Equal(t, "INVALID_REFERENCE", app.Code)
		require.Equal(t, "Invalid session reference", app.Message)
		require.Equal(t, http.StatusBadRequest, app.HTTPStatus)
	}
}

func TestFulfillSessionWithoutPaymentIntent(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]cart.Basket{"42": widgetBasket()}}
	orders := &memOrders{}
	f := Fulfillment{Baskets: baskets, Orders: orders, PaidStatus: "PROCESSING", Log: zerolog.Nop()}

	session := completedSession("basket_42", 2000)
	session.PaymentIntent = nil
	require.NoError(t, f.Fulfill(context.Background(), session))
	require.Empty(t, orders.paid[0].payment.TransactionID)
}
