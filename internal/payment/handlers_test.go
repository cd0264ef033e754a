package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/order"
)

func testHandler(provider Provider, baskets BasketStore, orders OrderStore) *Handler {
	return &Handler{
		Gateway:  testGateway(provider, baskets, orders),
		Orders:   orders,
		Validate: validator.New(),
		Label:    "Pay with Stripe",
	}
}

func postCheckout(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stripe/checkout", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Checkout(rec, req)
	return rec
}

func TestCheckoutBasket(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]cart.Basket{"42": widgetBasket()}}
	h := testHandler(&fakeProvider{}, baskets, &memOrders{})

	rec := postCheckout(t, h, `{"basketId":"42"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"url":"https://checkout.stripe.com/pay/cs_1"`)
	require.Contains(t, rec.Body.String(), `"provider":"stripe"`)
	require.Contains(t, rec.Body.String(), `"label":"Pay with Stripe"`)
}

func TestCheckoutRequiresExactlyOneTarget(t *testing.T) {
	h := testHandler(&fakeProvider{}, &memBaskets{}, &memOrders{})

	for _, body := range []string{
		`{}`,
		`{"basketId":"1","orderId":"2"}`,
	} {
		rec := postCheckout(t, h, body)
		require.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestCheckoutMissingBasket(t *testing.T) {
	h := testHandler(&fakeProvider{}, &memBaskets{}, &memOrders{})

	rec := postCheckout(t, h, `{"basketId":"nope"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "BASKET_NOT_FOUND")
}

func TestCheckoutProviderFailure(t *testing.T) {
	baskets := &memBaskets{baskets: map[string]cart.Basket{"42": widgetBasket()}}
	provider := &fakeProvider{sessionErr: context.DeadlineExceeded}
	h := testHandler(provider, baskets, &memOrders{})

	rec := postCheckout(t, h, `{"basketId":"42"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "PAYMENT_FAILED")
}

func TestReturnPages(t *testing.T) {
	h := testHandler(&fakeProvider{}, &memBaskets{}, &memOrders{})

	req := httptest.NewRequest(http.MethodGet, "/stripe/success", nil)
	rec := httptest.NewRecorder()
	h.Success(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Payment received")

	req = httptest.NewRequest(http.MethodGet, "/stripe/cancel?next=/basket", nil)
	rec = httptest.NewRecorder()
	h.Cancel(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/basket", rec.Header().Get("Location"))

	// Off-site redirect targets are ignored.
	req = httptest.NewRequest(http.MethodGet, "/stripe/cancel?next=https://evil.example", nil)
	rec = httptest.NewRecorder()
	h.Cancel(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func refundRequest(orderID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/payments/"+orderID+"/refund", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("orderId", orderID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRefundOrder(t *testing.T) {
	provider := &fakeProvider{}
	o := order.Order{
		ID: "order-7",
		Payments: []order.Payment{
			{Amount: decimal.RequireFromString("20.00"), TransactionID: "pi_123", Method: Identifier},
			{Amount: decimal.RequireFromString("5.00"), TransactionID: "bank-1", Method: "bank_transfer"},
		},
	}
	orders := &memOrders{orders: map[string]order.Order{"order-7": o}}
	h := &Handler{
		Gateway:  testGateway(provider, &memBaskets{}, orders),
		Orders:   orders,
		Validate: validator.New(),
		Label:    "Pay with Stripe",
	}
	h.Gateway.Log = zerolog.Nop()

	rec := httptest.NewRecorder()
	h.Refund(rec, refundRequest("order-7"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"refunded":1`)
	// Only the stripe payment is reversed.
	require.Len(t, provider.refunds, 1)
	require.Equal(t, "pi_123", *provider.refunds[0].PaymentIntent)
}

func TestRefundOrderWithoutStripePayments(t *testing.T) {
	orders := &memOrders{orders: map[string]order.Order{"order-7": {ID: "order-7"}}}
	h := testHandler(&fakeProvider{}, &memBaskets{}, orders)

	rec := httptest.NewRecorder()
	h.Refund(rec, refundRequest("order-7"))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Contains(t, rec.Body.String(), "NOTHING_TO_REFUND")
}

func TestRefundMissingOrder(t *testing.T) {
	h := testHandler(&fakeProvider{}, &memBaskets{}, &memOrders{})

	rec := httptest.NewRecorder()
	h.Refund(rec, refundRequest("order-99"))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
