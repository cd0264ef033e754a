package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/noah-isme/shop-stripe/internal/obs"
	"github.com/noah-isme/shop-stripe/internal/order"
)

// PaymentError wraps provider failures so HTTP handlers can map them to a
// stable upstream-failure response without inspecting Stripe error types.
type PaymentError struct {
	Op  string
	Err error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment %s: %v", e.Op, e.Err)
}

func (e *PaymentError) Unwrap() error { return e.Err }

// Gateway opens hosted checkout sessions and issues refunds.
type Gateway struct {
	Provider Provider
	Builder  SessionBuilder
	Baskets  BasketStore
	Orders   OrderStore
	Log      zerolog.Logger
}

// BasketPayment opens a checkout session charging for a basket and returns
// the hosted page URL.
func (g Gateway) BasketPayment(ctx context.Context, basketID, currency string) (string, error) {
	b, err := g.Baskets.Get(ctx, basketID)
	if err != nil {
		return "", err
	}
	return g.ProcessPayment(ctx, BasketPayable(b), currency)
}

// OrderPayment opens a checkout session for an existing order and returns
// the hosted page URL.
func (g Gateway) OrderPayment(ctx context.Context, orderID, currency string) (string, error) {
	o, err := g.Orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	return g.ProcessPayment(ctx, OrderPayable(o), currency)
}

// ProcessPayment creates the Stripe session for a payable.
func (g Gateway) ProcessPayment(ctx context.Context, p Payable, currency string) (string, error) {
	params, err := g.Builder.Params(ctx, p, currency)
	if err != nil {
		g.countSession(p.Kind(), "error")
		return "", &PaymentError{Op: "build session", Err: err}
	}
	session, err := g.Provider.CreateSession(ctx, params)
	if err != nil {
		g.countSession(p.Kind(), "error")
		g.Log.Error().Err(err).Str("reference", p.Reference()).Msg("stripe session creation failed")
		return "", &PaymentError{Op: "create session", Err: err}
	}
	g.countSession(p.Kind(), "ok")
	g.Log.Info().
		Str("reference", p.Reference()).
		Str("session_id", session.ID).
		Msg("checkout session created")
	return session.URL, nil
}

// Refund reverses a captured payment through its payment intent. It reports
// success as a bool so callers can aggregate partial refund outcomes.
func (g Gateway) Refund(ctx context.Context, p order.Payment) bool {
	if p.TransactionID == "" {
		return false
	}
	_, err := g.Provider.CreateRefund(ctx, &stripe.RefundCreateParams{
		PaymentIntent: stripe.String(p.TransactionID),
	})
	if err != nil {
		if obs.PaymentRefundTotal != nil {
			obs.PaymentRefundTotal.WithLabelValues("error").Inc()
		}
		g.Log.Error().Err(err).Str("transaction_id", p.TransactionID).Msg("stripe refund failed")
		return false
	}
	if obs.PaymentRefundTotal != nil {
		obs.PaymentRefundTotal.WithLabelValues("ok").Inc()
	}
	g.Log.Info().Str("transaction_id", p.TransactionID).Msg("payment refunded")
	return true
}

func (g Gateway) countSession(kind ReferenceKind, result string) {
	if obs.PaymentSessionTotal != nil {
		obs.PaymentSessionTotal.WithLabelValues(string(kind), result).Inc()
	}
}
