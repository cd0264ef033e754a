package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/common"
	"github.com/noah-isme/shop-stripe/internal/order"
)

// Fulfillment turns a completed checkout session into a paid order. Basket
// sessions convert the basket into an order and consume the basket; order
// sessions record the payment against the existing order.
type Fulfillment struct {
	Baskets    BasketStore
	Orders     OrderStore
	PaidStatus string
	Log        zerolog.Logger
}

// Fulfill processes a completed checkout session. Errors carry the HTTP
// status and the exact acknowledgment body the provider expects.
func (f Fulfillment) Fulfill(ctx context.Context, session stripe.CheckoutSession) error {
	kind, id, err := ParseReference(session.ClientReferenceID)
	if err != nil {
		return common.NewAppError("INVALID_REFERENCE", "Invalid session reference", http.StatusBadRequest, err)
	}

	var target order.Order
	consumedBasket := ""
	switch kind {
	case KindBasket:
		b, err := f.Baskets.Get(ctx, id)
		if errors.Is(err, cart.ErrNotFound) {
			// A redelivered webhook for an already converted basket lands
			// here: the basket was consumed on first delivery.
			return common.NewAppError("MISSING_BASKET", "Missing basket", http.StatusBadRequest, err)
		}
		if err != nil {
			return common.NewAppError("FULFILLMENT_ERROR", "Fulfillment failed", http.StatusInternalServerError, err)
		}
		target, err = f.Orders.CreateFromBasket(ctx, b, f.PaidStatus)
		if err != nil {
			return common.NewAppError("FULFILLMENT_ERROR", "Fulfillment failed", http.StatusInternalServerError, err)
		}
		consumedBasket = b.ID
	case KindOrder:
		target, err = f.Orders.Get(ctx, id)
		if errors.Is(err, order.ErrNotFound) {
			return common.NewAppError("MISSING_ORDER", "Missing order", http.StatusBadRequest, err)
		}
		if err != nil {
			return common.NewAppError("FULFILLMENT_ERROR", "Fulfillment failed", http.StatusInternalServerError, err)
		}
	}

	p := order.Payment{
		Amount: fromCents(session.AmountTotal),
		Method: Identifier,
	}
	if session.PaymentIntent != nil {
		p.TransactionID = session.PaymentIntent.ID
	}
	if err := f.Orders.Pay(ctx, target.ID, p, f.PaidStatus); err != nil {
		return common.NewAppError("FULFILLMENT_ERROR", "Fulfillment failed", http.StatusInternalServerError, err)
	}

	if consumedBasket != "" {
		if err := f.Baskets.Delete(ctx, consumedBasket); err != nil {
			// The order is already paid; a leftover basket only risks a
			// duplicate order on redelivery, so do not fail the ack.
			f.Log.Warn().Err(err).Str("basket_id", consumedBasket).Msg("could not delete consumed basket")
		}
	}

	f.Log.Info().
		Str("reference", session.ClientReferenceID).
		Str("order_id", target.ID).
		Str("order_ref", target.Ref).
		Str("amount", p.Amount.String()).
		Msg("order fulfilled")
	return nil
}
