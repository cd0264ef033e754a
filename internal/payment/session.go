package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
)

var centsPerUnit = decimal.NewFromInt(100)

// SessionBuilder assembles hosted checkout session parameters for a payable.
type SessionBuilder struct {
	Reconciler CustomerReconciler
	Currency   string
	SuccessURL string
	CancelURL  string
}

// Params builds the checkout session creation parameters. An empty currency
// falls back to the configured default.
func (b SessionBuilder) Params(ctx context.Context, p Payable, currency string) (*stripe.CheckoutSessionCreateParams, error) {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = strings.ToLower(strings.TrimSpace(b.Currency))
	}

	lines := p.Lines()
	lineItems := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(lines))
	for _, line := range lines {
		lineItems = append(lineItems, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(toCents(line.Total)),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%dx %s", line.Quantity, line.Name)),
				},
			},
			// Each display line already carries its full total, so the
			// Stripe-side quantity is always one.
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String("payment"),
		LineItems:         lineItems,
		ClientReferenceID: stripe.String(p.Reference()),
		SuccessURL:        stripe.String(b.SuccessURL),
		CancelURL:         stripe.String(b.CancelURL),
	}

	customerID, err := b.Reconciler.Reconcile(ctx, p)
	if err != nil {
		return nil, err
	}
	if customerID != "" {
		params.Customer = stripe.String(customerID)
	} else if email := strings.TrimSpace(p.GuestEmail()); email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	return params, nil
}

// toCents converts a decimal major-unit amount to Stripe's integer minor
// units, rounding half away from zero.
func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(centsPerUnit).Round(0).IntPart()
}

// fromCents converts Stripe's integer minor units back to a decimal amount.
func fromCents(cents int64) decimal.Decimal {
	return decimal.NewFromInt(cents).Div(centsPerUnit)
}
