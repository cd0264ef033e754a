package payment

import (
	"context"

	"github.com/stripe/stripe-go/v82"
)

// Identifier is the payment method key this gateway registers under. It is
// recorded on fulfilled orders and reported back to checkout clients.
const Identifier = "stripe"

// Provider abstracts the Stripe API surface the gateway depends on, so tests
// can run without network access.
type Provider interface {
	CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error)
	UpdateCustomer(ctx context.Context, id string, params *stripe.CustomerUpdateParams) (*stripe.Customer, error)
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error)
	CreateRefund(ctx context.Context, params *stripe.RefundCreateParams) (*stripe.Refund, error)
}

// StripeProvider implements Provider against the live Stripe API.
type StripeProvider struct {
	Client *stripe.Client
}

// NewStripeProvider builds a provider from a secret key.
func NewStripeProvider(secretKey string) StripeProvider {
	return StripeProvider{Client: stripe.NewClient(secretKey, nil)}
}

func (p StripeProvider) CreateCustomer(ctx context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	return p.Client.V1Customers.Create(ctx, params)
}

func (p StripeProvider) UpdateCustomer(ctx context.Context, id string, params *stripe.CustomerUpdateParams) (*stripe.Customer, error) {
	return p.Client.V1Customers.Update(ctx, id, params)
}

func (p StripeProvider) CreateSession(ctx context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	return p.Client.V1CheckoutSessions.Create(ctx, params)
}

func (p StripeProvider) CreateRefund(ctx context.Context, params *stripe.RefundCreateParams) (*stripe.Refund, error) {
	return p.Client.V1Refunds.Create(ctx, params)
}
