package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"

	"github.com/noah-isme/shop-stripe/internal/user"
)

// CustomerReconciler keeps shop users linked to Stripe customer records. Each
// checkout reasserts the user's current email and name on the Stripe side so
// the hosted page prefills correctly.
type CustomerReconciler struct {
	Provider Provider
	Users    UserStore
	Log      zerolog.Logger
}

// Reconcile resolves the Stripe customer id to attach to a checkout session.
// Guests without an email get no customer at all; registered users reuse
// their cached customer id, falling back to creating a fresh customer when
// the cached one can no longer be updated.
func (r CustomerReconciler) Reconcile(ctx context.Context, p Payable) (string, error) {
	ownerID := p.OwnerID()
	if ownerID == "" {
		email := strings.TrimSpace(p.GuestEmail())
		if email == "" {
			return "", nil
		}
		customer, err := r.Provider.CreateCustomer(ctx, &stripe.CustomerCreateParams{
			Email: stripe.String(email),
		})
		if err != nil {
			return "", fmt.Errorf("create guest customer: %w", err)
		}
		return customer.ID, nil
	}

	u, err := r.Users.Get(ctx, ownerID)
	if err != nil {
		return "", fmt.Errorf("load payable owner: %w", err)
	}

	if u.StripeCustomerID != "" {
		_, err := r.Provider.UpdateCustomer(ctx, u.StripeCustomerID, &stripe.CustomerUpdateParams{
			Email: stripe.String(u.Email),
			Name:  stripe.String(u.DisplayName()),
		})
		if err == nil {
			return u.StripeCustomerID, nil
		}
		// Customer may have been deleted upstream. Fall through and mint a
		// fresh one rather than failing the checkout.
		r.Log.Warn().Err(err).
			Str("user_id", u.ID).
			Str("customer_id", u.StripeCustomerID).
			Msg("stripe customer update failed, creating replacement")
	}

	customer, err := r.Provider.CreateCustomer(ctx, &stripe.CustomerCreateParams{
		Email: stripe.String(u.Email),
		Name:  stripe.String(u.DisplayName()),
	})
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := r.Users.SaveStripeCustomerID(ctx, u.ID, customer.ID); err != nil {
		if !errors.Is(err, user.ErrCustomerIDNotSupported) {
			r.Log.Warn().Err(err).
				Str("user_id", u.ID).
				Str("customer_id", customer.ID).
				Msg("could not persist stripe customer id")
		}
	}
	return customer.ID, nil
}
