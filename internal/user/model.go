package user

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when no user exists for the requested id.
var ErrNotFound = errors.New("user not found")

// ErrCustomerIDNotSupported is reported by stores whose schema does not carry
// a Stripe customer id column. Callers treat it as a silent skip, not a failure.
var ErrCustomerIDNotSupported = errors.New("stripe customer id not supported by user store")

// User is the shop identity that baskets and orders may belong to.
// StripeCustomerID links the user to the Stripe-side customer record and is
// only ever written by the payment customer reconciler.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	Username         string
	StripeCustomerID string
}

// DisplayName returns the user's full name, falling back to the username when blank.
func (u User) DisplayName() string {
	full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if full != "" {
		return full
	}
	return u.Username
}
