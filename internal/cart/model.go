package cart

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no basket exists for the requested id. A basket
// converted into an order is deleted, so redelivered payment webhooks for the
// same basket observe this error.
var ErrNotFound = errors.New("basket not found")

// Item is a single aggregated basket line. Total already includes quantity.
type Item struct {
	ID        string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Basket is a mutable cart owned by a registered user or a guest identity.
type Basket struct {
	ID     string
	UserID string
	Email  string
	Extra  map[string]string
	Items  []Item
}

// Total sums the basket's line totals.
func (b Basket) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range b.Items {
		total = total.Add(item.Total)
	}
	return total
}

// GuestEmail returns the contact email for baskets without an owning user.
// The dedicated email column wins; checkout extras are the legacy fallback.
func (b Basket) GuestEmail() string {
	if email := strings.TrimSpace(b.Email); email != "" {
		return email
	}
	return strings.TrimSpace(b.Extra["email"])
}
