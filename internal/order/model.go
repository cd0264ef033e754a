package order

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no order exists for the requested id.
var ErrNotFound = errors.New("order not found")

// Well-known order statuses. The paid status applied after a successful
// payment is configurable and need not be one of these.
const (
	StatusCreated    = "CREATED"
	StatusProcessing = "PROCESSING"
	StatusShipped    = "SHIPPED"
	StatusCancelled  = "CANCELLED"
)

// Item is an immutable order line captured from the basket at conversion time.
type Item struct {
	ID        string
	Name      string
	Quantity  int64
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// Payment records a single captured payment against an order.
type Payment struct {
	Amount        decimal.Decimal
	TransactionID string
	Method        string
}

// Order is a priced, immutable snapshot of a basket plus its payment state.
type Order struct {
	ID            string
	Ref           string
	UserID        string
	Email         string
	Status        string
	TransactionID string
	PaymentMethod string
	Total         decimal.Decimal
	Items         []Item
	Payments      []Payment
}

// AmountPaid sums all captured payments.
func (o Order) AmountPaid() decimal.Decimal {
	paid := decimal.Zero
	for _, p := range o.Payments {
		paid = paid.Add(p.Amount)
	}
	return paid
}

// AmountOutstanding returns the unpaid remainder, never negative.
func (o Order) AmountOutstanding() decimal.Decimal {
	due := o.Total.Sub(o.AmountPaid())
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}
