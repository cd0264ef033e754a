package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/order"
	"github.com/noah-isme/shop-stripe/internal/user"
)

// Line is a displayable charge line presented on the hosted checkout page.
// Total already includes the quantity.
type Line struct {
	Name     string
	Quantity int64
	Total    decimal.Decimal
}

// Payable is the uniform view of something a checkout session can charge for:
// either a live basket or an already converted order.
type Payable struct {
	kind   ReferenceKind
	basket cart.Basket
	order  order.Order
}

// BasketPayable wraps a basket.
func BasketPayable(b cart.Basket) Payable {
	return Payable{kind: KindBasket, basket: b}
}

// OrderPayable wraps an order.
func OrderPayable(o order.Order) Payable {
	return Payable{kind: KindOrder, order: o}
}

// Kind reports whether the payable is a basket or an order.
func (p Payable) Kind() ReferenceKind { return p.kind }

// ID returns the underlying entity id.
func (p Payable) ID() string {
	if p.kind == KindOrder {
		return p.order.ID
	}
	return p.basket.ID
}

// Reference returns the encoded client reference for this payable.
func (p Payable) Reference() string {
	return Reference(p.kind, p.ID())
}

// OwnerID returns the owning user id, empty for guest checkouts.
func (p Payable) OwnerID() string {
	if p.kind == KindOrder {
		return p.order.UserID
	}
	return p.basket.UserID
}

// GuestEmail returns the contact email used when no user owns the payable.
func (p Payable) GuestEmail() string {
	if p.kind == KindOrder {
		return p.order.Email
	}
	return p.basket.GuestEmail()
}

// Total returns the amount still owed on the payable: the basket total, or
// the order's unpaid remainder.
func (p Payable) Total() decimal.Decimal {
	if p.kind == KindOrder {
		return p.order.AmountOutstanding()
	}
	return p.basket.Total()
}

// Lines flattens the payable's items into checkout display lines.
func (p Payable) Lines() []Line {
	if p.kind == KindOrder {
		lines := make([]Line, 0, len(p.order.Items))
		for _, item := range p.order.Items {
			lines = append(lines, Line{Name: item.Name, Quantity: item.Quantity, Total: item.Total})
		}
		return lines
	}
	lines := make([]Line, 0, len(p.basket.Items))
	for _, item := range p.basket.Items {
		lines = append(lines, Line{Name: item.Name, Quantity: item.Quantity, Total: item.Total})
	}
	return lines
}

func (p Payable) String() string {
	return fmt.Sprintf("%s %s", p.kind, p.ID())
}

// BasketStore is the basket access the payment flow needs.
type BasketStore interface {
	Get(ctx context.Context, id string) (cart.Basket, error)
	Delete(ctx context.Context, id string) error
}

// OrderStore is the order access the payment flow needs.
type OrderStore interface {
	Get(ctx context.Context, id string) (order.Order, error)
	CreateFromBasket(ctx context.Context, b cart.Basket, status string) (order.Order, error)
	Pay(ctx context.Context, orderID string, p order.Payment, status string) error
}

// UserStore is the user access the customer reconciler needs.
type UserStore interface {
	Get(ctx context.Context, id string) (user.User, error)
	SaveStripeCustomerID(ctx context.Context, userID, customerID string) error
}
