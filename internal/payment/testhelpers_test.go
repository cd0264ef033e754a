package payment

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"

	"github.com/noah-isme/shop-stripe/internal/cart"
	"github.com/noah-isme/shop-stripe/internal/order"
	"github.com/noah-isme/shop-stripe/internal/user"
)

type fakeProvider struct {
	created    []*stripe.CustomerCreateParams
	updated    map[string]*stripe.CustomerUpdateParams
	updateErr  error
	sessions   []*stripe.CheckoutSessionCreateParams
	sessionErr error
	refunds    []*stripe.RefundCreateParams
	refundErr  error
}

func (p *fakeProvider) CreateCustomer(_ context.Context, params *stripe.CustomerCreateParams) (*stripe.Customer, error) {
	p.created = append(p.created, params)
	return &stripe.Customer{ID: fmt.Sprintf("cus_%d", len(p.created))}, nil
}

func (p *fakeProvider) UpdateCustomer(_ context.Context, id string, params *stripe.CustomerUpdateParams) (*stripe.Customer, error) {
	if p.updateErr != nil {
		return nil, p.updateErr
	}
	if p.updated == nil {
		p.updated = map[string]*stripe.CustomerUpdateParams{}
	}
	p.updated[id] = params
	return &stripe.Customer{ID: id}, nil
}

func (p *fakeProvider) CreateSession(_ context.Context, params *stripe.CheckoutSessionCreateParams) (*stripe.CheckoutSession, error) {
	if p.sessionErr != nil {
		return nil, p.sessionErr
	}
	p.sessions = append(p.sessions, params)
	return &stripe.CheckoutSession{
		ID:  fmt.Sprintf("cs_%d", len(p.sessions)),
		URL: fmt.Sprintf("https://checkout.stripe.com/pay/cs_%d", len(p.sessions)),
	}, nil
}

func (p *fakeProvider) CreateRefund(_ context.Context, params *stripe.RefundCreateParams) (*stripe.Refund, error) {
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	p.refunds = append(p.refunds, params)
	return &stripe.Refund{ID: fmt.Sprintf("re_%d", len(p.refunds))}, nil
}

type memBaskets struct {
	baskets map[string]cart.Basket
	deleted []string
}

func (s *memBaskets) Get(_ context.Context, id string) (cart.Basket, error) {
	b, ok := s.baskets[id]
	if !ok {
		return cart.Basket{}, cart.ErrNotFound
	}
	return b, nil
}

func (s *memBaskets) Delete(_ context.Context, id string) error {
	if _, ok := s.baskets[id]; !ok {
		return cart.ErrNotFound
	}
	delete(s.baskets, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type paidCall struct {
	orderID string
	payment order.Payment
	status  string
}

type memOrders struct {
	orders  map[string]order.Order
	created []order.Order
	paid    []paidCall
}

func (s *memOrders) Get(_ context.Context, id string) (order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o, nil
}

func (s *memOrders) CreateFromBasket(_ context.Context, b cart.Basket, status string) (order.Order, error) {
	o := order.Order{
		ID:     fmt.Sprintf("order-%d", len(s.created)+1),
		Ref:    fmt.Sprintf("SH-2026-%08d", len(s.created)+1),
		UserID: b.UserID,
		Email:  b.GuestEmail(),
		Status: status,
		Total:  b.Total(),
	}
	for _, item := range b.Items {
		o.Items = append(o.Items, order.Item{
			Name: item.Name, Quantity: item.Quantity,
			UnitPrice: item.UnitPrice, Total: item.Total,
		})
	}
	if s.orders == nil {
		s.orders = map[string]order.Order{}
	}
	s.orders[o.ID] = o
	s.created = append(s.created, o)
	return o, nil
}

func (s *memOrders) Pay(_ context.Context, orderID string, p order.Payment, status string) error {
	o, ok := s.orders[orderID]
	if !ok {
		return order.ErrNotFound
	}
	o.Payments = append(o.Payments, p)
	o.Status = status
	o.TransactionID = p.TransactionID
	o.PaymentMethod = p.Method
	s.orders[orderID] = o
	s.paid = append(s.paid, paidCall{orderID: orderID, payment: p, status: status})
	return nil
}

type memUsers struct {
	users map[string]user.User
	saved map[string]string
	// saveErr lets tests simulate stores without a customer id column.
	saveErr error
}

func (s *memUsers) Get(_ context.Context, id string) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *memUsers) SaveStripeCustomerID(_ context.Context, userID, customerID string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	if s.saved == nil {
		s.saved = map[string]string{}
	}
	s.saved[userID] = customerID
	u := s.users[userID]
	u.StripeCustomerID = customerID
	s.users[userID] = u
	return nil
}
