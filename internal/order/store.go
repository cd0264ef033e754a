package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/shop-stripe/internal/cart"
)

// PGStore persists orders in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// newRef builds a human-readable order reference like SH-2026-3f9a1c04.
func newRef(now time.Time) string {
	id := uuid.New()
	return fmt.Sprintf("SH-%d-%s", now.Year(), strings.ReplaceAll(id.String(), "-", "")[:8])
}

// Get fetches an order with its items and payments by id.
func (s PGStore) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	var email, txnID, method *string
	var total string
	err := s.Pool.QueryRow(ctx, `
		SELECT id::text, ref, COALESCE(user_id::text, ''), email, status,
		       transaction_id, payment_method, total::text
		FROM orders WHERE id = $1`, id).
		Scan(&o.ID, &o.Ref, &o.UserID, &email, &o.Status, &txnID, &method, &total)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, ErrNotFound
	}
	if err != nil {
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	if email != nil {
		o.Email = *email
	}
	if txnID != nil {
		o.TransactionID = *txnID
	}
	if method != nil {
		o.PaymentMethod = *method
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return Order{}, fmt.Errorf("parse order total: %w", err)
	}

	if o.Items, err = s.items(ctx, id); err != nil {
		return Order{}, err
	}
	if o.Payments, err = s.payments(ctx, id); err != nil {
		return Order{}, err
	}
	return o, nil
}

func (s PGStore) items(ctx context.Context, orderID string) ([]Item, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id::text, name, quantity, unit_price::text, total::text
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		var unitPrice, total string
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &unitPrice, &total); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return nil, fmt.Errorf("parse item unit price: %w", err)
		}
		if item.Total, err = decimal.NewFromString(total); err != nil {
			return nil, fmt.Errorf("parse item total: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s PGStore) payments(ctx context.Context, orderID string) ([]Payment, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT amount::text, transaction_id, method
		FROM order_payments WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order payments: %w", err)
	}
	defer rows.Close()
	var payments []Payment
	for rows.Next() {
		var p Payment
		var amount string
		if err := rows.Scan(&amount, &p.TransactionID, &p.Method); err != nil {
			return nil, fmt.Errorf("scan order payment: %w", err)
		}
		if p.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse payment amount: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// CreateFromBasket converts a basket into an order atomically: the order and
// its items are inserted and the basket is left untouched for the caller to
// delete once the conversion is acknowledged.
func (s PGStore) CreateFromBasket(ctx context.Context, b cart.Basket, status string) (Order, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return Order{}, fmt.Errorf("begin create order: %w", err)
	}
	defer tx.Rollback(ctx)

	o := Order{
		Ref:    newRef(time.Now()),
		UserID: b.UserID,
		Email:  b.GuestEmail(),
		Status: status,
		Total:  b.Total(),
	}
	var userID, email *string
	if o.UserID != "" {
		userID = &o.UserID
	}
	if o.Email != "" {
		email = &o.Email
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO orders (ref, user_id, email, status, total)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text`,
		o.Ref, userID, email, o.Status, o.Total.String()).
		Scan(&o.ID)
	if err != nil {
		return Order{}, fmt.Errorf("insert order: %w", err)
	}

	for _, item := range b.Items {
		oi := Item{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     item.Total,
		}
		err = tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, name, quantity, unit_price, total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id::text`,
			o.ID, oi.Name, oi.Quantity, oi.UnitPrice.String(), oi.Total.String()).
			Scan(&oi.ID)
		if err != nil {
			return Order{}, fmt.Errorf("insert order item: %w", err)
		}
		o.Items = append(o.Items, oi)
	}

	if err := tx.Commit(ctx); err != nil {
		return Order{}, fmt.Errorf("commit create order: %w", err)
	}
	return o, nil
}

// Pay records a captured payment and moves the order to the given status.
func (s PGStore) Pay(ctx context.Context, orderID string, p Payment, status string) error {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin pay order: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO order_payments (order_id, amount, transaction_id, method)
		VALUES ($1, $2, $3, $4)`,
		orderID, p.Amount.String(), p.TransactionID, p.Method)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE orders SET status = $2, transaction_id = $3, payment_method = $4
		WHERE id = $1`,
		orderID, status, p.TransactionID, p.Method)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
