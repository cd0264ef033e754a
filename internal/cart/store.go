package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGStore persists baskets in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Get fetches a basket and its items by id.
func (s PGStore) Get(ctx context.Context, id string) (Basket, error) {
	var b Basket
	var email *string
	err := s.Pool.QueryRow(ctx, `
		SELECT id::text, COALESCE(user_id::text, ''), email, COALESCE(extra, '{}'::jsonb)
		FROM baskets WHERE id = $1`, id).
		Scan(&b.ID, &b.UserID, &email, &b.Extra)
	if errors.Is(err, pgx.ErrNoRows) {
		return Basket{}, ErrNotFound
	}
	if err != nil {
		return Basket{}, fmt.Errorf("get basket: %w", err)
	}
	if email != nil {
		b.Email = *email
	}

	rows, err := s.Pool.Query(ctx, `
		SELECT id::text, name, quantity, unit_price::text, total::text
		FROM basket_items WHERE basket_id = $1 ORDER BY id`, id)
	if err != nil {
		return Basket{}, fmt.Errorf("get basket items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		var unitPrice, total string
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &unitPrice, &total); err != nil {
			return Basket{}, fmt.Errorf("scan basket item: %w", err)
		}
		if item.UnitPrice, err = decimal.NewFromString(unitPrice); err != nil {
			return Basket{}, fmt.Errorf("parse unit price: %w", err)
		}
		if item.Total, err = decimal.NewFromString(total); err != nil {
			return Basket{}, fmt.Errorf("parse item total: %w", err)
		}
		b.Items = append(b.Items, item)
	}
	if err := rows.Err(); err != nil {
		return Basket{}, fmt.Errorf("iterate basket items: %w", err)
	}
	return b, nil
}

// Delete removes a basket and, via cascade, its items.
func (s PGStore) Delete(ctx context.Context, id string) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM baskets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete basket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
