package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists users in Postgres.
type PGStore struct {
	Pool *pgxpool.Pool
}

// Get fetches a user by id.
func (s PGStore) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := s.Pool.QueryRow(ctx, `
		SELECT id::text, email, first_name, last_name, username, COALESCE(stripe_customer_id, '')
		FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Username, &u.StripeCustomerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// SaveStripeCustomerID stores the Stripe customer id on the user record.
func (s PGStore) SaveStripeCustomerID(ctx context.Context, userID, customerID string) error {
	tag, err := s.Pool.Exec(ctx, `UPDATE users SET stripe_customer_id = $2 WHERE id = $1`, userID, customerID)
	if err != nil {
		return fmt.Errorf("save stripe customer id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
