package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/smartbill/smartbill/internal/model"
)

// ErrSubscriptionNotFound covers both a truly absent row and a row
// owned by another user. The two cases are deliberately
// indistinguishable so that resource existence never leaks across
// owners.
var ErrSubscriptionNotFound = errors.New("subscription not found")

// CreateSubscription inserts a new subscription into the database.
func (r *Repository) CreateSubscription(ctx context.Context, sub *model.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, name, price, currency, due_date, category, recurring_schedule, notes, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.Name,
		sub.Price,
		sub.Currency,
		sub.DueDate,
		sub.Category,
		sub.RecurringSchedule,
		sub.Notes,
		sub.OwnerID,
		sub.CreatedAt,
		sub.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetSubscription retrieves a subscription by (id, owner) in a single
// filtered query. Lookup and ownership check are not separate steps,
// so there is no window where ownership could change in between.
func (r *Repository) GetSubscription(ctx context.Context, id, ownerID string) (*model.Subscription, error) {
	query := `
		SELECT id, name, price, currency, due_date, category, recurring_schedule, notes, owner_id, created_at, updated_at
		FROM subscriptions
		WHERE id = $1 AND owner_id = $2
	`

	sub, err := scanSubscription(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// ListSubscriptions retrieves all subscriptions owned by the given
// user, newest first.
func (r *Repository) ListSubscriptions(ctx context.Context, ownerID string) ([]*model.Subscription, error) {
	query := `
		SELECT id, name, price, currency, due_date, category, recurring_schedule, notes, owner_id, created_at, updated_at
		FROM subscriptions
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*model.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscriptions: %w", err)
	}

	return subs, nil
}

// UpdateSubscription updates a subscription in place, filtered by
// (id, owner) in the same statement. Zero affected rows means the
// record does not exist for this owner.
func (r *Repository) UpdateSubscription(ctx context.Context, sub *model.Subscription) (*model.Subscription, error) {
	query := `
		UPDATE subscriptions
		SET name = $3, price = $4, currency = $5, due_date = $6, category = $7, recurring_schedule = $8, notes = $9, updated_at = $10
		WHERE id = $1 AND owner_id = $2
		RETURNING id, name, price, currency, due_date, category, recurring_schedule, notes, owner_id, created_at, updated_at
	`

	updated, err := scanSubscription(r.pool.QueryRow(ctx, query,
		sub.ID,
		sub.OwnerID,
		sub.Name,
		sub.Price,
		sub.Currency,
		sub.DueDate,
		sub.Category,
		sub.RecurringSchedule,
		sub.Notes,
		sub.UpdatedAt,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	return updated, nil
}

// DeleteSubscription removes a subscription, filtered by (id, owner).
func (r *Repository) DeleteSubscription(ctx context.Context, id, ownerID string) error {
	query := `
		DELETE FROM subscriptions
		WHERE id = $1 AND owner_id = $2
	`

	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// scanSubscription scans a subscription from a pgx row.
func scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.Name,
		&sub.Price,
		&sub.Currency,
		&sub.DueDate,
		&sub.Category,
		&sub.RecurringSchedule,
		&sub.Notes,
		&sub.OwnerID,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	return &sub, err
}
