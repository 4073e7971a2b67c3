package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elkast/blog/internal/domain/model"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

type NewsletterRepo struct {
	pool *pgxpool.Pool
}

func NewNewsletterRepo(pool *pgxpool.Pool) *NewsletterRepo {
	return &NewsletterRepo{pool: pool}
}

const subscriberColumns = `
	id, email, name, is_active, subscribed_at`

// Subscribe inserts the address or reports ErrAlreadySubscribed when an
// active row already holds it. A previously unsubscribed address is
// reactivated in place.
func (r *NewsletterRepo) Subscribe(ctx context.Context, email, name string) (model.Subscriber, error) {
	if r.pool == nil {
		return model.Subscriber{}, fmt.Errorf("postgres pool is nil")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return model.Subscriber{}, fmt.Errorf("invalid subscriber email")
	}

	subscriber, err := scanSubscriber(r.pool.QueryRow(ctx, `
INSERT INTO newsletter_subscribers (email, name, is_active, subscribed_at)
VALUES ($1, $2, TRUE, NOW())
ON CONFLICT (email) DO UPDATE SET
	is_active = TRUE,
	name = COALESCE(NULLIF(EXCLUDED.name, ''), newsletter_subscribers.name)
WHERE newsletter_subscribers.is_active = FALSE
RETURNING`+subscriberColumns+`
`, email, strings.TrimSpace(name)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Subscriber{}, ErrAlreadySubscribed
		}
		return model.Subscriber{}, fmt.Errorf("subscribe email: %w", err)
	}

	return subscriber, nil
}

func (r *NewsletterRepo) List(ctx context.Context, limit int) ([]model.Subscriber, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 1000 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+subscriberColumns+`
FROM newsletter_subscribers
WHERE is_active = TRUE
ORDER BY subscribed_at DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	subscribers := make([]model.Subscriber, 0, limit)
	for rows.Next() {
		subscriber, err := scanSubscriber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscriber row: %w", err)
		}
		subscribers = append(subscribers, subscriber)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate subscribers: %w", rows.Err())
	}

	return subscribers, nil
}

func (r *NewsletterRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM newsletter_subscribers WHERE is_active = TRUE
`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return total, nil
}

func scanSubscriber(row pgx.Row) (model.Subscriber, error) {
	var subscriber model.Subscriber
	if err := row.Scan(
		&subscriber.ID,
		&subscriber.Email,
		&subscriber.Name,
		&subscriber.IsActive,
		&subscriber.SubscribedAt,
	); err != nil {
		return model.Subscriber{}, err
	}
	return subscriber, nil
}
