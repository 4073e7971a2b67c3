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

var ErrMessageNotFound = errors.New("contact message not found")

type ContactRepo struct {
	pool *pgxpool.Pool
}

func NewContactRepo(pool *pgxpool.Pool) *ContactRepo {
	return &ContactRepo{pool: pool}
}

const contactColumns = `
	id, name, email, subject, body, is_read, created_at`

func (r *ContactRepo) Create(ctx context.Context, name, email, subject, body string) (model.ContactMessage, error) {
	if r.pool == nil {
		return model.ContactMessage{}, fmt.Errorf("postgres pool is nil")
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	body = strings.TrimSpace(body)
	if name == "" || email == "" || body == "" {
		return model.ContactMessage{}, fmt.Errorf("invalid contact payload")
	}

	message, err := scanContactMessage(r.pool.QueryRow(ctx, `
INSERT INTO contact_messages (name, email, subject, body, is_read, created_at)
VALUES ($1, $2, $3, $4, FALSE, NOW())
RETURNING`+contactColumns+`
`, name, email, strings.TrimSpace(subject), body))
	if err != nil {
		return model.ContactMessage{}, fmt.Errorf("create contact message: %w", err)
	}

	return message, nil
}

func (r *ContactRepo) List(ctx context.Context, unreadOnly bool, limit int) ([]model.ContactMessage, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+contactColumns+`
FROM contact_messages
WHERE ($1::boolean = FALSE OR is_read = FALSE)
ORDER BY created_at DESC
LIMIT $2
`, unreadOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list contact messages: %w", err)
	}
	defer rows.Close()

	messages := make([]model.ContactMessage, 0, limit)
	for rows.Next() {
		message, err := scanContactMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact message row: %w", err)
		}
		messages = append(messages, message)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate contact messages: %w", rows.Err())
	}

	return messages, nil
}

func (r *ContactRepo) MarkRead(ctx context.Context, messageID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if messageID <= 0 {
		return fmt.Errorf("invalid message id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE contact_messages
SET is_read = TRUE
WHERE id = $1
`, messageID)
	if err != nil {
		return fmt.Errorf("mark contact message read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrMessageNotFound
	}

	return nil
}

func (r *ContactRepo) CountUnread(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*) FROM contact_messages WHERE is_read = FALSE
`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count unread contact messages: %w", err)
	}
	return total, nil
}

func scanContactMessage(row pgx.Row) (model.ContactMessage, error) {
	var message model.ContactMessage
	if err := row.Scan(
		&message.ID,
		&message.Name,
		&message.Email,
		&message.Subject,
		&message.Body,
		&message.IsRead,
		&message.CreatedAt,
	); err != nil {
		return model.ContactMessage{}, err
	}
	return message, nil
}
