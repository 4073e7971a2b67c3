package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elkast/blog/internal/domain/model"
)

type DownloadRepo struct {
	pool *pgxpool.Pool
}

func NewDownloadRepo(pool *pgxpool.Pool) *DownloadRepo {
	return &DownloadRepo{pool: pool}
}

// Record appends one audit row. purchaseID is nil for free downloads.
func (r *DownloadRepo) Record(ctx context.Context, bookID int64, purchaseID *int64, ip, userAgent string) error {
	if r.pool == nil {
		return nil
	}
	if bookID <= 0 {
		return fmt.Errorf("invalid book id")
	}
	if purchaseID != nil && *purchaseID <= 0 {
		return fmt.Errorf("invalid purchase id")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO downloads (book_id, purchase_id, ip, user_agent, created_at)
VALUES ($1, $2, $3, $4, NOW())
`, bookID, purchaseID, strings.TrimSpace(ip), strings.TrimSpace(userAgent))
	if err != nil {
		return fmt.Errorf("record download: %w", err)
	}

	return nil
}

func (r *DownloadRepo) ListByBook(ctx context.Context, bookID int64, limit int) ([]model.DownloadEntry, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 {
		return nil, fmt.Errorf("invalid book id")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, book_id, purchase_id, ip, user_agent, created_at
FROM downloads
WHERE book_id = $1
ORDER BY created_at DESC
LIMIT $2
`, bookID, limit)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	entries := make([]model.DownloadEntry, 0, limit)
	for rows.Next() {
		var entry model.DownloadEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.BookID,
			&entry.PurchaseID,
			&entry.IP,
			&entry.UserAgent,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan download row: %w", err)
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate downloads: %w", rows.Err())
	}

	return entries, nil
}

func (r *DownloadRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM downloads`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count downloads: %w", err)
	}
	return total, nil
}
