package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ViewStatsRepo struct {
	pool *pgxpool.Pool
}

func NewViewStatsRepo(pool *pgxpool.Pool) *ViewStatsRepo {
	return &ViewStatsRepo{pool: pool}
}

// RecordArticleView bumps today's counter for the article in one
// statement. Concurrent bumps never lose increments.
func (r *ViewStatsRepo) RecordArticleView(ctx context.Context, articleID int64, at time.Time) error {
	if r.pool == nil {
		return nil
	}
	if articleID <= 0 {
		return fmt.Errorf("invalid article id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO view_stats (article_id, views, view_date)
VALUES ($1, 1, $2::date)
ON CONFLICT (article_id, view_date) WHERE article_id IS NOT NULL
DO UPDATE SET views = view_stats.views + 1
`, articleID, at.UTC().Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("record article view: %w", err)
	}

	return nil
}

func (r *ViewStatsRepo) RecordBookView(ctx context.Context, bookID int64, at time.Time) error {
	if r.pool == nil {
		return nil
	}
	if bookID <= 0 {
		return fmt.Errorf("invalid book id")
	}
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO view_stats (book_id, views, view_date)
VALUES ($1, 1, $2::date)
ON CONFLICT (book_id, view_date) WHERE book_id IS NOT NULL
DO UPDATE SET views = view_stats.views + 1
`, bookID, at.UTC().Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("record book view: %w", err)
	}

	return nil
}

func (r *ViewStatsRepo) TotalViews(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(views), 0) FROM view_stats`).Scan(&total); err != nil {
		return 0, fmt.Errorf("total views: %w", err)
	}
	return total, nil
}
