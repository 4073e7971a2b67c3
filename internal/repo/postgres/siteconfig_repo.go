package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SiteConfigRepo struct {
	pool *pgxpool.Pool
}

func NewSiteConfigRepo(pool *pgxpool.Pool) *SiteConfigRepo {
	return &SiteConfigRepo{pool: pool}
}

func (r *SiteConfigRepo) All(ctx context.Context) (map[string]string, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `SELECT key, value FROM site_config ORDER BY key ASC`)
	if err != nil {
		return nil, fmt.Errorf("load site config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan site config row: %w", err)
		}
		values[key] = value
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate site config: %w", rows.Err())
	}

	return values, nil
}

func (r *SiteConfigRepo) Set(ctx context.Context, key, value string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("invalid site config key")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO site_config (key, value)
VALUES ($1, $2)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
`, key, value)
	if err != nil {
		return fmt.Errorf("set site config value: %w", err)
	}

	return nil
}
