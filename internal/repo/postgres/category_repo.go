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

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) *CategoryRepo {
	return &CategoryRepo{pool: pool}
}

const categoryColumns = `
	id, name, slug, description, icon, position, is_active, created_at, updated_at`

func (r *CategoryRepo) ListActive(ctx context.Context) ([]model.Category, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+categoryColumns+`
FROM categories
WHERE is_active = TRUE
ORDER BY position ASC, name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.Category, 0, 16)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category row: %w", err)
		}
		categories = append(categories, category)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate categories: %w", rows.Err())
	}

	return categories, nil
}

func (r *CategoryRepo) FindBySlug(ctx context.Context, slug string) (model.Category, error) {
	if r.pool == nil {
		return model.Category{}, fmt.Errorf("postgres pool is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Category{}, fmt.Errorf("invalid category slug")
	}

	category, err := scanCategory(r.pool.QueryRow(ctx, `
SELECT`+categoryColumns+`
FROM categories
WHERE slug = $1
LIMIT 1
`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Category{}, ErrCategoryNotFound
		}
		return model.Category{}, fmt.Errorf("find category by slug: %w", err)
	}

	return category, nil
}

func (r *CategoryRepo) Create(ctx context.Context, name, slug, description, icon string, position int) (model.Category, error) {
	if r.pool == nil {
		return model.Category{}, fmt.Errorf("postgres pool is nil")
	}
	name = strings.TrimSpace(name)
	slug = strings.TrimSpace(slug)
	if name == "" || slug == "" {
		return model.Category{}, fmt.Errorf("invalid category payload: name and slug are required")
	}

	category, err := scanCategory(r.pool.QueryRow(ctx, `
INSERT INTO categories (name, slug, description, icon, position, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, TRUE, NOW(), NOW())
RETURNING`+categoryColumns+`
`, name, slug, description, icon, position))
	if err != nil {
		return model.Category{}, fmt.Errorf("create category: %w", err)
	}

	return category, nil
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count categories: %w", err)
	}
	return total, nil
}

func scanCategory(row pgx.Row) (model.Category, error) {
	var category model.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.Description,
		&category.Icon,
		&category.Position,
		&category.IsActive,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return model.Category{}, err
	}
	return category, nil
}
