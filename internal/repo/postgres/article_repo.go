package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
)

var ErrArticleNotFound = errors.New("article not found")

type ArticleRepo struct {
	pool *pgxpool.Pool
}

func NewArticleRepo(pool *pgxpool.Pool) *ArticleRepo {
	return &ArticleRepo{pool: pool}
}

type ArticleFilter struct {
	Kind         enums.ArticleKind
	CategorySlug string
	OnlyFeatured bool
	OnlyPopular  bool
	OnlyNew      bool
	Search       string
	MostRead     bool
	Limit        int
}

type ArticleInput struct {
	Title           string
	Slug            string
	Body            string
	Excerpt         string
	Kind            enums.ArticleKind
	ImageURL        string
	BannerURL       string
	Author          string
	ReadingMinutes  int
	IsFeatured      bool
	IsPopular       bool
	IsNew           bool
	IsPublished     bool
	Position        int
	MetaKeywords    string
	MetaDescription string
	CategoryIDs     []int64
}

const articleColumns = `
	a.id, a.title, a.slug, a.body, a.excerpt, a.kind, a.image_url,
	a.banner_url, a.author, a.reading_minutes, a.is_featured, a.is_popular,
	a.is_new, a.is_published, a.position, a.meta_keywords,
	a.meta_description, a.published_at, a.created_at, a.updated_at,
	COALESCE((
		SELECT ARRAY_AGG(c.name ORDER BY c.name)
		FROM article_categories ac
		JOIN categories c ON c.id = ac.category_id
		WHERE ac.article_id = a.id
	), '{}') AS category_names`

func (r *ArticleRepo) ListPublished(ctx context.Context, filter ArticleFilter) ([]model.Article, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	if filter.Kind != "" && !filter.Kind.Valid() {
		return nil, fmt.Errorf("invalid article kind %q", filter.Kind)
	}

	categorySlug := strings.TrimSpace(filter.CategorySlug)
	search := strings.TrimSpace(filter.Search)

	orderBy := "a.position ASC, COALESCE(a.published_at, a.created_at) DESC"
	if filter.MostRead {
		orderBy = "total_views DESC, COALESCE(a.published_at, a.created_at) DESC"
	}

	rows, err := r.pool.Query(ctx, `
SELECT`+articleColumns+`,
	COALESCE((
		SELECT SUM(v.views)
		FROM view_stats v
		WHERE v.article_id = a.id
	), 0) AS total_views
FROM articles a
WHERE
	a.is_published = TRUE
	AND ($1::boolean = FALSE OR a.kind = $2)
	AND ($3::boolean = FALSE OR a.is_featured = TRUE)
	AND ($4::boolean = FALSE OR a.is_popular = TRUE)
	AND ($5::boolean = FALSE OR a.is_new = TRUE)
	AND ($6::boolean = FALSE OR EXISTS (
		SELECT 1
		FROM article_categories ac
		JOIN categories c ON c.id = ac.category_id
		WHERE ac.article_id = a.id
		  AND c.slug = $7
	))
	AND ($8::boolean = FALSE OR (
		a.title ILIKE '%' || $9 || '%'
		OR a.body ILIKE '%' || $9 || '%'
		OR a.excerpt ILIKE '%' || $9 || '%'
	))
ORDER BY `+orderBy+`
LIMIT $10
`,
		filter.Kind != "",   // $1
		string(filter.Kind), // $2
		filter.OnlyFeatured, // $3
		filter.OnlyPopular,  // $4
		filter.OnlyNew,      // $5
		categorySlug != "",  // $6
		categorySlug,        // $7
		search != "",        // $8
		search,              // $9
		filter.Limit,        // $10
	)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	articles := make([]model.Article, 0, filter.Limit)
	for rows.Next() {
		article, err := scanArticleWithViews(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		articles = append(articles, article)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate articles: %w", rows.Err())
	}

	return articles, nil
}

func (r *ArticleRepo) FindBySlug(ctx context.Context, slug string) (model.Article, error) {
	if r.pool == nil {
		return model.Article{}, fmt.Errorf("postgres pool is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Article{}, fmt.Errorf("invalid article slug")
	}

	article, err := scanArticle(r.pool.QueryRow(ctx, `
SELECT`+articleColumns+`
FROM articles a
WHERE a.slug = $1
  AND a.is_published = TRUE
LIMIT 1
`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, ErrArticleNotFound
		}
		return model.Article{}, fmt.Errorf("find article by slug: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) FindByID(ctx context.Context, articleID int64) (model.Article, error) {
	if r.pool == nil {
		return model.Article{}, fmt.Errorf("postgres pool is nil")
	}
	if articleID <= 0 {
		return model.Article{}, fmt.Errorf("invalid article id")
	}

	article, err := scanArticle(r.pool.QueryRow(ctx, `
SELECT`+articleColumns+`
FROM articles a
WHERE a.id = $1
LIMIT 1
`, articleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Article{}, ErrArticleNotFound
		}
		return model.Article{}, fmt.Errorf("find article by id: %w", err)
	}

	return article, nil
}

func (r *ArticleRepo) Create(ctx context.Context, input ArticleInput) (model.Article, error) {
	if r.pool == nil {
		return model.Article{}, fmt.Errorf("postgres pool is nil")
	}
	if err := validateArticleInput(input); err != nil {
		return model.Article{}, err
	}

	var articleID int64
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
INSERT INTO articles (
	title, slug, body, excerpt, kind, image_url, banner_url, author,
	reading_minutes, is_featured, is_popular, is_new, is_published,
	position, meta_keywords, meta_description, published_at, created_at,
	updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	CASE WHEN $13::boolean THEN NOW() ELSE NULL END, NOW(), NOW()
)
RETURNING id
`,
			strings.TrimSpace(input.Title), strings.TrimSpace(input.Slug),
			input.Body, input.Excerpt, string(input.Kind), input.ImageURL,
			input.BannerURL, strings.TrimSpace(input.Author),
			input.ReadingMinutes, input.IsFeatured, input.IsPopular,
			input.IsNew, input.IsPublished, input.Position,
			input.MetaKeywords, input.MetaDescription,
		).Scan(&articleID); err != nil {
			return fmt.Errorf("insert article: %w", err)
		}
		return replaceArticleCategories(ctx, tx, articleID, input.CategoryIDs)
	})
	if err != nil {
		return model.Article{}, err
	}

	return r.FindByID(ctx, articleID)
}

func (r *ArticleRepo) Update(ctx context.Context, articleID int64, input ArticleInput) (model.Article, error) {
	if r.pool == nil {
		return model.Article{}, fmt.Errorf("postgres pool is nil")
	}
	if articleID <= 0 {
		return model.Article{}, fmt.Errorf("invalid article id")
	}
	if err := validateArticleInput(input); err != nil {
		return model.Article{}, err
	}

	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE articles
SET
	title = $2, slug = $3, body = $4, excerpt = $5, kind = $6,
	image_url = $7, banner_url = $8, author = $9, reading_minutes = $10,
	is_featured = $11, is_popular = $12, is_new = $13, is_published = $14,
	position = $15, meta_keywords = $16, meta_description = $17,
	published_at = CASE
		WHEN $14::boolean AND published_at IS NULL THEN NOW()
		ELSE published_at
	END,
	updated_at = NOW()
WHERE id = $1
`,
			articleID, strings.TrimSpace(input.Title), strings.TrimSpace(input.Slug),
			input.Body, input.Excerpt, string(input.Kind), input.ImageURL,
			input.BannerURL, strings.TrimSpace(input.Author),
			input.ReadingMinutes, input.IsFeatured, input.IsPopular,
			input.IsNew, input.IsPublished, input.Position,
			input.MetaKeywords, input.MetaDescription,
		)
		if err != nil {
			return fmt.Errorf("update article: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrArticleNotFound
		}
		return replaceArticleCategories(ctx, tx, articleID, input.CategoryIDs)
	})
	if err != nil {
		return model.Article{}, err
	}

	return r.FindByID(ctx, articleID)
}

func (r *ArticleRepo) Delete(ctx context.Context, articleID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if articleID <= 0 {
		return fmt.Errorf("invalid article id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM articles WHERE id = $1`, articleID)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrArticleNotFound
	}

	return nil
}

func (r *ArticleRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return total, nil
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Slug) == "" {
		return fmt.Errorf("invalid article payload: title and slug are required")
	}
	if !input.Kind.Valid() {
		return fmt.Errorf("invalid article payload: unknown kind %q", input.Kind)
	}
	return nil
}

func replaceArticleCategories(ctx context.Context, tx pgx.Tx, articleID int64, categoryIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM article_categories WHERE article_id = $1`, articleID); err != nil {
		return fmt.Errorf("clear article categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO article_categories (article_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, articleID, categoryID); err != nil {
			return fmt.Errorf("attach article category: %w", err)
		}
	}
	return nil
}

func scanArticle(row pgx.Row) (model.Article, error) {
	var (
		article model.Article
		kind    string
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Body,
		&article.Excerpt,
		&kind,
		&article.ImageURL,
		&article.BannerURL,
		&article.Author,
		&article.ReadingMinutes,
		&article.IsFeatured,
		&article.IsPopular,
		&article.IsNew,
		&article.IsPublished,
		&article.Position,
		&article.MetaKeywords,
		&article.MetaDescription,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.CategoryNames,
	); err != nil {
		return model.Article{}, err
	}
	article.Kind = enums.ArticleKind(kind)
	return article, nil
}

func scanArticleWithViews(row pgx.Row) (model.Article, error) {
	var (
		article model.Article
		kind    string
	)
	if err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Slug,
		&article.Body,
		&article.Excerpt,
		&kind,
		&article.ImageURL,
		&article.BannerURL,
		&article.Author,
		&article.ReadingMinutes,
		&article.IsFeatured,
		&article.IsPopular,
		&article.IsNew,
		&article.IsPublished,
		&article.Position,
		&article.MetaKeywords,
		&article.MetaDescription,
		&article.PublishedAt,
		&article.CreatedAt,
		&article.UpdatedAt,
		&article.CategoryNames,
		&article.TotalViews,
	); err != nil {
		return model.Article{}, err
	}
	article.Kind = enums.ArticleKind(kind)
	return article, nil
}
