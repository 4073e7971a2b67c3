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

var ErrBookNotFound = errors.New("book not found")

type BookRepo struct {
	pool *pgxpool.Pool
}

func NewBookRepo(pool *pgxpool.Pool) *BookRepo {
	return &BookRepo{pool: pool}
}

type BookFilter struct {
	CategorySlug string
	OnlyFree     bool
	OnlyPaid     bool
	OnlyFeatured bool
	OnlyNew      bool
	Search       string
	Limit        int
}

type BookInput struct {
	Title           string
	Slug            string
	Description     string
	Excerpt         string
	Author          string
	CoAuthors       string
	ISBN            string
	Publisher       string
	YearPublished   int
	PageCount       int
	Language        string
	CoverURL        string
	FileKey         string
	PreviewKey      string
	Price           int64
	Currency        string
	IsFree          bool
	IsFeatured      bool
	IsNew           bool
	IsPublished     bool
	Position        int
	MetaKeywords    string
	MetaDescription string
	CategoryIDs     []int64
}

const bookColumns = `
	b.id, b.title, b.slug, b.description, b.excerpt, b.author, b.co_authors,
	b.isbn, b.publisher, b.year_published, b.page_count, b.language,
	b.cover_url, b.file_key, b.preview_key, b.price, b.currency, b.is_free,
	b.is_featured, b.is_new, b.is_published, b.position, b.download_count,
	b.meta_keywords, b.meta_description, b.created_at, b.updated_at,
	COALESCE((
		SELECT ARRAY_AGG(c.name ORDER BY c.name)
		FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = b.id
	), '{}') AS category_names`

func (r *BookRepo) ListPublished(ctx context.Context, filter BookFilter) ([]model.Book, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}

	categorySlug := strings.TrimSpace(filter.CategorySlug)
	search := strings.TrimSpace(filter.Search)

	rows, err := r.pool.Query(ctx, `
SELECT`+bookColumns+`
FROM books b
WHERE
	b.is_published = TRUE
	AND ($1::boolean = FALSE OR b.is_free = TRUE)
	AND ($2::boolean = FALSE OR b.is_free = FALSE)
	AND ($3::boolean = FALSE OR b.is_featured = TRUE)
	AND ($4::boolean = FALSE OR b.is_new = TRUE)
	AND ($5::boolean = FALSE OR EXISTS (
		SELECT 1
		FROM book_categories bc
		JOIN categories c ON c.id = bc.category_id
		WHERE bc.book_id = b.id
		  AND c.slug = $6
	))
	AND ($7::boolean = FALSE OR (
		b.title ILIKE '%' || $8 || '%'
		OR b.description ILIKE '%' || $8 || '%'
		OR b.author ILIKE '%' || $8 || '%'
	))
ORDER BY b.position ASC, b.created_at DESC
LIMIT $9
`,
		filter.OnlyFree,     // $1
		filter.OnlyPaid,     // $2
		filter.OnlyFeatured, // $3
		filter.OnlyNew,      // $4
		categorySlug != "",  // $5
		categorySlug,        // $6
		search != "",        // $7
		search,              // $8
		filter.Limit,        // $9
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	return collectBooks(rows, filter.Limit)
}

func (r *BookRepo) FindBySlug(ctx context.Context, slug string) (model.Book, error) {
	if r.pool == nil {
		return model.Book{}, fmt.Errorf("postgres pool is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return model.Book{}, fmt.Errorf("invalid book slug")
	}

	book, err := scanBook(r.pool.QueryRow(ctx, `
SELECT`+bookColumns+`
FROM books b
WHERE b.slug = $1
  AND b.is_published = TRUE
LIMIT 1
`, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, ErrBookNotFound
		}
		return model.Book{}, fmt.Errorf("find book by slug: %w", err)
	}

	return book, nil
}

func (r *BookRepo) FindByID(ctx context.Context, bookID int64) (model.Book, error) {
	if r.pool == nil {
		return model.Book{}, fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 {
		return model.Book{}, fmt.Errorf("invalid book id")
	}

	book, err := scanBook(r.pool.QueryRow(ctx, `
SELECT`+bookColumns+`
FROM books b
WHERE b.id = $1
LIMIT 1
`, bookID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Book{}, ErrBookNotFound
		}
		return model.Book{}, fmt.Errorf("find book by id: %w", err)
	}

	return book, nil
}

func (r *BookRepo) IncrementDownloadCount(ctx context.Context, bookID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 {
		return fmt.Errorf("invalid book id")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE books
SET download_count = download_count + 1
WHERE id = $1
`, bookID)
	if err != nil {
		return fmt.Errorf("increment book download count: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *BookRepo) Create(ctx context.Context, input BookInput) (model.Book, error) {
	if r.pool == nil {
		return model.Book{}, fmt.Errorf("postgres pool is nil")
	}
	if err := validateBookInput(input); err != nil {
		return model.Book{}, err
	}

	var bookID int64
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
INSERT INTO books (
	title, slug, description, excerpt, author, co_authors, isbn, publisher,
	year_published, page_count, language, cover_url, file_key, preview_key,
	price, currency, is_free, is_featured, is_new, is_published, position,
	download_count, meta_keywords, meta_description, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
	$17, $18, $19, $20, $21, 0, $22, $23, NOW(), NOW()
)
RETURNING id
`,
			strings.TrimSpace(input.Title), strings.TrimSpace(input.Slug),
			input.Description, input.Excerpt, strings.TrimSpace(input.Author),
			input.CoAuthors, input.ISBN, input.Publisher, input.YearPublished,
			input.PageCount, input.Language, input.CoverURL, input.FileKey,
			input.PreviewKey, input.Price, strings.TrimSpace(input.Currency),
			input.IsFree, input.IsFeatured, input.IsNew, input.IsPublished,
			input.Position, input.MetaKeywords, input.MetaDescription,
		).Scan(&bookID); err != nil {
			return fmt.Errorf("insert book: %w", err)
		}
		return replaceBookCategories(ctx, tx, bookID, input.CategoryIDs)
	})
	if err != nil {
		return model.Book{}, err
	}

	return r.FindByID(ctx, bookID)
}

func (r *BookRepo) Update(ctx context.Context, bookID int64, input BookInput) (model.Book, error) {
	if r.pool == nil {
		return model.Book{}, fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 {
		return model.Book{}, fmt.Errorf("invalid book id")
	}
	if err := validateBookInput(input); err != nil {
		return model.Book{}, err
	}

	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
UPDATE books
SET
	title = $2, slug = $3, description = $4, excerpt = $5, author = $6,
	co_authors = $7, isbn = $8, publisher = $9, year_published = $10,
	page_count = $11, language = $12, cover_url = $13, file_key = $14,
	preview_key = $15, price = $16, currency = $17, is_free = $18,
	is_featured = $19, is_new = $20, is_published = $21, position = $22,
	meta_keywords = $23, meta_description = $24, updated_at = NOW()
WHERE id = $1
`,
			bookID, strings.TrimSpace(input.Title), strings.TrimSpace(input.Slug),
			input.Description, input.Excerpt, strings.TrimSpace(input.Author),
			input.CoAuthors, input.ISBN, input.Publisher, input.YearPublished,
			input.PageCount, input.Language, input.CoverURL, input.FileKey,
			input.PreviewKey, input.Price, strings.TrimSpace(input.Currency),
			input.IsFree, input.IsFeatured, input.IsNew, input.IsPublished,
			input.Position, input.MetaKeywords, input.MetaDescription,
		)
		if err != nil {
			return fmt.Errorf("update book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrBookNotFound
		}
		return replaceBookCategories(ctx, tx, bookID, input.CategoryIDs)
	})
	if err != nil {
		return model.Book{}, err
	}

	return r.FindByID(ctx, bookID)
}

func (r *BookRepo) Delete(ctx context.Context, bookID int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 {
		return fmt.Errorf("invalid book id")
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

// SetFileKey points a book at its stored object. The preview flag
// selects preview_key over file_key.
func (r *BookRepo) SetFileKey(ctx context.Context, bookID int64, key string, preview bool) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if bookID <= 0 || strings.TrimSpace(key) == "" {
		return fmt.Errorf("invalid file key update")
	}

	column := "file_key"
	if preview {
		column = "preview_key"
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE books
SET `+column+` = $2, updated_at = NOW()
WHERE id = $1
`, bookID, strings.TrimSpace(key))
	if err != nil {
		return fmt.Errorf("set book %s: %w", column, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookNotFound
	}

	return nil
}

func (r *BookRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}

func validateBookInput(input BookInput) error {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Slug) == "" {
		return fmt.Errorf("invalid book payload: title and slug are required")
	}
	if input.Price < 0 {
		return fmt.Errorf("invalid book payload: negative price")
	}
	return nil
}

func replaceBookCategories(ctx context.Context, tx pgx.Tx, bookID int64, categoryIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM book_categories WHERE book_id = $1`, bookID); err != nil {
		return fmt.Errorf("clear book categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO book_categories (book_id, category_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, bookID, categoryID); err != nil {
			return fmt.Errorf("attach book category: %w", err)
		}
	}
	return nil
}

func collectBooks(rows pgx.Rows, limit int) ([]model.Book, error) {
	books := make([]model.Book, 0, limit)
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan book row: %w", err)
		}
		books = append(books, book)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate books: %w", rows.Err())
	}
	return books, nil
}

func scanBook(row pgx.Row) (model.Book, error) {
	var book model.Book
	if err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Slug,
		&book.Description,
		&book.Excerpt,
		&book.Author,
		&book.CoAuthors,
		&book.ISBN,
		&book.Publisher,
		&book.YearPublished,
		&book.PageCount,
		&book.Language,
		&book.CoverURL,
		&book.FileKey,
		&book.PreviewKey,
		&book.Price,
		&book.Currency,
		&book.IsFree,
		&book.IsFeatured,
		&book.IsNew,
		&book.IsPublished,
		&book.Position,
		&book.DownloadCount,
		&book.MetaKeywords,
		&book.MetaDescription,
		&book.CreatedAt,
		&book.UpdatedAt,
		&book.CategoryNames,
	); err != nil {
		return model.Book{}, err
	}
	return book, nil
}
