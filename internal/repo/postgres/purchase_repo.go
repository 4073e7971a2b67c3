package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
)

var (
	ErrPurchaseNotFound      = errors.New("purchase not found")
	ErrDownloadTokenConflict = errors.New("download token already attached to another purchase")
	ErrDownloadQuotaExceeded = errors.New("download quota exhausted")
)

type PurchaseRepo struct {
	pool *pgxpool.Pool
}

func NewPurchaseRepo(pool *pgxpool.Pool) *PurchaseRepo {
	return &PurchaseRepo{pool: pool}
}

const purchaseColumns = `
	p.id, p.book_id, p.customer_name, p.customer_email, p.customer_phone,
	p.amount, p.currency, p.payment_method, p.payment_ref, p.status,
	p.download_token, p.downloads_used, p.download_limit, p.expires_at,
	p.notes, p.created_at, b.title, b.slug, b.file_key`

func (r *PurchaseRepo) CreatePending(ctx context.Context, bookID int64, name, email, phone string, amount int64, currency string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if bookID <= 0 || name == "" || email == "" || amount < 0 || strings.TrimSpace(currency) == "" {
		return model.Purchase{}, fmt.Errorf("invalid purchase create payload")
	}

	purchase, err := scanPurchase(r.pool.QueryRow(ctx, `
WITH inserted AS (
	INSERT INTO purchases (
		book_id,
		customer_name,
		customer_email,
		customer_phone,
		amount,
		currency,
		status,
		downloads_used,
		created_at
	) VALUES ($1, $2, $3, $4, $5, $6, 'pending', 0, NOW())
	RETURNING *
)
SELECT`+purchaseColumns+`
FROM inserted p
JOIN books b ON b.id = p.book_id
`, bookID, name, email, strings.TrimSpace(phone), amount, strings.TrimSpace(currency)))
	if err != nil {
		return model.Purchase{}, fmt.Errorf("create pending purchase: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepo) FindByID(ctx context.Context, purchaseID int64) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, fmt.Errorf("invalid purchase id")
	}

	purchase, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT`+purchaseColumns+`
FROM purchases p
JOIN books b ON b.id = p.book_id
WHERE p.id = $1
LIMIT 1
`, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("find purchase by id: %w", err)
	}

	return purchase, nil
}

func (r *PurchaseRepo) FindByToken(ctx context.Context, token string) (model.Purchase, error) {
	if r.pool == nil {
		return model.Purchase{}, fmt.Errorf("postgres pool is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return model.Purchase{}, fmt.Errorf("invalid download token")
	}

	purchase, err := scanPurchase(r.pool.QueryRow(ctx, `
SELECT`+purchaseColumns+`
FROM purchases p
JOIN books b ON b.id = p.book_id
WHERE p.download_token = $1
LIMIT 1
`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, fmt.Errorf("find purchase by token: %w", err)
	}

	return purchase, nil
}

// MarkPaid flips a pending purchase to paid and attaches its download
// grant in one statement. The second return reports whether this call
// performed the transition; false means the row was not pending anymore
// and the stored state is returned untouched.
func (r *PurchaseRepo) MarkPaid(ctx context.Context, purchaseID int64, token string, expiresAt time.Time, downloadLimit int, paymentMethod, paymentRef string) (model.Purchase, bool, error) {
	if r.pool == nil {
		return model.Purchase{}, false, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, false, fmt.Errorf("invalid purchase id")
	}
	token = strings.TrimSpace(token)
	if token == "" || downloadLimit <= 0 || expiresAt.IsZero() {
		return model.Purchase{}, false, fmt.Errorf("invalid purchase grant payload")
	}

	updated, err := scanPurchase(r.pool.QueryRow(ctx, `
WITH updated AS (
	UPDATE purchases
	SET
		status = 'paid',
		download_token = $2,
		expires_at = $3,
		download_limit = $4,
		payment_method = $5,
		payment_ref = $6
	WHERE id = $1
	  AND status = 'pending'
	RETURNING *
)
SELECT`+purchaseColumns+`
FROM updated p
JOIN books b ON b.id = p.book_id
`, purchaseID, token, expiresAt, downloadLimit, strings.TrimSpace(paymentMethod), strings.TrimSpace(paymentRef)))
	if err == nil {
		return updated, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.Purchase{}, false, ErrDownloadTokenConflict
		}
		return model.Purchase{}, false, fmt.Errorf("mark purchase paid: %w", err)
	}

	existing, err := r.FindByID(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, false, err
	}
	return existing, false, nil
}

// SetStatus moves a purchase from one status to another in a single
// conditional statement, so a concurrent transition can never be
// overwritten. The second return reports whether this call performed
// the move; false means the row was not in the expected status anymore
// and the stored state is returned untouched.
func (r *PurchaseRepo) SetStatus(ctx context.Context, purchaseID int64, status, from enums.PurchaseStatus) (model.Purchase, bool, error) {
	if r.pool == nil {
		return model.Purchase{}, false, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, false, fmt.Errorf("invalid purchase id")
	}
	if !status.Valid() || !from.Valid() {
		return model.Purchase{}, false, fmt.Errorf("invalid purchase status transition %q -> %q", from, status)
	}

	updated, err := scanPurchase(r.pool.QueryRow(ctx, `
WITH updated AS (
	UPDATE purchases
	SET status = $2
	WHERE id = $1
	  AND status = $3
	RETURNING *
)
SELECT`+purchaseColumns+`
FROM updated p
JOIN books b ON b.id = p.book_id
`, purchaseID, string(status), string(from)))
	if err == nil {
		return updated, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Purchase{}, false, fmt.Errorf("set purchase status: %w", err)
	}

	existing, err := r.FindByID(ctx, purchaseID)
	if err != nil {
		return model.Purchase{}, false, err
	}
	return existing, false, nil
}

// ConsumeDownload spends one unit of the purchase quota. The guard in
// the WHERE clause keeps concurrent callers from ever pushing
// downloads_used past download_limit.
func (r *PurchaseRepo) ConsumeDownload(ctx context.Context, purchaseID int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if purchaseID <= 0 {
		return 0, fmt.Errorf("invalid purchase id")
	}

	var used int
	err := r.pool.QueryRow(ctx, `
UPDATE purchases
SET downloads_used = downloads_used + 1
WHERE id = $1
  AND downloads_used < download_limit
RETURNING downloads_used
`, purchaseID).Scan(&used)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrDownloadQuotaExceeded
		}
		return 0, fmt.Errorf("consume download: %w", err)
	}

	return used, nil
}

func (r *PurchaseRepo) List(ctx context.Context, status enums.PurchaseStatus, limit int) ([]model.Purchase, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
SELECT` + purchaseColumns + `
FROM purchases p
JOIN books b ON b.id = p.book_id
`
	args := []any{}
	if status != "" {
		if !status.Valid() {
			return nil, fmt.Errorf("invalid purchase status %q", status)
		}
		query += "WHERE p.status = $1\n"
		args = append(args, string(status))
	}
	query += fmt.Sprintf("ORDER BY p.created_at DESC\nLIMIT %d", limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := make([]model.Purchase, 0, limit)
	for rows.Next() {
		purchase, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, purchase)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchases: %w", err)
	}

	return purchases, nil
}

func (r *PurchaseRepo) Count(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM purchases`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count purchases: %w", err)
	}
	return total, nil
}

// Revenue sums paid purchases only.
func (r *PurchaseRepo) Revenue(ctx context.Context) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(amount), 0) FROM purchases WHERE status = 'paid'
`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum paid revenue: %w", err)
	}
	return total, nil
}

func scanPurchase(row pgx.Row) (model.Purchase, error) {
	var (
		purchase model.Purchase
		status   string
	)
	if err := row.Scan(
		&purchase.ID,
		&purchase.BookID,
		&purchase.CustomerName,
		&purchase.CustomerEmail,
		&purchase.CustomerPhone,
		&purchase.Amount,
		&purchase.Currency,
		&purchase.PaymentMethod,
		&purchase.PaymentRef,
		&status,
		&purchase.DownloadToken,
		&purchase.DownloadsUsed,
		&purchase.DownloadLimit,
		&purchase.ExpiresAt,
		&purchase.Notes,
		&purchase.CreatedAt,
		&purchase.BookTitle,
		&purchase.BookSlug,
		&purchase.BookFileKey,
	); err != nil {
		return model.Purchase{}, err
	}
	purchase.Status = enums.PurchaseStatus(status)
	return purchase, nil
}
