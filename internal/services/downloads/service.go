package downloads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrBookNotFound = errors.New("book not found")
	ErrBookNotFree  = errors.New("book is not free")
)

// Denial is a soft outcome of the gate; it is never an error.
type Denial string

const (
	DenialNone          Denial = ""
	DenialNotFound      Denial = "not_found"
	DenialNotPaid       Denial = "not_paid"
	DenialQuotaExceeded Denial = "quota_exceeded"
	DenialExpired       Denial = "expired"
)

type PurchaseStore interface {
	FindByToken(ctx context.Context, token string) (model.Purchase, error)
	ConsumeDownload(ctx context.Context, purchaseID int64) (int, error)
}

type BookStore interface {
	FindBySlug(ctx context.Context, slug string) (model.Book, error)
	IncrementDownloadCount(ctx context.Context, bookID int64) error
}

type AuditStore interface {
	Record(ctx context.Context, bookID int64, purchaseID *int64, ip, userAgent string) error
}

type Presigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type Config struct {
	PresignTTL time.Duration
}

type Service struct {
	purchases PurchaseStore
	books     BookStore
	audit     AuditStore
	presigner Presigner
	cfg       Config
	now       func() time.Time
}

type Requester struct {
	IP        string
	UserAgent string
}

type Result struct {
	Allowed   bool
	Denial    Denial
	URL       string
	BookTitle string
	Remaining int
}

func NewService(purchases PurchaseStore, books BookStore, audit AuditStore, presigner Presigner, cfg Config) *Service {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}

	return &Service{
		purchases: purchases,
		books:     books,
		audit:     audit,
		presigner: presigner,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Authorize runs the entitlement checks in a fixed order and reports the
// first failure. The quota is spent through the store's guarded update,
// so two racing requests on the last unit can both pass the read check
// here but only one consumes.
func (s *Service) Authorize(ctx context.Context, token string, req Requester) (Result, error) {
	if s.purchases == nil || s.books == nil || s.presigner == nil {
		return Result{}, fmt.Errorf("download gate dependencies are not configured")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return Result{Denial: DenialNotFound}, nil
	}

	purchase, err := s.purchases.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return Result{Denial: DenialNotFound}, nil
		}
		return Result{}, err
	}

	if purchase.Status != enums.PurchaseStatusPaid {
		return Result{Denial: DenialNotPaid, BookTitle: purchase.BookTitle}, nil
	}
	if purchase.DownloadsUsed >= purchase.DownloadLimit {
		return Result{Denial: DenialQuotaExceeded, BookTitle: purchase.BookTitle}, nil
	}
	// A grant without an expiry is treated as expired, never as eternal.
	if purchase.ExpiresAt == nil || s.now().UTC().After(purchase.ExpiresAt.UTC()) {
		return Result{Denial: DenialExpired, BookTitle: purchase.BookTitle}, nil
	}

	used, err := s.purchases.ConsumeDownload(ctx, purchase.ID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDownloadQuotaExceeded) {
			return Result{Denial: DenialQuotaExceeded, BookTitle: purchase.BookTitle}, nil
		}
		return Result{}, err
	}

	s.recordDelivery(ctx, purchase.BookID, &purchase.ID, req)

	url, err := s.presigner.PresignGet(ctx, purchase.BookFileKey, s.cfg.PresignTTL)
	if err != nil {
		return Result{}, fmt.Errorf("presign book file: %w", err)
	}

	return Result{
		Allowed:   true,
		URL:       url,
		BookTitle: purchase.BookTitle,
		Remaining: purchase.DownloadLimit - used,
	}, nil
}

// FreeDownload hands out a published free book with no purchase record.
// The audit row keeps a nil purchase id.
func (s *Service) FreeDownload(ctx context.Context, slug string, req Requester) (Result, error) {
	if s.books == nil || s.presigner == nil {
		return Result{}, fmt.Errorf("download gate dependencies are not configured")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Result{}, ErrValidation
	}

	book, err := s.books.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgrepo.ErrBookNotFound) {
			return Result{}, ErrBookNotFound
		}
		return Result{}, err
	}
	if !book.IsFree {
		return Result{}, ErrBookNotFree
	}

	s.recordDelivery(ctx, book.ID, nil, req)

	url, err := s.presigner.PresignGet(ctx, book.FileKey, s.cfg.PresignTTL)
	if err != nil {
		return Result{}, fmt.Errorf("presign book file: %w", err)
	}

	return Result{
		Allowed:   true,
		URL:       url,
		BookTitle: book.Title,
	}, nil
}

// recordDelivery is best effort: a failed audit write never blocks a
// download that already consumed quota.
func (s *Service) recordDelivery(ctx context.Context, bookID int64, purchaseID *int64, req Requester) {
	if s.audit != nil {
		_ = s.audit.Record(ctx, bookID, purchaseID, req.IP, req.UserAgent)
	}
	_ = s.books.IncrementDownloadCount(ctx, bookID)
}
