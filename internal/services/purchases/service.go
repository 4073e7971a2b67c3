package purchases

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrBookNotFound     = errors.New("book not found")
	ErrBookIsFree       = errors.New("book is free, no purchase required")
	ErrPurchaseNotFound = errors.New("purchase not found")
	ErrInvalidState     = errors.New("purchase is not in a payable state")
)

const tokenMintAttempts = 3

type BookStore interface {
	FindBySlug(ctx context.Context, slug string) (model.Book, error)
}

type PurchaseStore interface {
	CreatePending(ctx context.Context, bookID int64, name, email, phone string, amount int64, currency string) (model.Purchase, error)
	FindByID(ctx context.Context, purchaseID int64) (model.Purchase, error)
	FindByToken(ctx context.Context, token string) (model.Purchase, error)
	MarkPaid(ctx context.Context, purchaseID int64, token string, expiresAt time.Time, downloadLimit int, paymentMethod, paymentRef string) (model.Purchase, bool, error)
	SetStatus(ctx context.Context, purchaseID int64, status, from enums.PurchaseStatus) (model.Purchase, bool, error)
	List(ctx context.Context, status enums.PurchaseStatus, limit int) ([]model.Purchase, error)
}

type Config struct {
	DownloadLimit   int
	DownloadLinkTTL time.Duration
	DefaultCurrency string
}

type Service struct {
	books     BookStore
	purchases PurchaseStore
	cfg       Config
	now       func() time.Time
}

type BeginInput struct {
	BookSlug string
	Name     string
	Email    string
	Phone    string
}

type ConfirmResult struct {
	Purchase   model.Purchase
	Token      string
	PaymentRef string
	Idempotent bool
}

func NewService(books BookStore, purchases PurchaseStore, cfg Config) *Service {
	if cfg.DownloadLimit <= 0 {
		cfg.DownloadLimit = 3
	}
	if cfg.DownloadLinkTTL <= 0 {
		cfg.DownloadLinkTTL = 7 * 24 * time.Hour
	}
	if strings.TrimSpace(cfg.DefaultCurrency) == "" {
		cfg.DefaultCurrency = "CFA"
	}

	return &Service{
		books:     books,
		purchases: purchases,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Begin opens a pending purchase for a priced, published book. Price and
// currency are copied from the book so later catalog edits never change
// what the buyer owes.
func (s *Service) Begin(ctx context.Context, in BeginInput) (model.Purchase, error) {
	if s.books == nil || s.purchases == nil {
		return model.Purchase{}, fmt.Errorf("purchase dependencies are not configured")
	}

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return model.Purchase{}, ErrValidation
	}

	book, err := s.books.FindBySlug(ctx, strings.TrimSpace(in.BookSlug))
	if err != nil {
		if errors.Is(err, pgrepo.ErrBookNotFound) {
			return model.Purchase{}, ErrBookNotFound
		}
		return model.Purchase{}, err
	}
	if book.IsFree || book.Price == 0 {
		return model.Purchase{}, ErrBookIsFree
	}

	currency := strings.TrimSpace(book.Currency)
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}

	purchase, err := s.purchases.CreatePending(ctx, book.ID, name, email, strings.TrimSpace(in.Phone), book.Price, currency)
	if err != nil {
		return model.Purchase{}, err
	}

	return purchase, nil
}

// ConfirmPayment settles a pending purchase and hands back its download
// token. Confirming an already paid purchase returns the stored token
// unchanged; a token is never minted twice for the same purchase.
func (s *Service) ConfirmPayment(ctx context.Context, purchaseID int64, paymentRef string) (ConfirmResult, error) {
	if s.purchases == nil {
		return ConfirmResult{}, fmt.Errorf("purchase store is nil")
	}
	if purchaseID <= 0 {
		return ConfirmResult{}, ErrValidation
	}

	purchase, err := s.purchases.FindByID(ctx, purchaseID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return ConfirmResult{}, ErrPurchaseNotFound
		}
		return ConfirmResult{}, err
	}

	if purchase.Status.Terminal() {
		return ConfirmResult{}, ErrInvalidState
	}
	if purchase.Status == enums.PurchaseStatusPaid {
		return confirmResultFrom(purchase, true)
	}

	paymentRef = strings.TrimSpace(paymentRef)
	if paymentRef == "" {
		paymentRef = mintPaymentRef()
	}
	expiresAt := s.now().UTC().Add(s.cfg.DownloadLinkTTL)

	for attempt := 0; attempt < tokenMintAttempts; attempt++ {
		token, err := mintDownloadToken()
		if err != nil {
			return ConfirmResult{}, err
		}

		updated, changed, err := s.purchases.MarkPaid(ctx, purchase.ID, token, expiresAt, s.cfg.DownloadLimit, "simulated", paymentRef)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDownloadTokenConflict) {
				continue
			}
			return ConfirmResult{}, err
		}
		if changed {
			return ConfirmResult{
				Purchase:   updated,
				Token:      token,
				PaymentRef: paymentRef,
				Idempotent: false,
			}, nil
		}

		// Lost the race: someone else settled this purchase first.
		if updated.Status == enums.PurchaseStatusPaid {
			return confirmResultFrom(updated, true)
		}
		return ConfirmResult{}, ErrInvalidState
	}

	return ConfirmResult{}, fmt.Errorf("could not mint a unique download token after %d attempts", tokenMintAttempts)
}

// MarkFailed records a declined simulated payment. Only pending
// purchases can fail; anything else is a state error.
func (s *Service) MarkFailed(ctx context.Context, purchaseID int64) (model.Purchase, error) {
	return s.transition(ctx, purchaseID, enums.PurchaseStatusFailed, enums.PurchaseStatusPending)
}

// MarkRefunded revokes a paid purchase. The download token stays on the
// row but the gate denies it because the status is no longer paid.
func (s *Service) MarkRefunded(ctx context.Context, purchaseID int64) (model.Purchase, error) {
	return s.transition(ctx, purchaseID, enums.PurchaseStatusRefunded, enums.PurchaseStatusPaid)
}

func (s *Service) FindByToken(ctx context.Context, token string) (model.Purchase, error) {
	if s.purchases == nil {
		return model.Purchase{}, fmt.Errorf("purchase store is nil")
	}
	if strings.TrimSpace(token) == "" {
		return model.Purchase{}, ErrValidation
	}

	purchase, err := s.purchases.FindByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, err
	}

	return purchase, nil
}

func (s *Service) List(ctx context.Context, status enums.PurchaseStatus, limit int) ([]model.Purchase, error) {
	if s.purchases == nil {
		return nil, fmt.Errorf("purchase store is nil")
	}
	if status != "" && !status.Valid() {
		return nil, ErrValidation
	}

	return s.purchases.List(ctx, status, limit)
}

func (s *Service) transition(ctx context.Context, purchaseID int64, target, from enums.PurchaseStatus) (model.Purchase, error) {
	if s.purchases == nil {
		return model.Purchase{}, fmt.Errorf("purchase store is nil")
	}
	if purchaseID <= 0 {
		return model.Purchase{}, ErrValidation
	}

	purchase, changed, err := s.purchases.SetStatus(ctx, purchaseID, target, from)
	if err != nil {
		if errors.Is(err, pgrepo.ErrPurchaseNotFound) {
			return model.Purchase{}, ErrPurchaseNotFound
		}
		return model.Purchase{}, err
	}
	if changed {
		return purchase, nil
	}

	// The guarded update found the row in another status. Repeating a
	// transition is fine; anything else, including a concurrent
	// confirmation that won the race, is a state error.
	if purchase.Status == target {
		return purchase, nil
	}
	return model.Purchase{}, ErrInvalidState
}

func confirmResultFrom(purchase model.Purchase, idempotent bool) (ConfirmResult, error) {
	if purchase.DownloadToken == nil || *purchase.DownloadToken == "" {
		return ConfirmResult{}, fmt.Errorf("paid purchase %d has no download token", purchase.ID)
	}
	ref := ""
	if purchase.PaymentRef != nil {
		ref = *purchase.PaymentRef
	}
	return ConfirmResult{
		Purchase:   purchase,
		Token:      *purchase.DownloadToken,
		PaymentRef: ref,
		Idempotent: idempotent,
	}, nil
}

// mintDownloadToken draws 32 random bytes and renders them URL-safe,
// 43 characters without padding.
func mintDownloadToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("mint download token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func mintPaymentRef() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "PAY-" + id[:16]
}
