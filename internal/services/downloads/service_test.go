package downloads

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
)

type gatePurchaseStub struct {
	byToken map[string]*model.Purchase
}

func (s *gatePurchaseStub) FindByToken(_ context.Context, token string) (model.Purchase, error) {
	purchase, ok := s.byToken[token]
	if !ok {
		return model.Purchase{}, pgrepo.ErrPurchaseNotFound
	}
	return *purchase, nil
}

func (s *gatePurchaseStub) ConsumeDownload(_ context.Context, purchaseID int64) (int, error) {
	for _, purchase := range s.byToken {
		if purchase.ID != purchaseID {
			continue
		}
		if purchase.DownloadsUsed >= purchase.DownloadLimit {
			return 0, pgrepo.ErrDownloadQuotaExceeded
		}
		purchase.DownloadsUsed++
		return purchase.DownloadsUsed, nil
	}
	return 0, pgrepo.ErrPurchaseNotFound
}

type gateBookStub struct {
	books      map[string]model.Book
	increments map[int64]int
}

func (s *gateBookStub) FindBySlug(_ context.Context, slug string) (model.Book, error) {
	book, ok := s.books[slug]
	if !ok {
		return model.Book{}, pgrepo.ErrBookNotFound
	}
	return book, nil
}

func (s *gateBookStub) IncrementDownloadCount(_ context.Context, bookID int64) error {
	if s.increments == nil {
		s.increments = make(map[int64]int)
	}
	s.increments[bookID]++
	return nil
}

type auditStub struct {
	entries []model.DownloadEntry
}

func (s *auditStub) Record(_ context.Context, bookID int64, purchaseID *int64, ip, userAgent string) error {
	s.entries = append(s.entries, model.DownloadEntry{
		BookID:     bookID,
		PurchaseID: purchaseID,
		IP:         ip,
		UserAgent:  userAgent,
	})
	return nil
}

type presignStub struct {
	calls int
}

func (s *presignStub) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	s.calls++
	return "https://files.example/" + key + "?signed", nil
}

func paidPurchase(token string) *model.Purchase {
	expires := time.Now().UTC().Add(24 * time.Hour)
	return &model.Purchase{
		ID:            1,
		BookID:        10,
		Status:        enums.PurchaseStatusPaid,
		DownloadToken: &token,
		DownloadsUsed: 0,
		DownloadLimit: 3,
		ExpiresAt:     &expires,
		BookTitle:     "Paid Book",
		BookFileKey:   "books/paid-book.pdf",
	}
}

func newGate(purchases *gatePurchaseStub, books *gateBookStub, audit *auditStub, presigner *presignStub) *Service {
	return NewService(purchases, books, audit, presigner, Config{PresignTTL: 15 * time.Minute})
}

func TestAuthorizeHappyPath(t *testing.T) {
	purchases := &gatePurchaseStub{byToken: map[string]*model.Purchase{"tok": paidPurchase("tok")}}
	books := &gateBookStub{}
	audit := &auditStub{}
	presigner := &presignStub{}
	gate := newGate(purchases, books, audit, presigner)

	result, err := gate.Authorize(context.Background(), "tok", Requester{IP: "203.0.113.9", UserAgent: "curl"})
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !result.Allowed || result.Denial != DenialNone {
		t.Fatalf("expected allow, got denial %q", result.Denial)
	}
	if result.URL == "" {
		t.Fatalf("expected a presigned url")
	}
	if result.Remaining != 2 {
		t.Fatalf("expected 2 downloads remaining, got %d", result.Remaining)
	}
	if len(audit.entries) != 1 || audit.entries[0].PurchaseID == nil {
		t.Fatalf("expected one audit entry with purchase id, got %+v", audit.entries)
	}
	if books.increments[10] != 1 {
		t.Fatalf("expected book counter bump, got %d", books.increments[10])
	}
}

func TestAuthorizeDenialOrder(t *testing.T) {
	// A row that fails every check at once must report not_paid first,
	// quota second, expiry last.
	expired := time.Now().UTC().Add(-time.Hour)

	cases := []struct {
		name     string
		mutate   func(p *model.Purchase)
		expected Denial
	}{
		{"unknown token", func(p *model.Purchase) {}, DenialNotFound},
		{"pending beats quota and expiry", func(p *model.Purchase) {
			p.Status = enums.PurchaseStatusPending
			p.DownloadsUsed = p.DownloadLimit
			p.ExpiresAt = &expired
		}, DenialNotPaid},
		{"refunded", func(p *model.Purchase) {
			p.Status = enums.PurchaseStatusRefunded
		}, DenialNotPaid},
		{"quota beats expiry", func(p *model.Purchase) {
			p.DownloadsUsed = p.DownloadLimit
			p.ExpiresAt = &expired
		}, DenialQuotaExceeded},
		{"expired", func(p *model.Purchase) {
			p.ExpiresAt = &expired
		}, DenialExpired},
		{"nil expiry denies", func(p *model.Purchase) {
			p.ExpiresAt = nil
		}, DenialExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			token := "tok"
			purchase := paidPurchase(token)
			tc.mutate(purchase)

			store := &gatePurchaseStub{byToken: map[string]*model.Purchase{}}
			if tc.expected != DenialNotFound {
				store.byToken[token] = purchase
			}

			audit := &auditStub{}
			presigner := &presignStub{}
			gate := newGate(store, &gateBookStub{}, audit, presigner)

			result, err := gate.Authorize(context.Background(), token, Requester{})
			if err != nil {
				t.Fatalf("authorize: %v", err)
			}
			if result.Allowed {
				t.Fatalf("expected denial, got allow")
			}
			if result.Denial != tc.expected {
				t.Fatalf("expected denial %q, got %q", tc.expected, result.Denial)
			}
			if presigner.calls != 0 {
				t.Fatalf("denied request must not presign")
			}
			if len(audit.entries) != 0 {
				t.Fatalf("denied request must not be audited")
			}
		})
	}
}

func TestAuthorizeQuotaExhaustsAcrossCalls(t *testing.T) {
	purchases := &gatePurchaseStub{byToken: map[string]*model.Purchase{"tok": paidPurchase("tok")}}
	gate := newGate(purchases, &gateBookStub{}, &auditStub{}, &presignStub{})

	for i := 0; i < 3; i++ {
		result, err := gate.Authorize(context.Background(), "tok", Requester{})
		if err != nil {
			t.Fatalf("authorize %d: %v", i+1, err)
		}
		if !result.Allowed {
			t.Fatalf("download %d should pass, got denial %q", i+1, result.Denial)
		}
	}

	result, err := gate.Authorize(context.Background(), "tok", Requester{})
	if err != nil {
		t.Fatalf("authorize over quota: %v", err)
	}
	if result.Allowed || result.Denial != DenialQuotaExceeded {
		t.Fatalf("expected quota denial on fourth download, got %+v", result)
	}
}

func TestFreeDownload(t *testing.T) {
	books := &gateBookStub{books: map[string]model.Book{
		"free-book": {ID: 20, Title: "Free Book", Slug: "free-book", IsFree: true, FileKey: "books/free.pdf"},
		"paid-book": {ID: 21, Title: "Paid Book", Slug: "paid-book", FileKey: "books/paid.pdf"},
	}}
	audit := &auditStub{}
	gate := newGate(&gatePurchaseStub{byToken: map[string]*model.Purchase{}}, books, audit, &presignStub{})

	result, err := gate.FreeDownload(context.Background(), "free-book", Requester{IP: "203.0.113.9"})
	if err != nil {
		t.Fatalf("free download: %v", err)
	}
	if !result.Allowed || result.URL == "" {
		t.Fatalf("expected allowed free download, got %+v", result)
	}
	if len(audit.entries) != 1 || audit.entries[0].PurchaseID != nil {
		t.Fatalf("free download audit must carry a nil purchase id")
	}

	if _, err := gate.FreeDownload(context.Background(), "paid-book", Requester{}); !errors.Is(err, ErrBookNotFree) {
		t.Fatalf("expected ErrBookNotFree for a priced book, got %v", err)
	}
	if _, err := gate.FreeDownload(context.Background(), "missing", Requester{}); !errors.Is(err, ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
