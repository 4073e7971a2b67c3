package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/elkast/blog/internal/domain/enums"
	"github.com/elkast/blog/internal/domain/model"
	pgrepo "github.com/elkast/blog/internal/repo/postgres"
	purchasesvc "github.com/elkast/blog/internal/services/purchases"
	"github.com/elkast/blog/internal/transport/http/dto"
)

type handlerBookStoreStub struct {
	books map[string]model.Book
}

func (s *handlerBookStoreStub) FindBySlug(_ context.Context, slug string) (model.Book, error) {
	book, ok := s.books[slug]
	if !ok {
		return model.Book{}, pgrepo.ErrBookNotFound
	}
	return book, nil
}

type handlerPurchaseStoreStub struct {
	byID   map[int64]*model.Purchase
	nextID int64
}

func (s *handlerPurchaseStoreStub) CreatePending(_ context.Context, bookID int64, name, email, phone string, amount int64, currency string) (model.Purchase, error) {
	s.nextID++
	purchase := model.Purchase{
		ID:            s.nextID,
		BookID:        bookID,
		CustomerName:  name,
		CustomerEmail: email,
		CustomerPhone: phone,
		Amount:        amount,
		Currency:      currency,
		Status:        enums.PurchaseStatusPending,
		BookSlug:      "paid-book",
		CreatedAt:     time.Now(),
	}
	s.byID[purchase.ID] = &purchase
	return purchase, nil
}

func (s *handlerPurchaseStoreStub) FindByID(_ context.Context, purchaseID int64) (model.Purchase, error) {
	purchase, ok := s.byID[purchaseID]
	if !ok {
		return model.Purchase{}, pgrepo.ErrPurchaseNotFound
	}
	return *purchase, nil
}

func (s *handlerPurchaseStoreStub) FindByToken(_ context.Context, token string) (model.Purchase, error) {
	for _, purchase := range s.byID {
		if purchase.DownloadToken != nil && *purchase.DownloadToken == token {
			return *purchase, nil
		}
	}
	return model.Purchase{}, pgrepo.ErrPurchaseNotFound
}

func (s *handlerPurchaseStoreStub) MarkPaid(_ context.Context, purchaseID int64, token string, expiresAt time.Time, downloadLimit int, paymentMethod, paymentRef string) (model.Purchase, bool, error) {
	purchase, ok := s.byID[purchaseID]
	if !ok {
		return model.Purchase{}, false, pgrepo.ErrPurchaseNotFound
	}
	if purchase.Status != enums.PurchaseStatusPending {
		return *purchase, false, nil
	}
	purchase.Status = enums.PurchaseStatusPaid
	purchase.DownloadToken = &token
	purchase.ExpiresAt = &expiresAt
	purchase.DownloadLimit = downloadLimit
	purchase.PaymentMethod = paymentMethod
	purchase.PaymentRef = &paymentRef
	return *purchase, true, nil
}

func (s *handlerPurchaseStoreStub) SetStatus(_ context.Context, purchaseID int64, status, from enums.PurchaseStatus) (model.Purchase, bool, error) {
	purchase, ok := s.byID[purchaseID]
	if !ok {
		return model.Purchase{}, false, pgrepo.ErrPurchaseNotFound
	}
	if purchase.Status != from {
		return *purchase, false, nil
	}
	purchase.Status = status
	return *purchase, true, nil
}

func (s *handlerPurchaseStoreStub) List(_ context.Context, status enums.PurchaseStatus, _ int) ([]model.Purchase, error) {
	var out []model.Purchase
	for _, purchase := range s.byID {
		if status == "" || purchase.Status == status {
			out = append(out, *purchase)
		}
	}
	return out, nil
}

func newPurchaseHandlerForTest() (*PurchaseHandler, *handlerPurchaseStoreStub) {
	books := &handlerBookStoreStub{books: map[string]model.Book{
		"paid-book": {ID: 1, Slug: "paid-book", Title: "Paid Book", Price: 5000, Currency: "CFA"},
		"free-book": {ID: 2, Slug: "free-book", Title: "Free Book", IsFree: true},
	}}
	purchases := &handlerPurchaseStoreStub{byID: map[int64]*model.Purchase{}}
	service := purchasesvc.NewService(books, purchases, purchasesvc.Config{})
	return NewPurchaseHandler(service), purchases
}

func withURLParam(ctx context.Context, key, value string) context.Context {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
}

func TestPurchaseBeginCreatesPending(t *testing.T) {
	handler, _ := newPurchaseHandlerForTest()

	body := `{"name":"Ada","email":"ada@example.com","phone":"+22501020304"}`
	req := httptest.NewRequest(http.MethodPost, "/books/paid-book/purchase", strings.NewReader(body))
	req = req.WithContext(withURLParam(req.Context(), "slug", "paid-book"))
	rr := httptest.NewRecorder()

	handler.Begin(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var response dto.PurchaseBeginResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Amount != 5000 || response.Currency != "CFA" {
		t.Fatalf("unexpected amount: %+v", response)
	}
	if response.Status != string(enums.PurchaseStatusPending) {
		t.Fatalf("unexpected status: %q", response.Status)
	}
}

func TestPurchaseBeginRejectsFreeBook(t *testing.T) {
	handler, _ := newPurchaseHandlerForTest()

	body := `{"name":"Ada","email":"ada@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/books/free-book/purchase", strings.NewReader(body))
	req = req.WithContext(withURLParam(req.Context(), "slug", "free-book"))
	rr := httptest.NewRecorder()

	handler.Begin(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusBadRequest)
	}

	var response struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Code != "BOOK_IS_FREE" {
		t.Fatalf("unexpected error code: %q", response.Code)
	}
}

func TestPurchasePayConfirmReturnsToken(t *testing.T) {
	handler, store := newPurchaseHandlerForTest()
	store.byID[7] = &model.Purchase{ID: 7, BookID: 1, Status: enums.PurchaseStatusPending}

	req := httptest.NewRequest(http.MethodPost, "/purchases/7/pay", strings.NewReader(`{"action":"confirm"}`))
	req = req.WithContext(withURLParam(req.Context(), "id", "7"))
	rr := httptest.NewRecorder()

	handler.Pay(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d, body %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var response dto.PayResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != string(enums.PurchaseStatusPaid) {
		t.Fatalf("unexpected status: %q", response.Status)
	}
	if len(response.DownloadToken) < 43 {
		t.Fatalf("download token looks too short: %q", response.DownloadToken)
	}
	if response.Idempotent {
		t.Fatalf("first confirm must not be idempotent")
	}
}

func TestPurchasePayConfirmTwiceIsIdempotent(t *testing.T) {
	handler, store := newPurchaseHandlerForTest()
	store.byID[7] = &model.Purchase{ID: 7, BookID: 1, Status: enums.PurchaseStatusPending}

	confirm := func() dto.PayResponse {
		req := httptest.NewRequest(http.MethodPost, "/purchases/7/pay", strings.NewReader(`{}`))
		req = req.WithContext(withURLParam(req.Context(), "id", "7"))
		rr := httptest.NewRecorder()
		handler.Pay(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("unexpected status: got %d, body %s", rr.Code, rr.Body.String())
		}
		var response dto.PayResponse
		if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		return response
	}

	first := confirm()
	second := confirm()

	if !second.Idempotent {
		t.Fatalf("second confirm must be idempotent")
	}
	if first.DownloadToken != second.DownloadToken {
		t.Fatalf("token changed between confirms: %q vs %q", first.DownloadToken, second.DownloadToken)
	}
}

func TestPurchasePayDeclineAfterPaidConflicts(t *testing.T) {
	handler, store := newPurchaseHandlerForTest()
	token := "tok"
	store.byID[9] = &model.Purchase{ID: 9, BookID: 1, Status: enums.PurchaseStatusPaid, DownloadToken: &token}

	req := httptest.NewRequest(http.MethodPost, "/purchases/9/pay", strings.NewReader(`{"action":"decline"}`))
	req = req.WithContext(withURLParam(req.Context(), "id", "9"))
	rr := httptest.NewRecorder()

	handler.Pay(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusConflict)
	}

	var response struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Code != "INVALID_STATE" {
		t.Fatalf("unexpected error code: %q", response.Code)
	}
}

func TestPurchasePayUnknownPurchase(t *testing.T) {
	handler, _ := newPurchaseHandlerForTest()

	req := httptest.NewRequest(http.MethodPost, "/purchases/404/pay", strings.NewReader(`{}`))
	req = req.WithContext(withURLParam(req.Context(), "id", "404"))
	rr := httptest.NewRecorder()

	handler.Pay(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNotFound)
	}
}
