package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/elkast/blog/internal/domain/enums"
	purchasesvc "github.com/elkast/blog/internal/services/purchases"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type PurchaseHandler struct {
	purchases *purchasesvc.Service
}

func NewPurchaseHandler(purchases *purchasesvc.Service) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

func (h *PurchaseHandler) Begin(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	var req dto.PurchaseBeginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	purchase, err := h.purchases.Begin(r.Context(), purchasesvc.BeginInput{
		BookSlug: chi.URLParam(r, "slug"),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, purchasesvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "name and a valid email are required")
		case errors.Is(err, purchasesvc.ErrBookNotFound):
			writeNotFound(w, "BOOK_NOT_FOUND", "book not found")
		case errors.Is(err, purchasesvc.ErrBookIsFree):
			writeBadRequest(w, "BOOK_IS_FREE", "free books are downloaded directly")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to begin purchase")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PurchaseBeginResponse{
		PurchaseID: purchase.ID,
		BookSlug:   purchase.BookSlug,
		Amount:     purchase.Amount,
		Currency:   purchase.Currency,
		Status:     string(purchase.Status),
	})
}

// Pay simulates the payment provider callback. Confirm settles the
// purchase and returns its download token; decline marks it failed.
func (h *PurchaseHandler) Pay(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	purchaseID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase id")
		return
	}

	var req dto.PayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	switch strings.ToLower(strings.TrimSpace(req.Action)) {
	case "", "confirm":
		result, err := h.purchases.ConfirmPayment(r.Context(), purchaseID, req.PaymentRef)
		if err != nil {
			handlePurchaseError(w, err, "failed to confirm payment")
			return
		}
		httperrors.Write(w, http.StatusOK, dto.PayResponse{
			PurchaseID:    result.Purchase.ID,
			Status:        string(result.Purchase.Status),
			DownloadToken: result.Token,
			PaymentRef:    result.PaymentRef,
			ExpiresAt:     result.Purchase.ExpiresAt,
			Idempotent:    result.Idempotent,
		})
	case "decline":
		purchase, err := h.purchases.MarkFailed(r.Context(), purchaseID)
		if err != nil {
			handlePurchaseError(w, err, "failed to decline payment")
			return
		}
		httperrors.Write(w, http.StatusOK, dto.PayResponse{
			PurchaseID: purchase.ID,
			Status:     string(purchase.Status),
		})
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "action must be confirm or decline")
	}
}

// ByToken backs the purchase confirmation page.
func (h *PurchaseHandler) ByToken(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	purchase, err := h.purchases.FindByToken(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		handlePurchaseError(w, err, "failed to load purchase")
		return
	}

	httperrors.Write(w, http.StatusOK, purchase)
}

func (h *PurchaseHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	status := enums.PurchaseStatus(r.URL.Query().Get("status"))
	purchases, err := h.purchases.List(r.Context(), status, queryLimit(r, 100))
	if err != nil {
		if errors.Is(err, purchasesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "unknown purchase status")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list purchases")
		return
	}

	httperrors.Write(w, http.StatusOK, purchases)
}

// AdminSetStatus covers the back-office decline and refund actions.
func (h *PurchaseHandler) AdminSetStatus(w http.ResponseWriter, r *http.Request) {
	if h.purchases == nil {
		writeInternal(w, "PURCHASE_SERVICE_UNAVAILABLE", "purchase service is unavailable")
		return
	}

	purchaseID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase id")
		return
	}

	var req dto.PurchaseStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	var err error
	var result any
	switch enums.PurchaseStatus(strings.ToLower(strings.TrimSpace(req.Status))) {
	case enums.PurchaseStatusFailed:
		result, err = h.purchases.MarkFailed(r.Context(), purchaseID)
	case enums.PurchaseStatusRefunded:
		result, err = h.purchases.MarkRefunded(r.Context(), purchaseID)
	case enums.PurchaseStatusPaid:
		var confirm purchasesvc.ConfirmResult
		confirm, err = h.purchases.ConfirmPayment(r.Context(), purchaseID, "")
		result = confirm.Purchase
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "status must be paid, failed or refunded")
		return
	}
	if err != nil {
		handlePurchaseError(w, err, "failed to update purchase status")
		return
	}

	httperrors.Write(w, http.StatusOK, result)
}

func handlePurchaseError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, purchasesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid purchase payload")
	case errors.Is(err, purchasesvc.ErrPurchaseNotFound):
		writeNotFound(w, "PURCHASE_NOT_FOUND", "purchase not found")
	case errors.Is(err, purchasesvc.ErrInvalidState):
		httperrors.Write(w, http.StatusConflict, httperrors.APIError{
			Code:    "INVALID_STATE",
			Message: "purchase state does not allow this transition",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", fallback)
	}
}
