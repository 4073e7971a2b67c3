package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	downloadsvc "github.com/elkast/blog/internal/services/downloads"
	ratesvc "github.com/elkast/blog/internal/services/rate"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type DownloadHandler struct {
	gate    *downloadsvc.Service
	limiter *ratesvc.Limiter
	log     *zap.Logger
}

func NewDownloadHandler(gate *downloadsvc.Service, limiter *ratesvc.Limiter, log *zap.Logger) *DownloadHandler {
	if log == nil {
		log = zap.NewNop()
	}

	return &DownloadHandler{
		gate:    gate,
		limiter: limiter,
		log:     log,
	}
}

// Gated resolves a download token to a presigned URL. Denials are part
// of the contract and come back as 4xx, never 5xx.
func (h *DownloadHandler) Gated(w http.ResponseWriter, r *http.Request) {
	if h.gate == nil {
		writeInternal(w, "DOWNLOAD_SERVICE_UNAVAILABLE", "download service is unavailable")
		return
	}
	if !h.allowRate(w, r) {
		return
	}

	result, err := h.gate.Authorize(r.Context(), chi.URLParam(r, "token"), requesterFrom(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to authorize download")
		return
	}
	if !result.Allowed {
		writeDenial(w, result.Denial)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DownloadResponse{
		URL:       result.URL,
		BookTitle: result.BookTitle,
		Remaining: result.Remaining,
	})
}

func (h *DownloadHandler) Free(w http.ResponseWriter, r *http.Request) {
	if h.gate == nil {
		writeInternal(w, "DOWNLOAD_SERVICE_UNAVAILABLE", "download service is unavailable")
		return
	}
	if !h.allowRate(w, r) {
		return
	}

	result, err := h.gate.FreeDownload(r.Context(), chi.URLParam(r, "slug"), requesterFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, downloadsvc.ErrBookNotFound):
			writeNotFound(w, "BOOK_NOT_FOUND", "book not found")
		case errors.Is(err, downloadsvc.ErrBookNotFree):
			writeBadRequest(w, "BOOK_NOT_FREE", "this book requires a purchase")
		case errors.Is(err, downloadsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid book slug")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to serve free download")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.DownloadResponse{
		URL:       result.URL,
		BookTitle: result.BookTitle,
	})
}

func (h *DownloadHandler) allowRate(w http.ResponseWriter, r *http.Request) bool {
	if h.limiter == nil {
		return true
	}

	retryAfter, allowed, err := h.limiter.AllowDownload(r.Context(), r.RemoteAddr)
	if err != nil {
		// Redis trouble must not lock paying customers out.
		h.log.Warn("download rate limiter unavailable, admitting request",
			zap.String("ip", r.RemoteAddr),
			zap.Error(err),
		)
		return true
	}
	if !allowed {
		httperrors.Write(w, http.StatusTooManyRequests, httperrors.RateLimitError{
			Code:          "RATE_LIMITED",
			Message:       "too many download attempts",
			RetryAfterSec: retryAfter,
		})
		return false
	}

	return true
}

func writeDenial(w http.ResponseWriter, denial downloadsvc.Denial) {
	switch denial {
	case downloadsvc.DenialNotFound:
		writeNotFound(w, "TOKEN_NOT_FOUND", "download token not found")
	case downloadsvc.DenialNotPaid:
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "NOT_PAID",
			Message: "purchase is not paid",
		})
	case downloadsvc.DenialQuotaExceeded:
		httperrors.Write(w, http.StatusForbidden, httperrors.APIError{
			Code:    "QUOTA_EXCEEDED",
			Message: "download quota exhausted",
		})
	case downloadsvc.DenialExpired:
		httperrors.Write(w, http.StatusGone, httperrors.APIError{
			Code:    "LINK_EXPIRED",
			Message: "download link expired",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "unknown denial")
	}
}

func requesterFrom(r *http.Request) downloadsvc.Requester {
	return downloadsvc.Requester{
		IP:        r.RemoteAddr,
		UserAgent: r.UserAgent(),
	}
}
