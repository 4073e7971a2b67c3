package handlers

import (
	"errors"
	"net/http"

	newslettersvc "github.com/elkast/blog/internal/services/newsletter"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type NewsletterHandler struct {
	newsletter *newslettersvc.Service
}

func NewNewsletterHandler(newsletter *newslettersvc.Service) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter}
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.newsletter == nil {
		writeInternal(w, "NEWSLETTER_SERVICE_UNAVAILABLE", "newsletter service is unavailable")
		return
	}

	var req dto.SubscribeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	_, err := h.newsletter.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, newslettersvc.ErrAlreadySubscribed):
			// Duplicate subscription is a success for the visitor.
			httperrors.Write(w, http.StatusOK, dto.SubscribeResponse{OK: true, AlreadySubscribed: true})
		case errors.Is(err, newslettersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "a valid email is required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to subscribe")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SubscribeResponse{OK: true})
}

func (h *NewsletterHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.newsletter == nil {
		writeInternal(w, "NEWSLETTER_SERVICE_UNAVAILABLE", "newsletter service is unavailable")
		return
	}

	subscribers, err := h.newsletter.List(r.Context(), queryLimit(r, 200))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list subscribers")
		return
	}

	httperrors.Write(w, http.StatusOK, subscribers)
}
