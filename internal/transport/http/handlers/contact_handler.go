package handlers

import (
	"errors"
	"net/http"

	contactsvc "github.com/elkast/blog/internal/services/contact"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type ContactHandler struct {
	contact *contactsvc.Service
}

func NewContactHandler(contact *contactsvc.Service) *ContactHandler {
	return &ContactHandler{contact: contact}
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		writeInternal(w, "CONTACT_SERVICE_UNAVAILABLE", "contact service is unavailable")
		return
	}

	var req dto.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	message, err := h.contact.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, contactsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "name, a valid email and a message are required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to store contact message")
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.ContactResponse{OK: true, MessageID: message.ID})
}

func (h *ContactHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		writeInternal(w, "CONTACT_SERVICE_UNAVAILABLE", "contact service is unavailable")
		return
	}

	messages, err := h.contact.List(r.Context(), r.URL.Query().Get("unread") == "true", queryLimit(r, 100))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list contact messages")
		return
	}

	httperrors.Write(w, http.StatusOK, messages)
}

func (h *ContactHandler) AdminMarkRead(w http.ResponseWriter, r *http.Request) {
	if h.contact == nil {
		writeInternal(w, "CONTACT_SERVICE_UNAVAILABLE", "contact service is unavailable")
		return
	}

	messageID, ok := pathID(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message id")
		return
	}

	if err := h.contact.MarkRead(r.Context(), messageID); err != nil {
		switch {
		case errors.Is(err, contactsvc.ErrMessageNotFound):
			writeNotFound(w, "MESSAGE_NOT_FOUND", "contact message not found")
		case errors.Is(err, contactsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid message id")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to mark message read")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MarkReadResponse{OK: true})
}
