package handlers

import (
	"errors"
	"net/http"

	adminauthsvc "github.com/elkast/blog/internal/services/adminauth"
	siteconfigsvc "github.com/elkast/blog/internal/services/siteconfig"
	statssvc "github.com/elkast/blog/internal/services/stats"
	"github.com/elkast/blog/internal/transport/http/dto"
	httperrors "github.com/elkast/blog/internal/transport/http/errors"
)

type AdminHandler struct {
	auth       *adminauthsvc.Service
	stats      *statssvc.Service
	siteConfig *siteconfigsvc.Service
}

func NewAdminHandler(auth *adminauthsvc.Service, stats *statssvc.Service, siteConfig *siteconfigsvc.Service) *AdminHandler {
	return &AdminHandler{
		auth:       auth,
		stats:      stats,
		siteConfig: siteConfig,
	}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.AdminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, adminauthsvc.ErrInvalidCredentials) {
			writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid email or password")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "login failed")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminLoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.stats == nil {
		writeInternal(w, "STATS_SERVICE_UNAVAILABLE", "stats service is unavailable")
		return
	}

	dashboard, err := h.stats.Dashboard(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to build dashboard")
		return
	}

	httperrors.Write(w, http.StatusOK, dashboard)
}

func (h *AdminHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	if h.siteConfig == nil {
		writeInternal(w, "CONFIG_SERVICE_UNAVAILABLE", "site config service is unavailable")
		return
	}

	values, err := h.siteConfig.Get(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to load site config")
		return
	}

	httperrors.Write(w, http.StatusOK, values)
}

func (h *AdminHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	if h.siteConfig == nil {
		writeInternal(w, "CONFIG_SERVICE_UNAVAILABLE", "site config service is unavailable")
		return
	}

	var req dto.ConfigUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	if err := h.siteConfig.Update(r.Context(), req.Values); err != nil {
		if errors.Is(err, siteconfigsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "values must be a non-empty map with non-empty keys")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to update site config")
		return
	}

	values, err := h.siteConfig.Get(r.Context())
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to reload site config")
		return
	}

	httperrors.Write(w, http.StatusOK, values)
}
