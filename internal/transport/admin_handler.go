package transport

import (
	"errors"
	"net/http"
	"time"

	"storefront-catalog/internal/middleware"
	"storefront-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the admin login payload
type LoginRequest struct {
	Code string `json:"code" validate:"required"`
}

// LoginResponse carries the signed session for clients that cannot use cookies
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MaintenanceRequest toggles the storefront maintenance page
type MaintenanceRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// MaintenanceResponse reports the maintenance flag
type MaintenanceResponse struct {
	MaintenanceMode bool `json:"maintenance_mode"`
}

// SettingRequest writes a site setting. A missing description keeps the stored one.
type SettingRequest struct {
	Value       *string `json:"value" validate:"required"`
	Description *string `json:"description" validate:"omitempty,max=500"`
}

// SettingResponse is one site setting
type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// AdminHandler handles admin session and site settings requests
type AdminHandler struct {
	auth         service.AdminAuthService
	settings     service.SettingsService
	cookieSecure bool
	logger       *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(auth service.AdminAuthService, settings service.SettingsService, cookieSecure bool, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		auth:         auth,
		settings:     settings,
		cookieSecure: cookieSecure,
		logger:       logger,
	}
}

// RegisterPublicRoutes registers the storefront settings routes
func (h *AdminHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/maintenance", h.GetMaintenance)
}

// RegisterLoginRoute registers the login endpoint behind the given limiter
func (h *AdminHandler) RegisterLoginRoute(r chi.Router, limiter func(http.Handler) http.Handler) {
	r.With(limiter).Post("/login", h.Login)
}

// RegisterAdminRoutes registers the session-protected admin routes
func (h *AdminHandler) RegisterAdminRoutes(r chi.Router) {
	r.Post("/logout", h.Logout)
	r.Get("/check", h.Check)
	r.Get("/maintenance", h.GetMaintenance)
	r.Put("/maintenance", h.SetMaintenance)
	r.Get("/settings/{key}", h.GetSetting)
	r.Put("/settings/{key}", h.PutSetting)
}

// Login exchanges the shared access code for a session cookie
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	signed, session, err := h.auth.Login(r.Context(), req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAccessCode) {
			h.logger.Warn("Admin login rejected", zap.String("remote_addr", r.RemoteAddr))
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid access code")
			return
		}
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    signed,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("Admin logged in", zap.String("session_id", session.ID.String()))
	middleware.RespondWithJSON(w, http.StatusOK, LoginResponse{Token: signed, ExpiresAt: session.ExpiresAt})
}

// Logout invalidates the current session and clears the cookie
func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	signed, _ := middleware.SessionToken(r)
	if err := h.auth.Logout(r.Context(), signed); err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			middleware.RespondWithError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("Admin logged out")
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Check confirms the session is still valid. Reaching it means the session
// middleware accepted the request.
func (h *AdminHandler) Check(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

// GetMaintenance reports whether the storefront is in maintenance mode
func (h *AdminHandler) GetMaintenance(w http.ResponseWriter, r *http.Request) {
	enabled, err := h.settings.MaintenanceMode(r.Context())
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, MaintenanceResponse{MaintenanceMode: enabled})
}

// SetMaintenance switches maintenance mode on or off
func (h *AdminHandler) SetMaintenance(w http.ResponseWriter, r *http.Request) {
	var req MaintenanceRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.settings.SetMaintenanceMode(r.Context(), *req.Enabled); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Maintenance mode changed", zap.Bool("enabled", *req.Enabled))
	middleware.RespondWithJSON(w, http.StatusOK, MaintenanceResponse{MaintenanceMode: *req.Enabled})
}

// GetSetting returns a single site setting by key
func (h *AdminHandler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	value, ok, err := h.settings.Get(r.Context(), key)
	if err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}
	if !ok {
		middleware.RespondWithError(w, http.StatusNotFound, "setting not found")
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, SettingResponse{Key: key, Value: value})
}

// PutSetting creates or overwrites a site setting
func (h *AdminHandler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SettingRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithDecodeError(w, err)
		return
	}

	if err := h.settings.Set(r.Context(), key, *req.Value, req.Description); err != nil {
		middleware.RespondWithDomainError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Site setting changed", zap.String("key", key))
	middleware.RespondWithJSON(w, http.StatusOK, SettingResponse{Key: key, Value: *req.Value})
}
