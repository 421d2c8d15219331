package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/brizzai/graph-mcp/internal/logger"
	"github.com/brizzai/graph-mcp/internal/session"
	"github.com/brizzai/graph-mcp/internal/utils"
	"go.uber.org/zap"
)

// Handler handles session-related HTTP requests
type Handler struct {
	validator *session.Validator
}

// NewHandler creates a new Handler instance
func NewHandler(validator *session.Validator) *Handler {
	return &Handler{validator: validator}
}

// SessionInfo is the body served by HandleSession.
type SessionInfo struct {
	UID       string     `json:"uid"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// HandleSession handles /session.
//
// GET reports who the session cookie belongs to. The access token is never
// echoed back. DELETE expires the cookie in the browser.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getSession(w, r)
	case http.MethodDelete:
		h.clearSession(w)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.validator.FromRequest(r)
	if err != nil {
		logger.Debug("Session lookup failed", zap.Error(err))
		code := "invalid_session"
		if errors.Is(err, session.ErrNoCookie) {
			code = "unauthorized"
		}
		utils.WriteError(w, code, err.Error(), http.StatusUnauthorized)
		return
	}

	info := SessionInfo{UID: s.UID()}
	if exp := s.ExpiresAt(); !exp.IsZero() {
		exp = exp.UTC()
		info.ExpiresAt = &exp
	}
	utils.WriteJSON(w, info)
}

func (h *Handler) clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName(h.validator.AppID),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
