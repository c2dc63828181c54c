package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/smartbill/smartbill/internal/handler/dto"
	"github.com/smartbill/smartbill/internal/service"
)

// AuthHandler handles HTTP requests for registration and login.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// Register handles POST /register/.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_registered", "user_id", user.ID)

	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Login handles POST /login/.
// Accepts form-encoded username/password or the equivalent JSON body.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	username, password, ok := readCredentials(r)
	if !ok {
		h.writeError(w, http.StatusBadRequest, "INVALID_BODY", "Invalid request body")
		return
	}

	result, err := h.svc.Login(r.Context(), username, password)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("user_logged_in", "user_id", result.UserID)

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		UserID:      result.UserID,
	})
}

// readCredentials pulls username/password from a form-encoded or JSON
// body, depending on Content-Type.
func readCredentials(r *http.Request) (username, password string, ok bool) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		var req dto.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", "", false
		}
		return req.Username, req.Password, true
	}

	if err := r.ParseForm(); err != nil {
		return "", "", false
	}
	return r.PostFormValue("username"), r.PostFormValue("password"), true
}

// handleServiceError maps account service errors to HTTP responses.
// Authentication failures share a single response body regardless of
// cause, so the API never confirms whether an email is registered.
func (h *AuthHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidEmail):
		h.writeError(w, http.StatusBadRequest, "INVALID_EMAIL", "Invalid email address")
	case errors.Is(err, service.ErrPasswordTooShort):
		h.writeError(w, http.StatusBadRequest, "PASSWORD_TOO_SHORT", "Password must be at least 8 characters")
	case errors.Is(err, service.ErrEmailTaken):
		h.writeError(w, http.StatusConflict, "EMAIL_TAKEN", "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		w.Header().Set("WWW-Authenticate", "Bearer")
		h.writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Incorrect email or password")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *AuthHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
