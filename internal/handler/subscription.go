package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartbill/smartbill/internal/auth"
	"github.com/smartbill/smartbill/internal/handler/dto"
	"github.com/smartbill/smartbill/internal/service"
)

// SubscriptionHandler handles HTTP requests for subscription operations.
// All routes sit behind the auth middleware; the acting user is taken
// from the request context, never from the payload.
type SubscriptionHandler struct {
	svc    *service.SubscriptionService
	logger *slog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(svc *service.SubscriptionService, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /subscriptions/.
func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	var req dto.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	sub, err := h.svc.Create(r.Context(), caller.UserID, toInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("subscription_created",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
	)

	writeJSON(w, http.StatusCreated, dto.ToSubscriptionResponse(sub))
}

// List handles GET /subscriptions/.
func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	subs, err := h.svc.List(r.Context(), caller.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSubscriptionListResponse(subs))
}

// Update handles PUT /subscriptions/{id}.
func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Subscription ID is required")
		return
	}

	var req dto.SubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	sub, err := h.svc.Update(r.Context(), caller.UserID, id, toInput(req))
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("subscription_updated",
		"subscription_id", sub.ID,
		"owner_id", sub.OwnerID,
	)

	writeJSON(w, http.StatusOK, dto.ToSubscriptionResponse(sub))
}

// Delete handles DELETE /subscriptions/{id}.
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := auth.MustAuthFromContext(r.Context())

	id := chi.URLParam(r, "id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Subscription ID is required")
		return
	}

	if err := h.svc.Delete(r.Context(), caller.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("subscription_deleted",
		"subscription_id", id,
		"owner_id", caller.UserID,
	)

	w.WriteHeader(http.StatusNoContent)
}

// toInput converts the request DTO to service input.
func toInput(req dto.SubscriptionRequest) service.SubscriptionInput {
	return service.SubscriptionInput{
		Name:              req.Name,
		Price:             req.Price,
		Currency:          req.Currency,
		DueDate:           req.DueDate,
		Category:          req.Category,
		RecurringSchedule: req.RecurringSchedule,
		Notes:             req.Notes,
	}
}

// handleServiceError maps subscription service errors to HTTP responses.
// A record owned by someone else surfaces as NOT_FOUND, exactly like a
// record that does not exist.
func (h *SubscriptionHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSubscriptionNotFound):
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "Subscription not found")
	case errors.Is(err, service.ErrNameRequired):
		h.writeError(w, http.StatusBadRequest, "NAME_REQUIRED", "Name is required")
	case errors.Is(err, service.ErrCategoryRequired):
		h.writeError(w, http.StatusBadRequest, "CATEGORY_REQUIRED", "Category is required")
	case errors.Is(err, service.ErrInvalidPrice):
		h.writeError(w, http.StatusBadRequest, "INVALID_PRICE", "Price must be greater than zero")
	case errors.Is(err, service.ErrInvalidCurrency):
		h.writeError(w, http.StatusBadRequest, "INVALID_CURRENCY", "Currency must be a 3-letter code")
	case errors.Is(err, service.ErrInvalidSchedule):
		h.writeError(w, http.StatusBadRequest, "INVALID_SCHEDULE", "Recurring schedule is not recognized")
	default:
		h.logger.Error("internal_error", "error", err)
		h.writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}

// writeError writes an error response.
func (h *SubscriptionHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}
