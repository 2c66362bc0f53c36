package payments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/httpx"
	"github.com/dhairyajangir/CuraLink/internal/middleware"
	"github.com/dhairyajangir/CuraLink/internal/transport"
	"github.com/dhairyajangir/CuraLink/internal/validation"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{service: service, val: val, log: log}
}

func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req IntentRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	payment, err := h.service.CreateIntent(ctx, identity.UserID, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	case errors.Is(err, ErrForbidden):
		log.Warn("payment intent: forbidden", slog.String("appointment_id", req.AppointmentID), slog.String("actor_id", identity.UserID))
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, ErrNotPayable):
		transport.WriteError(w, http.StatusUnprocessableEntity, "appointment is not awaiting payment", nil)
		return
	case errors.Is(err, ErrCashInPerson):
		transport.WriteError(w, http.StatusUnprocessableEntity, "cash payments are settled at the clinic", nil)
		return
	default:
		log.Error("payment intent: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "payment failed", nil)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, payment)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	limit, err := httpx.ParseLimit(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.History(ctx, identity.UserID, limit)
	if err != nil {
		log.Error("payment history: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
