package reviews

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	doctorID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req CreateRequest
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

	rv, err := h.service.Create(ctx, identity.UserID, doctorID, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	case errors.Is(err, ErrForbidden):
		log.Warn("review create: forbidden", slog.String("doctor_id", doctorID), slog.String("actor_id", identity.UserID))
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, ErrNotCompleted):
		transport.WriteError(w, http.StatusUnprocessableEntity, "appointment not completed yet", nil)
		return
	case errors.Is(err, ErrAlreadyReviewed):
		transport.WriteError(w, http.StatusConflict, "appointment already reviewed", nil)
		return
	default:
		log.Error("review create: failed", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("review create: ok", slog.String("doctor_id", doctorID), slog.Int("rating", rv.Rating))
	transport.WriteJSON(w, http.StatusCreated, rv)
}

func (h *Handler) ListByDoctor(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	doctorID := strings.TrimSpace(chi.URLParam(r, "id"))
	if doctorID == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}
	limit, err := httpx.ParseLimit(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.ListByDoctor(ctx, doctorID, limit)
	if err != nil {
		log.Error("reviews list: database error", slog.String("error", err.Error()))
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
