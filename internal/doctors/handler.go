package doctors

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/cache"
	"github.com/dhairyajangir/CuraLink/internal/httpx"
	"github.com/dhairyajangir/CuraLink/internal/middleware"
	"github.com/dhairyajangir/CuraLink/internal/transport"
	"github.com/dhairyajangir/CuraLink/internal/validation"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service  *Service
	val      *validation.Validator
	log      *slog.Logger
	cache    cache.Cache
	cacheTTL time.Duration
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger, store cache.Cache, cacheTTL time.Duration) *Handler {
	return &Handler{
		service:  service,
		val:      val,
		log:      log,
		cache:    store,
		cacheTTL: cacheTTL,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, err := httpx.ParseLimit(r.URL.Query(), 50, 200)
	if err != nil {
		log.Warn("doctors list: invalid query", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filter := ListFilter{
		Specialty: strings.TrimSpace(r.URL.Query().Get("specialty")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, filter, limit, 0)
	if err != nil {
		log.Error("doctors list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("doctors list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	doc, err := h.service.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("doctors get: not found", slog.String("doctor_id", id))
			transport.WriteError(w, http.StatusNotFound, "doctor not found", nil)
			return
		}
		log.Error("doctors get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("doctors get: ok", slog.String("doctor_id", id))
	transport.WriteJSON(w, http.StatusOK, doc)
}

type slotsQuery struct {
	Date string `validate:"required,date"`
}

// GetSlots renders the booking calendar: the free slots for one doctor on one
// date.
func (h *Handler) GetSlots(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	q := slotsQuery{Date: r.URL.Query().Get("date")}
	if err := h.val.Struct(q); err != nil {
		log.Warn("doctor slots: invalid query")
		transport.WriteError(w, http.StatusBadRequest, "invalid query", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	cacheKey := SlotCacheKey(id, q.Date)
	if h.cache != nil {
		if cached, ok, err := h.cache.Get(r.Context(), cacheKey); err == nil && ok {
			log.Info("doctor slots: cache hit", slog.String("doctor_id", id), slog.String("date", q.Date))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			w.Write(cached)
			return
		}
	}

	past, err := availability.IsDatePast(q.Date, h.service.Location(), time.Now())
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	}
	if past {
		log.Warn("doctor slots: date in the past", slog.String("date", q.Date))
		transport.WriteError(w, http.StatusBadRequest, "date in the past", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	slots, err := h.service.FreeSlotsFor(ctx, id, q.Date)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("doctor slots: not found", slog.String("doctor_id", id))
			transport.WriteError(w, http.StatusNotFound, "doctor not found", nil)
			return
		}
		log.Error("doctor slots: compute error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "availability error", nil)
		return
	}

	response := map[string]interface{}{
		"doctorId": id,
		"date":     q.Date,
		"slots":    slots,
	}

	if payload, err := json.Marshal(response); err == nil && h.cache != nil {
		_ = h.cache.Set(r.Context(), cacheKey, payload, h.cacheTTL)
	}

	log.Info("doctor slots: ok", slog.String("doctor_id", id), slog.String("date", q.Date), slog.Int("slots", len(slots)))
	transport.WriteJSON(w, http.StatusOK, response)
}

func (h *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req UpdateAvailabilityRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("doctor availability update: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("doctor availability update: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	err := h.service.UpdateAvailability(ctx, identity.UserID, id, req.Availability)
	switch {
	case err == nil:
	case errors.Is(err, ErrForbidden):
		log.Warn("doctor availability update: forbidden", slog.String("doctor_id", id), slog.String("actor_id", identity.UserID))
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "doctor not found", nil)
		return
	case errors.Is(err, availability.ErrDuplicateSlot), errors.Is(err, availability.ErrInvalidLabel):
		log.Warn("doctor availability update: bad template", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	default:
		log.Error("doctor availability update: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("doctor availability update: ok", slog.String("doctor_id", id))
	transport.WriteMessage(w, http.StatusOK, "availability updated")
}

func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	limit, err := httpx.ParseLimit(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	items, err := h.service.List(ctx, ListFilter{IncludePending: true}, limit, 0)
	if err != nil {
		log.Error("admin doctors list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin doctors list: ok", slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

type approvalRequest struct {
	Approved *bool `json:"approved" validate:"required"`
}

func (h *Handler) AdminSetApproval(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req approvalRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.SetApproval(ctx, id, *req.Approved); err != nil {
		if errors.Is(err, ErrNotFound) {
			transport.WriteError(w, http.StatusNotFound, "doctor not found", nil)
			return
		}
		log.Error("admin doctor approval: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("admin doctor approval: ok", slog.String("doctor_id", id), slog.Bool("approved", *req.Approved))
	transport.WriteMessage(w, http.StatusOK, "approval updated")
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if r == nil {
		return h.log
	}
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
