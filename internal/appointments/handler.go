package appointments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/doctors"
	"github.com/dhairyajangir/CuraLink/internal/httpx"
	"github.com/dhairyajangir/CuraLink/internal/middleware"
	"github.com/dhairyajangir/CuraLink/internal/models"
	"github.com/dhairyajangir/CuraLink/internal/transport"
	"github.com/dhairyajangir/CuraLink/internal/validation"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	service *Service
	val     *validation.Validator
	log     *slog.Logger
}

func NewHandler(service *Service, val *validation.Validator, log *slog.Logger) *Handler {
	return &Handler{
		service: service,
		val:     val,
		log:     log,
	}
}

func actorFrom(r *http.Request) (Actor, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		return Actor{}, false
	}
	return Actor{UserID: identity.UserID, Role: identity.Role}, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	actor, ok := actorFrom(r)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req CreateRequest
	if err := httpx.DecodeJSON(r.Body, &req); err != nil {
		log.Warn("appointments create: invalid json")
		transport.WriteError(w, http.StatusBadRequest, "invalid json", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		log.Warn("appointments create: validation error")
		transport.WriteError(w, http.StatusBadRequest, "validation error", httpx.ValidationDetails(h.val.ValidationErrors(err)))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	appt, err := h.service.Create(ctx, actor.UserID, req)
	switch {
	case err == nil:
	case errors.Is(err, ErrDatePast), errors.Is(err, availability.ErrInvalidDate):
		log.Warn("appointments create: bad date", slog.String("date", req.Date))
		transport.WriteError(w, http.StatusBadRequest, "invalid date", nil)
		return
	case errors.Is(err, doctors.ErrNotFound):
		log.Warn("appointments create: doctor not found", slog.String("doctor_id", req.DoctorID))
		transport.WriteError(w, http.StatusNotFound, "doctor not found", nil)
		return
	case errors.Is(err, doctors.ErrNotApproved):
		log.Warn("appointments create: doctor not approved", slog.String("doctor_id", req.DoctorID))
		transport.WriteError(w, http.StatusBadRequest, "doctor not accepting bookings", nil)
		return
	case errors.Is(err, availability.ErrSlotTaken):
		log.Warn("appointments create: slot taken", slog.String("doctor_id", req.DoctorID), slog.String("date", req.Date), slog.String("time", req.Time))
		transport.WriteError(w, http.StatusConflict, "slot not available", nil)
		return
	case errors.Is(err, availability.ErrSlotNotFound), errors.Is(err, availability.ErrDayUnavailable):
		log.Warn("appointments create: slot not on template", slog.String("doctor_id", req.DoctorID), slog.String("date", req.Date), slog.String("time", req.Time))
		transport.WriteError(w, http.StatusNotFound, "slot not available", nil)
		return
	default:
		log.Error("appointments create: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("appointments create: booked",
		slog.String("appointment_id", appt.ID),
		slog.String("doctor_id", appt.DoctorID),
		slog.String("date", appt.Date),
		slog.String("time", appt.Time),
		slog.String("status", appt.Status),
	)
	transport.WriteJSON(w, http.StatusCreated, appt)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	actor, ok := actorFrom(r)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	appt, err := h.service.Get(ctx, id, actor)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	case errors.Is(err, ErrForbidden):
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	default:
		log.Error("appointments get: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, appt)
}

// List is role-scoped: patients see their own bookings, doctors their
// schedule, admins the latest across the clinic.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	actor, ok := actorFrom(r)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	limit, err := httpx.ParseLimit(r.URL.Query(), 50, 200)
	if err != nil {
		transport.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	var items []Appointment
	switch {
	case actor.Role == models.RolePatient && r.URL.Query().Get("upcoming") == "true":
		items, err = h.service.ListUpcoming(ctx, actor.UserID, limit)
	case actor.Role == models.RolePatient:
		items, err = h.service.ListByPatient(ctx, actor.UserID, status)
	case actor.Role == models.RoleDoctor:
		items, err = h.service.ListByDoctor(ctx, actor.UserID, status)
	default:
		items, err = h.service.ListRecent(ctx, limit)
	}
	if err != nil {
		log.Error("appointments list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("appointments list: ok", slog.String("role", actor.Role), slog.Int("count", len(items)))
	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	actor, ok := actorFrom(r)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	ctx, cancel := context.WithTimeout(r.Context(), 8*time.Second)
	defer cancel()

	err := h.service.Cancel(ctx, id, actor)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	case errors.Is(err, ErrForbidden):
		log.Warn("appointments cancel: forbidden", slog.String("appointment_id", id), slog.String("actor_id", actor.UserID))
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, ErrInvalidTransition):
		transport.WriteError(w, http.StatusUnprocessableEntity, "appointment cannot be cancelled", nil)
		return
	default:
		log.Error("appointments cancel: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("appointments cancel: ok", slog.String("appointment_id", id))
	transport.WriteMessage(w, http.StatusOK, "appointment cancelled")
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	actor, ok := actorFrom(r)
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))

	var req StatusRequest
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

	appt, err := h.service.SetStatus(ctx, id, req.Status, actor)
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		transport.WriteError(w, http.StatusNotFound, "appointment not found", nil)
		return
	case errors.Is(err, ErrForbidden):
		transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		return
	case errors.Is(err, ErrInvalidTransition):
		log.Warn("appointments status: invalid transition", slog.String("appointment_id", id), slog.String("to", req.Status))
		transport.WriteError(w, http.StatusUnprocessableEntity, "invalid status transition", nil)
		return
	default:
		log.Error("appointments status: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	log.Info("appointments status: ok", slog.String("appointment_id", id), slog.String("status", appt.Status))
	transport.WriteJSON(w, http.StatusOK, appt)
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
