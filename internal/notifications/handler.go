package notifications

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/dhairyajangir/CuraLink/internal/httpx"
	"github.com/dhairyajangir/CuraLink/internal/middleware"
	"github.com/dhairyajangir/CuraLink/internal/transport"
)

type Handler struct {
	repo     Repository
	hub      *Hub
	log      *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(repo Repository, hub *Hub, log *slog.Logger) *Handler {
	return &Handler{
		repo: repo,
		hub:  hub,
		log:  log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// auth happens via the bearer token before the upgrade
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	items, err := h.repo.ListByUser(ctx, identity.UserID, limit)
	if err != nil {
		log.Error("notifications list: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}

	transport.WriteJSON(w, http.StatusOK, map[string]interface{}{"items": items})
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		transport.WriteError(w, http.StatusBadRequest, "missing id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matched, err := h.repo.MarkRead(ctx, id, identity.UserID)
	if err != nil {
		log.Error("notification mark read: database error", slog.String("error", err.Error()))
		transport.WriteError(w, http.StatusInternalServerError, "database error", nil)
		return
	}
	if !matched {
		transport.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return
	}

	log.Info("notification mark read: ok", slog.String("notification_id", id))
	transport.WriteMessage(w, http.StatusOK, "notification marked as read")
}

// ServeWS upgrades the request to a websocket and keeps it registered with the
// hub until the client disconnects. The connection is read-only from the
// client side; incoming frames are discarded.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	log := h.logWithRequest(r)
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("notification ws: upgrade failed", slog.String("error", err.Error()))
		return
	}

	h.hub.Register(identity.UserID, conn)
	defer func() {
		h.hub.Unregister(identity.UserID, conn)
		conn.Close()
	}()

	conn.SetReadLimit(1024)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) logWithRequest(r *http.Request) *slog.Logger {
	if id := middleware.RequestIDFromContext(r.Context()); id != "" {
		return h.log.With(slog.String("request_id", id))
	}
	return h.log
}
