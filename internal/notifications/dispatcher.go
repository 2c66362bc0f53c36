package notifications

import (
	"context"
	"log/slog"
	"time"
)

// UserDirectory resolves the display name and email address for a user id.
type UserDirectory interface {
	Contact(ctx context.Context, id string) (name, email string, err error)
}

// Dispatcher is the single delivery point for notifications: it persists the
// record, pushes it to live websocket sessions, and sends email in the
// background when a mail client is configured. Delivery failures are logged,
// never propagated; a booking must not fail because an email bounced.
type Dispatcher struct {
	repo  Repository
	users UserDirectory
	hub   *Hub
	mail  *BrevoClient
	log   *slog.Logger
}

func NewDispatcher(repo Repository, users UserDirectory, hub *Hub, mail *BrevoClient, log *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, users: users, hub: hub, mail: mail, log: log}
}

func (d *Dispatcher) Notify(ctx context.Context, userID, title, message, kind string) {
	n := Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		CreatedAt: time.Now().UTC(),
	}

	saved, err := d.repo.Insert(ctx, n)
	if err != nil {
		d.log.Error("notification dispatch: persist failed",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		return
	}

	if d.hub != nil {
		d.hub.Publish(userID, saved)
	}

	if d.mail != nil {
		go d.sendEmail(saved)
	}
}

func (d *Dispatcher) sendEmail(n Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	name, email, err := d.users.Contact(ctx, n.UserID)
	if err != nil {
		d.log.Warn("notification email: recipient lookup failed",
			slog.String("user_id", n.UserID), slog.String("error", err.Error()))
		return
	}

	messageID, err := d.mail.SendNotification(ctx, email, name, n)
	if err != nil {
		d.log.Warn("notification email: send failed",
			slog.String("user_id", n.UserID), slog.String("error", err.Error()))
		return
	}
	d.log.Info("notification email: sent",
		slog.String("user_id", n.UserID), slog.String("message_id", messageID))
}
