// Package jobs runs the scheduled background work: a daily sweep that reminds
// patients and doctors about tomorrow's confirmed appointments.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/dhairyajangir/CuraLink/internal/appointments"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

// Notifier matches the notification dispatcher.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, kind string)
}

// AppointmentSource lists appointments by date and status.
type AppointmentSource interface {
	ListByDateStatus(ctx context.Context, date, status string) ([]appointments.Appointment, error)
}

type Reminders struct {
	appointments AppointmentSource
	notifier     Notifier
	spec         string
	location     *time.Location
	log          *slog.Logger
	cron         *cron.Cron
}

func NewReminders(source AppointmentSource, notifier Notifier, spec string, location *time.Location, log *slog.Logger) *Reminders {
	return &Reminders{
		appointments: source,
		notifier:     notifier,
		spec:         spec,
		location:     location,
		log:          log,
	}
}

// Start schedules the daily run. The cron runs in the clinic timezone so the
// sweep fires at the configured local hour.
func (r *Reminders) Start() error {
	c := cron.New(cron.WithLocation(r.location))
	if _, err := c.AddFunc(r.spec, r.Run); err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	c.Start()
	r.cron = c
	r.log.Info("reminder job: scheduled", slog.String("spec", r.spec))
	return nil
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (r *Reminders) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}

// Run sends one reminder per confirmed appointment happening tomorrow, to
// both the patient and the doctor.
func (r *Reminders) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tomorrow := time.Now().In(r.location).AddDate(0, 0, 1).Format("2006-01-02")
	items, err := r.appointments.ListByDateStatus(ctx, tomorrow, models.AppointmentStatusConfirmed)
	if err != nil {
		r.log.Error("reminder job: list failed", slog.String("date", tomorrow), slog.String("error", err.Error()))
		return
	}

	for _, appt := range items {
		r.notifier.Notify(ctx, appt.PatientID,
			"Appointment reminder",
			fmt.Sprintf("You have an appointment tomorrow (%s) at %s.", appt.Date, appt.Time),
			models.NotificationInfo,
		)
		r.notifier.Notify(ctx, appt.DoctorID,
			"Appointment reminder",
			fmt.Sprintf("You have a patient appointment tomorrow (%s) at %s.", appt.Date, appt.Time),
			models.NotificationInfo,
		)
	}
	r.log.Info("reminder job: done", slog.String("date", tomorrow), slog.Int("appointments", len(items)))
}
