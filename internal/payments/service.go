package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/appointments"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

var (
	ErrNotFound     = errors.New("appointment not found")
	ErrForbidden    = errors.New("payment not allowed for this appointment")
	ErrNotPayable   = errors.New("appointment is not awaiting payment")
	ErrCashInPerson = errors.New("cash payments are settled at the clinic")
)

// AppointmentSource loads the appointment being paid for.
type AppointmentSource interface {
	Get(ctx context.Context, id string) (appointments.Appointment, error)
}

// Confirmer moves a paid pending appointment to confirmed.
type Confirmer interface {
	ConfirmPaid(ctx context.Context, id, patientID string) (appointments.Appointment, error)
}

// Service processes payments through a mock gateway: every card and paypal
// charge succeeds and receives a generated transaction id. Cash is not
// charged online at all.
type Service struct {
	repo         Repository
	appointments AppointmentSource
	confirmer    Confirmer
	log          *slog.Logger
}

func NewService(repo Repository, source AppointmentSource, confirmer Confirmer, log *slog.Logger) *Service {
	return &Service{repo: repo, appointments: source, confirmer: confirmer, log: log}
}

// CreateIntent charges the patient for a pending appointment and confirms it.
func (s *Service) CreateIntent(ctx context.Context, userID string, req IntentRequest) (Payment, error) {
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	if appt.PatientID != userID {
		return Payment{}, ErrForbidden
	}
	if appt.Status != models.AppointmentStatusPending {
		return Payment{}, ErrNotPayable
	}
	if req.Method == models.PaymentMethodCash {
		return Payment{}, ErrCashInPerson
	}

	payment := Payment{
		UserID:        userID,
		AppointmentID: appt.ID,
		Amount:        appt.Fee,
		Method:        req.Method,
		Status:        models.PaymentStatusCompleted,
		TransactionID: fmt.Sprintf("txn_%s", uuid.NewString()),
		CreatedAt:     time.Now().UTC(),
	}
	saved, err := s.repo.Insert(ctx, payment)
	if err != nil {
		return Payment{}, err
	}

	if _, err := s.confirmer.ConfirmPaid(ctx, appt.ID, userID); err != nil {
		// payment recorded but confirmation lost; log for manual follow-up
		s.log.Error("payment intent: confirmation failed",
			slog.String("appointment_id", appt.ID),
			slog.String("transaction_id", saved.TransactionID),
			slog.String("error", err.Error()))
		return saved, err
	}

	s.log.Info("payment intent: ok",
		slog.String("appointment_id", appt.ID),
		slog.String("transaction_id", saved.TransactionID),
		slog.Int("amount", saved.Amount))
	return saved, nil
}

func (s *Service) History(ctx context.Context, userID string, limit int64) ([]Payment, error) {
	return s.repo.ListByUser(ctx, userID, limit)
}
