package reviews

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/appointments"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

var (
	ErrNotFound        = errors.New("appointment not found")
	ErrForbidden       = errors.New("review not allowed for this appointment")
	ErrNotCompleted    = errors.New("appointment not completed yet")
	ErrAlreadyReviewed = errors.New("appointment already reviewed")
)

// AppointmentSource loads an appointment without actor scoping; the review
// service applies its own ownership checks.
type AppointmentSource interface {
	Get(ctx context.Context, id string) (appointments.Appointment, error)
}

// RatingRecorder folds a new rating into the doctor's aggregate.
type RatingRecorder interface {
	RecordRating(ctx context.Context, doctorID string, rating int) error
}

// PatientDirectory resolves the display name stored on the review.
type PatientDirectory interface {
	Contact(ctx context.Context, id string) (name, email string, err error)
}

type Service struct {
	repo         Repository
	appointments AppointmentSource
	doctors      RatingRecorder
	patients     PatientDirectory
	log          *slog.Logger
}

func NewService(repo Repository, source AppointmentSource, doctors RatingRecorder, patients PatientDirectory, log *slog.Logger) *Service {
	return &Service{repo: repo, appointments: source, doctors: doctors, patients: patients, log: log}
}

// Create records a review for a completed appointment. Only the patient who
// attended may review, each appointment at most once.
func (s *Service) Create(ctx context.Context, patientID, doctorID string, req CreateRequest) (Review, error) {
	appt, err := s.appointments.Get(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	if appt.PatientID != patientID || appt.DoctorID != doctorID {
		return Review{}, ErrForbidden
	}
	if appt.Status != models.AppointmentStatusCompleted {
		return Review{}, ErrNotCompleted
	}

	name, _, err := s.patients.Contact(ctx, patientID)
	if err != nil {
		s.log.Warn("review create: patient lookup failed", slog.String("patient_id", patientID), slog.String("error", err.Error()))
		name = "Patient"
	}

	rv := Review{
		DoctorID:      doctorID,
		PatientID:     patientID,
		AppointmentID: req.AppointmentID,
		PatientName:   name,
		Rating:        req.Rating,
		Comment:       req.Comment,
		CreatedAt:     time.Now().UTC(),
	}
	saved, err := s.repo.Insert(ctx, rv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return Review{}, ErrAlreadyReviewed
		}
		return Review{}, err
	}

	if err := s.doctors.RecordRating(ctx, doctorID, req.Rating); err != nil {
		// the review is stored either way; the aggregate catches up on the
		// next review for this doctor
		s.log.Error("review create: rating update failed", slog.String("doctor_id", doctorID), slog.String("error", err.Error()))
	}
	return saved, nil
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID string, limit int64) ([]Review, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit)
}
