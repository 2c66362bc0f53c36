package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/doctors"
	"github.com/dhairyajangir/CuraLink/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound          = errors.New("appointment not found")
	ErrForbidden         = errors.New("not allowed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrDatePast          = errors.New("date in the past")
)

// SlotGateway is the doctors service surface the directory needs: doctor
// lookup plus the atomic reserve/release pair.
type SlotGateway interface {
	Get(ctx context.Context, id string) (doctors.Doctor, error)
	Reserve(ctx context.Context, doctorID, date, label string) error
	Release(ctx context.Context, doctorID, date, label string) error
}

// Notifier delivers user notifications fire-and-forget; the directory never
// waits on delivery.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message, kind string)
}

type Actor struct {
	UserID string
	Role   string
}

type Service struct {
	repo     Repository
	doctors  SlotGateway
	notifier Notifier
	location *time.Location
	log      *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, gateway SlotGateway, notifier Notifier, location *time.Location, log *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		doctors:  gateway,
		notifier: notifier,
		location: location,
		log:      log,
		now:      time.Now,
	}
}

// Create books an appointment. The slot reservation happens before the record
// is written; if the insert then fails the reservation is rolled back, so a
// failed create leaves no trace.
func (s *Service) Create(ctx context.Context, patientID string, req CreateRequest) (Appointment, error) {
	past, err := availability.IsDatePast(req.Date, s.location, s.now())
	if err != nil {
		return Appointment{}, err
	}
	if past {
		return Appointment{}, ErrDatePast
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return Appointment{}, err
	}
	if !doctor.IsApproved {
		return Appointment{}, doctors.ErrNotApproved
	}

	label, err := availability.NormalizeLabel(req.Time)
	if err != nil {
		return Appointment{}, availability.ErrSlotNotFound
	}

	if err := s.doctors.Reserve(ctx, req.DoctorID, req.Date, label); err != nil {
		return Appointment{}, err
	}

	status := models.AppointmentStatusPending
	if req.PaymentRef != "" {
		status = models.AppointmentStatusConfirmed
	}

	appt := Appointment{
		ID:        primitive.NewObjectID().Hex(),
		PatientID: patientID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      label,
		Type:      req.Type,
		Status:    status,
		Fee:       doctor.ConsultationFee,
		Symptoms:  req.Symptoms,
		SlotHeld:  true,
		CreatedAt: s.now().In(s.location),
	}

	if err := s.repo.Insert(ctx, appt); err != nil {
		if releaseErr := s.doctors.Release(ctx, req.DoctorID, req.Date, label); releaseErr != nil {
			s.log.Error("appointments create: rollback release failed",
				slog.String("doctor_id", req.DoctorID),
				slog.String("date", req.Date),
				slog.String("time", label),
				slog.String("error", releaseErr.Error()),
			)
		}
		if mongo.IsDuplicateKeyError(err) {
			return Appointment{}, availability.ErrSlotTaken
		}
		return Appointment{}, err
	}

	s.notifier.Notify(ctx, patientID,
		"Appointment booked",
		fmt.Sprintf("Your appointment with %s on %s at %s is %s.", doctor.Name, appt.Date, appt.Time, appt.Status),
		models.NotificationSuccess,
	)
	s.notifier.Notify(ctx, appt.DoctorID,
		"New appointment",
		fmt.Sprintf("A patient booked %s at %s.", appt.Date, appt.Time),
		models.NotificationInfo,
	)

	return appt, nil
}

func (s *Service) Get(ctx context.Context, id string, actor Actor) (Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	if !actorOwns(actor, appt) {
		return Appointment{}, ErrForbidden
	}
	return appt, nil
}

// Cancel moves an appointment to cancelled and frees its slot. Only the
// booking patient, the target doctor, or an admin may cancel.
func (s *Service) Cancel(ctx context.Context, id string, actor Actor) error {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	if !actorOwns(actor, appt) {
		return ErrForbidden
	}
	if !CanTransition(appt.Status, models.AppointmentStatusCancelled) {
		return ErrInvalidTransition
	}

	matched, err := s.repo.SetStatus(ctx, id, models.AppointmentStatusCancelled, false)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}

	s.release(ctx, appt)

	other := appt.DoctorID
	if actor.UserID == appt.DoctorID {
		other = appt.PatientID
	}
	s.notifier.Notify(ctx, other,
		"Appointment cancelled",
		fmt.Sprintf("The appointment on %s at %s was cancelled.", appt.Date, appt.Time),
		models.NotificationWarning,
	)
	return nil
}

// SetStatus applies one state-machine edge. Cancellation releases the slot;
// every other transition leaves slot state untouched.
func (s *Service) SetStatus(ctx context.Context, id, next string, actor Actor) (Appointment, error) {
	if next == models.AppointmentStatusCancelled {
		if err := s.Cancel(ctx, id, actor); err != nil {
			return Appointment{}, err
		}
		return s.repo.Get(ctx, id)
	}

	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	// Confirming and completing are the doctor's calls.
	if actor.Role != models.RoleAdmin && actor.UserID != appt.DoctorID {
		return Appointment{}, ErrForbidden
	}
	if !CanTransition(appt.Status, next) {
		return Appointment{}, ErrInvalidTransition
	}

	matched, err := s.repo.SetStatus(ctx, id, next, appt.SlotHeld)
	if err != nil {
		return Appointment{}, err
	}
	if !matched {
		return Appointment{}, ErrNotFound
	}
	appt.Status = next

	s.notifier.Notify(ctx, appt.PatientID,
		"Appointment "+next,
		fmt.Sprintf("Your appointment on %s at %s is now %s.", appt.Date, appt.Time, next),
		models.NotificationInfo,
	)
	return appt, nil
}

// ConfirmPaid is the payment flow's confirmation path: the booking patient
// pays a pending appointment and it becomes confirmed.
func (s *Service) ConfirmPaid(ctx context.Context, id, patientID string) (Appointment, error) {
	appt, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Appointment{}, ErrNotFound
		}
		return Appointment{}, err
	}
	if appt.PatientID != patientID {
		return Appointment{}, ErrForbidden
	}
	if !CanTransition(appt.Status, models.AppointmentStatusConfirmed) {
		return Appointment{}, ErrInvalidTransition
	}

	if _, err := s.repo.SetStatus(ctx, id, models.AppointmentStatusConfirmed, appt.SlotHeld); err != nil {
		return Appointment{}, err
	}
	appt.Status = models.AppointmentStatusConfirmed

	s.notifier.Notify(ctx, appt.DoctorID,
		"Appointment confirmed",
		fmt.Sprintf("The appointment on %s at %s was paid and confirmed.", appt.Date, appt.Time),
		models.NotificationSuccess,
	)
	return appt, nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID, status string) ([]Appointment, error) {
	return s.repo.ListByPatient(ctx, patientID, status)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID, status string) ([]Appointment, error) {
	return s.repo.ListByDoctor(ctx, doctorID, status)
}

func (s *Service) ListRecent(ctx context.Context, limit int64) ([]Appointment, error) {
	return s.repo.ListRecent(ctx, limit)
}

// ListUpcoming returns the patient's next appointments from today onward,
// soonest first. "Today" is the clinic-timezone date, matching the past-date
// check on create. Labels sort by clock time, not lexically.
func (s *Service) ListUpcoming(ctx context.Context, patientID string, limit int64) ([]Appointment, error) {
	asOf := s.now().In(s.location).Format("2006-01-02")
	items, err := s.repo.ListUpcoming(ctx, patientID, asOf, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Date != items[j].Date {
			return items[i].Date < items[j].Date
		}
		mi, erri := availability.ParseLabelToMinutes(items[i].Time)
		mj, errj := availability.ParseLabelToMinutes(items[j].Time)
		if erri != nil || errj != nil {
			return false
		}
		return mi < mj
	})
	return items, nil
}

func (s *Service) release(ctx context.Context, appt Appointment) {
	if err := s.doctors.Release(ctx, appt.DoctorID, appt.Date, appt.Time); err != nil {
		s.log.Warn("appointments cancel: slot release failed",
			slog.String("appointment_id", appt.ID),
			slog.String("doctor_id", appt.DoctorID),
			slog.String("date", appt.Date),
			slog.String("time", appt.Time),
			slog.String("error", err.Error()),
		)
	}
}

func actorOwns(actor Actor, appt Appointment) bool {
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.UserID == appt.PatientID || actor.UserID == appt.DoctorID
}
