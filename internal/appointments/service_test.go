package appointments

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/doctors"
	"github.com/dhairyajangir/CuraLink/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// 2026-02-02 is a Monday.

type fakeRepo struct {
	items     map[string]Appointment
	insertErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: make(map[string]Appointment)}
}

func (f *fakeRepo) Insert(ctx context.Context, appt Appointment) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.items[appt.ID] = appt
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Appointment, error) {
	appt, ok := f.items[id]
	if !ok {
		return Appointment{}, mongo.ErrNoDocuments
	}
	return appt, nil
}

func (f *fakeRepo) SetStatus(ctx context.Context, id, status string, slotHeld bool) (bool, error) {
	appt, ok := f.items[id]
	if !ok {
		return false, nil
	}
	appt.Status = status
	appt.SlotHeld = slotHeld
	f.items[id] = appt
	return true, nil
}

func (f *fakeRepo) ListByPatient(ctx context.Context, patientID, status string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, appt := range f.items {
		if appt.PatientID == patientID && (status == "" || appt.Status == status) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByDoctor(ctx context.Context, doctorID, status string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, appt := range f.items {
		if appt.DoctorID == doctorID && (status == "" || appt.Status == status) {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListUpcoming(ctx context.Context, patientID, asOf string, limit int64) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, appt := range f.items {
		if appt.PatientID == patientID && appt.Date >= asOf && appt.Status != models.AppointmentStatusCancelled {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListByDateStatus(ctx context.Context, date, status string) ([]Appointment, error) {
	out := make([]Appointment, 0)
	for _, appt := range f.items {
		if appt.Date == date && appt.Status == status {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListRecent(ctx context.Context, limit int64) ([]Appointment, error) {
	out := make([]Appointment, 0, len(f.items))
	for _, appt := range f.items {
		out = append(out, appt)
	}
	return out, nil
}

// fakeGateway backs reserve/release with the in-memory reconciler, giving the
// same taken/not-found semantics as the conditional store update.
type fakeGateway struct {
	docs map[string]doctors.Doctor
	loc  *time.Location
}

func (f *fakeGateway) Get(ctx context.Context, id string) (doctors.Doctor, error) {
	doc, ok := f.docs[id]
	if !ok {
		return doctors.Doctor{}, doctors.ErrNotFound
	}
	return doc, nil
}

func (f *fakeGateway) Reserve(ctx context.Context, doctorID, date, label string) error {
	doc, ok := f.docs[doctorID]
	if !ok {
		return doctors.ErrNotFound
	}
	return doc.Availability.Reserve(date, label, f.loc)
}

func (f *fakeGateway) Release(ctx context.Context, doctorID, date, label string) error {
	doc, ok := f.docs[doctorID]
	if !ok {
		return doctors.ErrNotFound
	}
	return doc.Availability.Release(date, label, f.loc)
}

type recordingNotifier struct {
	sent []string
}

func (n *recordingNotifier) Notify(ctx context.Context, userID, title, message, kind string) {
	n.sent = append(n.sent, userID+": "+title)
}

func testService(t *testing.T) (*Service, *fakeRepo, *fakeGateway, *recordingNotifier) {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	gateway := &fakeGateway{
		loc: loc,
		docs: map[string]doctors.Doctor{
			"doc1": {
				ID: "doc1", Name: "Dr. Sarah Johnson", IsApproved: true, ConsultationFee: 80,
				Availability: availability.Week{
					{Day: "Monday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
						{Time: "09:00 AM"}, {Time: "10:00 AM"},
					}},
					{Day: "Sunday", IsAvailable: false, TimeSlots: []availability.TimeSlot{}},
				},
			},
			"doc2": {
				ID: "doc2", Name: "Dr. Michael Chen", IsApproved: true, ConsultationFee: 60,
				Availability: availability.Week{
					{Day: "Monday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
						{Time: "09:00 AM"},
					}},
				},
			},
			"doc3": {
				ID: "doc3", Name: "Dr. Pending", IsApproved: false,
				Availability: availability.DefaultWeek(),
			},
		},
	}

	repo := newFakeRepo()
	notifier := &recordingNotifier{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := NewService(repo, gateway, notifier, loc, log)
	svc.now = func() time.Time { return time.Date(2026, 1, 15, 12, 0, 0, 0, loc) }
	return svc, repo, gateway, notifier
}

func createReq(doctorID string) CreateRequest {
	return CreateRequest{
		DoctorID: doctorID,
		Date:     "2026-02-02",
		Time:     "09:00 AM",
		Type:     models.AppointmentTypeConsultation,
	}
}

func TestCreateBooksSlot(t *testing.T) {
	svc, repo, gateway, notifier := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusPending, appt.Status)
	assert.Equal(t, 80, appt.Fee)
	assert.True(t, appt.SlotHeld)
	assert.Len(t, repo.items, 1)

	free, err := gateway.docs["doc1"].Availability.FreeSlots("2026-02-02", gateway.loc)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "10:00 AM", free[0].Time)

	// both participants get notified
	assert.Len(t, notifier.sent, 2)
}

func TestCreateSameSlotTwiceConflicts(t *testing.T) {
	svc, repo, _, _ := testService(t)

	_, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "pat2", createReq("doc1"))
	assert.ErrorIs(t, err, availability.ErrSlotTaken)
	assert.Len(t, repo.items, 1)
}

func TestCreateDifferentDoctorsSameSlot(t *testing.T) {
	svc, repo, _, _ := testService(t)

	_, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "pat2", createReq("doc2"))
	require.NoError(t, err)
	assert.Len(t, repo.items, 2)
}

func TestCreateUnapprovedDoctor(t *testing.T) {
	svc, repo, _, _ := testService(t)

	_, err := svc.Create(context.Background(), "pat1", createReq("doc3"))
	assert.ErrorIs(t, err, doctors.ErrNotApproved)
	assert.Empty(t, repo.items)
}

func TestCreatePastDate(t *testing.T) {
	svc, _, _, _ := testService(t)

	req := createReq("doc1")
	req.Date = "2026-01-05" // a Monday before now
	_, err := svc.Create(context.Background(), "pat1", req)
	assert.ErrorIs(t, err, ErrDatePast)
}

func TestCreateRollsBackReservationOnInsertFailure(t *testing.T) {
	svc, repo, gateway, _ := testService(t)
	repo.insertErr = errors.New("write failed")

	_, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.Error(t, err)
	assert.Empty(t, repo.items)

	// slot must be free again after the rollback
	free, err := gateway.docs["doc1"].Availability.FreeSlots("2026-02-02", gateway.loc)
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

func TestCreateWithPaymentRefConfirms(t *testing.T) {
	svc, _, _, _ := testService(t)

	req := createReq("doc1")
	req.PaymentRef = "mock-paypal-123"
	appt, err := svc.Create(context.Background(), "pat1", req)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, appt.Status)
}

func TestCancelFreesSlot(t *testing.T) {
	svc, repo, gateway, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), appt.ID, Actor{UserID: "pat1", Role: models.RolePatient})
	require.NoError(t, err)

	got := repo.items[appt.ID]
	assert.Equal(t, models.AppointmentStatusCancelled, got.Status)
	assert.False(t, got.SlotHeld)

	free, err := gateway.docs["doc1"].Availability.FreeSlots("2026-02-02", gateway.loc)
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

func TestCancelForbiddenForStranger(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), appt.ID, Actor{UserID: "pat2", Role: models.RolePatient})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelByDoctorAllowed(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	err = svc.Cancel(context.Background(), appt.ID, Actor{UserID: "doc1", Role: models.RoleDoctor})
	assert.NoError(t, err)
}

func TestCancelMissingAppointment(t *testing.T) {
	svc, _, _, _ := testService(t)

	err := svc.Cancel(context.Background(), "nope", Actor{UserID: "pat1", Role: models.RolePatient})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRebookAfterCancel(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), appt.ID, Actor{UserID: "pat1", Role: models.RolePatient}))

	_, err = svc.Create(context.Background(), "pat2", createReq("doc1"))
	assert.NoError(t, err)
}

func TestSetStatusLifecycle(t *testing.T) {
	svc, _, _, _ := testService(t)
	docActor := Actor{UserID: "doc1", Role: models.RoleDoctor}

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	confirmed, err := svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusConfirmed, docActor)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)

	completed, err := svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusCompleted, docActor)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)

	// terminal: no way back
	_, err = svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusConfirmed, docActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusCancelled, docActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatusSkippingConfirmRejected(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusCompleted, Actor{UserID: "doc1", Role: models.RoleDoctor})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSetStatusPatientCannotConfirm(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusConfirmed, Actor{UserID: "pat1", Role: models.RolePatient})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestSetStatusCancelledReleasesSlot(t *testing.T) {
	svc, _, gateway, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	_, err = svc.SetStatus(context.Background(), appt.ID, models.AppointmentStatusCancelled, Actor{UserID: "doc1", Role: models.RoleDoctor})
	require.NoError(t, err)

	free, err := gateway.docs["doc1"].Availability.FreeSlots("2026-02-02", gateway.loc)
	require.NoError(t, err)
	assert.Len(t, free, 2)
}

func TestConfirmPaid(t *testing.T) {
	svc, _, _, _ := testService(t)

	appt, err := svc.Create(context.Background(), "pat1", createReq("doc1"))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmPaid(context.Background(), appt.ID, "pat1")
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusConfirmed, confirmed.Status)

	_, err = svc.ConfirmPaid(context.Background(), appt.ID, "pat2")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListUpcomingSortsByDateAndTime(t *testing.T) {
	svc, repo, _, _ := testService(t)

	repo.items["a"] = Appointment{ID: "a", PatientID: "pat1", Date: "2026-02-03", Time: "09:00 AM", Status: "confirmed"}
	repo.items["b"] = Appointment{ID: "b", PatientID: "pat1", Date: "2026-02-02", Time: "02:00 PM", Status: "pending"}
	repo.items["c"] = Appointment{ID: "c", PatientID: "pat1", Date: "2026-02-02", Time: "09:00 AM", Status: "pending"}
	// before the service clock's current date, must not appear
	repo.items["z"] = Appointment{ID: "z", PatientID: "pat1", Date: "2026-01-10", Time: "09:00 AM", Status: "completed"}

	items, err := svc.ListUpcoming(context.Background(), "pat1", 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "c", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
	assert.Equal(t, "a", items[2].ID)
}
