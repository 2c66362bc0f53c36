package payments

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/appointments"
	"github.com/dhairyajangir/CuraLink/internal/models"
)

type fakeAppointments struct {
	items map[string]appointments.Appointment
}

func (f *fakeAppointments) Get(ctx context.Context, id string) (appointments.Appointment, error) {
	appt, ok := f.items[id]
	if !ok {
		return appointments.Appointment{}, mongo.ErrNoDocuments
	}
	return appt, nil
}

type fakePaymentRepo struct {
	items []Payment
}

func (f *fakePaymentRepo) Insert(ctx context.Context, p Payment) (Payment, error) {
	p.ID = "pay1"
	f.items = append(f.items, p)
	return p, nil
}

func (f *fakePaymentRepo) ListByUser(ctx context.Context, userID string, limit int64) ([]Payment, error) {
	out := make([]Payment, 0)
	for _, p := range f.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeConfirmer struct {
	confirmed []string
}

func (f *fakeConfirmer) ConfirmPaid(ctx context.Context, id, patientID string) (appointments.Appointment, error) {
	f.confirmed = append(f.confirmed, id)
	return appointments.Appointment{ID: id, Status: models.AppointmentStatusConfirmed}, nil
}

func testPaymentService() (*Service, *fakePaymentRepo, *fakeConfirmer) {
	source := &fakeAppointments{items: map[string]appointments.Appointment{
		"apt1": {ID: "apt1", PatientID: "pat1", DoctorID: "doc1", Fee: 80, Status: models.AppointmentStatusPending},
		"apt2": {ID: "apt2", PatientID: "pat1", DoctorID: "doc1", Fee: 60, Status: models.AppointmentStatusConfirmed},
	}}
	repo := &fakePaymentRepo{}
	confirmer := &fakeConfirmer{}
	svc := NewService(repo, source, confirmer, slog.Default())
	return svc, repo, confirmer
}

func TestCreateIntentConfirmsAppointment(t *testing.T) {
	svc, repo, confirmer := testPaymentService()

	payment, err := svc.CreateIntent(context.Background(), "pat1", IntentRequest{
		AppointmentID: "apt1",
		Method:        models.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, 80, payment.Amount)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.NotEmpty(t, payment.TransactionID)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{"apt1"}, confirmer.confirmed)
}

func TestCreateIntentRejectsNonPending(t *testing.T) {
	svc, repo, _ := testPaymentService()

	_, err := svc.CreateIntent(context.Background(), "pat1", IntentRequest{
		AppointmentID: "apt2",
		Method:        models.PaymentMethodPayPal,
	})
	assert.ErrorIs(t, err, ErrNotPayable)
	assert.Empty(t, repo.items)
}

func TestCreateIntentRejectsStranger(t *testing.T) {
	svc, _, confirmer := testPaymentService()

	_, err := svc.CreateIntent(context.Background(), "pat2", IntentRequest{
		AppointmentID: "apt1",
		Method:        models.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, confirmer.confirmed)
}

func TestCreateIntentRejectsCash(t *testing.T) {
	svc, repo, _ := testPaymentService()

	_, err := svc.CreateIntent(context.Background(), "pat1", IntentRequest{
		AppointmentID: "apt1",
		Method:        models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrCashInPerson)
	assert.Empty(t, repo.items)
}

func TestCreateIntentMissingAppointment(t *testing.T) {
	svc, _, _ := testPaymentService()

	_, err := svc.CreateIntent(context.Background(), "pat1", IntentRequest{
		AppointmentID: "nope",
		Method:        models.PaymentMethodCard,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}
