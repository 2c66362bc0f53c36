package doctors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/cache"
)

// fakeRepo applies reservations through the same reconciler the mongo
// conditional update mirrors, so service-level classification can be tested
// without a database.
type fakeRepo struct {
	Repository
	doctors map[string]*Doctor
	// reserveNoop forces ReserveSlot to report no modification even when the
	// slot is free, simulating a concurrent booking winning the conditional
	// update between this caller's check and set.
	reserveNoop bool
	savedWeek   availability.Week
	apply       func(rating float64, total int)
}

func (f *fakeRepo) Get(ctx context.Context, id string) (Doctor, error) {
	doc, ok := f.doctors[id]
	if !ok {
		return Doctor{}, mongo.ErrNoDocuments
	}
	return *doc, nil
}

func (f *fakeRepo) SetAvailability(ctx context.Context, id string, week availability.Week) (bool, error) {
	doc, ok := f.doctors[id]
	if !ok {
		return false, nil
	}
	doc.Availability = week
	f.savedWeek = week
	return true, nil
}

func (f *fakeRepo) ReserveSlot(ctx context.Context, id, day, label string) (bool, error) {
	if f.reserveNoop {
		return false, nil
	}
	doc, ok := f.doctors[id]
	if !ok {
		return false, nil
	}
	for di := range doc.Availability {
		d := &doc.Availability[di]
		if d.Day != day || !d.IsAvailable {
			continue
		}
		for si := range d.TimeSlots {
			s := &d.TimeSlots[si]
			if s.Time == label && !s.IsBooked {
				s.IsBooked = true
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeRepo) ReleaseSlot(ctx context.Context, id, day, label string) (bool, error) {
	doc, ok := f.doctors[id]
	if !ok {
		return false, nil
	}
	for di := range doc.Availability {
		d := &doc.Availability[di]
		if d.Day != day {
			continue
		}
		for si := range d.TimeSlots {
			s := &d.TimeSlots[si]
			if s.Time == label && s.IsBooked {
				s.IsBooked = false
				return true, nil
			}
		}
	}
	return false, nil
}

func (f *fakeRepo) ApplyRating(ctx context.Context, id string, rating float64, total int) error {
	if f.apply != nil {
		f.apply(rating, total)
	}
	return nil
}

// recordingCache tracks which keys the service invalidates.
type recordingCache struct {
	cache.Cache
	deleted []string
}

func (c *recordingCache) Delete(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	return nil
}

func testDoctorService(t *testing.T) (*Service, *fakeRepo, *recordingCache) {
	t.Helper()
	repo := &fakeRepo{doctors: map[string]*Doctor{
		"doc1": {
			ID:         "doc1",
			Name:       "Dr. Sarah Johnson",
			IsApproved: true,
			Availability: availability.Week{
				{Day: "Monday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
					{Time: "09:00 AM"},
					{Time: "10:00 AM"},
				}},
				{Day: "Sunday", IsAvailable: false},
			},
		},
	}}
	store := &recordingCache{Cache: cache.NewNoop()}
	svc := NewService(repo, store, time.UTC)
	return svc, repo, store
}

// 2026-02-02 is a Monday.
const monday = "2026-02-02"

func TestReserveMarksSlotBookedAndInvalidatesCache(t *testing.T) {
	svc, repo, store := testDoctorService(t)

	err := svc.Reserve(context.Background(), "doc1", monday, "09:00 AM")
	require.NoError(t, err)
	assert.True(t, repo.doctors["doc1"].Availability[0].TimeSlots[0].IsBooked)
	assert.Equal(t, []string{SlotCacheKey("doc1", monday)}, store.deleted)

	free, err := svc.FreeSlotsFor(context.Background(), "doc1", monday)
	require.NoError(t, err)
	require.Len(t, free, 1)
	assert.Equal(t, "10:00 AM", free[0].Time)
}

func TestReserveTakenSlotClassifiedAsConflict(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	require.NoError(t, svc.Reserve(context.Background(), "doc1", monday, "09:00 AM"))
	err := svc.Reserve(context.Background(), "doc1", monday, "09:00 AM")
	assert.ErrorIs(t, err, availability.ErrSlotTaken)
}

func TestReserveLostRaceClassifiedAsConflict(t *testing.T) {
	svc, repo, store := testDoctorService(t)
	repo.reserveNoop = true

	// the conditional update reported no change while the template copy shows
	// the slot free: a concurrent booking won the race
	err := svc.Reserve(context.Background(), "doc1", monday, "09:00 AM")
	assert.ErrorIs(t, err, availability.ErrSlotTaken)
	assert.Empty(t, store.deleted)
}

func TestReserveAcceptsTwentyFourHourLabel(t *testing.T) {
	svc, repo, _ := testDoctorService(t)

	// labels normalize to the stored 12-hour form before matching
	err := svc.Reserve(context.Background(), "doc1", monday, "09:00")
	require.NoError(t, err)
	assert.True(t, repo.doctors["doc1"].Availability[0].TimeSlots[0].IsBooked)
}

func TestReserveUnknownSlot(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	err := svc.Reserve(context.Background(), "doc1", monday, "11:30 AM")
	assert.ErrorIs(t, err, availability.ErrSlotNotFound)
}

func TestReserveOffDay(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	// 2026-02-01 is a Sunday, which the template marks unavailable
	err := svc.Reserve(context.Background(), "doc1", "2026-02-01", "09:00 AM")
	assert.ErrorIs(t, err, availability.ErrDayUnavailable)
}

func TestReserveMissingDoctor(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	err := svc.Reserve(context.Background(), "doc9", monday, "09:00 AM")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReleaseFreesSlotForRebooking(t *testing.T) {
	svc, _, store := testDoctorService(t)

	require.NoError(t, svc.Reserve(context.Background(), "doc1", monday, "09:00 AM"))
	require.NoError(t, svc.Release(context.Background(), "doc1", monday, "09:00 AM"))
	assert.NoError(t, svc.Reserve(context.Background(), "doc1", monday, "09:00 AM"))
	assert.Len(t, store.deleted, 3)
}

func TestReleaseFreeSlotIsNoop(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	assert.NoError(t, svc.Release(context.Background(), "doc1", monday, "09:00 AM"))
}

func TestReleaseUnknownSlot(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	err := svc.Release(context.Background(), "doc1", monday, "11:30 AM")
	assert.ErrorIs(t, err, availability.ErrSlotNotFound)
}

func TestReleaseOffDay(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	err := svc.Release(context.Background(), "doc1", "2026-02-01", "09:00 AM")
	assert.ErrorIs(t, err, availability.ErrDayUnavailable)
}

func TestUpdateAvailabilityOnlySelf(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	err := svc.UpdateAvailability(context.Background(), "doc2", "doc1", availability.Week{})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestUpdateAvailabilityNormalizesLabels(t *testing.T) {
	svc, repo, _ := testDoctorService(t)

	week := availability.Week{
		{Day: "Tuesday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
			{Time: "14:00"},
		}},
	}
	require.NoError(t, svc.UpdateAvailability(context.Background(), "doc1", "doc1", week))
	require.Len(t, repo.savedWeek, 1)
	assert.Equal(t, "02:00 PM", repo.savedWeek[0].TimeSlots[0].Time)
}

func TestUpdateAvailabilityRejectsDuplicateSlots(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	week := availability.Week{
		{Day: "Tuesday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
			{Time: "09:00 AM"},
			{Time: "09:00"},
		}},
	}
	err := svc.UpdateAvailability(context.Background(), "doc1", "doc1", week)
	assert.ErrorIs(t, err, availability.ErrDuplicateSlot)
}

func TestUpdateAvailabilityRejectsBadLabel(t *testing.T) {
	svc, _, _ := testDoctorService(t)

	week := availability.Week{
		{Day: "Tuesday", IsAvailable: true, TimeSlots: []availability.TimeSlot{
			{Time: "quarter past nine"},
		}},
	}
	err := svc.UpdateAvailability(context.Background(), "doc1", "doc1", week)
	assert.ErrorIs(t, err, availability.ErrInvalidLabel)
}

func TestRecordRatingAverages(t *testing.T) {
	svc, repo, _ := testDoctorService(t)
	applied := struct {
		rating float64
		total  int
	}{}
	repo.apply = func(rating float64, total int) {
		applied.rating = rating
		applied.total = total
	}
	repo.doctors["doc1"].Rating = 4.0
	repo.doctors["doc1"].TotalReviews = 3

	require.NoError(t, svc.RecordRating(context.Background(), "doc1", 5))
	assert.Equal(t, 4.3, applied.rating)
	assert.Equal(t, 4, applied.total)
}
