package doctors

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/dhairyajangir/CuraLink/internal/availability"
	"github.com/dhairyajangir/CuraLink/internal/cache"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound    = errors.New("doctor not found")
	ErrForbidden   = errors.New("not allowed")
	ErrNotApproved = errors.New("doctor not approved")
)

type Service struct {
	repo     Repository
	cache    cache.Cache
	location *time.Location
}

func NewService(repo Repository, store cache.Cache, location *time.Location) *Service {
	return &Service{
		repo:     repo,
		cache:    store,
		location: location,
	}
}

func (s *Service) Location() *time.Location {
	return s.location
}

func (s *Service) Get(ctx context.Context, id string) (Doctor, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Doctor{}, ErrNotFound
		}
		return Doctor{}, err
	}
	return doc, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Doctor, error) {
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) SetApproval(ctx context.Context, id string, approved bool) error {
	matched, err := s.repo.SetApproval(ctx, id, approved)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// UpdateAvailability replaces a doctor's weekly template. Only the doctor may
// edit their own template. Booked flags reset with it; until slots are booked
// again the unique held-appointment index is what blocks double-booking a
// slot an active appointment still occupies.
func (s *Service) UpdateAvailability(ctx context.Context, actorID, doctorID string, week availability.Week) error {
	if actorID != doctorID {
		return ErrForbidden
	}
	if err := week.Normalize(); err != nil {
		return err
	}
	if err := week.Validate(); err != nil {
		return err
	}
	matched, err := s.repo.SetAvailability(ctx, doctorID, week)
	if err != nil {
		return err
	}
	if !matched {
		return ErrNotFound
	}
	return nil
}

// FreeSlotsFor answers "what slots are free on date D for doctor X". Results
// are cached briefly; reserve and release invalidate the exact key, template
// edits ride out the TTL.
func (s *Service) FreeSlotsFor(ctx context.Context, doctorID, date string) ([]availability.TimeSlot, error) {
	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return doc.Availability.FreeSlots(date, s.location)
}

// Reserve is the atomic check-and-set behind appointment creation. The
// conditional update either flips exactly one unbooked slot or touches
// nothing; on no-op the in-memory reconciler classifies the failure.
func (s *Service) Reserve(ctx context.Context, doctorID, date, label string) error {
	canonical, err := availability.NormalizeLabel(label)
	if err != nil {
		return availability.ErrSlotNotFound
	}
	day, err := availability.Weekday(date, s.location)
	if err != nil {
		return err
	}

	modified, err := s.repo.ReserveSlot(ctx, doctorID, day, canonical)
	if err != nil {
		return err
	}
	if modified {
		_ = s.cache.Delete(ctx, SlotCacheKey(doctorID, date))
		return nil
	}

	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return err
	}
	if err := doc.Availability.Reserve(date, canonical, s.location); err != nil {
		return err
	}
	// The copy reserved fine, so the conditional update lost a race with a
	// concurrent booking.
	return availability.ErrSlotTaken
}

// Release frees the slot backing a cancelled appointment. It mirrors Reserve:
// a label or day missing from the template is an error, releasing an
// already-free slot is a no-op success.
func (s *Service) Release(ctx context.Context, doctorID, date, label string) error {
	canonical, err := availability.NormalizeLabel(label)
	if err != nil {
		return availability.ErrSlotNotFound
	}
	day, err := availability.Weekday(date, s.location)
	if err != nil {
		return err
	}

	modified, err := s.repo.ReleaseSlot(ctx, doctorID, day, canonical)
	if err != nil {
		return err
	}
	if modified {
		_ = s.cache.Delete(ctx, SlotCacheKey(doctorID, date))
		return nil
	}

	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return err
	}
	// Replaying the release classifies the no-op: the template may lack the
	// day or the slot, or the slot was simply free already.
	return doc.Availability.Release(date, canonical, s.location)
}

// RecordRating folds a new review score into the doctor's aggregate.
func (s *Service) RecordRating(ctx context.Context, doctorID string, rating int) error {
	doc, err := s.Get(ctx, doctorID)
	if err != nil {
		return err
	}
	total := doc.TotalReviews + 1
	avg := (doc.Rating*float64(doc.TotalReviews) + float64(rating)) / float64(total)
	avg = math.Round(avg*10) / 10
	return s.repo.ApplyRating(ctx, doctorID, avg, total)
}

// SlotCacheKey is shared with the HTTP layer, which caches whole slot
// responses under the same key the service invalidates.
func SlotCacheKey(doctorID, date string) string {
	return "slots:" + doctorID + ":" + date
}
