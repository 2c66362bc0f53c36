// Package availability models a doctor's recurring weekly schedule and keeps
// slot-booked flags consistent with active appointments.
package availability

import (
	"errors"
	"time"
)

var (
	ErrInvalidDate    = errors.New("invalid date format")
	ErrInvalidLabel   = errors.New("invalid time label")
	ErrDayUnavailable = errors.New("day not available")
	ErrSlotNotFound   = errors.New("slot not found")
	ErrSlotTaken      = errors.New("slot already booked")
	ErrDuplicateSlot  = errors.New("duplicate slot label")
)

type TimeSlot struct {
	Time     string `bson:"time" json:"time"`
	IsBooked bool   `bson:"isBooked" json:"isBooked"`
}

type DayAvailability struct {
	Day         string     `bson:"day" json:"day"`
	IsAvailable bool       `bson:"isAvailable" json:"isAvailable"`
	TimeSlots   []TimeSlot `bson:"timeSlots" json:"timeSlots"`
}

// Week is a doctor's availability template, one entry per weekday name.
type Week []DayAvailability

// ParseLabelToMinutes accepts the template's 12-hour labels ("09:00 AM") and
// the 24-hour form ("09:00"), returning minute-of-day. Slot identity is the
// normalized minute value, not the raw string.
func ParseLabelToMinutes(label string) (int, error) {
	for _, layout := range []string{"03:04 PM", "15:04"} {
		if tm, err := time.Parse(layout, label); err == nil {
			return tm.Hour()*60 + tm.Minute(), nil
		}
	}
	return 0, ErrInvalidLabel
}

// NormalizeLabel rewrites a label into the canonical 12-hour form used by
// stored templates, so string equality holds at the persistence layer.
func NormalizeLabel(label string) (string, error) {
	minutes, err := ParseLabelToMinutes(label)
	if err != nil {
		return "", err
	}
	tm := time.Date(0, 1, 1, minutes/60, minutes%60, 0, 0, time.UTC)
	return tm.Format("03:04 PM"), nil
}

func ParseDate(dateStr string, loc *time.Location) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", dateStr, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return date, nil
}

// Weekday derives the weekday name ("Monday") used as the template key.
func Weekday(dateStr string, loc *time.Location) (string, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return "", err
	}
	return date.Weekday().String(), nil
}

func IsDatePast(dateStr string, loc *time.Location, now time.Time) (bool, error) {
	date, err := ParseDate(dateStr, loc)
	if err != nil {
		return false, err
	}
	startToday := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	return date.Before(startToday), nil
}

func (w Week) day(name string) *DayAvailability {
	for i := range w {
		if w[i].Day == name {
			return &w[i]
		}
	}
	return nil
}

func (w Week) findSlot(day *DayAvailability, label string) (*TimeSlot, error) {
	want, err := ParseLabelToMinutes(label)
	if err != nil {
		return nil, ErrSlotNotFound
	}
	for i := range day.TimeSlots {
		got, err := ParseLabelToMinutes(day.TimeSlots[i].Time)
		if err != nil {
			continue
		}
		if got == want {
			return &day.TimeSlots[i], nil
		}
	}
	return nil, ErrSlotNotFound
}

// Reserve marks the slot matching (date, label) as booked. It reports
// ErrSlotTaken when the slot is already held so callers can distinguish a
// lost race from a label that was never on the template.
func (w Week) Reserve(dateStr, label string, loc *time.Location) error {
	day, err := w.dayFor(dateStr, loc)
	if err != nil {
		return err
	}
	slot, err := w.findSlot(day, label)
	if err != nil {
		return err
	}
	if slot.IsBooked {
		return ErrSlotTaken
	}
	slot.IsBooked = true
	return nil
}

// Release frees the slot matching (date, label). Releasing a slot that is
// already free succeeds; the flag just stays down.
func (w Week) Release(dateStr, label string, loc *time.Location) error {
	day, err := w.dayFor(dateStr, loc)
	if err != nil {
		return err
	}
	slot, err := w.findSlot(day, label)
	if err != nil {
		return err
	}
	slot.IsBooked = false
	return nil
}

func (w Week) dayFor(dateStr string, loc *time.Location) (*DayAvailability, error) {
	name, err := Weekday(dateStr, loc)
	if err != nil {
		return nil, err
	}
	day := w.day(name)
	if day == nil || !day.IsAvailable {
		return nil, ErrDayUnavailable
	}
	return day, nil
}

// FreeSlots returns the unbooked slots for the date in template order. A day
// that is off or missing from the template yields an empty slice, not an
// error: from the caller's side those slots simply do not exist.
func (w Week) FreeSlots(dateStr string, loc *time.Location) ([]TimeSlot, error) {
	name, err := Weekday(dateStr, loc)
	if err != nil {
		return nil, err
	}
	day := w.day(name)
	if day == nil || !day.IsAvailable {
		return []TimeSlot{}, nil
	}
	free := make([]TimeSlot, 0, len(day.TimeSlots))
	for _, slot := range day.TimeSlots {
		if !slot.IsBooked {
			free = append(free, slot)
		}
	}
	return free, nil
}

// Validate checks the template invariant: within one day, no two slots may
// share a clock time. Labels must parse.
func (w Week) Validate() error {
	for _, day := range w {
		seen := make(map[int]bool, len(day.TimeSlots))
		for _, slot := range day.TimeSlots {
			minutes, err := ParseLabelToMinutes(slot.Time)
			if err != nil {
				return ErrInvalidLabel
			}
			if seen[minutes] {
				return ErrDuplicateSlot
			}
			seen[minutes] = true
		}
	}
	return nil
}

// Normalize rewrites every slot label into canonical 12-hour form.
func (w Week) Normalize() error {
	for di := range w {
		for si := range w[di].TimeSlots {
			label, err := NormalizeLabel(w[di].TimeSlots[si].Time)
			if err != nil {
				return err
			}
			w[di].TimeSlots[si].Time = label
		}
	}
	return nil
}
