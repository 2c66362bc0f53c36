package availability

import (
	"errors"
	"testing"
	"time"
)

// 2026-02-02 is a Monday, 2026-02-01 a Sunday, 2026-02-07 a Saturday.

func testWeek() Week {
	return Week{
		{Day: "Monday", IsAvailable: true, TimeSlots: slots("09:00 AM", "10:00 AM")},
		{Day: "Sunday", IsAvailable: false, TimeSlots: slots("09:00 AM")},
	}
}

func mustLoadLoc(t *testing.T) *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestReserveRemovesSlotFromFree(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("2026-02-02", "09:00 AM", loc); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}

	free, err := week.FreeSlots("2026-02-02", loc)
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(free) != 1 || free[0].Time != "10:00 AM" {
		t.Fatalf("unexpected free slots: %v", free)
	}
}

func TestReserveTwiceFails(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("2026-02-02", "09:00 AM", loc); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if err := week.Reserve("2026-02-02", "09:00 AM", loc); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
}

func TestReleaseRestoresSlot(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("2026-02-02", "09:00 AM", loc); err != nil {
		t.Fatalf("Reserve error: %v", err)
	}
	if err := week.Release("2026-02-02", "09:00 AM", loc); err != nil {
		t.Fatalf("Release error: %v", err)
	}

	free, err := week.FreeSlots("2026-02-02", loc)
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("expected 2 free slots, got %d", len(free))
	}
}

func TestFreeSlotsUnavailableDay(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	free, err := week.FreeSlots("2026-02-01", loc)
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("expected no slots on an off day, got %v", free)
	}
}

func TestFreeSlotsMissingDay(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	free, err := week.FreeSlots("2026-02-07", loc)
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("expected no slots for a missing day, got %v", free)
	}
}

func TestReserveUnknownLabel(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("2026-02-02", "08:00 AM", loc); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound, got %v", err)
	}
}

func TestReserveOffDay(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("2026-02-01", "09:00 AM", loc); !errors.Is(err, ErrDayUnavailable) {
		t.Fatalf("expected ErrDayUnavailable, got %v", err)
	}
}

func TestReserveInvalidDate(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	if err := week.Reserve("02-02-2026", "09:00 AM", loc); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestLabelNormalization(t *testing.T) {
	loc := mustLoadLoc(t)
	week := testWeek()

	// 24-hour form must match the template's 12-hour label.
	if err := week.Reserve("2026-02-02", "14:00", loc); !errors.Is(err, ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound for absent slot, got %v", err)
	}
	if err := week.Reserve("2026-02-02", "09:00", loc); err != nil {
		t.Fatalf("expected 24-hour label to match 09:00 AM, got %v", err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	got, err := NormalizeLabel("14:00")
	if err != nil {
		t.Fatalf("NormalizeLabel error: %v", err)
	}
	if got != "02:00 PM" {
		t.Fatalf("expected 02:00 PM, got %s", got)
	}

	if _, err := NormalizeLabel("25:00"); !errors.Is(err, ErrInvalidLabel) {
		t.Fatalf("expected ErrInvalidLabel, got %v", err)
	}
}

func TestValidateDuplicateSlots(t *testing.T) {
	week := Week{
		{Day: "Monday", IsAvailable: true, TimeSlots: slots("09:00 AM", "09:00")},
	}
	if err := week.Validate(); !errors.Is(err, ErrDuplicateSlot) {
		t.Fatalf("expected ErrDuplicateSlot, got %v", err)
	}

	if err := testWeek().Validate(); err != nil {
		t.Fatalf("expected valid template, got %v", err)
	}
}

func TestWeekday(t *testing.T) {
	loc := mustLoadLoc(t)
	day, err := Weekday("2026-02-02", loc)
	if err != nil {
		t.Fatalf("Weekday error: %v", err)
	}
	if day != "Monday" {
		t.Fatalf("expected Monday, got %s", day)
	}
}

func TestIsDatePast(t *testing.T) {
	loc := mustLoadLoc(t)
	now := time.Date(2026, 2, 4, 10, 0, 0, 0, loc)

	past, err := IsDatePast("2026-02-03", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if !past {
		t.Fatalf("expected date to be past")
	}

	past, err = IsDatePast("2026-02-04", loc, now)
	if err != nil {
		t.Fatalf("IsDatePast error: %v", err)
	}
	if past {
		t.Fatalf("expected today to not be past")
	}
}

func TestDefaultWeekCoversAllDays(t *testing.T) {
	week := DefaultWeek()
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	if err := week.Validate(); err != nil {
		t.Fatalf("default template invalid: %v", err)
	}
	sunday := week.day("Sunday")
	if sunday == nil || sunday.IsAvailable {
		t.Fatalf("expected Sunday to be off")
	}
}
