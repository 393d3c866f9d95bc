package model

import (
	"time"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

type SlotKind string

const (
	SlotWeekly SlotKind = "weekly"
	SlotDated  SlotKind = "dated"
)

const MinutesPerDay = 24 * 60

var ErrInvalidSlot = apperr.NewEntity(apperr.InvalidInterval, "availability_slot", "invalid availability slot")

// AvailabilitySlot declares when a staff member can be booked. A weekly slot
// recurs on Weekday between StartMinute and EndMinute (minutes after local
// midnight). A dated slot is the explicit window [StartTime, EndTime).
type AvailabilitySlot struct {
	ID      ids.ID   `json:"id"`
	StaffID ids.ID   `json:"staff_id"`
	Kind    SlotKind `json:"kind"`

	Weekday     time.Weekday `json:"weekday"`
	StartMinute int          `json:"start_minute"`
	EndMinute   int          `json:"end_minute"`

	StartTime time.Time `json:"start_time,omitempty"`
	EndTime   time.Time `json:"end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s AvailabilitySlot) Validate() error {
	switch s.Kind {
	case SlotWeekly:
		if s.Weekday < time.Sunday || s.Weekday > time.Saturday {
			return ErrInvalidSlot
		}
		if s.StartMinute < 0 || s.EndMinute > MinutesPerDay || s.StartMinute >= s.EndMinute {
			return ErrInvalidSlot
		}
	case SlotDated:
		if !s.StartTime.Before(s.EndTime) {
			return ErrInvalidSlot
		}
	default:
		return ErrInvalidSlot
	}
	return nil
}

// Window is the explicit interval of a dated slot.
func (s AvailabilitySlot) Window() interval.Interval {
	return interval.Interval{Start: s.StartTime, End: s.EndTime}
}

// OccurrenceOn returns the weekly slot's interval on the local date of day.
func (s AvailabilitySlot) OccurrenceOn(day time.Time, loc *time.Location) interval.Interval {
	return interval.Interval{
		Start: interval.AtMinute(day, s.StartMinute, loc),
		End:   interval.AtMinute(day, s.EndMinute, loc),
	}
}

// Covers reports whether the slot alone admits iv. Weekly slots only cover
// intervals that start on their weekday and stay within one local day.
func (s AvailabilitySlot) Covers(iv interval.Interval, loc *time.Location) bool {
	switch s.Kind {
	case SlotDated:
		return s.Window().Contains(iv)
	case SlotWeekly:
		if iv.CrossesMidnight(loc) {
			return false
		}
		if iv.Start.In(loc).Weekday() != s.Weekday {
			return false
		}
		return s.OccurrenceOn(iv.Start, loc).Contains(iv)
	}
	return false
}

// SlotsOverlap reports whether two slots of the same staff member would
// declare overlapping time.
func SlotsOverlap(a, b AvailabilitySlot, loc *time.Location) bool {
	switch {
	case a.Kind == SlotWeekly && b.Kind == SlotWeekly:
		return a.Weekday == b.Weekday && a.StartMinute < b.EndMinute && b.StartMinute < a.EndMinute
	case a.Kind == SlotDated && b.Kind == SlotDated:
		return a.Window().Overlaps(b.Window())
	case a.Kind == SlotWeekly:
		return weeklyTouchesWindow(a, b.Window(), loc)
	default:
		return weeklyTouchesWindow(b, a.Window(), loc)
	}
}

// weeklyTouchesWindow projects the weekly slot onto each local day the window
// touches. Past the first eight days every weekday has already appeared as a
// day fully inside the window, so the walk stops there.
func weeklyTouchesWindow(w AvailabilitySlot, win interval.Interval, loc *time.Location) bool {
	day := interval.StartOfDay(win.Start, loc)
	for i := 0; i < 9 && day.Before(win.End); i++ {
		if day.Weekday() == w.Weekday && w.OccurrenceOn(day, loc).Overlaps(win) {
			return true
		}
		day = day.AddDate(0, 0, 1)
	}
	return false
}
