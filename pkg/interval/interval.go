// Package interval implements half-open time intervals [Start, End).
package interval

import (
	"fmt"
	"time"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

var ErrInvalid = apperr.New(apperr.InvalidInterval, "interval start must be before end")

type Interval struct {
	Start time.Time `json:"start_time"`
	End   time.Time `json:"end_time"`
}

// New validates start < end.
func New(start, end time.Time) (Interval, error) {
	iv := Interval{Start: start, End: end}
	if !iv.Valid() {
		return Interval{}, ErrInvalid
	}
	return iv, nil
}

// MustNew panics on an invalid interval. Intended for tests and constants.
func MustNew(start, end time.Time) Interval {
	iv, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return iv
}

func (iv Interval) Valid() bool { return iv.Start.Before(iv.End) }

func (iv Interval) Duration() time.Duration { return iv.End.Sub(iv.Start) }

// Overlaps reports whether the two intervals share at least one instant.
// Adjacent intervals do not overlap.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Contains reports whether inner lies entirely within iv.
func (iv Interval) Contains(inner Interval) bool {
	return !inner.Start.Before(iv.Start) && !iv.End.Before(inner.End)
}

func Overlaps(a, b Interval) bool { return a.Overlaps(b) }

func Contains(outer, inner Interval) bool { return outer.Contains(inner) }

// In returns the interval with both endpoints expressed in loc.
func (iv Interval) In(loc *time.Location) Interval {
	return Interval{Start: iv.Start.In(loc), End: iv.End.In(loc)}
}

// CrossesMidnight reports whether the interval ends after the first local
// midnight following its start. Ending exactly at that midnight does not count.
func (iv Interval) CrossesMidnight(loc *time.Location) bool {
	next := StartOfDay(iv.Start, loc).AddDate(0, 0, 1)
	return iv.End.After(next)
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.Start.Format(time.RFC3339), iv.End.Format(time.RFC3339))
}

// StartOfDay returns local midnight of the day containing t.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// AtMinute returns the wall-clock instant minute minutes after local midnight of day.
// 1440 yields the following midnight.
func AtMinute(day time.Time, minute int, loc *time.Location) time.Time {
	d := day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, minute, 0, 0, loc)
}
