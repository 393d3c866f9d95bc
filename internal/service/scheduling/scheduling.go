// Package scheduling decides whether an interval can be booked for a staff
// member: no overlap with their non-canceled appointments, and inside their
// declared availability. An overlap outranks missing availability.
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/internal/service/access"
	"github.com/Alijeyrad/clinicbook/internal/service/availability"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

type Outcome int

const (
	OK Outcome = iota
	Conflict
	OutsideAvailability
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Conflict:
		return "conflict"
	case OutsideAvailability:
		return "outside_availability"
	}
	return "unknown"
}

// Result of a conflict check. AppointmentID is the earliest colliding
// appointment when Outcome is Conflict.
type Result struct {
	Outcome       Outcome
	AppointmentID ids.ID
}

// Err converts a negative outcome into its error kind; OK yields nil.
func (r Result) Err() error {
	switch r.Outcome {
	case Conflict:
		return ErrOverlap.WithRef(r.AppointmentID.String())
	case OutsideAvailability:
		return ErrOutsideAvailability
	}
	return nil
}

// AvailabilityChecker is the part of the availability service the detector needs.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context, staffID ids.ID, iv interval.Interval) (bool, error)
	Location() *time.Location
}

type Option func(*Detector)

func WithGuard(g *access.Guard) Option {
	return func(d *Detector) { d.guard = g }
}

func WithClock(now func() time.Time) Option {
	return func(d *Detector) { d.now = now }
}

// WithMaxWindow bounds the window FreeTimes will scan.
func WithMaxWindow(max time.Duration) Option {
	return func(d *Detector) { d.maxWindow = max }
}

type Detector struct {
	appts     repo.AppointmentRepository
	slots     repo.AvailabilityRepository
	avail     AvailabilityChecker
	guard     *access.Guard
	now       func() time.Time
	maxWindow time.Duration
}

func New(appts repo.AppointmentRepository, slots repo.AvailabilityRepository, avail AvailabilityChecker, opts ...Option) *Detector {
	d := &Detector{
		appts:     appts,
		slots:     slots,
		avail:     avail,
		now:       time.Now,
		maxWindow: DefaultMaxWindow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CheckConflict evaluates iv for staffID, ignoring excludeID (the
// appointment being moved) when set. Callers that write on OK must hold the
// staff lock across the check and the write.
func (d *Detector) CheckConflict(ctx context.Context, staffID ids.ID, iv interval.Interval, excludeID *ids.ID) (Result, error) {
	if !iv.Valid() {
		return Result{}, apperr.ErrInvalidInterval
	}

	overlapping, err := d.appts.FindOverlapping(ctx, staffID, iv, excludeID)
	if err != nil {
		return Result{}, fmt.Errorf("find overlapping: %w", err)
	}
	if len(overlapping) > 0 {
		return Result{Outcome: Conflict, AppointmentID: overlapping[0].ID}, nil
	}

	ok, err := d.avail.IsAvailable(ctx, staffID, iv)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Outcome: OutsideAvailability}, nil
	}
	return Result{Outcome: OK}, nil
}

// FreeTimes returns the start instants in window, step apart from the window
// start, at which an appointment of duration would pass CheckConflict.
// Instants before now are skipped.
func (d *Detector) FreeTimes(ctx context.Context, staffID ids.ID, window interval.Interval, duration, step time.Duration) ([]time.Time, error) {
	if !window.Valid() || duration <= 0 || step <= 0 {
		return nil, apperr.ErrInvalidInterval
	}
	if window.Duration() > d.maxWindow {
		return nil, ErrWindowTooLarge
	}
	if err := d.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionRead, staffID); err != nil {
		return nil, err
	}

	busy, err := d.appts.FindOverlapping(ctx, staffID, window, nil)
	if err != nil {
		return nil, fmt.Errorf("find overlapping: %w", err)
	}
	slots, err := d.slots.ListByStaff(ctx, staffID, &window)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}

	loc := d.avail.Location()
	now := d.now()
	out := []time.Time{}
	for t := window.Start; !t.Add(duration).After(window.End); t = t.Add(step) {
		if t.Before(now) {
			continue
		}
		candidate := interval.Interval{Start: t, End: t.Add(duration)}
		if overlapsAny(candidate, busy) {
			continue
		}
		if availability.Covers(slots, candidate, loc) {
			out = append(out, t.In(loc))
		}
	}
	return out, nil
}

func overlapsAny(iv interval.Interval, busy []model.Appointment) bool {
	for _, b := range busy {
		if b.Blocking() && b.Interval().Overlaps(iv) {
			return true
		}
	}
	return false
}
