// Package repo declares the storage capabilities handed to the booking
// services. Implementations live in the memory and postgres subpackages.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrPrecondition is returned by conditional writes whose guard no longer holds.
	ErrPrecondition = errors.New("precondition failed")
	// ErrOverlap is returned when the store itself rejects an overlapping appointment.
	ErrOverlap = errors.New("overlapping appointment")
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
)

// AppointmentFilter selects appointments for listing. Results are ordered by
// (start_time, id) so Skip/Limit pages are stable.
type AppointmentFilter struct {
	StaffID    *ids.ID
	CustomerID *ids.ID
	ClinicID   *ids.ID
	Status     *model.Status
	From       *time.Time
	To         *time.Time
	Skip       int
	Limit      int
}

type AppointmentRepository interface {
	Create(ctx context.Context, a *model.Appointment) error
	GetByID(ctx context.Context, id ids.ID) (*model.Appointment, error)

	// FindOverlapping returns non-canceled appointments of staffID that
	// overlap iv, ordered by start time, skipping exclude when set.
	FindOverlapping(ctx context.Context, staffID ids.ID, iv interval.Interval, exclude *ids.ID) ([]model.Appointment, error)

	// UpdateSchedule moves a booked appointment to staffID and iv. It returns
	// ErrPrecondition when the appointment is no longer booked.
	UpdateSchedule(ctx context.Context, id, staffID ids.ID, iv interval.Interval, at time.Time) (*model.Appointment, error)

	// TransitionStatus applies from -> to only while the stored status is from.
	TransitionStatus(ctx context.Context, id ids.ID, from, to model.Status, at time.Time) (*model.Appointment, error)

	List(ctx context.Context, f AppointmentFilter) ([]model.Appointment, error)
}

type AvailabilityRepository interface {
	Create(ctx context.Context, s *model.AvailabilitySlot) error
	GetByID(ctx context.Context, id ids.ID) (*model.AvailabilitySlot, error)

	// ListByStaff returns every weekly slot of staffID plus the dated slots
	// overlapping window. A nil window returns all slots.
	ListByStaff(ctx context.Context, staffID ids.ID, window *interval.Interval) ([]model.AvailabilitySlot, error)

	Update(ctx context.Context, s *model.AvailabilitySlot) error
	Delete(ctx context.Context, id ids.ID) error
}

// Directory is read-only access to entities owned by other parts of the system.
type Directory interface {
	User(ctx context.Context, id ids.ID) (*model.User, error)
	Customer(ctx context.Context, id ids.ID) (*model.Customer, error)
	Clinic(ctx context.Context, id ids.ID) (*model.Clinic, error)
	Service(ctx context.Context, id ids.ID) (*model.Service, error)
	Staff(ctx context.Context, id ids.ID) (*model.Staff, error)
}

// Store bundles the repositories of one backend.
type Store struct {
	Appointments AppointmentRepository
	Availability AvailabilityRepository
	Directory    Directory
}

// Page returns the filter's bounds for a repository query. Callers
// normalize the limit against their own configuration; Page only fills in an
// unset page and never lowers a positive limit.
func (f AppointmentFilter) Page() (skip, limit int) {
	skip, limit = f.Skip, f.Limit
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return skip, limit
}

// NormalizePage clamps skip and limit.
func NormalizePage(skip, limit, defLimit, maxLimit int) (int, int) {
	if defLimit <= 0 {
		defLimit = DefaultListLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxListLimit
	}
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}
