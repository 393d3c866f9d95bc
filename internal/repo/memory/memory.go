// Package memory is an in-process implementation of the repo interfaces,
// used by tests and the development profile.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

// NewStore returns a Store whose repositories share nothing but the process.
func NewStore() (repo.Store, *Directory) {
	dir := NewDirectory()
	return repo.Store{
		Appointments: NewAppointments(),
		Availability: NewAvailability(),
		Directory:    dir,
	}, dir
}

// ---------------------------------------------------------------------------
// Appointments
// ---------------------------------------------------------------------------

type Appointments struct {
	mu   sync.RWMutex
	rows map[ids.ID]model.Appointment
}

func NewAppointments() *Appointments {
	return &Appointments{rows: make(map[ids.ID]model.Appointment)}
}

func (r *Appointments) Create(_ context.Context, a *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.Blocking() {
		for _, other := range r.rows {
			if other.StaffID == a.StaffID && other.Blocking() && other.Interval().Overlaps(a.Interval()) {
				return repo.ErrOverlap
			}
		}
	}
	r.rows[a.ID] = *a
	return nil
}

func (r *Appointments) GetByID(_ context.Context, id ids.ID) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &a, nil
}

func (r *Appointments) FindOverlapping(_ context.Context, staffID ids.ID, iv interval.Interval, exclude *ids.ID) ([]model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Filter(lo.Values(r.rows), func(a model.Appointment, _ int) bool {
		if exclude != nil && a.ID == *exclude {
			return false
		}
		return a.StaffID == staffID && a.Blocking() && a.Interval().Overlaps(iv)
	})
	sortAppointments(out)
	return out, nil
}

func (r *Appointments) UpdateSchedule(_ context.Context, id, staffID ids.ID, iv interval.Interval, at time.Time) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if a.Status != model.StatusBooked {
		return nil, repo.ErrPrecondition
	}
	for _, other := range r.rows {
		if other.ID != id && other.StaffID == staffID && other.Blocking() && other.Interval().Overlaps(iv) {
			return nil, repo.ErrOverlap
		}
	}

	a.StaffID = staffID
	a.StartTime = iv.Start
	a.EndTime = iv.End
	a.UpdatedAt = at
	r.rows[id] = a
	return &a, nil
}

func (r *Appointments) TransitionStatus(_ context.Context, id ids.ID, from, to model.Status, at time.Time) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if a.Status != from {
		return nil, repo.ErrPrecondition
	}

	a.Status = to
	a.UpdatedAt = at
	switch to {
	case model.StatusCanceled:
		a.CanceledAt = &at
	case model.StatusCompleted:
		a.CompletedAt = &at
	}
	r.rows[id] = a
	return &a, nil
}

func (r *Appointments) List(_ context.Context, f repo.AppointmentFilter) ([]model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Filter(lo.Values(r.rows), func(a model.Appointment, _ int) bool {
		switch {
		case f.StaffID != nil && a.StaffID != *f.StaffID:
			return false
		case f.CustomerID != nil && a.CustomerID != *f.CustomerID:
			return false
		case f.ClinicID != nil && a.ClinicID != *f.ClinicID:
			return false
		case f.Status != nil && a.Status != *f.Status:
			return false
		case f.From != nil && a.StartTime.Before(*f.From):
			return false
		case f.To != nil && !a.StartTime.Before(*f.To):
			return false
		}
		return true
	})
	sortAppointments(out)

	skip, limit := f.Page()
	if skip >= len(out) {
		return []model.Appointment{}, nil
	}
	out = out[skip:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func sortAppointments(list []model.Appointment) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID.String() < list[j].ID.String()
	})
}

// ---------------------------------------------------------------------------
// Availability
// ---------------------------------------------------------------------------

type Availability struct {
	mu   sync.RWMutex
	rows map[ids.ID]model.AvailabilitySlot
}

func NewAvailability() *Availability {
	return &Availability{rows: make(map[ids.ID]model.AvailabilitySlot)}
}

func (r *Availability) Create(_ context.Context, s *model.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[s.ID] = *s
	return nil
}

func (r *Availability) GetByID(_ context.Context, id ids.ID) (*model.AvailabilitySlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &s, nil
}

func (r *Availability) ListByStaff(_ context.Context, staffID ids.ID, window *interval.Interval) ([]model.AvailabilitySlot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := lo.Filter(lo.Values(r.rows), func(s model.AvailabilitySlot, _ int) bool {
		if s.StaffID != staffID {
			return false
		}
		if window != nil && s.Kind == model.SlotDated {
			return s.Window().Overlaps(*window)
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == model.SlotWeekly
		}
		if out[i].Kind == model.SlotWeekly && out[i].Weekday != out[j].Weekday {
			return out[i].Weekday < out[j].Weekday
		}
		if out[i].Kind == model.SlotWeekly && out[i].StartMinute != out[j].StartMinute {
			return out[i].StartMinute < out[j].StartMinute
		}
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (r *Availability) Update(_ context.Context, s *model.AvailabilitySlot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[s.ID]; !ok {
		return repo.ErrNotFound
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *Availability) Delete(_ context.Context, id ids.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
