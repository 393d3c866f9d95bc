// Package availability manages staff availability slots and answers whether
// a staff member is available for an interval.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/internal/service/access"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// SlotRequest describes a slot. Weekly slots use Weekday, StartMinute and
// EndMinute; dated slots use StartTime and EndTime.
type SlotRequest struct {
	Kind        model.SlotKind
	Weekday     time.Weekday
	StartMinute int
	EndMinute   int
	StartTime   time.Time
	EndTime     time.Time
}

func (r SlotRequest) apply(s *model.AvailabilitySlot) {
	s.Kind = r.Kind
	s.Weekday, s.StartMinute, s.EndMinute = 0, 0, 0
	s.StartTime, s.EndTime = time.Time{}, time.Time{}
	if r.Kind == model.SlotWeekly {
		s.Weekday, s.StartMinute, s.EndMinute = r.Weekday, r.StartMinute, r.EndMinute
	} else {
		s.StartTime, s.EndTime = r.StartTime.UTC(), r.EndTime.UTC()
	}
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	CreateSlot(ctx context.Context, staffID ids.ID, req SlotRequest) (*model.AvailabilitySlot, error)
	GetSlot(ctx context.Context, id ids.ID) (*model.AvailabilitySlot, error)
	UpdateSlot(ctx context.Context, id ids.ID, req SlotRequest) (*model.AvailabilitySlot, error)
	DeleteSlot(ctx context.Context, id ids.ID) error
	ListSlotsByStaff(ctx context.Context, staffID ids.ID, window *interval.Interval) ([]model.AvailabilitySlot, error)

	// IsAvailable reports whether a single slot of staffID admits iv.
	IsAvailable(ctx context.Context, staffID ids.ID, iv interval.Interval) (bool, error)

	// Location is the canonical timezone weekly slots are evaluated in.
	Location() *time.Location
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type Option func(*availabilityService)

func WithGuard(g *access.Guard) Option {
	return func(s *availabilityService) { s.guard = g }
}

func WithClock(now func() time.Time) Option {
	return func(s *availabilityService) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *availabilityService) { s.logger = l }
}

type availabilityService struct {
	slots  repo.AvailabilityRepository
	dir    repo.Directory
	locker lock.Locker
	loc    *time.Location
	guard  *access.Guard
	now    func() time.Time
	logger *slog.Logger
}

func New(slots repo.AvailabilityRepository, dir repo.Directory, locker lock.Locker, loc *time.Location, opts ...Option) Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &availabilityService{
		slots:  slots,
		dir:    dir,
		locker: locker,
		loc:    loc,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *availabilityService) Location() *time.Location { return s.loc }

func (s *availabilityService) CreateSlot(ctx context.Context, staffID ids.ID, req SlotRequest) (*model.AvailabilitySlot, error) {
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionCreate, staffID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	slot := &model.AvailabilitySlot{ID: ids.New(), StaffID: staffID, CreatedAt: now, UpdatedAt: now}
	req.apply(slot)
	if err := slot.Validate(); err != nil {
		return nil, err
	}
	if err := s.requireStaff(ctx, staffID); err != nil {
		return nil, err
	}

	err := lock.WithStaffLock(ctx, s.locker, staffID, func(ctx context.Context) error {
		if err := s.checkSlotOverlap(ctx, *slot); err != nil {
			return err
		}
		if err := s.slots.Create(ctx, slot); err != nil {
			return fmt.Errorf("create slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability slot created", "slot_id", slot.ID, "staff_id", staffID, "kind", slot.Kind)
	return slot, nil
}

func (s *availabilityService) GetSlot(ctx context.Context, id ids.ID) (*model.AvailabilitySlot, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionRead, slot.StaffID); err != nil {
		return nil, err
	}
	return slot, nil
}

func (s *availabilityService) UpdateSlot(ctx context.Context, id ids.ID, req SlotRequest) (*model.AvailabilitySlot, error) {
	current, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionUpdate, current.StaffID); err != nil {
		return nil, err
	}

	next := *current
	req.apply(&next)
	if err := next.Validate(); err != nil {
		return nil, err
	}

	err = lock.WithStaffLock(ctx, s.locker, current.StaffID, func(ctx context.Context) error {
		if err := s.checkSlotOverlap(ctx, next); err != nil {
			return err
		}
		next.UpdatedAt = s.now().UTC()
		if err := s.slots.Update(ctx, &next); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("update slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("availability slot updated", "slot_id", id, "staff_id", next.StaffID)
	return &next, nil
}

func (s *availabilityService) DeleteSlot(ctx context.Context, id ids.ID) error {
	current, err := s.getSlot(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionDelete, current.StaffID); err != nil {
		return err
	}

	err = lock.WithStaffLock(ctx, s.locker, current.StaffID, func(ctx context.Context) error {
		if err := s.slots.Delete(ctx, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("delete slot: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("availability slot deleted", "slot_id", id, "staff_id", current.StaffID)
	return nil
}

func (s *availabilityService) ListSlotsByStaff(ctx context.Context, staffID ids.ID, window *interval.Interval) ([]model.AvailabilitySlot, error) {
	if window != nil && !window.Valid() {
		return nil, apperr.ErrInvalidInterval
	}
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAvailabilitySlot, authorize.ActionList, staffID); err != nil {
		return nil, err
	}

	slots, err := s.slots.ListByStaff(ctx, staffID, window)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	return slots, nil
}

func (s *availabilityService) IsAvailable(ctx context.Context, staffID ids.ID, iv interval.Interval) (bool, error) {
	if !iv.Valid() {
		return false, apperr.ErrInvalidInterval
	}
	iv = iv.In(s.loc)

	slots, err := s.slots.ListByStaff(ctx, staffID, &iv)
	if err != nil {
		return false, fmt.Errorf("list slots: %w", err)
	}

	for _, slot := range slots {
		if slot.Kind == model.SlotDated && slot.Window().Contains(iv) {
			return true, nil
		}
	}
	if iv.CrossesMidnight(s.loc) {
		return false, ErrCrossesMidnight
	}
	return Covers(slots, iv, s.loc), nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *availabilityService) getSlot(ctx context.Context, id ids.ID) (*model.AvailabilitySlot, error) {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}
	return slot, nil
}

func (s *availabilityService) requireStaff(ctx context.Context, staffID ids.ID) error {
	if _, err := s.dir.Staff(ctx, staffID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrStaffNotFound
		}
		return fmt.Errorf("get staff: %w", err)
	}
	return nil
}

// checkSlotOverlap must run under the staff lock.
func (s *availabilityService) checkSlotOverlap(ctx context.Context, slot model.AvailabilitySlot) error {
	existing, err := s.slots.ListByStaff(ctx, slot.StaffID, nil)
	if err != nil {
		return fmt.Errorf("list slots: %w", err)
	}
	for _, other := range existing {
		if other.ID == slot.ID {
			continue
		}
		if model.SlotsOverlap(slot, other, s.loc) {
			return ErrSlotOverlap.WithRef(other.ID.String())
		}
	}
	return nil
}
