// Package appointment manages the appointment lifecycle: booking,
// rescheduling, reassignment, cancellation, completion and listing.
//
// Every write that can introduce an overlap (create, reschedule, reassign)
// runs its conflict check and its write under the lock of the staff member
// whose calendar receives the interval. Status transitions are conditional
// updates and take no lock.
package appointment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/internal/service/access"
	"github.com/Alijeyrad/clinicbook/internal/service/scheduling"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/events"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
	"github.com/Alijeyrad/clinicbook/pkg/observability"
)

// maxStaffChangeRetries bounds how often Reschedule re-acquires a lock after
// a concurrent reassignment moved the appointment.
const maxStaffChangeRetries = 3

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	CustomerID ids.ID
	ClinicID   ids.ID
	ServiceID  ids.ID
	StaffID    ids.ID
	Interval   interval.Interval
}

// ListFilter narrows a listing. From/To bound the start time, [From, To).
type ListFilter struct {
	Status *model.Status
	From   *time.Time
	To     *time.Time
	Skip   int
	Limit  int
}

// SearchFilter is ListFilter plus optional reference filters.
type SearchFilter struct {
	CustomerID *ids.ID
	StaffID    *ids.ID
	ClinicID   *ids.ID
	ListFilter
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*model.Appointment, error)
	Get(ctx context.Context, id ids.ID) (*model.Appointment, error)
	GetDetailed(ctx context.Context, id ids.ID) (*model.AppointmentDetail, error)
	Reschedule(ctx context.Context, id ids.ID, iv interval.Interval) (*model.Appointment, error)
	Reassign(ctx context.Context, id, staffID ids.ID) (*model.Appointment, error)
	Cancel(ctx context.Context, id ids.ID) (*model.Appointment, error)
	Complete(ctx context.Context, id ids.ID) (*model.Appointment, error)

	ListByStaff(ctx context.Context, staffID ids.ID, f ListFilter) ([]model.Appointment, error)
	ListByCustomer(ctx context.Context, customerID ids.ID, f ListFilter) ([]model.Appointment, error)
	ListByClinic(ctx context.Context, clinicID ids.ID, f ListFilter) ([]model.Appointment, error)
	Search(ctx context.Context, f SearchFilter) ([]model.Appointment, error)
}

// ConflictChecker is satisfied by *scheduling.Detector.
type ConflictChecker interface {
	CheckConflict(ctx context.Context, staffID ids.ID, iv interval.Interval, excludeID *ids.ID) (scheduling.Result, error)
}

// ---------------------------------------------------------------------------
// Options
// ---------------------------------------------------------------------------

type Option func(*appointmentService)

func WithGuard(g *access.Guard) Option {
	return func(s *appointmentService) { s.guard = g }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *appointmentService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *appointmentService) { s.now = now }
}

func WithListLimits(def, max int) Option {
	return func(s *appointmentService) { s.defLimit, s.maxLimit = def, max }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *appointmentService) { s.logger = l }
}

func WithMetrics(m *observability.BookingMetrics) Option {
	return func(s *appointmentService) { s.metrics = m }
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	appts    repo.AppointmentRepository
	dir      repo.Directory
	conflict ConflictChecker
	locker   lock.Locker

	guard     *access.Guard
	publisher events.Publisher
	now       func() time.Time
	logger    *slog.Logger
	metrics   *observability.BookingMetrics

	defLimit, maxLimit int
}

func New(appts repo.AppointmentRepository, dir repo.Directory, conflict ConflictChecker, locker lock.Locker, opts ...Option) Service {
	s := &appointmentService{
		appts:     appts,
		dir:       dir,
		conflict:  conflict,
		locker:    locker,
		publisher: events.Nop{},
		now:       time.Now,
		logger:    slog.Default(),
		defLimit:  repo.DefaultListLimit,
		maxLimit:  repo.MaxListLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *appointmentService) Create(ctx context.Context, req CreateRequest) (appt *model.Appointment, err error) {
	defer func() { s.metrics.Operation(ctx, "create", err) }()

	if !req.Interval.Valid() {
		return nil, apperr.ErrInvalidInterval
	}
	if req.CustomerID.IsZero() || req.ClinicID.IsZero() || req.ServiceID.IsZero() || req.StaffID.IsZero() {
		return nil, ErrMissingReference
	}

	now := s.now().UTC()
	appt = &model.Appointment{
		ID:         ids.New(),
		CustomerID: req.CustomerID,
		ClinicID:   req.ClinicID,
		ServiceID:  req.ServiceID,
		StaffID:    req.StaffID,
		StartTime:  req.Interval.Start.UTC(),
		EndTime:    req.Interval.End.UTC(),
		Status:     model.StatusBooked,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.guard.Appointment(ctx, authorize.ActionCreate, appt); err != nil {
		return nil, err
	}
	if err := s.validateReferences(ctx, appt); err != nil {
		return nil, err
	}

	err = lock.WithStaffLock(ctx, s.locker, appt.StaffID, func(ctx context.Context) error {
		res, err := s.conflict.CheckConflict(ctx, appt.StaffID, appt.Interval(), nil)
		if err != nil {
			return err
		}
		if err := res.Err(); err != nil {
			return err
		}
		if err := s.appts.Create(ctx, appt); err != nil {
			return storeErr("create appointment", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment booked",
		"appointment_id", appt.ID, "staff_id", appt.StaffID, "customer_id", appt.CustomerID,
		"start", appt.StartTime, "end", appt.EndTime)
	s.publish(ctx, events.AppointmentBooked, appt, nil)
	return appt, nil
}

func (s *appointmentService) Get(ctx context.Context, id ids.ID) (*model.Appointment, error) {
	appt, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Appointment(ctx, authorize.ActionRead, appt); err != nil {
		return nil, err
	}
	return appt, nil
}

func (s *appointmentService) GetDetailed(ctx context.Context, id ids.ID) (*model.AppointmentDetail, error) {
	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	customer, err := s.dir.Customer(ctx, appt.CustomerID)
	if err != nil {
		return nil, relatedErr(id, "customer", err)
	}
	clinic, err := s.dir.Clinic(ctx, appt.ClinicID)
	if err != nil {
		return nil, relatedErr(id, "clinic", err)
	}
	service, err := s.dir.Service(ctx, appt.ServiceID)
	if err != nil {
		return nil, relatedErr(id, "service", err)
	}
	staff, err := s.dir.Staff(ctx, appt.StaffID)
	if err != nil {
		return nil, relatedErr(id, "staff", err)
	}

	return &model.AppointmentDetail{
		Appointment: *appt,
		Customer:    *customer,
		Clinic:      *clinic,
		Service:     *service,
		Staff:       *staff,
	}, nil
}

func (s *appointmentService) Reschedule(ctx context.Context, id ids.ID, iv interval.Interval) (appt *model.Appointment, err error) {
	defer func() { s.metrics.Operation(ctx, "reschedule", err) }()

	if !iv.Valid() {
		return nil, apperr.ErrInvalidInterval
	}
	iv = interval.Interval{Start: iv.Start.UTC(), End: iv.End.UTC()}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Appointment(ctx, authorize.ActionUpdate, current); err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, terminalErr(current.Status)
	}

	staffID := current.StaffID
	for range maxStaffChangeRetries {
		var moved bool
		err = lock.WithStaffLock(ctx, s.locker, staffID, func(ctx context.Context) error {
			latest, err := s.get(ctx, id)
			if err != nil {
				return err
			}
			if latest.Status.Terminal() {
				return terminalErr(latest.Status)
			}
			if latest.StaffID != staffID {
				staffID, moved = latest.StaffID, true
				return nil
			}

			appt, err = s.writeSchedule(ctx, id, staffID, iv)
			return err
		})
		if err != nil {
			return nil, err
		}
		if !moved {
			s.logger.Info("appointment rescheduled", "appointment_id", id, "staff_id", staffID, "start", iv.Start, "end", iv.End)
			s.publish(ctx, events.AppointmentRescheduled, appt, nil)
			return appt, nil
		}
	}
	return nil, ErrMoved
}

func (s *appointmentService) Reassign(ctx context.Context, id, staffID ids.ID) (appt *model.Appointment, err error) {
	defer func() { s.metrics.Operation(ctx, "reassign", err) }()

	if staffID.IsZero() {
		return nil, ErrMissingReference
	}

	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Appointment(ctx, authorize.ActionUpdate, current); err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, terminalErr(current.Status)
	}
	if current.StaffID == staffID {
		return current, nil
	}

	staff, err := s.staff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	if staff.ClinicID != current.ClinicID {
		return nil, ErrStaffClinicMismatch
	}
	if !staff.Provides(current.ServiceID) {
		return nil, ErrStaffServiceMismatch
	}

	// Both calendars are locked, in id order, so a concurrent reschedule
	// under the previous staff cannot slip an unchecked interval through.
	previous := current.StaffID
	err = s.withStaffLocks(ctx, previous, staffID, func(ctx context.Context) error {
		latest, err := s.get(ctx, id)
		if err != nil {
			return err
		}
		if latest.Status.Terminal() {
			return terminalErr(latest.Status)
		}
		if latest.StaffID != previous {
			return ErrMoved
		}

		appt, err = s.writeSchedule(ctx, id, staffID, latest.Interval())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("appointment reassigned", "appointment_id", id, "from_staff_id", previous, "to_staff_id", staffID)
	s.publish(ctx, events.AppointmentReassigned, appt, &previous)
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, id ids.ID) (appt *model.Appointment, err error) {
	defer func() { s.metrics.Operation(ctx, "cancel", err) }()

	appt, err = s.transition(ctx, id, authorize.ActionCancel, model.StatusCanceled)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment canceled", "appointment_id", id, "staff_id", appt.StaffID)
	s.publish(ctx, events.AppointmentCanceled, appt, nil)
	return appt, nil
}

func (s *appointmentService) Complete(ctx context.Context, id ids.ID) (appt *model.Appointment, err error) {
	defer func() { s.metrics.Operation(ctx, "complete", err) }()

	appt, err = s.transition(ctx, id, authorize.ActionComplete, model.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.logger.Info("appointment completed", "appointment_id", id, "staff_id", appt.StaffID)
	s.publish(ctx, events.AppointmentCompleted, appt, nil)
	return appt, nil
}

func (s *appointmentService) ListByStaff(ctx context.Context, staffID ids.ID, f ListFilter) ([]model.Appointment, error) {
	if err := s.guard.StaffCalendar(ctx, authorize.ResourceAppointment, authorize.ActionList, staffID); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.AppointmentFilter{StaffID: &staffID}, f)
}

func (s *appointmentService) ListByCustomer(ctx context.Context, customerID ids.ID, f ListFilter) ([]model.Appointment, error) {
	if err := s.guard.Customer(ctx, customerID); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.AppointmentFilter{CustomerID: &customerID}, f)
}

func (s *appointmentService) ListByClinic(ctx context.Context, clinicID ids.ID, f ListFilter) ([]model.Appointment, error) {
	if err := s.guard.Clinic(ctx, clinicID); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.AppointmentFilter{ClinicID: &clinicID}, f)
}

func (s *appointmentService) Search(ctx context.Context, f SearchFilter) ([]model.Appointment, error) {
	if err := s.guard.Search(ctx, f.ClinicID, f.StaffID, f.CustomerID); err != nil {
		return nil, err
	}
	return s.list(ctx, repo.AppointmentFilter{
		CustomerID: f.CustomerID,
		StaffID:    f.StaffID,
		ClinicID:   f.ClinicID,
	}, f.ListFilter)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func (s *appointmentService) get(ctx context.Context, id ids.ID) (*model.Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// writeSchedule checks iv on staffID's calendar and stores it. The caller
// holds staffID's lock.
func (s *appointmentService) writeSchedule(ctx context.Context, id, staffID ids.ID, iv interval.Interval) (*model.Appointment, error) {
	res, err := s.conflict.CheckConflict(ctx, staffID, iv, &id)
	if err != nil {
		return nil, err
	}
	if err := res.Err(); err != nil {
		return nil, err
	}

	appt, err := s.appts.UpdateSchedule(ctx, id, staffID, iv, s.now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrPrecondition) {
			return nil, s.transitionErr(ctx, id)
		}
		return nil, storeErr("update schedule", err)
	}
	return appt, nil
}

func (s *appointmentService) transition(ctx context.Context, id ids.ID, action authorize.Action, to model.Status) (*model.Appointment, error) {
	current, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Appointment(ctx, action, current); err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, terminalErr(current.Status)
	}

	appt, err := s.appts.TransitionStatus(ctx, id, model.StatusBooked, to, s.now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrPrecondition) {
			return nil, s.transitionErr(ctx, id)
		}
		return nil, storeErr("transition status", err)
	}
	return appt, nil
}

// transitionErr explains a failed conditional write by the status that won.
func (s *appointmentService) transitionErr(ctx context.Context, id ids.ID) error {
	latest, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	return terminalErr(latest.Status)
}

func (s *appointmentService) list(ctx context.Context, base repo.AppointmentFilter, f ListFilter) ([]model.Appointment, error) {
	if f.Status != nil && !f.Status.Valid() {
		return nil, ErrInvalidStatusFilter
	}
	if f.From != nil && f.To != nil && !f.From.Before(*f.To) {
		return nil, apperr.ErrInvalidInterval
	}

	base.Status, base.From, base.To = f.Status, f.From, f.To
	base.Skip, base.Limit = repo.NormalizePage(f.Skip, f.Limit, s.defLimit, s.maxLimit)

	out, err := s.appts.List(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

// validateReferences checks that every referenced entity exists and that
// staff, service and clinic belong together.
func (s *appointmentService) validateReferences(ctx context.Context, a *model.Appointment) error {
	if _, err := s.dir.Customer(ctx, a.CustomerID); err != nil {
		return lookupErr(err, ErrCustomerNotFound, "customer")
	}
	if _, err := s.dir.Clinic(ctx, a.ClinicID); err != nil {
		return lookupErr(err, ErrClinicNotFound, "clinic")
	}
	service, err := s.dir.Service(ctx, a.ServiceID)
	if err != nil {
		return lookupErr(err, ErrServiceNotFound, "service")
	}
	staff, err := s.staff(ctx, a.StaffID)
	if err != nil {
		return err
	}

	if !staff.Provides(a.ServiceID) {
		return ErrStaffServiceMismatch
	}
	if staff.ClinicID != a.ClinicID {
		return ErrStaffClinicMismatch
	}
	if service.ClinicID != a.ClinicID {
		return ErrServiceClinicMismatch
	}
	return nil
}

func (s *appointmentService) staff(ctx context.Context, id ids.ID) (*model.Staff, error) {
	staff, err := s.dir.Staff(ctx, id)
	if err != nil {
		return nil, lookupErr(err, ErrStaffNotFound, "staff")
	}
	return staff, nil
}

// withStaffLocks holds the locks of both staff members, always acquired in
// id order.
func (s *appointmentService) withStaffLocks(ctx context.Context, a, b ids.ID, fn func(ctx context.Context) error) error {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return lock.WithStaffLock(ctx, s.locker, a, func(ctx context.Context) error {
		return lock.WithStaffLock(ctx, s.locker, b, fn)
	})
}

func (s *appointmentService) publish(ctx context.Context, typ events.Type, a *model.Appointment, previousStaff *ids.ID) {
	e := events.Event{
		Type:            typ,
		AppointmentID:   a.ID,
		StaffID:         a.StaffID,
		CustomerID:      a.CustomerID,
		ClinicID:        a.ClinicID,
		Start:           a.StartTime,
		End:             a.EndTime,
		Status:          string(a.Status),
		PreviousStaffID: previousStaff,
		OccurredAt:      s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Error("failed to publish appointment event", "type", typ, "appointment_id", a.ID, "error", err)
	}
}

func lookupErr(err error, notFound *apperr.Error, entity string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound
	}
	return fmt.Errorf("get %s: %w", entity, err)
}

// relatedErr reports a stored appointment whose directory record is gone.
// That is an integrity failure, not a missing appointment.
func relatedErr(id ids.ID, entity string, err error) error {
	return fmt.Errorf("appointment %s: get %s: %w", id, entity, err)
}

func storeErr(op string, err error) error {
	if errors.Is(err, repo.ErrOverlap) {
		return ErrOverlapRejected
	}
	return fmt.Errorf("%s: %w", op, err)
}
