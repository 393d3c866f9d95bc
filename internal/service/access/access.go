// Package access decides whether the caller in the context may act on a
// booking record. Role grants come from the casbin policies in
// pkg/authorize; ownership (the clinic a manager owns, the calendar a staff
// member runs, the customer a user is) is checked here against the
// directory.
//
// A nil *Guard allows everything. Services built without one are trusted
// callers, e.g. tests and internal jobs.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/reqctx"
)

var (
	ErrNoActor  = apperr.NewEntity(apperr.PermissionDenied, "access", "no authenticated caller")
	ErrNotOwner = apperr.NewEntity(apperr.PermissionDenied, "access", "caller does not own this resource")
)

type Guard struct {
	auth authorize.IAuthorization
	dir  repo.Directory
}

// NewGuard builds a guard. auth may be nil, which skips role policies and
// keeps the ownership rules.
func NewGuard(auth authorize.IAuthorization, dir repo.Directory) *Guard {
	return &Guard{auth: auth, dir: dir}
}

// Appointment authorizes action on a (possibly not yet stored) appointment.
// Only ClinicID, StaffID and CustomerID are consulted.
func (g *Guard) Appointment(ctx context.Context, action authorize.Action, a *model.Appointment) error {
	if g == nil {
		return nil
	}
	actor, err := g.enforce(ctx, authorize.ResourceAppointment, action, a.ClinicID)
	if err != nil {
		return err
	}

	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleClinicManager:
		return g.ownsClinic(ctx, actor, a.ClinicID)
	case model.RoleStaff:
		return g.isStaff(ctx, actor, a.StaffID)
	case model.RoleCustomer:
		return g.isCustomer(ctx, actor, a.CustomerID)
	}
	return ErrNotOwner
}

// StaffCalendar authorizes action on a staff member's calendar: their slots
// or their appointment list. Reading slots only needs the role grant, since
// customers look at availability before booking.
func (g *Guard) StaffCalendar(ctx context.Context, resource authorize.Resource, action authorize.Action, staffID ids.ID) error {
	if g == nil {
		return nil
	}
	staff, err := g.staff(ctx, staffID)
	if err != nil {
		return err
	}
	actor, err := g.enforce(ctx, resource, action, staff.ClinicID)
	if err != nil {
		return err
	}

	if resource == authorize.ResourceAvailabilitySlot && (action == authorize.ActionRead || action == authorize.ActionList) {
		return nil
	}

	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleClinicManager:
		return g.ownsClinic(ctx, actor, staff.ClinicID)
	case model.RoleStaff:
		if staff.UserID == actor.UserID {
			return nil
		}
	}
	return ErrNotOwner
}

// Clinic authorizes listing every appointment of a clinic.
func (g *Guard) Clinic(ctx context.Context, clinicID ids.ID) error {
	if g == nil {
		return nil
	}
	actor, err := g.enforce(ctx, authorize.ResourceAppointment, authorize.ActionList, clinicID)
	if err != nil {
		return err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleClinicManager:
		return g.ownsClinic(ctx, actor, clinicID)
	}
	return ErrNotOwner
}

// Customer authorizes listing one customer's appointments.
func (g *Guard) Customer(ctx context.Context, customerID ids.ID) error {
	if g == nil {
		return nil
	}
	actor, err := g.enforce(ctx, authorize.ResourceAppointment, authorize.ActionList, ids.Nil)
	if err != nil {
		return err
	}
	switch actor.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleCustomer:
		return g.isCustomer(ctx, actor, customerID)
	}
	return ErrNotOwner
}

// Search authorizes a filtered appointment listing. Admins may search
// everything; any other role must pin the filter it owns: managers their
// clinic, staff their own calendar, customers themselves.
func (g *Guard) Search(ctx context.Context, clinicID, staffID, customerID *ids.ID) error {
	if g == nil {
		return nil
	}
	domainClinic := ids.Nil
	if clinicID != nil {
		domainClinic = *clinicID
	}
	actor, err := g.enforce(ctx, authorize.ResourceAppointment, authorize.ActionList, domainClinic)
	if err != nil {
		return err
	}

	switch {
	case actor.Role == model.RoleAdmin:
		return nil
	case actor.Role == model.RoleClinicManager && clinicID != nil:
		return g.ownsClinic(ctx, actor, *clinicID)
	case actor.Role == model.RoleStaff && staffID != nil:
		return g.isStaff(ctx, actor, *staffID)
	case actor.Role == model.RoleCustomer && customerID != nil:
		return g.isCustomer(ctx, actor, *customerID)
	}
	return ErrNotOwner
}

// enforce resolves the actor and applies the role policy inside the
// clinic's domain (sys when the clinic is unknown).
func (g *Guard) enforce(ctx context.Context, resource authorize.Resource, action authorize.Action, clinicID ids.ID) (reqctx.Actor, error) {
	actor, ok := reqctx.ActorFromContext(ctx)
	if !ok {
		return reqctx.Actor{}, ErrNoActor
	}
	if g.auth == nil {
		return actor, nil
	}

	domain := authorize.DomainSys
	if !clinicID.IsZero() {
		domain = authorize.ClinicDomain(clinicID.String())
	}
	subject := authorize.Subject(authorize.UserRoleToRBACRole[actor.Role])
	if err := g.auth.MustEnforce(ctx, subject, domain, resource, action); err != nil {
		if errors.Is(err, authorize.ErrForbidden) {
			return actor, err
		}
		return actor, fmt.Errorf("enforce %s %s: %w", resource, action, err)
	}
	return actor, nil
}

func (g *Guard) ownsClinic(ctx context.Context, actor reqctx.Actor, clinicID ids.ID) error {
	c, err := g.dir.Clinic(ctx, clinicID)
	if err != nil {
		return lookupErr("clinic", err)
	}
	if c.OwnerID != actor.UserID {
		return ErrNotOwner
	}
	return nil
}

func (g *Guard) isStaff(ctx context.Context, actor reqctx.Actor, staffID ids.ID) error {
	s, err := g.staff(ctx, staffID)
	if err != nil {
		return err
	}
	if s.UserID != actor.UserID {
		return ErrNotOwner
	}
	return nil
}

func (g *Guard) isCustomer(ctx context.Context, actor reqctx.Actor, customerID ids.ID) error {
	c, err := g.dir.Customer(ctx, customerID)
	if err != nil {
		return lookupErr("customer", err)
	}
	if c.UserID != actor.UserID {
		return ErrNotOwner
	}
	return nil
}

func (g *Guard) staff(ctx context.Context, staffID ids.ID) (*model.Staff, error) {
	s, err := g.dir.Staff(ctx, staffID)
	if err != nil {
		return nil, lookupErr("staff", err)
	}
	return s, nil
}

func lookupErr(entity string, err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.NewEntity(apperr.NotFound, entity, entity+" not found")
	}
	return fmt.Errorf("get %s: %w", entity, err)
}
