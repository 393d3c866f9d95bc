package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo/memory"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/reqctx"
)

type fixture struct {
	guard *Guard

	admin, manager, otherManager, staffUser, otherStaffUser, customerUser, otherCustomerUser ids.ID

	clinic   model.Clinic
	staff    model.Staff
	customer model.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		admin:             ids.New(),
		manager:           ids.New(),
		otherManager:      ids.New(),
		staffUser:         ids.New(),
		otherStaffUser:    ids.New(),
		customerUser:      ids.New(),
		otherCustomerUser: ids.New(),
	}

	dir := memory.NewDirectory()
	f.clinic = model.Clinic{ID: ids.New(), OwnerID: f.manager, Name: "North"}
	f.staff = model.Staff{ID: ids.New(), UserID: f.staffUser, ClinicID: f.clinic.ID}
	f.customer = model.Customer{ID: ids.New(), UserID: f.customerUser}
	dir.PutClinic(f.clinic)
	dir.PutStaff(f.staff)
	dir.PutCustomer(f.customer)

	auth, err := authorize.NewAuthorizationFromConfig(context.Background(), authorize.Config{SuperadminBypass: true}, nil)
	require.NoError(t, err)

	f.guard = NewGuard(auth, dir)
	return f
}

func as(userID ids.ID, role model.Role) context.Context {
	return reqctx.WithActor(context.Background(), reqctx.Actor{UserID: userID, Role: role})
}

func (f *fixture) appointment() *model.Appointment {
	return &model.Appointment{ClinicID: f.clinic.ID, StaffID: f.staff.ID, CustomerID: f.customer.ID}
}

func TestNilGuardAllows(t *testing.T) {
	var g *Guard
	assert.NoError(t, g.Appointment(context.Background(), authorize.ActionCancel, &model.Appointment{}))
	assert.NoError(t, g.Clinic(context.Background(), ids.New()))
}

func TestAppointmentAccess(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		ctx    context.Context
		action authorize.Action
		want   error
	}{
		{"no actor", context.Background(), authorize.ActionRead, ErrNoActor},
		{"admin", as(f.admin, model.RoleAdmin), authorize.ActionComplete, nil},
		{"owning manager", as(f.manager, model.RoleClinicManager), authorize.ActionCancel, nil},
		{"foreign manager", as(f.otherManager, model.RoleClinicManager), authorize.ActionCancel, ErrNotOwner},
		{"assigned staff completes", as(f.staffUser, model.RoleStaff), authorize.ActionComplete, nil},
		{"other staff", as(f.otherStaffUser, model.RoleStaff), authorize.ActionRead, ErrNotOwner},
		{"customer cancels own", as(f.customerUser, model.RoleCustomer), authorize.ActionCancel, nil},
		{"customer cannot complete", as(f.customerUser, model.RoleCustomer), authorize.ActionComplete, authorize.ErrForbidden},
		{"other customer", as(f.otherCustomerUser, model.RoleCustomer), authorize.ActionRead, ErrNotOwner},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.guard.Appointment(tt.ctx, tt.action, f.appointment())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.PermissionDenied, apperr.KindOf(err))
		})
	}
}

func TestStaffCalendarAccess(t *testing.T) {
	f := newFixture(t)
	slot := authorize.ResourceAvailabilitySlot

	assert.NoError(t, f.guard.StaffCalendar(as(f.staffUser, model.RoleStaff), slot, authorize.ActionCreate, f.staff.ID))
	assert.NoError(t, f.guard.StaffCalendar(as(f.manager, model.RoleClinicManager), slot, authorize.ActionDelete, f.staff.ID))
	assert.NoError(t, f.guard.StaffCalendar(as(f.customerUser, model.RoleCustomer), slot, authorize.ActionList, f.staff.ID))

	assert.ErrorIs(t, f.guard.StaffCalendar(as(f.otherStaffUser, model.RoleStaff), slot, authorize.ActionUpdate, f.staff.ID), ErrNotOwner)
	assert.ErrorIs(t, f.guard.StaffCalendar(as(f.customerUser, model.RoleCustomer), slot, authorize.ActionCreate, f.staff.ID), authorize.ErrForbidden)
	assert.ErrorIs(t, f.guard.StaffCalendar(as(f.customerUser, model.RoleCustomer), authorize.ResourceAppointment, authorize.ActionList, f.staff.ID), ErrNotOwner)

	err := f.guard.StaffCalendar(as(f.admin, model.RoleAdmin), slot, authorize.ActionRead, ids.New())
	assert.Equal(t, apperr.NotFound, apperr.KindOf(err))
}

func TestListScopes(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.guard.Clinic(as(f.manager, model.RoleClinicManager), f.clinic.ID))
	assert.ErrorIs(t, f.guard.Clinic(as(f.otherManager, model.RoleClinicManager), f.clinic.ID), ErrNotOwner)
	assert.ErrorIs(t, f.guard.Clinic(as(f.staffUser, model.RoleStaff), f.clinic.ID), ErrNotOwner)

	assert.NoError(t, f.guard.Customer(as(f.customerUser, model.RoleCustomer), f.customer.ID))
	assert.NoError(t, f.guard.Customer(as(f.admin, model.RoleAdmin), f.customer.ID))
	assert.ErrorIs(t, f.guard.Customer(as(f.otherCustomerUser, model.RoleCustomer), f.customer.ID), ErrNotOwner)
}

func TestSearchAccess(t *testing.T) {
	f := newFixture(t)
	clinic, staff, customer := &f.clinic.ID, &f.staff.ID, &f.customer.ID

	tests := []struct {
		name                    string
		ctx                     context.Context
		clinic, staff, customer *ids.ID
		want                    error
	}{
		{"admin unfiltered", as(f.admin, model.RoleAdmin), nil, nil, nil, nil},
		{"manager pins own clinic", as(f.manager, model.RoleClinicManager), clinic, staff, nil, nil},
		{"manager unfiltered", as(f.manager, model.RoleClinicManager), nil, nil, nil, ErrNotOwner},
		{"foreign manager", as(f.otherManager, model.RoleClinicManager), clinic, nil, nil, ErrNotOwner},
		{"staff pins self", as(f.staffUser, model.RoleStaff), nil, staff, nil, nil},
		{"other staff", as(f.otherStaffUser, model.RoleStaff), nil, staff, nil, ErrNotOwner},
		{"customer pins self", as(f.customerUser, model.RoleCustomer), nil, nil, customer, nil},
		{"customer by clinic", as(f.customerUser, model.RoleCustomer), clinic, nil, nil, ErrNotOwner},
		{"no actor", context.Background(), nil, nil, nil, ErrNoActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.guard.Search(tt.ctx, tt.clinic, tt.staff, tt.customer)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
