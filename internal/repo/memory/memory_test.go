package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

func at(h int) time.Time {
	return time.Date(2024, time.January, 1, h, 0, 0, 0, time.UTC)
}

func newAppt(staff ids.ID, from, to int) *model.Appointment {
	return &model.Appointment{
		ID:         ids.New(),
		CustomerID: ids.New(),
		ClinicID:   ids.New(),
		ServiceID:  ids.New(),
		StaffID:    staff,
		StartTime:  at(from),
		EndTime:    at(to),
		Status:     model.StatusBooked,
	}
}

func TestAppointmentsFindOverlapping(t *testing.T) {
	ctx := context.Background()
	r := NewAppointments()
	staff := ids.New()

	a := newAppt(staff, 9, 10)
	b := newAppt(staff, 11, 12)
	other := newAppt(ids.New(), 9, 10)
	require.NoError(t, r.Create(ctx, a))
	require.NoError(t, r.Create(ctx, b))
	require.NoError(t, r.Create(ctx, other))

	found, err := r.FindOverlapping(ctx, staff, interval.MustNew(at(9), at(12)), nil)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, a.ID, found[0].ID)

	found, err = r.FindOverlapping(ctx, staff, interval.MustNew(at(9), at(10)), &a.ID)
	require.NoError(t, err)
	assert.Empty(t, found)

	_, err = r.TransitionStatus(ctx, b.ID, model.StatusBooked, model.StatusCanceled, at(8))
	require.NoError(t, err)
	found, err = r.FindOverlapping(ctx, staff, interval.MustNew(at(11), at(12)), nil)
	require.NoError(t, err)
	assert.Empty(t, found, "canceled appointments never block")
}

func TestAppointmentsCreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	r := NewAppointments()
	staff := ids.New()

	require.NoError(t, r.Create(ctx, newAppt(staff, 9, 10)))
	assert.ErrorIs(t, r.Create(ctx, newAppt(staff, 9, 11)), repo.ErrOverlap)
	assert.NoError(t, r.Create(ctx, newAppt(staff, 10, 11)))
}

func TestAppointmentsTransitionStatus(t *testing.T) {
	ctx := context.Background()
	r := NewAppointments()
	a := newAppt(ids.New(), 9, 10)
	require.NoError(t, r.Create(ctx, a))

	done, err := r.TransitionStatus(ctx, a.ID, model.StatusBooked, model.StatusCompleted, at(11))
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = r.TransitionStatus(ctx, a.ID, model.StatusBooked, model.StatusCanceled, at(12))
	assert.ErrorIs(t, err, repo.ErrPrecondition)

	_, err = r.TransitionStatus(ctx, ids.New(), model.StatusBooked, model.StatusCanceled, at(12))
	assert.ErrorIs(t, err, repo.ErrNotFound)

	_, err = r.UpdateSchedule(ctx, a.ID, a.StaffID, interval.MustNew(at(13), at(14)), at(12))
	assert.ErrorIs(t, err, repo.ErrPrecondition)
}

func TestAppointmentsListKeepsCallerLimit(t *testing.T) {
	ctx := context.Background()
	r := NewAppointments()
	staff := ids.New()

	for i := 0; i < repo.MaxListLimit+10; i++ {
		a := newAppt(staff, 8, 9)
		a.StartTime = a.StartTime.AddDate(0, 0, i)
		a.EndTime = a.EndTime.AddDate(0, 0, i)
		require.NoError(t, r.Create(ctx, a))
	}

	all, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, Limit: repo.MaxListLimit + 10})
	require.NoError(t, err)
	assert.Len(t, all, repo.MaxListLimit+10)

	unset, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff})
	require.NoError(t, err)
	assert.Len(t, unset, repo.DefaultListLimit)
}

func TestAppointmentsListPagination(t *testing.T) {
	ctx := context.Background()
	r := NewAppointments()
	staff := ids.New()

	for h := 8; h < 18; h++ {
		require.NoError(t, r.Create(ctx, newAppt(staff, h, h+1)))
	}
	require.NoError(t, r.Create(ctx, newAppt(ids.New(), 8, 9)))

	first, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, Limit: 4})
	require.NoError(t, err)
	second, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, Skip: 4, Limit: 4})
	require.NoError(t, err)
	last, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, Skip: 8, Limit: 4})
	require.NoError(t, err)

	require.Len(t, first, 4)
	require.Len(t, second, 4)
	require.Len(t, last, 2)
	assert.Equal(t, at(8), first[0].StartTime)
	assert.Equal(t, at(12), second[0].StartTime)
	assert.Equal(t, at(17), last[1].StartTime)

	from := at(15)
	tail, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, From: &from})
	require.NoError(t, err)
	assert.Len(t, tail, 3)

	empty, err := r.List(ctx, repo.AppointmentFilter{StaffID: &staff, Skip: 50})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestAvailabilityListByStaffWindow(t *testing.T) {
	ctx := context.Background()
	r := NewAvailability()
	staff := ids.New()

	weekly := &model.AvailabilitySlot{ID: ids.New(), StaffID: staff, Kind: model.SlotWeekly, Weekday: time.Monday, StartMinute: 540, EndMinute: 720}
	inWindow := &model.AvailabilitySlot{ID: ids.New(), StaffID: staff, Kind: model.SlotDated, StartTime: at(13), EndTime: at(15)}
	outside := &model.AvailabilitySlot{ID: ids.New(), StaffID: staff, Kind: model.SlotDated, StartTime: at(20), EndTime: at(22)}
	for _, s := range []*model.AvailabilitySlot{weekly, inWindow, outside} {
		require.NoError(t, r.Create(ctx, s))
	}

	window := interval.MustNew(at(12), at(16))
	got, err := r.ListByStaff(ctx, staff, &window)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, weekly.ID, got[0].ID)
	assert.Equal(t, inWindow.ID, got[1].ID)

	all, err := r.ListByStaff(ctx, staff, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, r.Delete(ctx, outside.ID))
	assert.ErrorIs(t, r.Delete(ctx, outside.ID), repo.ErrNotFound)
}

func TestDirectoryLookup(t *testing.T) {
	ctx := context.Background()
	d := NewDirectory()
	staff := model.Staff{ID: ids.New(), ClinicID: ids.New()}
	d.PutStaff(staff)

	got, err := d.Staff(ctx, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, staff.ClinicID, got.ClinicID)

	_, err = d.Clinic(ctx, ids.New())
	assert.ErrorIs(t, err, repo.ErrNotFound)
}
