package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/repo/memory"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
)

// 2024-01-01 is a Monday.
func monday(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func newService(t *testing.T) (Service, ids.ID) {
	t.Helper()
	store, dir := memory.NewStore()
	staffID := ids.New()
	dir.PutStaff(model.Staff{ID: staffID, UserID: ids.New(), ClinicID: ids.New()})
	return New(store.Availability, store.Directory, lock.NewMemoryLocker(time.Second), time.UTC), staffID
}

func weekly(day time.Weekday, fromMin, toMin int) SlotRequest {
	return SlotRequest{Kind: model.SlotWeekly, Weekday: day, StartMinute: fromMin, EndMinute: toMin}
}

func dated(start, end time.Time) SlotRequest {
	return SlotRequest{Kind: model.SlotDated, StartTime: start, EndTime: end}
}

func TestIsAvailableMonday(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 9*60, 17*60))
	require.NoError(t, err)

	tests := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{"inside", monday(10, 0), monday(11, 0), true},
		{"whole slot", monday(9, 0), monday(17, 0), true},
		{"starts early", monday(8, 30), monday(9, 30), false},
		{"ends late", monday(16, 30), monday(17, 30), false},
		{"tuesday", monday(10, 0).AddDate(0, 0, 1), monday(11, 0).AddDate(0, 0, 1), false},
		{"next monday", monday(10, 0).AddDate(0, 0, 7), monday(11, 0).AddDate(0, 0, 7), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.IsAvailable(ctx, staffID, interval.MustNew(tt.from, tt.to))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestIsAvailableDatedAndMidnight(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	overnight := interval.MustNew(monday(22, 0), monday(23, 0).Add(3*time.Hour))

	_, err := svc.IsAvailable(ctx, staffID, overnight)
	assert.ErrorIs(t, err, ErrCrossesMidnight)
	assert.Equal(t, apperr.InvalidInterval, apperr.KindOf(err))

	_, err = svc.CreateSlot(ctx, staffID, dated(monday(20, 0), monday(20, 0).Add(8*time.Hour)))
	require.NoError(t, err)

	ok, err := svc.IsAvailable(ctx, staffID, overnight)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.IsAvailable(ctx, staffID, interval.Interval{Start: monday(10, 0), End: monday(10, 0)})
	assert.ErrorIs(t, err, apperr.ErrInvalidInterval)
}

func TestAdjacentSlotsDoNotCombine(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 9*60, 12*60))
	require.NoError(t, err)
	_, err = svc.CreateSlot(ctx, staffID, weekly(time.Monday, 12*60, 17*60))
	require.NoError(t, err)

	ok, err := svc.IsAvailable(ctx, staffID, interval.MustNew(monday(11, 30), monday(12, 30)))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateSlotValidation(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	_, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 600, 600))
	assert.ErrorIs(t, err, apperr.ErrInvalidInterval)

	_, err = svc.CreateSlot(ctx, staffID, weekly(time.Monday, 0, model.MinutesPerDay+1))
	assert.ErrorIs(t, err, apperr.ErrInvalidInterval)

	_, err = svc.CreateSlot(ctx, staffID, dated(monday(12, 0), monday(11, 0)))
	assert.ErrorIs(t, err, apperr.ErrInvalidInterval)

	_, err = svc.CreateSlot(ctx, ids.New(), weekly(time.Monday, 60, 120))
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestSlotOverlapRejected(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	base, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 9*60, 12*60))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  SlotRequest
	}{
		{"weekly overlap", weekly(time.Monday, 11*60, 13*60)},
		{"dated touching weekly", dated(monday(11, 0), monday(14, 0))},
		{"dated on a later monday", dated(monday(8, 0).AddDate(0, 0, 14), monday(10, 0).AddDate(0, 0, 14))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateSlot(ctx, staffID, tt.req)
			require.ErrorIs(t, err, ErrSlotOverlap)
			assert.Equal(t, apperr.Conflict, apperr.KindOf(err))
			assert.Equal(t, base.ID.String(), apperr.RefOf(err))
		})
	}

	// Adjacent and other-weekday slots are fine.
	_, err = svc.CreateSlot(ctx, staffID, weekly(time.Monday, 12*60, 13*60))
	assert.NoError(t, err)
	_, err = svc.CreateSlot(ctx, staffID, weekly(time.Tuesday, 9*60, 12*60))
	assert.NoError(t, err)
	_, err = svc.CreateSlot(ctx, staffID, dated(monday(14, 0), monday(15, 0)))
	assert.NoError(t, err)
}

func TestUpdateSlot(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	a, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 9*60, 12*60))
	require.NoError(t, err)
	b, err := svc.CreateSlot(ctx, staffID, weekly(time.Monday, 13*60, 15*60))
	require.NoError(t, err)

	// Growing a slot into itself is not an overlap.
	updated, err := svc.UpdateSlot(ctx, a.ID, weekly(time.Monday, 8*60, 12*60))
	require.NoError(t, err)
	assert.Equal(t, 8*60, updated.StartMinute)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	_, err = svc.UpdateSlot(ctx, a.ID, weekly(time.Monday, 8*60, 14*60))
	require.ErrorIs(t, err, ErrSlotOverlap)
	assert.Equal(t, b.ID.String(), apperr.RefOf(err))

	// Switching kind clears the other kind's fields.
	updated, err = svc.UpdateSlot(ctx, a.ID, dated(monday(6, 0), monday(7, 0)))
	require.NoError(t, err)
	assert.Equal(t, model.SlotDated, updated.Kind)
	assert.Zero(t, updated.StartMinute)

	_, err = svc.UpdateSlot(ctx, ids.New(), weekly(time.Monday, 60, 120))
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestDeleteAndList(t *testing.T) {
	svc, staffID := newService(t)
	ctx := context.Background()

	w, err := svc.CreateSlot(ctx, staffID, weekly(time.Friday, 9*60, 12*60))
	require.NoError(t, err)
	d, err := svc.CreateSlot(ctx, staffID, dated(monday(9, 0), monday(12, 0)))
	require.NoError(t, err)

	window := interval.MustNew(monday(0, 0).AddDate(0, 0, 1), monday(0, 0).AddDate(0, 0, 2))
	slots, err := svc.ListSlotsByStaff(ctx, staffID, &window)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, w.ID, slots[0].ID)

	slots, err = svc.ListSlotsByStaff(ctx, staffID, nil)
	require.NoError(t, err)
	assert.Len(t, slots, 2)

	require.NoError(t, svc.DeleteSlot(ctx, d.ID))
	assert.ErrorIs(t, svc.DeleteSlot(ctx, d.ID), ErrSlotNotFound)

	_, err = svc.GetSlot(ctx, d.ID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestSlotsOverlapWeeklyDated(t *testing.T) {
	w := model.AvailabilitySlot{Kind: model.SlotWeekly, Weekday: time.Monday, StartMinute: 9 * 60, EndMinute: 10 * 60}

	long := model.AvailabilitySlot{Kind: model.SlotDated, StartTime: monday(11, 0).AddDate(0, 0, 1), EndTime: monday(11, 0).AddDate(0, 1, 0)}
	assert.True(t, model.SlotsOverlap(w, long, time.UTC))
	assert.True(t, model.SlotsOverlap(long, w, time.UTC))

	sunday := model.AvailabilitySlot{Kind: model.SlotDated, StartTime: monday(0, 0).Add(-24 * time.Hour), EndTime: monday(0, 0)}
	assert.False(t, model.SlotsOverlap(w, sunday, time.UTC))
}
