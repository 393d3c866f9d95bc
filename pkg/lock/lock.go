// Package lock serializes check-then-write sequences per key. Booking
// operations take the lock of the staff member whose calendar they touch,
// so two writers can never both pass the conflict check for one staff.
// Waiting is bounded; a caller that cannot acquire in time, or whose context
// ends while waiting, gets ErrBusy.
package lock

import (
	"context"
	"time"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
)

const DefaultWaitTimeout = 3 * time.Second

var ErrBusy = apperr.NewEntity(apperr.Busy, "lock", "resource is busy, retry later")

// Locker runs fn while holding the lock for key. fn receives a context that
// is canceled no earlier than the caller's.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// StaffKey is the lock key guarding one staff member's calendar.
func StaffKey(staffID ids.ID) string {
	return "lock:staff:" + staffID.String()
}

// WithStaffLock is WithLock on StaffKey(staffID).
func WithStaffLock(ctx context.Context, l Locker, staffID ids.ID, fn func(ctx context.Context) error) error {
	return l.WithLock(ctx, StaffKey(staffID), fn)
}

// Observer receives lock wait durations; acquired is false on timeout.
type Observer func(key string, waited time.Duration, acquired bool)
