package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesKind(t *testing.T) {
	apptNotFound := NewEntity(NotFound, "appointment", "appointment not found")
	staffNotFound := NewEntity(NotFound, "staff", "staff not found")

	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"generic sentinel matches entity error", apptNotFound, ErrNotFound, true},
		{"entity sentinel matches itself", apptNotFound, apptNotFound, true},
		{"different entity does not match", staffNotFound, apptNotFound, false},
		{"same entity other sentinel does not match", NewEntity(NotFound, "appointment", "appointment archived"), apptNotFound, false},
		{"ref copy matches its sentinel", apptNotFound.WithRef("x"), apptNotFound, true},
		{"different kind does not match", apptNotFound, ErrConflict, false},
		{"wrapped error still matches", fmt.Errorf("get: %w", apptNotFound), ErrNotFound, true},
		{"plain error does not match", errors.New("boom"), ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestWithRefKeepsSentinelIntact(t *testing.T) {
	err := ErrConflict.WithRef("abc")

	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "abc", RefOf(err))
	assert.Empty(t, ErrConflict.RefID)
	assert.Contains(t, err.Error(), "ref abc")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Busy, KindOf(fmt.Errorf("lock: %w", ErrBusy)))
	assert.Equal(t, Internal, KindOf(errors.New("db down")))
	assert.Equal(t, "outside_availability", OutsideAvailability.String())
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("unique violation")
	err := ErrConflict.Wrap(cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConflict)
}
