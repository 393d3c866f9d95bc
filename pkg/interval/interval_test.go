package interval

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

var base = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return time.Date(2024, time.January, 1, h, m, 0, 0, time.UTC)
}

func TestNew(t *testing.T) {
	_, err := New(at(10, 0), at(10, 0))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInterval))

	_, err = New(at(11, 0), at(10, 0))
	assert.True(t, errors.Is(err, apperr.ErrInvalidInterval))

	iv, err := New(at(10, 0), at(10, 30))
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, iv.Duration())
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", MustNew(at(9, 0), at(10, 0)), MustNew(at(9, 0), at(10, 0)), true},
		{"adjacent after", MustNew(at(9, 0), at(10, 0)), MustNew(at(10, 0), at(11, 0)), false},
		{"adjacent before", MustNew(at(10, 0), at(11, 0)), MustNew(at(9, 0), at(10, 0)), false},
		{"partial start", MustNew(at(9, 0), at(10, 0)), MustNew(at(9, 30), at(10, 30)), true},
		{"partial end", MustNew(at(9, 30), at(10, 30)), MustNew(at(9, 0), at(10, 0)), true},
		{"inner", MustNew(at(9, 0), at(12, 0)), MustNew(at(10, 0), at(11, 0)), true},
		{"disjoint", MustNew(at(9, 0), at(10, 0)), MustNew(at(11, 0), at(12, 0)), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

// legacyOverlaps is the three-clause formulation stored queries used to
// express: start inside, end inside, or enclosing.
func legacyOverlaps(existing, proposed Interval) bool {
	startInside := !existing.Start.After(proposed.Start) && existing.End.After(proposed.Start)
	endInside := existing.Start.Before(proposed.End) && !existing.End.Before(proposed.End)
	enclosing := !existing.Start.Before(proposed.Start) && !existing.End.After(proposed.End)
	return startInside || endInside || enclosing
}

func TestOverlapsMatchesLegacyThreeClauseQuery(t *testing.T) {
	// Every ordering of four endpoints over a small grid, including ties.
	points := make([]time.Time, 6)
	for i := range points {
		points[i] = base.Add(time.Duration(i) * 15 * time.Minute)
	}

	checked := 0
	for _, as := range points {
		for _, ae := range points {
			if !as.Before(ae) {
				continue
			}
			for _, bs := range points {
				for _, be := range points {
					if !bs.Before(be) {
						continue
					}
					a := MustNew(as, ae)
					b := MustNew(bs, be)
					require.Equal(t, legacyOverlaps(a, b), Overlaps(a, b), "a=%s b=%s", a, b)
					checked++
				}
			}
		}
	}
	assert.Equal(t, 225, checked)
}

func TestOverlapsReflexive(t *testing.T) {
	iv := MustNew(at(9, 0), at(9, 1))
	assert.True(t, iv.Overlaps(iv))
}

func TestContains(t *testing.T) {
	outer := MustNew(at(9, 0), at(17, 0))

	assert.True(t, outer.Contains(MustNew(at(9, 0), at(17, 0))))
	assert.True(t, outer.Contains(MustNew(at(10, 0), at(11, 0))))
	assert.False(t, outer.Contains(MustNew(at(8, 30), at(9, 30))))
	assert.False(t, outer.Contains(MustNew(at(16, 30), at(17, 30))))
}

func TestCrossesMidnight(t *testing.T) {
	loc := time.UTC
	endsAtMidnight := MustNew(at(23, 0), time.Date(2024, time.January, 2, 0, 0, 0, 0, loc))
	crosses := MustNew(at(23, 0), time.Date(2024, time.January, 2, 0, 30, 0, 0, loc))

	assert.False(t, endsAtMidnight.CrossesMidnight(loc))
	assert.True(t, crosses.CrossesMidnight(loc))
	assert.False(t, MustNew(at(9, 0), at(10, 0)).CrossesMidnight(loc))
}

func TestAtMinute(t *testing.T) {
	assert.Equal(t, at(9, 30), AtMinute(base, 570, time.UTC))
	assert.Equal(t, time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), AtMinute(base, 1440, time.UTC))
}
