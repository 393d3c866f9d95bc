package scheduling

import (
	"time"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

const DefaultMaxWindow = 31 * 24 * time.Hour

var (
	ErrOverlap             = apperr.NewEntity(apperr.Conflict, "appointment", "staff member already has an appointment in this interval")
	ErrOutsideAvailability = apperr.NewEntity(apperr.OutsideAvailability, "appointment", "interval is outside the staff member's availability")
	ErrWindowTooLarge      = apperr.NewEntity(apperr.InvalidInterval, "free_times", "search window is too large")
)
