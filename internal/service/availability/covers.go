package availability

import (
	"time"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

// Covers reports whether any of slots admits iv on its own. Slots do not
// combine: an interval straddling two adjacent slots is not covered.
func Covers(slots []model.AvailabilitySlot, iv interval.Interval, loc *time.Location) bool {
	for _, s := range slots {
		if s.Covers(iv, loc) {
			return true
		}
	}
	return false
}
