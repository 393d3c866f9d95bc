package availability

import (
	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

var (
	ErrSlotNotFound  = apperr.NewEntity(apperr.NotFound, "availability_slot", "availability slot not found")
	ErrStaffNotFound = apperr.NewEntity(apperr.NotFound, "staff", "staff not found")
	ErrInvalidSlot   = model.ErrInvalidSlot
	ErrSlotOverlap   = apperr.NewEntity(apperr.Conflict, "availability_slot", "availability slot overlaps another slot of this staff")

	// ErrCrossesMidnight is returned by IsAvailable for an interval that
	// spans local midnight and is not inside any dated slot.
	ErrCrossesMidnight = apperr.NewEntity(apperr.InvalidInterval, "availability", "interval crosses midnight and no dated slot covers it")
)
