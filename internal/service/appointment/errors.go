package appointment

import (
	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/apperr"
	"github.com/Alijeyrad/clinicbook/pkg/lock"
)

var (
	ErrNotFound         = apperr.NewEntity(apperr.NotFound, "appointment", "appointment not found")
	ErrCustomerNotFound = apperr.NewEntity(apperr.NotFound, "customer", "customer not found")
	ErrClinicNotFound   = apperr.NewEntity(apperr.NotFound, "clinic", "clinic not found")
	ErrServiceNotFound  = apperr.NewEntity(apperr.NotFound, "service", "service not found")
	ErrStaffNotFound    = apperr.NewEntity(apperr.NotFound, "staff", "staff not found")

	ErrMissingReference      = apperr.NewEntity(apperr.InvalidReference, "appointment", "customer, clinic, service and staff are required")
	ErrStaffServiceMismatch  = apperr.NewEntity(apperr.InvalidReference, "staff", "staff member cannot provide this service")
	ErrStaffClinicMismatch   = apperr.NewEntity(apperr.InvalidReference, "staff", "staff member does not belong to this clinic")
	ErrServiceClinicMismatch = apperr.NewEntity(apperr.InvalidReference, "service", "service is not offered by this clinic")
	ErrInvalidStatusFilter   = apperr.NewEntity(apperr.InvalidReference, "appointment", "unknown status filter")

	ErrAlreadyCompleted = apperr.NewEntity(apperr.InvalidTransition, "appointment", "appointment is already completed")
	ErrAlreadyCanceled  = apperr.NewEntity(apperr.InvalidTransition, "appointment", "appointment is already canceled")

	// ErrOverlapRejected is returned when the store refuses an overlapping
	// write that got past the conflict check.
	ErrOverlapRejected = apperr.NewEntity(apperr.Conflict, "appointment", "staff member already has an appointment in this interval")

	// ErrMoved is returned after the appointment kept changing staff while
	// a reschedule waited for locks.
	ErrMoved = lock.ErrBusy
)

func terminalErr(s model.Status) error {
	if s == model.StatusCompleted {
		return ErrAlreadyCompleted
	}
	return ErrAlreadyCanceled
}
