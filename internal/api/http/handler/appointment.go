package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/service/appointment"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
	"github.com/Alijeyrad/clinicbook/pkg/interval"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

type timeRangeBody struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (b timeRangeBody) interval() (interval.Interval, error) {
	return interval.New(b.StartTime, b.EndTime)
}

// POST /appointments
func (h *AppointmentHandler) Create(c fiber.Ctx) error {
	var body struct {
		CustomerID ids.ID `json:"customer_id"`
		ClinicID   ids.ID `json:"clinic_id"`
		ServiceID  ids.ID `json:"service_id"`
		StaffID    ids.ID `json:"staff_id"`
		timeRangeBody
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	iv, err := body.interval()
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Create(c.Context(), appointment.CreateRequest{
		CustomerID: body.CustomerID,
		ClinicID:   body.ClinicID,
		ServiceID:  body.ServiceID,
		StaffID:    body.StaffID,
		Interval:   iv,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, appt)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	appt, err := h.svc.Get(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// GET /appointments/:id/detail
func (h *AppointmentHandler) GetDetailed(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	detail, err := h.svc.GetDetailed(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, detail)
}

// GET /appointments?customer_id=&staff_id=&clinic_id=&status=&from=&to=&skip=&limit=
func (h *AppointmentHandler) Search(c fiber.Ctx) error {
	var q searchQuery
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	f, msg := q.filter()
	if msg != "" {
		return badRequest(c, msg)
	}

	appts, err := h.svc.Search(c.Context(), f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appts)
}

// PATCH /appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	var body timeRangeBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	iv, err := body.interval()
	if err != nil {
		return fail(c, err)
	}

	appt, err := h.svc.Reschedule(c.Context(), id, iv)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// PATCH /appointments/:id/reassign
func (h *AppointmentHandler) Reassign(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	var body struct {
		StaffID ids.ID `json:"staff_id"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	appt, err := h.svc.Reassign(c.Context(), id, body.StaffID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// PATCH /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	appt, err := h.svc.Cancel(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// PATCH /appointments/:id/complete
func (h *AppointmentHandler) Complete(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid appointment id")
	}
	appt, err := h.svc.Complete(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appt)
}

// GET /staff/:id/appointments
func (h *AppointmentHandler) ListByStaff(c fiber.Ctx) error {
	return h.list(c, "invalid staff id", h.svc.ListByStaff)
}

// GET /customers/:id/appointments
func (h *AppointmentHandler) ListByCustomer(c fiber.Ctx) error {
	return h.list(c, "invalid customer id", h.svc.ListByCustomer)
}

// GET /clinics/:id/appointments
func (h *AppointmentHandler) ListByClinic(c fiber.Ctx) error {
	return h.list(c, "invalid clinic id", h.svc.ListByClinic)
}

func (h *AppointmentHandler) list(
	c fiber.Ctx,
	badID string,
	fetch func(context.Context, ids.ID, appointment.ListFilter) ([]model.Appointment, error),
) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, badID)
	}
	var q listQuery
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	f, msg := q.filter()
	if msg != "" {
		return badRequest(c, msg)
	}

	appts, err := fetch(c.Context(), id, f)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, appts)
}
