package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/internal/service/availability"
	"github.com/Alijeyrad/clinicbook/internal/service/scheduling"
)

type AvailabilityHandler struct {
	svc      availability.Service
	detector *scheduling.Detector
	step     time.Duration
}

// NewAvailabilityHandler serves slot management and free-time search. step is
// the default spacing of free-time candidates.
func NewAvailabilityHandler(svc availability.Service, detector *scheduling.Detector, step time.Duration) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc, detector: detector, step: step}
}

type slotBody struct {
	Kind        model.SlotKind `json:"kind"`
	Weekday     time.Weekday   `json:"weekday"`
	StartMinute int            `json:"start_minute"`
	EndMinute   int            `json:"end_minute"`
	StartTime   time.Time      `json:"start_time"`
	EndTime     time.Time      `json:"end_time"`
}

func (b slotBody) request() availability.SlotRequest {
	return availability.SlotRequest{
		Kind:        b.Kind,
		Weekday:     b.Weekday,
		StartMinute: b.StartMinute,
		EndMinute:   b.EndMinute,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
	}
}

// POST /staff/:id/slots
func (h *AvailabilityHandler) CreateSlot(c fiber.Ctx) error {
	staffID, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid staff id")
	}
	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	slot, err := h.svc.CreateSlot(c.Context(), staffID, body.request())
	if err != nil {
		return fail(c, err)
	}
	return created(c, slot)
}

// GET /staff/:id/slots?from=&to=
func (h *AvailabilityHandler) ListSlots(c fiber.Ctx) error {
	staffID, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid staff id")
	}
	var q windowQuery
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	window, msg := q.window()
	if msg != "" {
		return badRequest(c, msg)
	}

	slots, err := h.svc.ListSlotsByStaff(c.Context(), staffID, window)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, slots)
}

// GET /slots/:id
func (h *AvailabilityHandler) GetSlot(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}
	slot, err := h.svc.GetSlot(c.Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, slot)
}

// PATCH /slots/:id
func (h *AvailabilityHandler) UpdateSlot(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}
	var body slotBody
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	slot, err := h.svc.UpdateSlot(c.Context(), id, body.request())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, slot)
}

// DELETE /slots/:id
func (h *AvailabilityHandler) DeleteSlot(c fiber.Ctx) error {
	id, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid slot id")
	}
	if err := h.svc.DeleteSlot(c.Context(), id); err != nil {
		return fail(c, err)
	}
	return noContent(c)
}

// GET /staff/:id/free-times?from=&to=&duration_minutes=&step_minutes=
func (h *AvailabilityHandler) FreeTimes(c fiber.Ctx) error {
	staffID, valid := pathID(c, "id")
	if !valid {
		return badRequest(c, "invalid staff id")
	}
	var q struct {
		From            string `query:"from"`
		To              string `query:"to"`
		DurationMinutes int    `query:"duration_minutes"`
		StepMinutes     int    `query:"step_minutes"`
	}
	if err := c.Bind().Query(&q); err != nil {
		return badRequest(c, "invalid query")
	}
	window, msg := windowQuery{From: q.From, To: q.To}.window()
	if msg != "" {
		return badRequest(c, msg)
	}
	if window == nil {
		return badRequest(c, "from and to are required")
	}
	if q.DurationMinutes <= 0 {
		return badRequest(c, "duration_minutes must be positive")
	}
	step := h.step
	if q.StepMinutes > 0 {
		step = time.Duration(q.StepMinutes) * time.Minute
	}

	times, err := h.detector.FreeTimes(c.Context(), staffID, *window, time.Duration(q.DurationMinutes)*time.Minute, step)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"start_times": times, "timezone": h.svc.Location().String()})
}
