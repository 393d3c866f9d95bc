package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/internal/api/http/handler"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
)

func (r *Router) registerAvailabilityRoutes(
	api fiber.Router,
	h *handler.AvailabilityHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	perm := func(act authorize.Action) fiber.Handler {
		return requirePerm(authorize.ResourceAvailabilitySlot, act)
	}

	staff := api.Group("/staff/:id")
	staff.Post("/slots", perm(authorize.ActionCreate), h.CreateSlot)
	staff.Get("/slots", perm(authorize.ActionList), h.ListSlots)
	staff.Get("/free-times", perm(authorize.ActionRead), h.FreeTimes)

	api.Get("/slots/:id", perm(authorize.ActionRead), h.GetSlot)
	api.Patch("/slots/:id", perm(authorize.ActionUpdate), h.UpdateSlot)
	api.Delete("/slots/:id", perm(authorize.ActionDelete), h.DeleteSlot)
}
