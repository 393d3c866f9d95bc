package router

import (
	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/internal/api/http/handler"
	"github.com/Alijeyrad/clinicbook/pkg/authorize"
)

func (r *Router) registerAppointmentRoutes(
	api fiber.Router,
	ah *handler.AppointmentHandler,
	requirePerm func(authorize.Resource, authorize.Action) fiber.Handler,
) {
	perm := func(act authorize.Action) fiber.Handler {
		return requirePerm(authorize.ResourceAppointment, act)
	}

	appts := api.Group("/appointments")
	appts.Post("/", perm(authorize.ActionCreate), ah.Create)
	appts.Get("/", perm(authorize.ActionList), ah.Search)

	a := appts.Group("/:id")
	a.Get("/", perm(authorize.ActionRead), ah.Get)
	a.Get("/detail", perm(authorize.ActionRead), ah.GetDetailed)
	a.Patch("/reschedule", perm(authorize.ActionUpdate), ah.Reschedule)
	a.Patch("/reassign", perm(authorize.ActionUpdate), ah.Reassign)
	a.Patch("/cancel", perm(authorize.ActionCancel), ah.Cancel)
	a.Patch("/complete", perm(authorize.ActionComplete), ah.Complete)

	api.Get("/staff/:id/appointments", perm(authorize.ActionList), ah.ListByStaff)
	api.Get("/customers/:id/appointments", perm(authorize.ActionList), ah.ListByCustomer)
	api.Get("/clinics/:id/appointments", perm(authorize.ActionList), ah.ListByClinic)
}
