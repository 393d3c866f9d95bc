package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/pkg/apperr"
)

// RetryAfterSeconds is sent with 503 responses when a staff calendar is locked.
const RetryAfterSeconds = "1"

func ok(c fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"data": data})
}

func created(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": data})
}

func noContent(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func internalError(c fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

var kindStatus = map[apperr.Kind]int{
	apperr.InvalidInterval:     fiber.StatusBadRequest,
	apperr.InvalidReference:    fiber.StatusBadRequest,
	apperr.NotFound:            fiber.StatusNotFound,
	apperr.Conflict:            fiber.StatusConflict,
	apperr.OutsideAvailability: fiber.StatusUnprocessableEntity,
	apperr.InvalidTransition:   fiber.StatusConflict,
	apperr.Busy:                fiber.StatusServiceUnavailable,
	apperr.PermissionDenied:    fiber.StatusForbidden,
}

// StatusFor maps an error kind to its HTTP status; unknown kinds are 500.
func StatusFor(kind apperr.Kind) int {
	if s, ok := kindStatus[kind]; ok {
		return s
	}
	return fiber.StatusInternalServerError
}

// fail writes the response for a service error. Domain errors carry their
// kind and, when known, the id of the record that caused them.
func fail(c fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)
	if status == fiber.StatusInternalServerError {
		slog.ErrorContext(c.Context(), "request failed", "method", c.Method(), "path", c.Path(), "err", err)
		return internalError(c)
	}
	if kind == apperr.Busy {
		c.Set(fiber.HeaderRetryAfter, RetryAfterSeconds)
	}

	body := fiber.Map{"error": err.Error(), "kind": kind.String()}
	if ref := apperr.RefOf(err); ref != "" {
		body["ref_id"] = ref
	}
	return c.Status(status).JSON(body)
}
