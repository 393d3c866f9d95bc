package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/clinicbook/pkg/authorize"
)

// RequirePermission rejects callers whose role has no grant for action on
// resource in any clinic. Ownership of the concrete record is checked later
// by the service. A nil auth lets every request through.
func RequirePermission(auth authorize.IAuthorization, resource authorize.Resource, action authorize.Action) fiber.Handler {
	return func(c fiber.Ctx) error {
		if auth == nil {
			return c.Next()
		}

		subject, err := authorize.SubjectFromContext(c.Context())
		if err != nil {
			return fiber.ErrUnauthorized
		}

		if err := auth.MustEnforce(c.Context(), subject, authorize.DomainSys, resource, action); err != nil {
			if errors.Is(err, authorize.ErrForbidden) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden", "kind": "permission_denied"})
			}
			return err
		}

		return c.Next()
	}
}
