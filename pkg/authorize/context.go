package authorize

import (
	"context"
	"errors"

	"github.com/Alijeyrad/clinicbook/pkg/reqctx"
)

var ErrNoSubjectInContext = errors.New("no subject found in context")

// SubjectFromContext returns the policy subject of the acting caller: the
// RBAC role mapped from the caller's user role.
func SubjectFromContext(ctx context.Context) (Subject, error) {
	actor, ok := reqctx.ActorFromContext(ctx)
	if !ok {
		return "", ErrNoSubjectInContext
	}
	role, ok := UserRoleToRBACRole[actor.Role]
	if !ok {
		return "", ErrNoSubjectInContext
	}
	return Subject(role), nil
}

// DomainFromResource returns clinic:<id> when a clinic is known, else sys.
func DomainFromResource(clinicID string) Domain {
	if clinicID != "" {
		return ClinicDomain(clinicID)
	}
	return DomainSys
}
