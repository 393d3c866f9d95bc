package reqctx

import (
	"context"

	"github.com/Alijeyrad/clinicbook/internal/model"
	"github.com/Alijeyrad/clinicbook/pkg/ids"
)

// Actor is the caller on whose behalf an operation runs.
type Actor struct {
	UserID ids.ID
	Role   model.Role
}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

// ActorFromContext prefers an explicit actor and falls back to unexpired
// claims. Claims with an unknown role or a nil user yield no actor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if a, ok := ctx.Value(keyActor).(Actor); ok {
		return a, !a.UserID.IsZero() && a.Role.Valid()
	}

	claims := ClaimsFromContext(ctx)
	if claims == nil || claims.IsExpired() {
		return Actor{}, false
	}
	a := Actor{UserID: ids.ID(claims.GetUserID()), Role: model.Role(claims.GetRole())}
	return a, !a.UserID.IsZero() && a.Role.Valid()
}
