// Package reqctx carries request-scoped values through context.Context:
// request metadata set by the HTTP middleware, the verified token claims,
// and the acting caller that authorization checks run against.
//
// All context keys are private unexported types to prevent collisions.
//
//	ctx = reqctx.WithClaims(ctx, claims)
//	actor, ok := reqctx.ActorFromContext(ctx)
//
// Services never read the HTTP request directly; a non-HTTP caller (a
// worker, a test) sets the actor with WithActor.
package reqctx
