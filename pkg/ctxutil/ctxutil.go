package ctxutil

import (
	"context"

	"github.com/heartmarshall/expense-ledger/internal/domain"
)

type ctxKey string

const (
	actorKey     ctxKey = "actor"
	requestIDKey ctxKey = "request_id"
)

// WithActor stores the authenticated caller in the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromCtx extracts the authenticated caller from the context.
// Returns false if the value is missing, has a zero id, or has the wrong type.
func ActorFromCtx(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	if !ok || actor.ID == 0 {
		return domain.Actor{}, false
	}
	return actor, true
}

// UserIDFromCtx returns the id of the authenticated caller, or 0 and false.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	actor, ok := ActorFromCtx(ctx)
	return actor.ID, ok
}

// WithRequestID stores the request ID in the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromCtx extracts the request ID from the context.
// Returns an empty string if absent.
func RequestIDFromCtx(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
