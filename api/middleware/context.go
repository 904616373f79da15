package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/Just-andreew/aquagen-farm/pkg/enums"
	"github.com/Just-andreew/aquagen-farm/pkg/types"
)

type contextKey string

const (
	ctxUserID   contextKey = "user_id"
	ctxUserName contextKey = "user_name"
	ctxRole     contextKey = "actor_role"
)

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

func UserNameFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserName).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the authenticated identity into the context.
func WithActor(ctx context.Context, userID, name, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, userID)
	ctx = context.WithValue(ctx, ctxUserName, name)
	return context.WithValue(ctx, ctxRole, role)
}

// ActorFromContext rebuilds the audit actor from the request context. The
// zero Actor means the request was not authenticated.
func ActorFromContext(ctx context.Context) types.Actor {
	id, err := uuid.Parse(UserIDFromContext(ctx))
	if err != nil {
		return types.Actor{}
	}
	return types.Actor{
		UserID: id,
		Name:   UserNameFromContext(ctx),
		Role:   enums.UserRole(RoleFromContext(ctx)),
	}
}
