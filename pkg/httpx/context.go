package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"
	CtxKeyEmail       ctxKey = "email"
	CtxKeyAccessLevel ctxKey = "access_level"
)

// WithAuthContext records the verified caller identity on the context.
// Populated by the authentication middleware after the access token and the
// backing credential have both been checked.
func WithAuthContext(ctx context.Context, userID, email, accessLevel string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, userID)
	ctx = context.WithValue(ctx, CtxKeyEmail, email)
	ctx = context.WithValue(ctx, CtxKeyAccessLevel, accessLevel)
	return ctx
}

// UserIDFromCtx returns the authenticated user id, or "" if the request was
// not authenticated.
func UserIDFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyUserID).(string); ok {
		return v
	}
	return ""
}

// EmailFromCtx returns the authenticated user's email.
func EmailFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyEmail).(string); ok {
		return v
	}
	return ""
}

// AccessLevelFromCtx returns the authenticated user's access level.
func AccessLevelFromCtx(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyAccessLevel).(string); ok {
		return v
	}
	return ""
}
