package httpx

import "net/http"

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h in order: the first middleware listed is
// the outermost and runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequireAccessLevel gates a handler on the verified credential's access
// level. The level is an explicit argument from the auth context, not a
// dynamically constructed guard, so the capability check reads at the
// route registration site.
func RequireAccessLevel(required string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if AccessLevelFromCtx(r.Context()) != required {
				WriteError(w, http.StatusForbidden, "forbidden", "insufficient access level")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
