package http

import (
	"net/http"
	"strings"

	"github.com/tasmanlabs/orgauth/internal/auth/service"
	"github.com/tasmanlabs/orgauth/pkg/httpx"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"
)

// AuthnMiddleware verifies the bearer access token and resolves its subject
// to a live account. The request context gains the caller's identity; a
// token whose account has since been deleted is rejected.
func AuthnMiddleware(access *jwtx.Codec, sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized,
					"invalid_token", "missing bearer token")
				return
			}

			claims, err := access.Verify(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized,
					"invalid_token", "token is invalid or expired")
				return
			}

			user, err := sessions.ValidateByClaims(r.Context(), claims)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized,
					"invalid_token", "token subject is not a valid account")
				return
			}

			ctx := httpx.WithAuthContext(r.Context(),
				user.ID, user.Email, user.AccessLevel.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) <= len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(auth[len(prefix):]), true
}
