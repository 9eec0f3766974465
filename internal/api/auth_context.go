package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gdgscriet/studyjam-server/internal/auth"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/remote"
	"github.com/gdgscriet/studyjam-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	sessionKey    ctxKey = "session"
	sessionErrKey ctxKey = "sessionErr"
	clientIPKey   ctxKey = "clientIP"
)

// bearerToken extracts the token from an Authorization header value.
func bearerToken(header string) string {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// authMiddleware verifies a Bearer session token when present and stores the claims
// in context, along with the remote API token for outbound calls. Requests without
// a valid token continue; admin handlers reject them.
func authMiddleware(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			claims, err := authService.Verify(token)
			if err != nil {
				ctx = context.WithValue(ctx, sessionErrKey, err)
			} else {
				ctx = context.WithValue(ctx, sessionKey, claims)
				ctx = remote.WithAccessToken(ctx, claims.RemoteToken)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requireAdmin returns the session claims or the reason there are none.
func requireAdmin(ctx context.Context) (*auth.SessionClaims, error) {
	if claims, ok := ctx.Value(sessionKey).(*auth.SessionClaims); ok {
		return claims, nil
	}
	if err, ok := ctx.Value(sessionErrKey).(error); ok {
		return nil, err
	}
	return nil, domainerrors.Unauthorized("Authentication required")
}

// isAdmin reports whether the request carries a valid admin session.
func isAdmin(ctx context.Context) bool {
	_, err := requireAdmin(ctx)
	return err == nil
}
