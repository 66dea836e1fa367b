package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/ultrashine/washlog/internal/auth"
	"github.com/ultrashine/washlog/internal/domain"
)

// SessionParser validates a bearer token. Satisfied by *auth.Tokens.
type SessionParser interface {
	Parse(token string) (auth.Session, error)
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s. The session role is also
// attached with domain.WithRole so the service layer can check it.
func WithSession(ctx context.Context, s auth.Session) context.Context {
	ctx = domain.WithRole(ctx, s.Role)
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the session stored by RequireSession.
func SessionFromContext(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(auth.Session)
	return s, ok
}

// RequireSession rejects requests without a valid "Authorization: Bearer"
// token with 401. On success the parsed session is stored in the request
// context for downstream handlers.
func RequireSession(p SessionParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "please log in to continue")
				return
			}
			sess, err := p.Parse(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthenticated", "session is not valid, please log in again")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// RequireWriter rejects sessions whose role may not mutate the ledger with
// 403. It must run after RequireSession.
func RequireWriter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := SessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthenticated", "please log in to continue")
			return
		}
		if !sess.Role.CanWrite() {
			writeError(w, http.StatusForbidden, "forbidden", "Manager has read-only access.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
