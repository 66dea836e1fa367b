package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ultrashine/washlog/internal/domain"
)

// Session is the authenticated state of one client interaction.
type Session struct {
	ID       uuid.UUID
	Identity string
	Role     domain.Role

	// ExpiresAt is zero for sessions that never expire.
	ExpiresAt time.Time
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens and tracks logged-out
// sessions. A zero ttl issues tokens without expiry.
//
// A revoked session is remembered only until its token would have expired
// anyway; each Revoke drops entries past that point.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	revoked map[uuid.UUID]time.Time
}

// NewTokens constructs a Tokens signing with secret.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	return &Tokens{
		secret:  secret,
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[uuid.UUID]time.Time),
	}
}

// Issue starts a new session for identity with role and returns its token.
func (t *Tokens) Issue(identity string, role domain.Role) (string, Session, error) {
	s := Session{ID: uuid.New(), Identity: identity, Role: role}

	now := t.now()
	claims := sessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       s.ID.String(),
			Subject:  identity,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if t.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(t.ttl))
		s.ExpiresAt = claims.ExpiresAt.Time
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", Session{}, fmt.Errorf("auth.Tokens.Issue: %w", err)
	}
	return signed, s, nil
}

// Parse verifies token and returns its session.
// Invalid, expired or revoked tokens yield domain.ErrUnauthenticated.
func (t *Tokens) Parse(token string) (Session, error) {
	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tk *jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || !parsed.Valid {
		return Session{}, fmt.Errorf("auth.Tokens.Parse: %w", errors.Join(domain.ErrUnauthenticated, err))
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return Session{}, fmt.Errorf("auth.Tokens.Parse: bad session id: %w", domain.ErrUnauthenticated)
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Session{}, fmt.Errorf("auth.Tokens.Parse: %w", domain.ErrUnauthenticated)
	}
	if t.isRevoked(id) {
		return Session{}, fmt.Errorf("auth.Tokens.Parse: session ended: %w", domain.ErrUnauthenticated)
	}

	sess := Session{ID: id, Identity: claims.Subject, Role: role}
	if claims.ExpiresAt != nil {
		sess.ExpiresAt = claims.ExpiresAt.Time
	}
	return sess, nil
}

// Revoke ends a session; its token is rejected from now on.
func (t *Tokens) Revoke(s Session) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()
	for id, exp := range t.revoked {
		if expired(exp, now) {
			delete(t.revoked, id)
		}
	}
	if !expired(s.ExpiresAt, now) {
		t.revoked[s.ID] = s.ExpiresAt
	}
}

// expired reports whether a token expiring at exp is already rejected by
// signature validation alone. The zero time never expires.
func expired(exp, now time.Time) bool {
	return !exp.IsZero() && !now.Before(exp)
}

func (t *Tokens) isRevoked(id uuid.UUID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.revoked[id]
	return ok
}
