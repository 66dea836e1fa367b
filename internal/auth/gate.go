// Package auth maps submitted credentials to a role and carries the resulting
// session in a signed bearer token.
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ultrashine/washlog/internal/domain"
)

// Credential is one configured login: an identity, the bcrypt hash of its
// secret, and the role it is granted.
type Credential struct {
	Identity   string
	SecretHash string
	Role       domain.Role
}

// Gate checks identity/secret pairs against a fixed credential set loaded at
// startup. It keeps no per-attempt state: no lockout, no throttling.
type Gate struct {
	creds map[string]Credential

	// decoy is compared against when the identity is unknown so a miss costs
	// the same bcrypt work as a wrong secret.
	decoy []byte
}

// NewGate validates creds and builds a Gate.
// Identities must be unique, hashes must be bcrypt hashes, and both roles
// must be present exactly once.
func NewGate(creds []Credential) (*Gate, error) {
	g := &Gate{creds: make(map[string]Credential, len(creds))}
	roles := make(map[domain.Role]int)
	cost := bcrypt.DefaultCost

	for _, c := range creds {
		if c.Identity == "" {
			return nil, errors.New("auth.NewGate: empty identity")
		}
		if _, dup := g.creds[c.Identity]; dup {
			return nil, fmt.Errorf("auth.NewGate: duplicate identity %q", c.Identity)
		}
		if _, err := domain.ParseRole(string(c.Role)); err != nil {
			return nil, fmt.Errorf("auth.NewGate: identity %q: %w", c.Identity, err)
		}
		hc, err := bcrypt.Cost([]byte(c.SecretHash))
		if err != nil {
			return nil, fmt.Errorf("auth.NewGate: identity %q: secret is not a bcrypt hash: %w", c.Identity, err)
		}
		cost = hc
		g.creds[c.Identity] = c
		roles[c.Role]++
	}

	for _, r := range []domain.Role{domain.RoleWorker, domain.RoleReadOnly} {
		if roles[r] != 1 {
			return nil, fmt.Errorf("auth.NewGate: want exactly one %q login, got %d", r, roles[r])
		}
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte("decoy"), cost)
	if err != nil {
		return nil, fmt.Errorf("auth.NewGate: decoy hash: %w", err)
	}
	g.decoy = decoy
	return g, nil
}

// Authorize returns the role for identity when secret matches its stored hash.
// Any mismatch, including an unknown identity, is domain.ErrUnauthenticated.
func (g *Gate) Authorize(identity, secret string) (domain.Role, error) {
	c, ok := g.creds[identity]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(g.decoy, []byte(secret))
		return "", domain.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)); err != nil {
		return "", domain.ErrUnauthenticated
	}
	return c.Role, nil
}

// HashSecret returns the bcrypt hash of secret at the default cost.
func HashSecret(secret string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
