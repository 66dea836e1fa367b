package domain

import (
	"context"
	"fmt"
)

// Role is the access level granted to an authenticated session.
// Exactly two roles exist.
type Role string

const (
	// RoleWorker may add, edit and delete records.
	RoleWorker Role = "worker"
	// RoleReadOnly may only list, search and download.
	RoleReadOnly Role = "read-only"
)

// ParseRole converts a configuration string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleWorker, RoleReadOnly:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanWrite reports whether the role may mutate the ledger.
func (r Role) CanWrite() bool {
	return r == RoleWorker
}

type roleKey struct{}

// WithRole returns a copy of ctx carrying the caller's role.
func WithRole(ctx context.Context, r Role) context.Context {
	return context.WithValue(ctx, roleKey{}, r)
}

// RoleFromContext returns the role stored by WithRole. ok is false for
// contexts that never passed through session handling, such as the
// scheduler or tests driving the service directly.
func RoleFromContext(ctx context.Context) (r Role, ok bool) {
	r, ok = ctx.Value(roleKey{}).(Role)
	return r, ok
}
