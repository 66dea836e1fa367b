package handler

import (
	"errors"
	"net/http"

	"github.com/ultrashine/washlog/internal/domain"
	"github.com/ultrashine/washlog/internal/middleware"
)

// Menu lists the actions offered after login, in display order.
var Menu = []string{"Add New Record", "View All Records", "Search Car History"}

// readOnlyNotice is shown in place of the add form for read-only sessions.
const readOnlyNotice = "Manager has read-only access."

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token string `json:"token"`
	MeResponse
}

// MeResponse describes the current session and what it may do.
type MeResponse struct {
	Identity          string      `json:"identity"`
	Role              domain.Role `json:"role"`
	CanWrite          bool        `json:"can_write"`
	Menu              []string    `json:"menu"`
	AddDisabledReason string      `json:"add_disabled_reason,omitempty"`
}

func meFor(identity string, role domain.Role) MeResponse {
	me := MeResponse{
		Identity: identity,
		Role:     role,
		CanWrite: role.CanWrite(),
		Menu:     Menu,
	}
	if !me.CanWrite {
		me.AddDisabledReason = readOnlyNotice
	}
	return me
}

// Login handles POST /login.
// Both unknown identities and wrong secrets yield the same 401.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		requestError(w, err)
		return
	}

	role, err := s.gate.Authorize(req.Identity, req.Secret)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			s.serviceError(w, r, err)
			return
		}
		s.log.WarnContext(r.Context(), "login rejected", "identity", req.Identity)
		writeError(w, http.StatusUnauthorized, "unauthenticated", "Invalid login credentials")
		return
	}

	token, sess, err := s.sessions.Issue(req.Identity, role)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	s.log.InfoContext(r.Context(), "login", "identity", sess.Identity, "role", sess.Role, "session", sess.ID)

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, MeResponse: meFor(sess.Identity, sess.Role)})
}

// Logout handles POST /logout. The current token stops working immediately.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "please log in to continue")
		return
	}
	s.sessions.Revoke(sess)
	s.log.InfoContext(r.Context(), "logout", "identity", sess.Identity, "session", sess.ID)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "please log in to continue")
		return
	}
	writeJSON(w, http.StatusOK, meFor(sess.Identity, sess.Role))
}
