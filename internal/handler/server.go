// Package handler implements the HTTP handlers for the car-wash ledger API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, auth.go, record.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ultrashine/washlog/api"
	"github.com/ultrashine/washlog/internal/auth"
	"github.com/ultrashine/washlog/internal/domain"
	"github.com/ultrashine/washlog/internal/middleware"
)

// RecordServicer defines the ledger commands the record handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type RecordServicer interface {
	Add(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)
	Update(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)
	Delete(ctx context.Context, id int64) error
	Get(ctx context.Context, id int64) (domain.WashRecord, error)
	List(ctx context.Context) ([]domain.ExportRow, error)
	Search(ctx context.Context, date string) (domain.DateSummary, error)
}

// Authorizer checks credentials. Satisfied by *auth.Gate.
type Authorizer interface {
	Authorize(identity, secret string) (domain.Role, error)
}

// SessionStore issues, parses and revokes session tokens. Satisfied by *auth.Tokens.
type SessionStore interface {
	middleware.SessionParser
	Issue(identity string, role domain.Role) (string, auth.Session, error)
	Revoke(s auth.Session)
}

// Exporter regenerates and locates the spreadsheet mirror. Satisfied by *mirror.Mirror.
type Exporter interface {
	Regenerate(ctx context.Context) error
	Path() string
	ContentType() string
}

// Server holds the dependencies shared by every handler.
type Server struct {
	records  RecordServicer
	gate     Authorizer
	sessions SessionStore
	export   Exporter
	log      *slog.Logger

	// now supplies the default date for forms and searches.
	now func() time.Time
}

// Option customises a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithClock overrides the clock used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer constructs the Server with all its dependencies.
func NewServer(records RecordServicer, gate Authorizer, sessions SessionStore, export Exporter, opts ...Option) *Server {
	s := &Server{
		records:  records,
		gate:     gate,
		sessions: sessions,
		export:   export,
		log:      slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil, nil)
}

// Routes registers every endpoint on a new chi router.
// Public routes come first; everything else needs a session, and
// mutations additionally need the worker role.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", serveOpenAPI)
	r.Post("/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(s.sessions))

		r.Post("/logout", s.Logout)
		r.Get("/me", s.Me)
		r.Get("/export", s.GetExport)

		r.Route("/records", func(r chi.Router) {
			r.Get("/", s.ListRecords)
			r.Get("/search", s.SearchRecords)
			r.Get("/{id}", s.GetRecord)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireWriter)
				r.Post("/", s.CreateRecord)
				r.Put("/{id}", s.UpdateRecord)
				r.Delete("/{id}", s.DeleteRecord)
			})
		})
	})

	return r
}

// serveOpenAPI serves the embedded API description.
func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	//nolint:errcheck
	w.Write(api.OpenAPI)
}
