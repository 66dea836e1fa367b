package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/ultrashine/washlog/internal/auth"
	"github.com/ultrashine/washlog/internal/domain"
	"github.com/ultrashine/washlog/internal/handler"
)

// mockRecordServicer is a test double for handler.RecordServicer.
// Set only the method fields your test needs; an unset field panics, which
// doubles as an assertion that the method was not called.
type mockRecordServicer struct {
	add    func(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)
	update func(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)
	delete func(ctx context.Context, id int64) error
	get    func(ctx context.Context, id int64) (domain.WashRecord, error)
	list   func(ctx context.Context) ([]domain.ExportRow, error)
	search func(ctx context.Context, date string) (domain.DateSummary, error)
}

func (m *mockRecordServicer) Add(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	return m.add(ctx, rec)
}
func (m *mockRecordServicer) Update(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	return m.update(ctx, rec)
}
func (m *mockRecordServicer) Delete(ctx context.Context, id int64) error {
	return m.delete(ctx, id)
}
func (m *mockRecordServicer) Get(ctx context.Context, id int64) (domain.WashRecord, error) {
	return m.get(ctx, id)
}
func (m *mockRecordServicer) List(ctx context.Context) ([]domain.ExportRow, error) {
	return m.list(ctx)
}
func (m *mockRecordServicer) Search(ctx context.Context, date string) (domain.DateSummary, error) {
	return m.search(ctx, date)
}

// compile-time check: mockRecordServicer must satisfy handler.RecordServicer.
var _ handler.RecordServicer = (*mockRecordServicer)(nil)

// mockGate accepts exactly the identities in roles, each with secret "pw".
type mockGate struct {
	roles map[string]domain.Role
}

func (m mockGate) Authorize(identity, secret string) (domain.Role, error) {
	role, ok := m.roles[identity]
	if !ok || secret != "pw" {
		return "", domain.ErrUnauthenticated
	}
	return role, nil
}

// mockSessions maps opaque tokens to sessions and records revocations.
type mockSessions struct {
	sessions map[string]auth.Session
	revoked  []uuid.UUID
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: map[string]auth.Session{
		workerToken: {ID: uuid.New(), Identity: "purna", Role: domain.RoleWorker},
		readerToken: {ID: uuid.New(), Identity: "manager", Role: domain.RoleReadOnly},
	}}
}

func (m *mockSessions) Issue(identity string, role domain.Role) (string, auth.Session, error) {
	sess := auth.Session{ID: uuid.New(), Identity: identity, Role: role}
	token := "issued-" + sess.ID.String()
	m.sessions[token] = sess
	return token, sess, nil
}

func (m *mockSessions) Parse(token string) (auth.Session, error) {
	sess, ok := m.sessions[token]
	if !ok {
		return auth.Session{}, domain.ErrUnauthenticated
	}
	for _, id := range m.revoked {
		if id == sess.ID {
			return auth.Session{}, domain.ErrUnauthenticated
		}
	}
	return sess, nil
}

func (m *mockSessions) Revoke(s auth.Session) {
	m.revoked = append(m.revoked, s.ID)
}

var _ handler.SessionStore = (*mockSessions)(nil)

// mockExporter serves a fixed file.
type mockExporter struct {
	path        string
	contentType string
	err         error
	calls       int
}

func (m *mockExporter) Regenerate(_ context.Context) error {
	m.calls++
	return m.err
}
func (m *mockExporter) Path() string        { return m.path }
func (m *mockExporter) ContentType() string { return m.contentType }

var _ handler.Exporter = (*mockExporter)(nil)

// ---- helpers ---------------------------------------------------------------

const (
	workerToken = "worker-token"
	readerToken = "reader-token"
)

// fixedNow is the clock every test server uses for date defaults.
var fixedNow = time.Date(2024, time.June, 1, 18, 30, 0, 0, time.UTC)

// newHTTPHandler wires a Server with the given mocks into its chi router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.RecordServicer) http.Handler {
	return newServer(svc, newMockSessions(), &mockExporter{}).Routes()
}

func newServer(svc handler.RecordServicer, sessions *mockSessions, exp *mockExporter) *handler.Server {
	gate := mockGate{roles: map[string]domain.Role{"purna": domain.RoleWorker, "manager": domain.RoleReadOnly}}
	return handler.NewServer(svc, gate, sessions, exp,
		handler.WithClock(func() time.Time { return fixedNow }))
}

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

// do sends a request with an optional bearer token.
func do(h http.Handler, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

var errBoom = errors.New("boom")
