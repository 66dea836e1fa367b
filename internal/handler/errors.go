package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ultrashine/washlog/internal/domain"
)

// ErrorDetail is the body of every error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the error envelope: {"error":{"code":"...","message":"..."}}.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// notFound writes 404 for a missing record.
func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "not_found", "no such record")
}

// requestError writes 422 for input rejected before reaching the service
// layer (e.g. missing or malformed body), or 413 if the body was too large.
func requestError(w http.ResponseWriter, err error) {
	if errors.Is(err, errBodyTooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
		return
	}
	writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
}

// serviceError maps a service error onto the status table. Unexpected errors
// are logged and reported without detail.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		notFound(w)
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthenticated", "Invalid login credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", "Manager has read-only access.")
	case errors.Is(err, domain.ErrExport):
		s.log.ErrorContext(r.Context(), "spreadsheet export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export_failed", exportMessage(err))
	default:
		s.log.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// unwrapMessage extracts the human-readable part from a wrapped validation error.
// e.g. "service.RecordService.Add: validation error: date is required" → "date is required"
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	marker := domain.ErrValidation.Error() + ": "
	if i := strings.Index(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return msg
}

// exportMessage tells the user the ledger change was kept even though the
// spreadsheet could not be rewritten. The service wraps export failures as
// "...: record N saved: export failed: ..." and the "record N ..." part is kept.
func exportMessage(err error) string {
	msg := err.Error()
	i := strings.Index(msg, "record ")
	if i < 0 {
		return "spreadsheet export failed"
	}
	rest := msg[i:]
	if j := strings.Index(rest, ": "); j >= 0 {
		rest = rest[:j]
	}
	return rest + ", but the spreadsheet export failed"
}
