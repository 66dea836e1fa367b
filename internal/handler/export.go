package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// GetExport handles GET /export.
// The mirror is regenerated first so the download always reflects the
// current ledger, then the file is served as an attachment.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	if err := s.export.Regenerate(r.Context()); err != nil {
		s.log.ErrorContext(r.Context(), "spreadsheet export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "export_failed", "spreadsheet export failed")
		return
	}

	f, err := os.Open(s.export.Path())
	if err != nil {
		s.serviceError(w, r, fmt.Errorf("handler.GetExport: %w", err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		s.serviceError(w, r, fmt.Errorf("handler.GetExport: %w", err))
		return
	}

	name := filepath.Base(s.export.Path())
	w.Header().Set("Content-Type", s.export.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}
