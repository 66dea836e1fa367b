// Package mirror maintains the spreadsheet export of the ledger.
// The export is always regenerated in full from the record store and
// atomically replaces the previous file.
package mirror

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ultrashine/washlog/internal/domain"
	"github.com/ultrashine/washlog/internal/metrics"
)

// Lister is the read side of the record store the mirror needs.
type Lister interface {
	List(ctx context.Context) ([]domain.WashRecord, error)
}

// encoder writes the complete row set, header included, to w.
type encoder func(w io.Writer, rows []domain.ExportRow) error

// format ties a file extension to its encoder and download content type.
type format struct {
	encode      encoder
	contentType string
}

var formats = map[string]format{
	".xlsx": {encode: encodeXLSX, contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"},
	".csv":  {encode: encodeCSV, contentType: "text/csv; charset=utf-8"},
}

// Mirror regenerates the export file from the record store.
// Regenerate calls are serialized; readers of the file only ever see a
// complete previous or complete new version.
type Mirror struct {
	records Lister
	path    string
	format  format
	log     *slog.Logger

	mu sync.Mutex
}

// New constructs a Mirror writing to path. The file format is chosen by the
// extension of path: ".xlsx" or ".csv".
func New(records Lister, path string, log *slog.Logger) (*Mirror, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := formats[ext]
	if !ok {
		return nil, fmt.Errorf("mirror.New: unsupported export extension %q (want .xlsx or .csv)", ext)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{records: records, path: path, format: f, log: log}, nil
}

// Path returns the location of the export file.
func (m *Mirror) Path() string { return m.path }

// ContentType returns the MIME type of the export file.
func (m *Mirror) ContentType() string { return m.format.contentType }

// Regenerate rebuilds the export from every stored record, attaching the
// per-date wash count, and replaces the file on disk.
// Any failure is returned wrapped in domain.ErrExport.
func (m *Mirror) Regenerate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := time.Now()
	n, err := m.regenerate(ctx)
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ExportRegenerationsTotal.WithLabelValues("error").Inc()
		m.log.ErrorContext(ctx, "export regeneration failed", "path", m.path, "error", err)
		return fmt.Errorf("mirror.Mirror.Regenerate: %w: %w", domain.ErrExport, err)
	}

	metrics.ExportRegenerationsTotal.WithLabelValues("ok").Inc()
	metrics.ExportRows.Set(float64(n))
	m.log.DebugContext(ctx, "export regenerated", "path", m.path, "rows", n)
	return nil
}

func (m *Mirror) regenerate(ctx context.Context) (int, error) {
	records, err := m.records.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list records: %w", err)
	}
	rows := domain.WithDateCounts(records)

	if err := writeFileAtomic(m.path, func(w io.Writer) error {
		return m.format.encode(w, rows)
	}); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// writeFileAtomic writes to a temp file in the target directory and renames
// it over path once fully flushed.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	// CreateTemp uses 0600; the export is meant to be shared.
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
