package handler_test

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ultrashine/washlog/internal/domain"
)

const csvContent = "ID,Car_Number,Car_Model,Service_Type,Customer_Name,Amount,Date,Wash_Count_On_Date\n" +
	"1,KA01AB1234,Sedan,Full Service,Rao,500,2024-06-01,1\n"

// writeExportFile creates a mirror file in a temp dir and returns its path.
func writeExportFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ---- GET /export -----------------------------------------------------------

func TestGetExport_200(t *testing.T) {
	exp := &mockExporter{path: writeExportFile(t, "car_wash.csv", csvContent), contentType: "text/csv; charset=utf-8"}
	h := newServer(&mockRecordServicer{}, newMockSessions(), exp).Routes()

	// Read-only sessions may download.
	rec := do(h, http.MethodGet, "/export", readerToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, exp.calls, "export must regenerate before serving")
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="car_wash.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, csvContent, rec.Body.String())
}

func TestGetExport_XLSXContentType(t *testing.T) {
	const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exp := &mockExporter{path: writeExportFile(t, "car_wash.xlsx", "PK\x03\x04"), contentType: xlsxType}
	h := newServer(&mockRecordServicer{}, newMockSessions(), exp).Routes()

	rec := do(h, http.MethodGet, "/export", workerToken, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="car_wash.xlsx"`, rec.Header().Get("Content-Disposition"))
}

func TestGetExport_500_RegenerateFails(t *testing.T) {
	exp := &mockExporter{
		path: filepath.Join(t.TempDir(), "car_wash.xlsx"),
		err:  domain.ErrExport,
	}
	h := newServer(&mockRecordServicer{}, newMockSessions(), exp).Routes()

	rec := do(h, http.MethodGet, "/export", workerToken, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "export_failed", decodeError(t, rec).Code)
}

func TestGetExport_500_FileMissing(t *testing.T) {
	exp := &mockExporter{path: filepath.Join(t.TempDir(), "gone.xlsx")}
	h := newServer(&mockRecordServicer{}, newMockSessions(), exp).Routes()

	rec := do(h, http.MethodGet, "/export", workerToken, nil)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", decodeError(t, rec).Code)
}
