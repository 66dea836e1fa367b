package mirror

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ultrashine/washlog/internal/domain"
)

// SheetName is the worksheet holding the export.
const SheetName = "Sheet1"

// encodeXLSX writes the export as a single-sheet workbook through the
// excelize stream writer. ID and the wash count are integer cells, Amount is
// a numeric cell, everything else is text so dates are never reformatted.
func encodeXLSX(w io.Writer, rows []domain.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	header := make([]any, len(domain.ExportHeader))
	for i, h := range domain.ExportHeader {
		header[i] = h
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, xlsxRow(r)); err != nil {
			return fmt.Errorf("row %d: %w", r.ID, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return f.Write(w)
}

func xlsxRow(r domain.ExportRow) []any {
	// NUMERIC(12,2) values round-trip exactly through float64's shortest form.
	amount := r.Amount.InexactFloat64()
	return []any{
		r.ID,
		r.CarNumber,
		r.CarModel,
		string(r.ServiceType),
		r.CustomerName,
		amount,
		r.Date,
		r.WashCountOnDate,
	}
}
