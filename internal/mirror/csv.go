package mirror

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ultrashine/washlog/internal/domain"
)

// encodeCSV writes the header then one line per row.
// Amount uses the exact decimal string and Date is written untouched.
func encodeCSV(w io.Writer, rows []domain.ExportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.ExportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(csvRecord(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRecord(r domain.ExportRow) []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.CarNumber,
		r.CarModel,
		string(r.ServiceType),
		r.CustomerName,
		r.Amount.String(),
		r.Date,
		strconv.Itoa(r.WashCountOnDate),
	}
}
