package domain

// ExportHeader is the header row of the spreadsheet mirror, in column order.
var ExportHeader = []string{
	"ID", "Car_Number", "Car_Model", "Service_Type",
	"Customer_Name", "Amount", "Date", "Wash_Count_On_Date",
}

// ExportRow is a single row of the spreadsheet mirror and of the
// "View All Records" table: the stored record plus the number of washes
// recorded on that record's date.
type ExportRow struct {
	WashRecord
	WashCountOnDate int
}

// WithDateCounts attaches the per-date wash count to every record in a single
// grouping pass. Order of records is preserved. A nil or empty input yields an
// empty, non-nil slice.
func WithDateCounts(records []WashRecord) []ExportRow {
	counts := make(map[string]int, len(records))
	for _, r := range records {
		counts[r.Date]++
	}

	rows := make([]ExportRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, ExportRow{WashRecord: r, WashCountOnDate: counts[r.Date]})
	}
	return rows
}
