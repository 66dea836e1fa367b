package handler

import (
	"fmt"
	"net/http"

	"github.com/ultrashine/washlog/internal/domain"
)

// DateRow is one wash in a search result.
type DateRow struct {
	CarNumber    string `json:"car_number"`
	CarModel     string `json:"car_model"`
	ServiceType  string `json:"service_type"`
	CustomerName string `json:"customer_name"`
	Amount       string `json:"amount"`
}

// SearchResult is the body of GET /records/search.
type SearchResult struct {
	Date    string    `json:"date"`
	Count   int       `json:"count"`
	Total   string    `json:"total"`
	Summary string    `json:"summary"`
	Rows    []DateRow `json:"rows"`
}

// SearchRecords handles GET /records/search?date=YYYY-MM-DD ("Search Car History").
// A missing date searches today.
func (s *Server) SearchRecords(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = domain.FormatDate(s.now())
	}

	sum, err := s.records.Search(r.Context(), date)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	out := SearchResult{
		Date:    sum.Date,
		Count:   sum.Count,
		Total:   sum.Total.StringFixed(2),
		Summary: fmt.Sprintf("Total washes on %s: %d", sum.Date, sum.Count),
		Rows:    make([]DateRow, len(sum.Rows)),
	}
	for i, row := range sum.Rows {
		out.Rows[i] = DateRow{
			CarNumber:    row.CarNumber,
			CarModel:     row.CarModel,
			ServiceType:  string(row.ServiceType),
			CustomerName: row.CustomerName,
			Amount:       row.Amount.StringFixed(2),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
