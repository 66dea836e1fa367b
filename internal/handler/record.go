package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"

	"github.com/ultrashine/washlog/internal/domain"
)

// RecordRequest is the body of POST /records and PUT /records/{id}.
// Amount accepts a JSON number or a decimal string. Date is optional and
// defaults to today.
type RecordRequest struct {
	CarNumber    string              `json:"car_number"`
	CarModel     string              `json:"car_model"`
	ServiceType  string              `json:"service_type"`
	CustomerName string              `json:"customer_name"`
	Amount       *decimal.Decimal    `json:"amount"`
	Date         *openapi_types.Date `json:"date,omitempty"`
}

// Record is the JSON form of a wash record. Amount is always rendered with
// two decimal places.
type Record struct {
	ID              int64  `json:"id"`
	CarNumber       string `json:"car_number"`
	CarModel        string `json:"car_model"`
	ServiceType     string `json:"service_type"`
	CustomerName    string `json:"customer_name"`
	Amount          string `json:"amount"`
	Date            string `json:"date"`
	WashCountOnDate *int   `json:"wash_count_on_date,omitempty"`
}

// RecordList is the body of GET /records.
type RecordList struct {
	Records []Record `json:"records"`
	Message string   `json:"message,omitempty"`
}

// CreateRecord handles POST /records.
func (s *Server) CreateRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.decodeRecord(r)
	if err != nil {
		requestError(w, err)
		return
	}

	created, err := s.records.Add(r.Context(), rec)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, recordToResponse(created))
}

// ListRecords handles GET /records ("View All Records").
// Every row carries the number of washes on its date.
func (s *Server) ListRecords(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.List(r.Context())
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	out := RecordList{Records: make([]Record, len(rows))}
	for i, row := range rows {
		out.Records[i] = recordToResponse(row.WashRecord)
		n := row.WashCountOnDate
		out.Records[i].WashCountOnDate = &n
	}
	if len(rows) == 0 {
		out.Message = "No records found."
	}
	writeJSON(w, http.StatusOK, out)
}

// GetRecord handles GET /records/{id}.
func (s *Server) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err)
		return
	}

	rec, err := s.records.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(rec))
}

// UpdateRecord handles PUT /records/{id}. Every field is replaced.
func (s *Server) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err)
		return
	}
	rec, err := s.decodeRecord(r)
	if err != nil {
		requestError(w, err)
		return
	}
	rec.ID = id

	updated, err := s.records.Update(r.Context(), rec)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, recordToResponse(updated))
}

// DeleteRecord handles DELETE /records/{id}.
func (s *Server) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		requestError(w, err)
		return
	}

	if err := s.records.Delete(r.Context(), id); err != nil {
		s.serviceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- mapping helpers --------------------------------------------------------

// decodeRecord converts a RecordRequest body into a domain.WashRecord.
// Returns an error if the body is malformed or the amount is missing.
func (s *Server) decodeRecord(r *http.Request) (domain.WashRecord, error) {
	var body RecordRequest
	if err := decodeJSON(r, &body); err != nil {
		return domain.WashRecord{}, err
	}
	if body.Amount == nil {
		return domain.WashRecord{}, errors.New("amount is required")
	}

	date := domain.FormatDate(s.now())
	if body.Date != nil {
		date = domain.FormatDate(body.Date.Time)
	}

	return domain.WashRecord{
		CarNumber:    body.CarNumber,
		CarModel:     body.CarModel,
		ServiceType:  domain.ServiceType(body.ServiceType),
		CustomerName: body.CustomerName,
		Amount:       *body.Amount,
		Date:         date,
	}, nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("id must be a positive integer")
	}
	return id, nil
}

// recordToResponse converts a domain.WashRecord into its JSON form.
func recordToResponse(rec domain.WashRecord) Record {
	return Record{
		ID:           rec.ID,
		CarNumber:    rec.CarNumber,
		CarModel:     rec.CarModel,
		ServiceType:  string(rec.ServiceType),
		CustomerName: rec.CustomerName,
		Amount:       rec.Amount.StringFixed(2),
		Date:         rec.Date,
	}
}
