// Package service contains the business logic for the car-wash ledger.
// Services validate inputs, enforce business rules, and orchestrate repo and
// mirror calls. No SQL lives here; services depend on interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/ultrashine/washlog/internal/domain"
	"github.com/ultrashine/washlog/internal/metrics"
	"github.com/ultrashine/washlog/internal/repo"
)

// Regenerator rebuilds the spreadsheet mirror. Satisfied by *mirror.Mirror.
type Regenerator interface {
	Regenerate(ctx context.Context) error
}

// RecordService implements the ledger commands: add, update, delete, list,
// search and get. Every successful mutation is followed by a synchronous
// mirror regeneration.
type RecordService struct {
	repo     repo.RecordRepo
	mirror   Regenerator
	validate *validator.Validate
	log      *slog.Logger
}

// NewRecordService constructs a RecordService.
func NewRecordService(r repo.RecordRepo, m Regenerator, log *slog.Logger) *RecordService {
	if log == nil {
		log = slog.Default()
	}
	return &RecordService{repo: r, mirror: m, validate: newValidator(), log: log}
}

// Add validates and persists a new record, then regenerates the mirror.
// If only the regeneration fails, the created record is returned together
// with an error wrapping domain.ErrExport.
func (s *RecordService) Add(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	if err := requireWriter(ctx); err != nil {
		countMutation("add", err)
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Add: %w", err)
	}
	rec, err := s.normalizeRecord(rec)
	if err != nil {
		countMutation("add", err)
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Add: %w", err)
	}
	rec.ID = 0

	created, err := s.repo.Create(ctx, rec)
	countMutation("add", err)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Add: %w", err)
	}
	s.log.InfoContext(ctx, "record added", "id", created.ID, "date", created.Date)

	if err := s.mirror.Regenerate(ctx); err != nil {
		return created, fmt.Errorf("service.RecordService.Add: record %d saved: %w", created.ID, err)
	}
	return created, nil
}

// Update replaces every field of the record identified by rec.ID.
// Returns domain.ErrNotFound if no such record exists; the mirror is only
// regenerated when a row was actually changed.
func (s *RecordService) Update(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	if err := requireWriter(ctx); err != nil {
		countMutation("update", err)
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	id := rec.ID
	if id <= 0 {
		err := fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
		countMutation("update", err)
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	rec, err := s.normalizeRecord(rec)
	if err != nil {
		countMutation("update", err)
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	rec.ID = id

	updated, err := s.repo.Update(ctx, rec)
	countMutation("update", err)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Update: %w", err)
	}
	s.log.InfoContext(ctx, "record updated", "id", updated.ID)

	if err := s.mirror.Regenerate(ctx); err != nil {
		return updated, fmt.Errorf("service.RecordService.Update: record %d saved: %w", updated.ID, err)
	}
	return updated, nil
}

// Delete permanently removes a record by ID.
// Returns domain.ErrNotFound if no such record exists.
func (s *RecordService) Delete(ctx context.Context, id int64) error {
	if err := requireWriter(ctx); err != nil {
		countMutation("delete", err)
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	if id <= 0 {
		err := fmt.Errorf("%w: id must be a positive integer", domain.ErrValidation)
		countMutation("delete", err)
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}

	err := s.repo.Delete(ctx, id)
	countMutation("delete", err)
	if err != nil {
		return fmt.Errorf("service.RecordService.Delete: %w", err)
	}
	s.log.InfoContext(ctx, "record deleted", "id", id)

	if err := s.mirror.Regenerate(ctx); err != nil {
		return fmt.Errorf("service.RecordService.Delete: record %d deleted: %w", id, err)
	}
	return nil
}

// Get returns a single record by ID.
func (s *RecordService) Get(ctx context.Context, id int64) (domain.WashRecord, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("service.RecordService.Get: %w", err)
	}
	return rec, nil
}

// List returns every record with the number of washes on its date attached.
func (s *RecordService) List(ctx context.Context) ([]domain.ExportRow, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.RecordService.List: %w", err)
	}
	return domain.WithDateCounts(records), nil
}

// Search returns the count, total amount and washes recorded on date.
// date must be in canonical YYYY-MM-DD form.
func (s *RecordService) Search(ctx context.Context, date string) (domain.DateSummary, error) {
	if !domain.IsCanonicalDate(date) {
		return domain.DateSummary{}, fmt.Errorf("service.RecordService.Search: %w: date must be a calendar date in YYYY-MM-DD form", domain.ErrValidation)
	}

	count, err := s.repo.CountByDate(ctx, date)
	if err != nil {
		return domain.DateSummary{}, fmt.Errorf("service.RecordService.Search: %w", err)
	}
	total, err := s.repo.SumByDate(ctx, date)
	if err != nil {
		return domain.DateSummary{}, fmt.Errorf("service.RecordService.Search: %w", err)
	}
	rows, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		return domain.DateSummary{}, fmt.Errorf("service.RecordService.Search: %w", err)
	}

	return domain.DateSummary{Date: date, Count: count, Total: total, Rows: rows}, nil
}

// requireWriter returns domain.ErrForbidden when ctx carries a role that may
// not mutate the ledger. A context without a role is an internal caller.
func requireWriter(ctx context.Context) error {
	if r, ok := domain.RoleFromContext(ctx); ok && !r.CanWrite() {
		return fmt.Errorf("%w: role %q has read-only access", domain.ErrForbidden, r)
	}
	return nil
}

// countMutation records the outcome of a store mutation.
func countMutation(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrValidation):
		result = "invalid"
	case errors.Is(err, domain.ErrNotFound):
		result = "not_found"
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	default:
		result = "error"
	}
	metrics.RecordMutationsTotal.WithLabelValues(op, result).Inc()
}
