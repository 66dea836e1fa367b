// Package repo contains all database access logic for the car-wash ledger.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/ultrashine/washlog/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordRepo defines the persistence operations for wash records.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type RecordRepo interface {
	// Create inserts a new record and returns it with its DB-assigned ID.
	Create(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)

	// GetByID retrieves a single record by primary key.
	// Returns domain.ErrNotFound if no record with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.WashRecord, error)

	// List returns every record ordered by ID ascending (creation order).
	List(ctx context.Context) ([]domain.WashRecord, error)

	// Update replaces every field except ID of an existing record.
	// Returns domain.ErrNotFound if no record with that ID exists.
	Update(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error)

	// Delete removes a record by ID. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id int64) error

	// CountByDate returns the number of records whose date equals date exactly.
	CountByDate(ctx context.Context, date string) (int, error)

	// SumByDate returns the sum of amount over records on date; zero when none match.
	SumByDate(ctx context.Context, date string) (decimal.Decimal, error)

	// ListByDate returns the projection of records on date, ordered by ID ascending.
	ListByDate(ctx context.Context, date string) ([]domain.DateRow, error)
}

// pgRecordRepo is the Postgres implementation of RecordRepo.
type pgRecordRepo struct {
	db db
}

// NewRecordRepo constructs a RecordRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewRecordRepo(db db) RecordRepo {
	return &pgRecordRepo{db: db}
}

// amount is read back as text so it lands in decimal.Decimal without a float hop.
const recordColumns = `id, car_number, car_model, service_type, customer_name, amount::text, date`

// Create inserts a new record row and returns the full persisted record.
func (r *pgRecordRepo) Create(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	const q = `
		INSERT INTO car_wash (car_number, car_model, service_type, customer_name, amount, date)
		VALUES (@car_number, @car_model, @service_type, @customer_name, @amount, @date)
		RETURNING ` + recordColumns

	row := r.db.QueryRow(ctx, q, recordArgs(rec))
	result, err := scanRecord(row)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("repo.RecordRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a record by primary key.
func (r *pgRecordRepo) GetByID(ctx context.Context, id int64) (domain.WashRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM car_wash WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRecord(row)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("repo.RecordRepo.GetByID: %w", err)
	}
	return result, nil
}

// List returns all records in creation order.
func (r *pgRecordRepo) List(ctx context.Context) ([]domain.WashRecord, error) {
	const q = `SELECT ` + recordColumns + ` FROM car_wash ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.List: %w", err)
	}
	defer rows.Close()

	records := []domain.WashRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.List: scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.List: rows: %w", err)
	}

	return records, nil
}

// Update overwrites all mutable fields of a record and returns the updated record.
func (r *pgRecordRepo) Update(ctx context.Context, rec domain.WashRecord) (domain.WashRecord, error) {
	const q = `
		UPDATE car_wash
		SET car_number    = @car_number,
		    car_model     = @car_model,
		    service_type  = @service_type,
		    customer_name = @customer_name,
		    amount        = @amount,
		    date          = @date
		WHERE id = @id
		RETURNING ` + recordColumns

	args := recordArgs(rec)
	args["id"] = rec.ID

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRecord(row)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("repo.RecordRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a record by primary key.
func (r *pgRecordRepo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM car_wash WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.RecordRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// CountByDate counts records on an exact canonical date.
func (r *pgRecordRepo) CountByDate(ctx context.Context, date string) (int, error) {
	const q = `SELECT COUNT(*) FROM car_wash WHERE date = @date`

	var n int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"date": date}).Scan(&n); err != nil {
		return 0, fmt.Errorf("repo.RecordRepo.CountByDate: %w", err)
	}
	return n, nil
}

// SumByDate totals amount for records on an exact canonical date.
func (r *pgRecordRepo) SumByDate(ctx context.Context, date string) (decimal.Decimal, error) {
	const q = `SELECT COALESCE(SUM(amount), 0)::text FROM car_wash WHERE date = @date`

	var raw string
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"date": date}).Scan(&raw); err != nil {
		return decimal.Zero, fmt.Errorf("repo.RecordRepo.SumByDate: %w", err)
	}
	total, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("repo.RecordRepo.SumByDate: parse %q: %w", raw, err)
	}
	return total, nil
}

// ListByDate returns the washes recorded on an exact canonical date.
func (r *pgRecordRepo) ListByDate(ctx context.Context, date string) ([]domain.DateRow, error) {
	const q = `
		SELECT car_number, car_model, service_type, customer_name, amount::text
		FROM car_wash
		WHERE date = @date
		ORDER BY id ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"date": date})
	if err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListByDate: %w", err)
	}
	defer rows.Close()

	out := []domain.DateRow{}
	for rows.Next() {
		var (
			dr        domain.DateRow
			service   string
			amountRaw string
		)
		if err := rows.Scan(&dr.CarNumber, &dr.CarModel, &service, &dr.CustomerName, &amountRaw); err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.ListByDate: scan: %w", err)
		}
		dr.ServiceType = domain.ServiceType(service)
		if dr.Amount, err = decimal.NewFromString(amountRaw); err != nil {
			return nil, fmt.Errorf("repo.RecordRepo.ListByDate: parse amount %q: %w", amountRaw, err)
		}
		out = append(out, dr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.RecordRepo.ListByDate: rows: %w", err)
	}
	return out, nil
}

// recordArgs builds the named arguments shared by Create and Update.
// amount travels as text so NUMERIC receives the exact decimal.
func recordArgs(rec domain.WashRecord) pgx.NamedArgs {
	return pgx.NamedArgs{
		"car_number":    rec.CarNumber,
		"car_model":     rec.CarModel,
		"service_type":  string(rec.ServiceType),
		"customer_name": rec.CustomerName,
		"amount":        rec.Amount.String(),
		"date":          rec.Date,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing scanRecord to be
// reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord maps a single database row into a domain.WashRecord.
func scanRecord(s scanner) (domain.WashRecord, error) {
	var (
		rec       domain.WashRecord
		service   string
		amountRaw string
	)

	err := s.Scan(&rec.ID, &rec.CarNumber, &rec.CarModel, &service, &rec.CustomerName, &amountRaw, &rec.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.WashRecord{}, domain.ErrNotFound
		}
		return domain.WashRecord{}, err
	}

	rec.ServiceType = domain.ServiceType(service)
	rec.Amount, err = decimal.NewFromString(amountRaw)
	if err != nil {
		return domain.WashRecord{}, fmt.Errorf("parse amount %q: %w", amountRaw, err)
	}
	return rec, nil
}
