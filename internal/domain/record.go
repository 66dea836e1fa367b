// Package domain contains the core data types for the car-wash ledger.
// It is imported by every other internal package (repo, service, mirror, handler).
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the canonical calendar-date form used for storage and for
// every date-filtered query. Filters rely on exact string equality, so any
// other representation would silently miss rows.
const DateLayout = "2006-01-02"

// ServiceType is the kind of service performed on a car.
type ServiceType string

const (
	ServiceExteriorWash     ServiceType = "Exterior Wash"
	ServiceInteriorCleaning ServiceType = "Interior Cleaning"
	ServiceFullService      ServiceType = "Full Service"
)

// ServiceTypes lists every valid ServiceType in menu order.
var ServiceTypes = []ServiceType{
	ServiceExteriorWash,
	ServiceInteriorCleaning,
	ServiceFullService,
}

// Valid reports whether s is one of the fixed service types.
func (s ServiceType) Valid() bool {
	for _, v := range ServiceTypes {
		if s == v {
			return true
		}
	}
	return false
}

// WashRecord is one service transaction.
// ID is assigned by the store on creation and never reused, even after delete.
type WashRecord struct {
	ID           int64
	CarNumber    string
	CarModel     string
	ServiceType  ServiceType
	CustomerName string
	Amount       decimal.Decimal
	Date         string // DateLayout
}

// DateRow is the projection returned when listing the washes of a single date.
type DateRow struct {
	CarNumber    string
	CarModel     string
	ServiceType  ServiceType
	CustomerName string
	Amount       decimal.Decimal
}

// DateSummary is the result of searching the ledger by date.
// Total is zero (never missing) when no rows match.
type DateSummary struct {
	Date  string
	Count int
	Total decimal.Decimal
	Rows  []DateRow
}

// FormatDate returns t in canonical DateLayout form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// IsCanonicalDate reports whether s is a real calendar date already in
// DateLayout form. "2024-6-1" and "2024-02-30" are both rejected.
func IsCanonicalDate(s string) bool {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return false
	}
	return t.Format(DateLayout) == s
}
