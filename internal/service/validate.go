package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ultrashine/washlog/internal/domain"
)

// recordForm is the validated shape of user-submitted record fields.
// Amount is checked separately because validator does not descend into
// decimal.Decimal.
type recordForm struct {
	CarNumber    string `label:"car_number" validate:"required,printable_text,max=32"`
	CarModel     string `label:"car_model" validate:"printable_text,max=100"`
	ServiceType  string `label:"service_type" validate:"required,service_type"`
	CustomerName string `label:"customer_name" validate:"printable_text,max=100"`
	Date         string `label:"date" validate:"required,canonical_date"`
}

// maxAmount matches NUMERIC(12,2).
var maxAmount = decimal.RequireFromString("9999999999.99")

// newValidator returns a validator with the ledger's custom tags registered.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("label")
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return domain.ServiceType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("canonical_date", func(fl validator.FieldLevel) bool {
		return domain.IsCanonicalDate(fl.Field().String())
	})
	_ = v.RegisterValidation("printable_text", func(fl validator.FieldLevel) bool {
		return isPrintableText(fl.Field().String())
	})
	return v
}

// isPrintableText reports whether s is valid UTF-8 without control
// characters. Postgres rejects NUL in text columns and the XLSX writer
// replaces other control characters, so either would break the mirror.
func isPrintableText(s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// normalizeRecord trims free-text fields and validates every user-supplied
// field of rec. The returned error wraps domain.ErrValidation.
func (s *RecordService) normalizeRecord(rec domain.WashRecord) (domain.WashRecord, error) {
	rec.CarNumber = strings.TrimSpace(rec.CarNumber)
	rec.CarModel = strings.TrimSpace(rec.CarModel)
	rec.CustomerName = strings.TrimSpace(rec.CustomerName)
	rec.Date = strings.TrimSpace(rec.Date)

	form := recordForm{
		CarNumber:    rec.CarNumber,
		CarModel:     rec.CarModel,
		ServiceType:  string(rec.ServiceType),
		CustomerName: rec.CustomerName,
		Date:         rec.Date,
	}

	var msgs []string
	if err := s.validate.Struct(form); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return domain.WashRecord{}, err
		}
		for _, fe := range ve {
			msgs = append(msgs, fieldError(fe))
		}
	}
	if msg := amountError(rec.Amount); msg != "" {
		msgs = append(msgs, msg)
	}

	if len(msgs) > 0 {
		return domain.WashRecord{}, fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return rec, nil
}

// fieldError converts a single FieldError into a human-readable message.
func fieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "service_type":
		names := make([]string, len(domain.ServiceTypes))
		for i, st := range domain.ServiceTypes {
			names[i] = string(st)
		}
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(names, ", "))
	case "canonical_date":
		return field + " must be a calendar date in YYYY-MM-DD form"
	case "printable_text":
		return field + " must not contain control characters or invalid text"
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

func amountError(a decimal.Decimal) string {
	switch {
	case a.IsNegative():
		return "amount must not be negative"
	case !a.Equal(a.Round(2)):
		return "amount must have at most two decimal places"
	case a.GreaterThan(maxAmount):
		return "amount is too large"
	}
	return ""
}
