package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
)

// Year range the tracker's year selector offers
const (
	MinYear = 2020
	MaxYear = 2030
)

// Validator wraps the go-playground validator with custom rules and error formatting
type Validator struct {
	validate *validator.Validate
}

// GetValidate returns the underlying validator.Validate instance for use with Echo
func (v *Validator) GetValidate() *validator.Validate {
	return v.validate
}

// singleton instance of the validator
var instance *Validator

// GetValidator returns the singleton validator instance
func GetValidator() *Validator {
	if instance == nil {
		instance = NewValidator()
	}
	return instance
}

// NewValidator creates a new validator instance with custom rules and configuration
func NewValidator() *Validator {
	v := validator.New()

	_ = v.RegisterValidation("transaction_kind", validateTransactionKind)
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("month_number", validateMonthNumber)
	_ = v.RegisterValidation("year_number", validateYearNumber)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: v}
}

// Custom validation functions

// validateTransactionKind validates that the kind is income or expense
func validateTransactionKind(fl validator.FieldLevel) bool {
	return models.IsValidKind(strings.ToLower(fl.Field().String()))
}

// validateAmount validates that a string amount parses to a non-negative decimal
func validateAmount(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if raw == "" {
		return false
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return false
	}
	return !amount.IsNegative()
}

// validateMonthNumber validates a calendar month (1-12)
func validateMonthNumber(fl validator.FieldLevel) bool {
	month := fl.Field().Int()
	return month >= 1 && month <= 12
}

// validateYearNumber validates a year within the selector range
func validateYearNumber(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= MinYear && year <= MaxYear
}
