package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	KindIncome  = "income"
	KindExpense = "expense"
)

var (
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrNegativeAmount   = errors.New("transaction amount must not be negative")
	ErrEmptyDescription = errors.New("transaction description is required")
	ErrEmptyCategory    = errors.New("transaction category is required")
	ErrZeroDate         = errors.New("transaction date is required")
	ErrMissingOwner     = errors.New("transaction owner is required")
)

// Transaction is the sole domain entity: a single income or expense record
// owned by exactly one user. Amount is always a non-negative magnitude; the
// effect on the balance comes from Kind, never from the sign of Amount.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"owner_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Category    string          `gorm:"type:varchar(100);not null" json:"category"`
	Kind        string          `gorm:"type:varchar(10);not null" json:"kind"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	CreatedAt   time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null" json:"updated_at"`
}

// BeforeCreate hook for Transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}

	return t.Validate()
}

// BeforeUpdate hook for Transaction
func (t *Transaction) BeforeUpdate(tx *gorm.DB) error {
	// Map-based updates carry an empty struct; field checks happen in the
	// repository for those.
	if tx != nil && tx.Statement != nil && tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	t.UpdatedAt = time.Now()
	return t.Validate()
}

// Validate validates the transaction fields
func (t *Transaction) Validate() error {
	if t.OwnerID == uuid.Nil {
		return ErrMissingOwner
	}
	if missing := t.MissingFields(); len(missing) > 0 {
		switch missing[0] {
		case "description":
			return ErrEmptyDescription
		case "category":
			return ErrEmptyCategory
		case "date":
			return ErrZeroDate
		}
	}
	if !IsValidKind(t.Kind) {
		return ErrInvalidKind
	}
	if t.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// MissingFields reports which required fields are absent or empty, in a
// stable order. An empty result means all required fields are present.
func (t *Transaction) MissingFields() []string {
	var missing []string
	if strings.TrimSpace(t.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(t.Category) == "" {
		missing = append(missing, "category")
	}
	if t.Date.IsZero() {
		missing = append(missing, "date")
	}
	return missing
}

// IsIncome returns true if the transaction adds to the balance
func (t *Transaction) IsIncome() bool {
	return t.Kind == KindIncome
}

// IsExpense returns true if the transaction subtracts from the balance
func (t *Transaction) IsExpense() bool {
	return t.Kind == KindExpense
}

// Month returns the calendar month (1-12) of the transaction date in local time
func (t *Transaction) Month() int {
	return int(t.Date.Month())
}

// Year returns the calendar year of the transaction date in local time
func (t *Transaction) Year() int {
	return t.Date.Year()
}

// TableName returns the table name for Transaction
func (t *Transaction) TableName() string {
	return "transactions"
}

// IsValidKind checks if the transaction kind is valid
func IsValidKind(kind string) bool {
	switch kind {
	case KindIncome, KindExpense:
		return true
	default:
		return false
	}
}
