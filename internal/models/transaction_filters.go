package models

import (
	"github.com/google/uuid"
)

// TransactionFilters contains the derived-view filter state for transaction
// queries. Month and Year are optional; nil means "no filter". OwnerID is
// always applied: visibility is owner-scoped by the query, not by client trust.
type TransactionFilters struct {
	OwnerID uuid.UUID
	Month   *int // 1-12
	Year    *int
}

// Matches reports whether a transaction passes the month/year predicate.
// Owner scoping happens at the query layer, not here.
func (f TransactionFilters) Matches(t *Transaction) bool {
	if f.Month != nil && t.Month() != *f.Month {
		return false
	}
	if f.Year != nil && t.Year() != *f.Year {
		return false
	}
	return true
}
