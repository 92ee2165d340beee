// Package ledger derives the rendered view from a transaction snapshot. It is
// deliberately pure: same inputs, same outputs, no clock and no state.
package ledger

import (
	"fintrack/internal/models"

	"github.com/shopspring/decimal"
)

// Filter is the optional month/year view filter. Nil means "all".
type Filter struct {
	Month *int // 1-12
	Year  *int
}

// WithMonth returns a Filter restricted to a calendar month.
func (f Filter) WithMonth(month int) Filter {
	f.Month = &month
	return f
}

// WithYear returns a Filter restricted to a calendar year.
func (f Filter) WithYear(year int) Filter {
	f.Year = &year
	return f
}

// View is the derived presentation state for one snapshot and one filter.
type View struct {
	Filtered     []models.Transaction
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	Balance      decimal.Decimal
	// NoResults distinguishes "nothing matched the filter" from a list that
	// has not loaded, so the surface can show an explicit empty state.
	NoResults bool
}

// DeriveView filters the snapshot by the optional month/year filter and
// computes the income/expense totals and net balance over the filtered
// subset. A transaction passes iff its date's local calendar month and year
// match every filter component that is set. Totals are exact decimals and
// always satisfy TotalIncome - TotalExpense == Balance.
func DeriveView(transactions []models.Transaction, filter Filter) View {
	view := View{
		Filtered:     make([]models.Transaction, 0, len(transactions)),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		Balance:      decimal.Zero,
	}

	for i := range transactions {
		t := &transactions[i]
		if !matches(t, filter) {
			continue
		}
		view.Filtered = append(view.Filtered, *t)

		switch t.Kind {
		case models.KindIncome:
			view.TotalIncome = view.TotalIncome.Add(t.Amount)
		case models.KindExpense:
			view.TotalExpense = view.TotalExpense.Add(t.Amount)
		}
	}

	view.Balance = view.TotalIncome.Sub(view.TotalExpense)
	view.NoResults = len(view.Filtered) == 0
	return view
}

func matches(t *models.Transaction, filter Filter) bool {
	if filter.Month != nil && t.Month() != *filter.Month {
		return false
	}
	if filter.Year != nil && t.Year() != *filter.Year {
		return false
	}
	return true
}
