package dto

import (
	"time"

	"github.com/google/uuid"

	"fintrack/internal/models"
)

// ListFilters contains the month/year filter for transaction listings.
// Both are optional; absent means no constraint on that component.
type ListFilters struct {
	Month *int `query:"month" validate:"omitempty,month_number"`
	Year  *int `query:"year" validate:"omitempty,year_number"`
}

// CreateTransactionRequest contains the fields for a new transaction.
// Amount arrives as a string so "" can be distinguished from zero.
type CreateTransactionRequest struct {
	Description string `json:"description" validate:"required,min=1,max=255"`
	Amount      string `json:"amount" validate:"required,amount"`
	Category    string `json:"category" validate:"required,min=1,max=100"`
	Kind        string `json:"kind" validate:"required,transaction_kind"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateTransactionRequest contains a partial edit. Nil fields are untouched.
type UpdateTransactionRequest struct {
	Description *string `json:"description,omitempty" validate:"omitempty,min=1,max=255"`
	Amount      *string `json:"amount,omitempty" validate:"omitempty,amount"`
	Category    *string `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Kind        *string `json:"kind,omitempty" validate:"omitempty,transaction_kind"`
	Date        *string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// TransactionResponse is the wire representation of a single transaction
type TransactionResponse struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SummaryResponse carries the derived totals for a filtered listing
type SummaryResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	Balance      string `json:"balance"`
	Count        int    `json:"count"`
	NoResults    bool   `json:"noResults"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Summary      SummaryResponse       `json:"summary"`
}

// NewTransactionResponse maps a model onto its wire representation
func NewTransactionResponse(t *models.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Description: t.Description,
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Kind:        t.Kind,
		Date:        t.Date.Format("2006-01-02"),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
