package handlers

import (
	"errors"
	"net/http"
	"time"

	"fintrack/internal/dto"
	apierrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/store"
	"fintrack/internal/tracker"
	"fintrack/internal/validation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// TransactionHandler handles transaction CRUD and listing endpoints. Writes
// go through the store so live subscribers observe them; reads come straight
// from the repository.
type TransactionHandler struct {
	store           tracker.MutationStore
	transactionRepo repositories.TransactionRepositoryInterface
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(mutations tracker.MutationStore, transactionRepo repositories.TransactionRepositoryInterface) *TransactionHandler {
	return &TransactionHandler{
		store:           mutations,
		transactionRepo: transactionRepo,
	}
}

// ListTransactions retrieves the owner's transactions with optional month/year filtering
// @Summary List transactions
// @Description Retrieve the signed-in user's transactions, newest first, optionally restricted to one month and/or year, together with derived totals
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param month query int false "Filter by calendar month (1-12)"
// @Param year query int false "Filter by year (2020-2030)"
// @Success 200 {object} dto.ListTransactionsResponse "Transactions with summary"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005 or VALIDATION_006 - Invalid filter"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions [get]
func (h *TransactionHandler) ListTransactions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return sendFilterError(c, err)
	}

	transactions, err := h.transactionRepo.GetByOwnerID(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	view := ledger.DeriveView(transactions, filter)

	return c.JSON(http.StatusOK, dto.ListTransactionsResponse{
		Transactions: toTransactionResponses(view.Filtered),
		Summary:      toSummaryResponse(view),
	})
}

// GetSummary returns only the derived totals for the filtered listing
// @Summary Transaction summary
// @Description Derive income, expense, and balance totals for the signed-in user's transactions under the given filter
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param month query int false "Filter by calendar month (1-12)"
// @Param year query int false "Filter by year (2020-2030)"
// @Success 200 {object} dto.SummaryResponse "Derived totals"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_005 or VALIDATION_006 - Invalid filter"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/summary [get]
func (h *TransactionHandler) GetSummary(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	filter, err := parseListFilter(c)
	if err != nil {
		return sendFilterError(c, err)
	}

	transactions, err := h.transactionRepo.GetByOwnerID(userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	view := ledger.DeriveView(transactions, filter)

	return c.JSON(http.StatusOK, toSummaryResponse(view))
}

// GetTransaction retrieves a single transaction owned by the signed-in user
// @Summary Get transaction by ID
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} dto.TransactionResponse "Transaction details"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - Invalid transaction ID"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 500 {object} errors.ErrorResponse "SYSTEM_001 - Internal server error"
// @Router /transactions/{id} [get]
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithDetails("Transaction ID must be a valid UUID"))
	}

	transaction, err := h.transactionRepo.GetByID(userID, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return SendError(c, apierrors.TransactionNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.NewTransactionResponse(transaction))
}

// CreateTransaction records a new transaction for the signed-in user
// @Summary Create transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTransactionRequest true "Transaction fields"
// @Success 201 {object} SuccessResponse{data=object{id=string}} "Transaction created"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_002 - Missing or invalid fields"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Persistence failure"
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	var req dto.CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidAmount)
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidDate)
	}

	transaction := &models.Transaction{
		OwnerID:     userID,
		Description: req.Description,
		Amount:      amount,
		Category:    req.Category,
		Kind:        req.Kind,
		Date:        date,
	}

	id, err := h.store.Create(transaction)
	if err != nil {
		return h.sendStoreError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    map[string]interface{}{"id": id},
		Message: "Transaction created",
	})
}

// UpdateTransaction applies a partial edit to an owned transaction
// @Summary Update transaction
// @Tags Transactions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Param request body dto.UpdateTransactionRequest true "Fields to change"
// @Success 200 {object} SuccessResponse "Transaction updated"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_002 - Invalid fields"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 404 {object} errors.ErrorResponse "TRANSACTION_001 - Transaction not found"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Persistence failure"
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithDetails("Transaction ID must be a valid UUID"))
	}

	var req dto.UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("Invalid request body"))
	}

	if err := c.Validate(req); err != nil {
		return err
	}

	fields, err := buildUpdateFields(&req)
	if err != nil {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails(err.Error()))
	}
	if len(fields) == 0 {
		return SendError(c, apierrors.ValidationGeneral, apierrors.WithDetails("No fields to update"))
	}

	if err := h.store.Update(userID, transactionID, fields); err != nil {
		return h.sendStoreError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction updated"})
}

// DeleteTransaction removes an owned transaction. Deleting a transaction that
// no longer exists succeeds; the outcome is the same.
// @Summary Delete transaction
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Param id path string true "Transaction ID (UUID)"
// @Success 200 {object} SuccessResponse "Transaction deleted"
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003 - Invalid transaction ID"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Persistence failure"
// @Router /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, apierrors.AuthMissingToken)
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, apierrors.ValidationInvalidFormat, apierrors.WithDetails("Transaction ID must be a valid UUID"))
	}

	if err := h.store.Delete(userID, transactionID); err != nil {
		return h.sendStoreError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "Transaction deleted"})
}

// sendStoreError maps store errors into the API's error catalogue
func (h *TransactionHandler) sendStoreError(c echo.Context, err error) error {
	var validationErr *store.ValidationError
	if errors.As(err, &validationErr) {
		return SendError(c, apierrors.ValidationRequiredField,
			apierrors.WithDetails(validationErr.Fields...))
	}
	if errors.Is(err, store.ErrNotFound) {
		return SendError(c, apierrors.TransactionNotFound)
	}
	if store.IsPersistenceError(err) {
		return SendError(c, apierrors.TransactionPersistenceError)
	}
	return SendSystemError(c, err)
}

var (
	errInvalidMonth = errors.New("invalid month")
	errInvalidYear  = errors.New("invalid year")
)

// parseListFilter reads and validates the month/year query parameters
func parseListFilter(c echo.Context) (ledger.Filter, error) {
	var filter ledger.Filter

	if monthStr := c.QueryParam("month"); monthStr != "" {
		month := getIntParam(c, "month", 0)
		if month < 1 || month > 12 {
			return filter, errInvalidMonth
		}
		filter = filter.WithMonth(month)
	}

	if yearStr := c.QueryParam("year"); yearStr != "" {
		year := getIntParam(c, "year", 0)
		if year < validation.MinYear || year > validation.MaxYear {
			return filter, errInvalidYear
		}
		filter = filter.WithYear(year)
	}

	return filter, nil
}

// sendFilterError maps filter parse failures onto validation error codes
func sendFilterError(c echo.Context, err error) error {
	if errors.Is(err, errInvalidMonth) {
		return SendError(c, apierrors.ValidationInvalidMonth)
	}
	return SendError(c, apierrors.ValidationInvalidYear)
}

// buildUpdateFields converts a partial edit request into repository columns
func buildUpdateFields(req *dto.UpdateTransactionRequest) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Amount != nil {
		amount, err := decimal.NewFromString(*req.Amount)
		if err != nil {
			return nil, errors.New("invalid amount")
		}
		fields["amount"] = amount
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	if req.Kind != nil {
		fields["kind"] = *req.Kind
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			return nil, errors.New("invalid date")
		}
		fields["date"] = date
	}

	return fields, nil
}

func toTransactionResponses(transactions []models.Transaction) []dto.TransactionResponse {
	result := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		result = append(result, dto.NewTransactionResponse(&transactions[i]))
	}
	return result
}

func toSummaryResponse(view ledger.View) dto.SummaryResponse {
	return dto.SummaryResponse{
		TotalIncome:  view.TotalIncome.String(),
		TotalExpense: view.TotalExpense.String(),
		Balance:      view.Balance.String(),
		Count:        len(view.Filtered),
		NoResults:    view.NoResults,
	}
}
