package handlers

import (
	"net/http"
	"time"

	"fintrack/internal/errors"
	"fintrack/internal/services"
	"fintrack/internal/tracker"

	"github.com/labstack/echo/v4"
)

const (
	defaultSeedCount = 100
	maxSeedCount     = 1000
	defaultSeedDays  = 90
	maxSeedDays      = 365
)

// DevHandler handles development-only endpoints. They are only mounted when
// the server runs in the development environment.
type DevHandler struct {
	store     tracker.MutationStore
	generator services.TransactionGeneratorInterface
}

// NewDevHandler creates a new development handler
func NewDevHandler(mutations tracker.MutationStore) *DevHandler {
	return &DevHandler{
		store:     mutations,
		generator: services.NewTransactionGenerator(),
	}
}

// GenerateTestData seeds the signed-in user with realistic transactions.
// Writes go through the store so any live subscription sees the seeded data
// immediately.
// @Summary Generate seed transactions (development only)
// @Tags Development
// @Security BearerAuth
// @Produce json
// @Param count query int false "Number of transactions to generate (max 1000)" default(100)
// @Param days query int false "Days of history to spread them over (max 365)" default(90)
// @Success 200 {object} SuccessResponse{data=object{transactions_created=int}} "Seed data created"
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 - Missing or invalid authentication"
// @Failure 422 {object} errors.ErrorResponse "TRANSACTION_002 - Persistence failure"
// @Router /dev/generate-test-data [post]
func (h *DevHandler) GenerateTestData(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	count := getIntParam(c, "count", defaultSeedCount)
	if count < 1 {
		count = defaultSeedCount
	}
	if count > maxSeedCount {
		count = maxSeedCount
	}

	days := getIntParam(c, "days", defaultSeedDays)
	if days < 1 {
		days = defaultSeedDays
	}
	if days > maxSeedDays {
		days = maxSeedDays
	}

	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)

	created := 0
	for _, transaction := range h.generator.GenerateHistoricalTransactions(userID, startDate, endDate, count) {
		if _, err := h.store.Create(transaction); err != nil {
			return SendError(c, errors.TransactionPersistenceError,
				errors.WithDetails("Seeding stopped after partial insert"))
		}
		created++
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    map[string]interface{}{"transactions_created": created},
		Message: "Seed data created",
	})
}
