package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/repositories/repository_mocks"
	"fintrack/internal/store"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type TransactionHandlerTestSuite struct {
	suite.Suite
	echo     *echo.Echo
	ctrl     *gomock.Controller
	mockRepo *repository_mocks.MockTransactionRepositoryInterface
	handler  *TransactionHandler
	userID   uuid.UUID
}

func TestTransactionHandlerSuite(t *testing.T) {
	suite.Run(t, new(TransactionHandlerTestSuite))
}

func (s *TransactionHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.Validator = NewValidator()
	s.ctrl = gomock.NewController(s.T())
	s.mockRepo = repository_mocks.NewMockTransactionRepositoryInterface(s.ctrl)
	s.handler = NewTransactionHandler(store.New(s.mockRepo, nil, nil), s.mockRepo)
	s.userID = uuid.New()
}

func (s *TransactionHandlerTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

// newContext builds an authenticated echo context for the given request
func (s *TransactionHandlerTestSuite) newContext(method, target string, body string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *TransactionHandlerTestSuite) sampleTransaction(kind, amount string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:          uuid.New(),
		OwnerID:     s.userID,
		Description: gofakeit.ProductName(),
		Amount:      decimal.RequireFromString(amount),
		Category:    "Groceries",
		Kind:        kind,
		Date:        date,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}

func (s *TransactionHandlerTestSuite) TestListTransactions_WithSummary() {
	transactions := []models.Transaction{
		s.sampleTransaction(models.KindIncome, "2500.00", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		s.sampleTransaction(models.KindExpense, "900.00", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)),
	}
	s.mockRepo.EXPECT().GetByOwnerID(s.userID).Return(transactions, nil)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions", "")
	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Transactions, 2)
	s.Equal("2500", resp.Summary.TotalIncome)
	s.Equal("900", resp.Summary.TotalExpense)
	s.Equal("1600", resp.Summary.Balance)
	s.Equal(2, resp.Summary.Count)
	s.False(resp.Summary.NoResults)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_MonthFilter() {
	transactions := []models.Transaction{
		s.sampleTransaction(models.KindExpense, "10.00", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		s.sampleTransaction(models.KindExpense, "20.00", time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	}
	s.mockRepo.EXPECT().GetByOwnerID(s.userID).Return(transactions, nil)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions?month=4&year=2026", "")
	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Len(resp.Transactions, 1)
	s.Equal("10", resp.Summary.TotalExpense)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_NoResultsFlag() {
	s.mockRepo.EXPECT().GetByOwnerID(s.userID).Return([]models.Transaction{}, nil)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions?month=12", "")
	s.Require().NoError(s.handler.ListTransactions(c))

	var resp dto.ListTransactionsResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.True(resp.Summary.NoResults)
	s.Empty(resp.Transactions)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_InvalidMonth() {
	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions?month=13", "")
	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("VALIDATION_005", resp.Error.Code)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_InvalidYear() {
	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions?year=1999", "")
	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("VALIDATION_006", resp.Error.Code)
}

func (s *TransactionHandlerTestSuite) TestListTransactions_Unauthenticated() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.Require().NoError(s.handler.ListTransactions(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestGetSummary() {
	transactions := []models.Transaction{
		s.sampleTransaction(models.KindIncome, "100.50", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)),
		s.sampleTransaction(models.KindExpense, "40.25", time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)),
	}
	s.mockRepo.EXPECT().GetByOwnerID(s.userID).Return(transactions, nil)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions/summary", "")
	s.Require().NoError(s.handler.GetSummary(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.SummaryResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("100.5", resp.TotalIncome)
	s.Equal("40.25", resp.TotalExpense)
	s.Equal("60.25", resp.Balance)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction() {
	transaction := s.sampleTransaction(models.KindExpense, "12.34", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	s.mockRepo.EXPECT().GetByID(s.userID, transaction.ID).Return(&transaction, nil)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions/"+transaction.ID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(transaction.ID.String())

	s.Require().NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp dto.TransactionResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(transaction.ID, resp.ID)
	s.Equal("12.34", resp.Amount)
	s.Equal("2026-04-01", resp.Date)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_NotFound() {
	missingID := uuid.New()
	s.mockRepo.EXPECT().GetByID(s.userID, missingID).Return(nil, repositories.ErrTransactionNotFound)

	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions/"+missingID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(missingID.String())

	s.Require().NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("TRANSACTION_001", resp.Error.Code)
}

func (s *TransactionHandlerTestSuite) TestGetTransaction_MalformedID() {
	c, rec := s.newContext(http.MethodGet, "/api/v1/transactions/not-a-uuid", "")
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	s.Require().NoError(s.handler.GetTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction() {
	s.mockRepo.EXPECT().Create(gomock.Any()).DoAndReturn(func(t *models.Transaction) error {
		s.Equal(s.userID, t.OwnerID)
		s.Equal("Lunch", t.Description)
		s.True(t.Amount.Equal(decimal.RequireFromString("12.50")))
		s.Equal(models.KindExpense, t.Kind)
		t.ID = uuid.New()
		return nil
	})

	body := `{"description":"Lunch","amount":"12.50","category":"Dining","kind":"expense","date":"2026-04-10"}`
	c, rec := s.newContext(http.MethodPost, "/api/v1/transactions", body)

	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusCreated, rec.Code)

	var resp SuccessResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("Transaction created", resp.Message)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_MissingFields() {
	body := `{"kind":"expense"}`
	c, _ := s.newContext(http.MethodPost, "/api/v1/transactions", body)

	// Validation failures propagate to the central error handler as
	// validator errors; no repository call is ever made.
	err := s.handler.CreateTransaction(c)
	s.Error(err)

	var validationErrs validator.ValidationErrors
	s.ErrorAs(err, &validationErrs)
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_InvalidKind() {
	body := `{"description":"Lunch","amount":"12.50","category":"Dining","kind":"transfer","date":"2026-04-10"}`
	c, _ := s.newContext(http.MethodPost, "/api/v1/transactions", body)

	err := s.handler.CreateTransaction(c)
	s.Error(err)

	var validationErrs validator.ValidationErrors
	s.Require().ErrorAs(err, &validationErrs)
	s.Equal("transaction_kind", validationErrs[0].Tag())
}

func (s *TransactionHandlerTestSuite) TestCreateTransaction_PersistenceFailure() {
	s.mockRepo.EXPECT().Create(gomock.Any()).Return(fmt.Errorf("connection refused"))

	body := `{"description":"Lunch","amount":"12.50","category":"Dining","kind":"expense","date":"2026-04-10"}`
	c, rec := s.newContext(http.MethodPost, "/api/v1/transactions", body)

	s.Require().NoError(s.handler.CreateTransaction(c))
	s.Equal(http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal("TRANSACTION_002", resp.Error.Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_PartialEdit() {
	transactionID := uuid.New()
	s.mockRepo.EXPECT().Update(s.userID, transactionID, gomock.Any()).
		DoAndReturn(func(_, _ uuid.UUID, fields map[string]interface{}) error {
			s.Len(fields, 2)
			s.Equal("Groceries run", fields["description"])
			s.True(fields["amount"].(decimal.Decimal).Equal(decimal.RequireFromString("42.00")))
			return nil
		})

	body := `{"description":"Groceries run","amount":"42.00"}`
	c, rec := s.newContext(http.MethodPut, "/api/v1/transactions/"+transactionID.String(), body)
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.UpdateTransaction(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_EmptyBody() {
	transactionID := uuid.New()

	c, rec := s.newContext(http.MethodPut, "/api/v1/transactions/"+transactionID.String(), `{}`)
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.UpdateTransaction(c))
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestUpdateTransaction_NotFound() {
	transactionID := uuid.New()
	s.mockRepo.EXPECT().Update(s.userID, transactionID, gomock.Any()).
		Return(repositories.ErrTransactionNotFound)

	body := `{"description":"Ghost"}`
	c, rec := s.newContext(http.MethodPut, "/api/v1/transactions/"+transactionID.String(), body)
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.UpdateTransaction(c))
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction() {
	transactionID := uuid.New()
	s.mockRepo.EXPECT().Delete(s.userID, transactionID).Return(nil)

	c, rec := s.newContext(http.MethodDelete, "/api/v1/transactions/"+transactionID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusOK, rec.Code)
}

func (s *TransactionHandlerTestSuite) TestDeleteTransaction_AbsentIDStillSucceeds() {
	transactionID := uuid.New()
	// The repository treats a missing row as a successful delete
	s.mockRepo.EXPECT().Delete(s.userID, transactionID).Return(nil)

	c, rec := s.newContext(http.MethodDelete, "/api/v1/transactions/"+transactionID.String(), "")
	c.SetParamNames("id")
	c.SetParamValues(transactionID.String())

	s.Require().NoError(s.handler.DeleteTransaction(c))
	s.Equal(http.StatusOK, rec.Code)
}
