package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintrack/internal/database"
	"fintrack/internal/models"
	"fintrack/internal/repositories"
	"fintrack/internal/store"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type DevHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	db      *database.DB
	repo    repositories.TransactionRepositoryInterface
	store   *store.Store
	handler *DevHandler
	owner   *models.User
}

func TestDevHandlerSuite(t *testing.T) {
	suite.Run(t, new(DevHandlerTestSuite))
}

func (s *DevHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.db = database.SetupTestDB(s.T())
	s.repo = repositories.NewTransactionRepository(s.db.DB)
	s.store = store.New(s.repo, nil, nil)
	s.handler = NewDevHandler(s.store)
	s.owner = database.CreateTestUser(s.T(), s.db, "owner@example.com")
}

func (s *DevHandlerTestSuite) TearDownTest() {
	s.store.Close()
	database.CleanupTestDB(s.T(), s.db)
}

func (s *DevHandlerTestSuite) generate(target string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.owner.ID)
	return c, rec
}

func (s *DevHandlerTestSuite) TestGenerateTestData_Defaults() {
	c, rec := s.generate("/api/v1/dev/generate-test-data")

	s.Require().NoError(s.handler.GenerateTestData(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]int `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(100, resp.Data["transactions_created"])

	transactions, err := s.repo.GetByOwnerID(s.owner.ID)
	s.Require().NoError(err)
	s.Len(transactions, 100)
	for i := range transactions {
		s.NoError(transactions[i].Validate())
	}
}

func (s *DevHandlerTestSuite) TestGenerateTestData_CustomCount() {
	c, rec := s.generate("/api/v1/dev/generate-test-data?count=25&days=30")

	s.Require().NoError(s.handler.GenerateTestData(c))
	s.Equal(http.StatusOK, rec.Code)

	transactions, err := s.repo.GetByOwnerID(s.owner.ID)
	s.Require().NoError(err)
	s.Len(transactions, 25)
}

func (s *DevHandlerTestSuite) TestGenerateTestData_CapsExcessiveCount() {
	c, rec := s.generate("/api/v1/dev/generate-test-data?count=99999")

	s.Require().NoError(s.handler.GenerateTestData(c))
	s.Equal(http.StatusOK, rec.Code)

	var resp struct {
		Data map[string]int `json:"data"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	s.Equal(1000, resp.Data["transactions_created"])
}

func (s *DevHandlerTestSuite) TestGenerateTestData_Unauthenticated() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/dev/generate-test-data", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.Require().NoError(s.handler.GenerateTestData(c))
	s.Equal(http.StatusUnauthorized, rec.Code)
}
