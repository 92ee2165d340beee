package services

import (
	"time"

	"fintrack/internal/dto"
	"fintrack/internal/models"

	"github.com/google/uuid"
)

type AuthServiceInterface interface {
	Register(req *dto.RegisterRequest) (*models.User, error)
	Login(req *dto.LoginRequest) (*dto.TokenResponse, error)
	Authenticate(email, password string) (*models.User, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// TransactionGeneratorInterface generates realistic transaction data for
// development seeding
type TransactionGeneratorInterface interface {
	GenerateHistoricalTransactions(ownerID uuid.UUID, startDate, endDate time.Time, count int) []*models.Transaction
	GenerateIncomeTransaction(ownerID uuid.UUID, date time.Time) *models.Transaction
	GenerateExpenseTransaction(ownerID uuid.UUID, date time.Time) *models.Transaction
	GenerateTimestamp(startDate, endDate time.Time) time.Time
}
