package repositories

import (
	"fintrack/internal/models"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface defines the contract for transaction repository operations.
// Every read is owner-scoped: a caller can only ever see rows whose owner_id
// matches the identity it passes in.
type TransactionRepositoryInterface interface {
	Create(transaction *models.Transaction) error
	GetByID(ownerID, id uuid.UUID) (*models.Transaction, error)
	GetByOwnerID(ownerID uuid.UUID) ([]models.Transaction, error)
	GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, error)
	Update(ownerID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ownerID, id uuid.UUID) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(user *models.User) error
	GetByID(id uuid.UUID) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
}
