package repositories

import (
	"errors"
	"fmt"
	"time"

	"fintrack/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// Create creates a new transaction
func (r *transactionRepository) Create(transaction *models.Transaction) error {
	if err := r.db.Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetByID retrieves a transaction by ID, scoped to the owner. A row owned by
// another user is indistinguishable from a missing one.
func (r *transactionRepository) GetByID(ownerID, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := r.db.Where("id = ? AND owner_id = ?", id, ownerID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// GetByOwnerID retrieves all transactions for an owner, ordered by date descending
func (r *transactionRepository) GetByOwnerID(ownerID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.Where("owner_id = ?", ownerID).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}
	return transactions, nil
}

// GetWithFilters retrieves an owner's transactions matching the optional
// month/year filters, ordered by date descending. Owner scoping is pushed down
// to the query; the month/year predicate is applied in Go so that the calendar
// semantics are identical on sqlite and postgres.
func (r *transactionRepository) GetWithFilters(filters models.TransactionFilters) ([]models.Transaction, error) {
	if filters.OwnerID == uuid.Nil {
		return nil, errors.New("owner ID is required for filtered queries")
	}

	all, err := r.GetByOwnerID(filters.OwnerID)
	if err != nil {
		return nil, err
	}

	if filters.Month == nil && filters.Year == nil {
		return all, nil
	}

	filtered := make([]models.Transaction, 0, len(all))
	for i := range all {
		if filters.Matches(&all[i]) {
			filtered = append(filtered, all[i])
		}
	}
	return filtered, nil
}

// mutableColumns are the transaction columns a client may change after
// creation. ID and owner_id are immutable by contract.
var mutableColumns = map[string]bool{
	"description": true,
	"amount":      true,
	"category":    true,
	"kind":        true,
	"date":        true,
}

// Update applies a partial field update to an owner's transaction. Returns
// ErrTransactionNotFound when the id does not exist or belongs to another
// owner.
func (r *transactionRepository) Update(ownerID, id uuid.UUID, fields map[string]interface{}) error {
	updates := make(map[string]interface{}, len(fields)+1)
	for column, value := range fields {
		if !mutableColumns[column] {
			continue
		}
		updates[column] = value
	}

	if err := validateUpdateValues(updates); err != nil {
		return err
	}

	if len(updates) == 0 {
		// Nothing mutable to change; still report missing targets
		_, err := r.GetByID(ownerID, id)
		return err
	}

	updates["updated_at"] = time.Now()

	result := r.db.Model(&models.Transaction{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to update transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// Delete removes an owner's transaction. Deleting an already-absent id is not
// an error; the operation is idempotent at this layer.
func (r *transactionRepository) Delete(ownerID, id uuid.UUID) error {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&models.Transaction{})

	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	return nil
}

func validateUpdateValues(updates map[string]interface{}) error {
	if kind, ok := updates["kind"].(string); ok && !models.IsValidKind(kind) {
		return models.ErrInvalidKind
	}
	if amount, ok := updates["amount"].(decimal.Decimal); ok && amount.IsNegative() {
		return models.ErrNegativeAmount
	}
	return nil
}
