// Package tracker holds the interactive models of the finance tracker: the
// live transaction list bound to the signed-in user, the create/edit form,
// and the delete confirmation flow. The models are UI-agnostic; handlers and
// tests drive them directly.
package tracker

import (
	"fintrack/internal/models"
	"fintrack/internal/store"

	"github.com/google/uuid"
)

// SnapshotStore is the subscription surface of the transaction store
type SnapshotStore interface {
	Subscribe(ownerID uuid.UUID) (*store.Subscription, error)
}

// MutationStore is the write surface of the transaction store
type MutationStore interface {
	Create(transaction *models.Transaction) (uuid.UUID, error)
	Update(ownerID, id uuid.UUID, fields map[string]interface{}) error
	Delete(ownerID, id uuid.UUID) error
}
