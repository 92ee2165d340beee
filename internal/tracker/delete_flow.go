package tracker

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// DeleteFlow is the two-step delete confirmation: a request arms the flow for
// one transaction, confirm performs exactly one delete, cancel disarms it.
// Confirm and Cancel while disarmed are no-ops.
type DeleteFlow struct {
	store  MutationStore
	logger *slog.Logger

	mu      sync.Mutex
	pending uuid.UUID
	armed   bool
}

// NewDeleteFlow creates a disarmed delete flow over the given store
func NewDeleteFlow(mutations MutationStore, logger *slog.Logger) *DeleteFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeleteFlow{
		store:  mutations,
		logger: logger,
	}
}

// Request arms the flow for a transaction. Requesting while already armed
// re-targets the flow at the new transaction.
func (d *DeleteFlow) Request(id uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = id
	d.armed = true
}

// Pending returns the armed transaction, if any
func (d *DeleteFlow) Pending() (uuid.UUID, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.armed
}

// Cancel disarms the flow without deleting anything
func (d *DeleteFlow) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending = uuid.Nil
	d.armed = false
}

// Confirm deletes the armed transaction for the owner and disarms the flow.
// The flow disarms whether or not the delete succeeds; a failed delete is
// reported but never retried implicitly.
func (d *DeleteFlow) Confirm(ownerID uuid.UUID) error {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return nil
	}
	id := d.pending
	d.pending = uuid.Nil
	d.armed = false
	d.mu.Unlock()

	if err := d.store.Delete(ownerID, id); err != nil {
		d.logger.Error("delete failed", "error", err, "transaction_id", id)
		return err
	}
	return nil
}
