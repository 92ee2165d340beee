package tracker

import (
	"log/slog"
	"sync"

	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/session"
	"fintrack/internal/store"

	"github.com/google/uuid"
)

// ListModel maintains the live transaction snapshot for one signed-in owner.
// It holds at most one open subscription; switching owners tears the old one
// down before the new one opens, so a stale snapshot can never land after the
// switch.
type ListModel struct {
	store  SnapshotStore
	logger *slog.Logger

	mu       sync.Mutex
	sub      *store.Subscription
	pumpDone chan struct{}
	snapshot []models.Transaction
	ownerID  uuid.UUID
	signedIn bool
}

// NewListModel creates a list model over the given store
func NewListModel(snapshots SnapshotStore, logger *slog.Logger) *ListModel {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListModel{
		store:  snapshots,
		logger: logger,
	}
}

// SetOwner binds the model to an owner. Any previous subscription is
// cancelled first and its pump drained, then the new one opens. On return the
// snapshot already reflects the new owner's initial state.
func (m *ListModel) SetOwner(ownerID uuid.UUID) error {
	m.detach()

	sub, err := m.store.Subscribe(ownerID)
	if err != nil {
		return err
	}

	// The initial snapshot was delivered inside Subscribe and is sitting in
	// the conflation buffer.
	var initial []models.Transaction
	select {
	case initial = <-sub.Snapshots():
	default:
	}

	done := make(chan struct{})

	m.mu.Lock()
	m.sub = sub
	m.pumpDone = done
	m.snapshot = initial
	m.ownerID = ownerID
	m.signedIn = true
	m.mu.Unlock()

	go m.pump(sub, done)
	return nil
}

// Clear unbinds the model, cancelling the subscription and emptying the
// snapshot. Safe to call when nothing is bound.
func (m *ListModel) Clear() {
	m.detach()
}

// Close releases the model's subscription
func (m *ListModel) Close() {
	m.detach()
}

// FollowSession consumes an identity watcher until its channel closes: each
// identity rebinds the model, a nil identity clears it. The returned channel
// closes when the watcher does.
func (m *ListModel) FollowSession(watcher *session.Watcher) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for identity := range watcher.Identities() {
			if identity == nil {
				m.Clear()
				continue
			}
			if err := m.SetOwner(identity.ID); err != nil {
				m.logger.Error("failed to bind list to identity",
					"error", err,
					"owner_id", identity.ID)
			}
		}
		m.Clear()
	}()
	return done
}

// Snapshot returns the current transaction snapshot. Empty when signed out.
func (m *ListModel) Snapshot() []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot
}

// Owner returns the bound owner and whether anyone is signed in
func (m *ListModel) Owner() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerID, m.signedIn
}

// View derives the filtered totals from the current snapshot
func (m *ListModel) View(filter ledger.Filter) ledger.View {
	return ledger.DeriveView(m.Snapshot(), filter)
}

func (m *ListModel) pump(sub *store.Subscription, done chan struct{}) {
	defer close(done)
	for snapshot := range sub.Snapshots() {
		m.mu.Lock()
		if m.sub == sub {
			m.snapshot = snapshot
		}
		m.mu.Unlock()
	}
}

// detach cancels the current subscription and waits for its pump to exit, so
// no delivery from the old owner can overwrite state written afterwards.
func (m *ListModel) detach() {
	m.mu.Lock()
	sub := m.sub
	done := m.pumpDone
	m.sub = nil
	m.pumpDone = nil
	m.snapshot = nil
	m.ownerID = uuid.Nil
	m.signedIn = false
	m.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
	if done != nil {
		<-done
	}
}
