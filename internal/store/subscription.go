package store

import (
	"sync"

	"fintrack/internal/models"

	"github.com/google/uuid"
)

// Subscription is a live, cancellable feed of complete snapshots for one
// owner. Every delivery replaces the previous one wholesale; the channel is
// conflated so a slow consumer only ever observes the latest snapshot.
type Subscription struct {
	ownerID uuid.UUID
	store   *Store

	mu        sync.Mutex
	ch        chan []models.Transaction
	cancelled bool
}

func newSubscription(store *Store, ownerID uuid.UUID) *Subscription {
	return &Subscription{
		ownerID: ownerID,
		store:   store,
		ch:      make(chan []models.Transaction, 1),
	}
}

// Snapshots returns the channel snapshots are delivered on. The channel is
// closed when the subscription is cancelled.
func (s *Subscription) Snapshots() <-chan []models.Transaction {
	return s.ch
}

// OwnerID returns the identity this subscription is scoped to
func (s *Subscription) OwnerID() uuid.UUID {
	return s.ownerID
}

// Cancel releases the subscription. Once Cancel returns, no further delivery
// occurs and the snapshot channel is closed. Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.store.unsubscribe(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}
	s.cancelled = true
	close(s.ch)
}

// deliver pushes a snapshot, dropping any undelivered predecessor. Holding
// the mutex across the check and the send is what makes the Cancel guarantee
// airtight: Cancel cannot complete between them.
func (s *Subscription) deliver(snapshot []models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return
	}

	select {
	case s.ch <- snapshot:
	default:
		// Stale snapshot still queued; replace it
		select {
		case <-s.ch:
		default:
		}
		s.ch <- snapshot
	}
}
