// Package store is a thin facade over the transaction collection that adds
// live, owner-scoped snapshot subscriptions on top of the repository. All
// mutations go through it; none of them touch subscriber state directly — the
// collection is re-read and re-delivered wholesale after every change, so the
// persisted data stays the single source of truth.
package store

import (
	"log/slog"
	"sync"

	"fintrack/internal/models"
	"fintrack/internal/repositories"

	"github.com/google/uuid"
)

// MetricsRecorder is the subset of the metrics service the store needs
type MetricsRecorder interface {
	IncrementCounter(name string, tags map[string]string)
	RecordGauge(name string, value float64, tags map[string]string)
}

// Store implements the transaction store adapter contract
type Store struct {
	repo    repositories.TransactionRepositoryInterface
	metrics MetricsRecorder
	logger  *slog.Logger

	mu   sync.Mutex
	subs map[uuid.UUID]map[*Subscription]struct{}

	// deliverMu serializes every snapshot read+deliver pair (initial and
	// broadcast), so a delivery never carries an older snapshot than one
	// delivered before it.
	deliverMu sync.Mutex
}

// New creates a store adapter over the given repository. metrics may be nil.
func New(repo repositories.TransactionRepositoryInterface, metrics MetricsRecorder, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		repo:    repo,
		metrics: metrics,
		logger:  logger,
		subs:    make(map[uuid.UUID]map[*Subscription]struct{}),
	}
}

// Subscribe opens a live subscription scoped to ownerID. The current snapshot
// is delivered immediately; every subsequent mutation by any caller triggers a
// fresh delivery of the complete owner-scoped result set, ordered by date
// descending. The subscription stays open until cancelled.
func (s *Store) Subscribe(ownerID uuid.UUID) (*Subscription, error) {
	sub := newSubscription(s, ownerID)

	// Registration precedes the initial read: a mutation that commits while
	// the read is in flight finds this subscription and re-delivers, so the
	// subscriber cannot end up stuck on a pre-mutation snapshot.
	s.mu.Lock()
	if s.subs[ownerID] == nil {
		s.subs[ownerID] = make(map[*Subscription]struct{})
	}
	s.subs[ownerID][sub] = struct{}{}
	s.mu.Unlock()

	s.deliverMu.Lock()
	snapshot, err := s.repo.GetByOwnerID(ownerID)
	if err != nil {
		s.deliverMu.Unlock()
		s.unsubscribe(sub)
		return nil, &PersistenceError{Op: "subscribe", Err: err}
	}
	sub.deliver(snapshot)
	s.deliverMu.Unlock()

	s.recordGauge("store.subscriptions.active", float64(s.subscriberCount()))

	return sub, nil
}

// Create validates required fields and persists a new transaction, returning
// the store-assigned id. No local state changes; subscribers see the new row
// through the next snapshot delivery.
func (s *Store) Create(transaction *models.Transaction) (uuid.UUID, error) {
	if missing := transaction.MissingFields(); len(missing) > 0 {
		return uuid.Nil, &ValidationError{Fields: missing}
	}
	if !models.IsValidKind(transaction.Kind) {
		return uuid.Nil, &ValidationError{Fields: []string{"kind"}}
	}
	if transaction.Amount.IsNegative() {
		return uuid.Nil, &ValidationError{Fields: []string{"amount"}}
	}

	if err := s.repo.Create(transaction); err != nil {
		return uuid.Nil, &PersistenceError{Op: "create", Err: err}
	}

	s.incrementCounter("store.mutations", map[string]string{"operation": "create"})
	s.broadcast(transaction.OwnerID)
	return transaction.ID, nil
}

// Update applies a partial field update to an owner's transaction. Returns
// ErrNotFound when the id is missing or foreign.
func (s *Store) Update(ownerID, id uuid.UUID, fields map[string]interface{}) error {
	if err := s.repo.Update(ownerID, id, fields); err != nil {
		if err == repositories.ErrTransactionNotFound {
			return ErrNotFound
		}
		if err == models.ErrInvalidKind || err == models.ErrNegativeAmount {
			return &ValidationError{Fields: []string{fieldForValidationErr(err)}}
		}
		return &PersistenceError{Op: "update", Err: err}
	}

	s.incrementCounter("store.mutations", map[string]string{"operation": "update"})
	s.broadcast(ownerID)
	return nil
}

// Delete removes an owner's transaction. Idempotent: deleting an absent id is
// not an error at this layer — the delete-confirmation flow upstream is the
// only gate.
func (s *Store) Delete(ownerID, id uuid.UUID) error {
	if err := s.repo.Delete(ownerID, id); err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}

	s.incrementCounter("store.mutations", map[string]string{"operation": "delete"})
	s.broadcast(ownerID)
	return nil
}

// Close cancels every open subscription
func (s *Store) Close() {
	s.mu.Lock()
	var all []*Subscription
	for _, set := range s.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range all {
		sub.Cancel()
	}
}

// broadcast re-reads the owner's snapshot and delivers it to every live
// subscription for that owner. A read failure is logged and skipped; the
// subscribers keep their previous snapshot and the next mutation retries.
func (s *Store) broadcast(ownerID uuid.UUID) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mu.Lock()
	targets := make([]*Subscription, 0, len(s.subs[ownerID]))
	for sub := range s.subs[ownerID] {
		targets = append(targets, sub)
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	snapshot, err := s.repo.GetByOwnerID(ownerID)
	if err != nil {
		s.logger.Error("failed to load snapshot for delivery",
			"owner_id", ownerID,
			"error", err)
		return
	}

	for _, sub := range targets {
		sub.deliver(snapshot)
	}
	s.incrementCounter("store.snapshots.delivered", map[string]string{})
}

func (s *Store) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	if set, ok := s.subs[sub.ownerID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(s.subs, sub.ownerID)
		}
	}
	s.mu.Unlock()

	s.recordGauge("store.subscriptions.active", float64(s.subscriberCount()))
}

func (s *Store) subscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, set := range s.subs {
		count += len(set)
	}
	return count
}

func (s *Store) incrementCounter(name string, tags map[string]string) {
	if s.metrics != nil {
		s.metrics.IncrementCounter(name, tags)
	}
}

func (s *Store) recordGauge(name string, value float64, tags ...map[string]string) {
	if s.metrics != nil {
		labels := map[string]string{}
		if len(tags) > 0 {
			labels = tags[0]
		}
		s.metrics.RecordGauge(name, value, labels)
	}
}

func fieldForValidationErr(err error) string {
	switch err {
	case models.ErrInvalidKind:
		return "kind"
	case models.ErrNegativeAmount:
		return "amount"
	default:
		return "unknown"
	}
}
