package session

import "sync"

// Watcher is a live feed of identity changes. The channel conflates: a
// watcher that falls behind sees only the latest state. A nil value on the
// channel means signed out.
type Watcher struct {
	provider *Provider

	mu        sync.Mutex
	ch        chan *Identity
	cancelled bool
}

func newWatcher(p *Provider) *Watcher {
	return &Watcher{
		provider: p,
		ch:       make(chan *Identity, 1),
	}
}

// Identities returns the channel of identity changes. It is closed by Cancel.
func (w *Watcher) Identities() <-chan *Identity {
	return w.ch
}

// Cancel detaches the watcher and closes its channel. After Cancel returns no
// further value is ever delivered. Cancel is idempotent.
func (w *Watcher) Cancel() {
	w.provider.unwatch(w)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return
	}
	w.cancelled = true
	close(w.ch)
}

// deliver conflates: a pending undelivered state is replaced by the newer
// one. The mutex spans the cancelled check and the send so Cancel's
// no-delivery guarantee holds.
func (w *Watcher) deliver(identity *Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancelled {
		return
	}
	select {
	case <-w.ch:
	default:
	}
	w.ch <- identity
}
