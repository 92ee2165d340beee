// Package session wraps the identity service behind a provider that exposes
// the current user (or none) as a push-based stream plus sign-in/sign-out
// actions. Everything downstream scopes data access by the identity it
// observes here.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"fintrack/internal/models"

	"github.com/google/uuid"
)

// Authenticator is the slice of the auth service the provider needs
type Authenticator interface {
	Authenticate(email, password string) (*models.User, error)
}

// Identity is the opaque user identity plus display label. The provider never
// interprets tokens; it only tracks who is signed in.
type Identity struct {
	ID          uuid.UUID
	Email       string
	DisplayName string
}

// AuthError wraps an identity-service rejection. It is transient: the login
// action stays available and nothing is retried automatically.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an AuthError
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// Provider tracks the signed-in identity and notifies watchers on change
type Provider struct {
	auth   Authenticator
	logger *slog.Logger

	mu       sync.Mutex
	current  *Identity
	watchers map[*Watcher]struct{}
}

// NewProvider creates a session provider over the given authenticator
func NewProvider(auth Authenticator, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		auth:     auth,
		logger:   logger,
		watchers: make(map[*Watcher]struct{}),
	}
}

// Current returns the signed-in identity, or nil when signed out
func (p *Provider) Current() *Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// SignIn authenticates and, on success, publishes the new identity to every
// watcher. A rejection is surfaced as an AuthError and leaves the session
// state untouched.
func (p *Provider) SignIn(email, password string) (*Identity, error) {
	user, err := p.auth.Authenticate(email, password)
	if err != nil {
		p.logger.Warn("sign-in rejected", "email", email, "error", err)
		return nil, &AuthError{Err: err}
	}

	identity := &Identity{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}

	p.publish(identity)
	return identity, nil
}

// SignOut clears the current identity and publishes "none" to every watcher
func (p *Provider) SignOut() {
	p.publish(nil)
}

// SwitchUser signs the current user out and signs the new one in as a single
// ordered operation: watchers observe none (and tear down their
// subscriptions) strictly before the new identity arrives. No timers are
// involved; the new subscription only opens once sign-in has completed.
func (p *Provider) SwitchUser(email, password string) (*Identity, error) {
	p.SignOut()
	return p.SignIn(email, password)
}

// Watch registers a watcher for identity changes. The current state is
// delivered immediately.
func (p *Provider) Watch() *Watcher {
	w := newWatcher(p)

	p.mu.Lock()
	p.watchers[w] = struct{}{}
	current := p.current
	p.mu.Unlock()

	w.deliver(current)
	return w
}

// Close cancels every watcher
func (p *Provider) Close() {
	p.mu.Lock()
	var all []*Watcher
	for w := range p.watchers {
		all = append(all, w)
	}
	p.mu.Unlock()

	for _, w := range all {
		w.Cancel()
	}
}

func (p *Provider) publish(identity *Identity) {
	p.mu.Lock()
	p.current = identity
	targets := make([]*Watcher, 0, len(p.watchers))
	for w := range p.watchers {
		targets = append(targets, w)
	}
	p.mu.Unlock()

	for _, w := range targets {
		w.deliver(identity)
	}
}

func (p *Provider) unwatch(w *Watcher) {
	p.mu.Lock()
	delete(p.watchers, w)
	p.mu.Unlock()
}
