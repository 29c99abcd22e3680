// Package session owns the client-side credential pair and the silent
// refresh flow: one conceptual session moving through
// Anonymous -> Authenticated -> Refreshing -> Authenticated | Expired.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/velotrans/tms/internal/client/api"
	"github.com/velotrans/tms/internal/common"
)

// ErrExpired is returned once the session is irrecoverable: no refresh token,
// a failed refresh exchange, or a call still unauthenticated after refresh.
var ErrExpired = errors.New("session expired")

type State int

const (
	StateAnonymous State = iota
	StateAuthenticated
	StateRefreshing
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	case StateExpired:
		return "expired"
	default:
		return "anonymous"
	}
}

// Refresher exchanges a refresh token for a new credential pair. *api.Client
// satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*api.AuthPayload, error)
}

// Store persists the credential pair across runs. May be nil for an
// in-memory-only session.
type Store interface {
	Save(p *api.AuthPayload) error
	Load() (*api.AuthPayload, error)
	Clear() error
}

type refreshResult struct {
	token string
	err   error
}

// Manager coordinates the token pair for one session. The refresh flow is
// single-flight: callers that hit an authorization failure while an exchange
// is in flight park themselves on the waiters list and are all released with
// the outcome, so a rotated refresh token is never raced.
type Manager struct {
	refresher Refresher
	store     Store

	mu         sync.Mutex
	state      State
	access     string
	refresh    string
	user       *api.User
	refreshing bool
	waiters    []chan refreshResult
	listeners  []chan struct{}
}

// NewManager builds a Manager, restoring a persisted session when store has
// one.
func NewManager(refresher Refresher, store Store) *Manager {
	m := &Manager{refresher: refresher, store: store}
	if store != nil {
		if p, err := store.Load(); err == nil && p != nil && p.AccessToken != "" {
			m.setSessionLocked(p)
		}
	}
	return m
}

// SetSession installs a fresh credential pair after login or registration.
func (m *Manager) SetSession(p *api.AuthPayload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setSessionLocked(p)
}

func (m *Manager) setSessionLocked(p *api.AuthPayload) {
	m.access = p.AccessToken
	m.refresh = p.RefreshToken
	user := p.User
	m.user = &user
	m.state = StateAuthenticated
	if m.store != nil {
		_ = m.store.Save(p)
	}
}

// Clear drops the session back to Anonymous (logout, or the user dismissing
// an expiry notice).
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.access, m.refresh, m.user = "", "", nil
	m.state = StateAnonymous
	if m.store != nil {
		_ = m.store.Clear()
	}
}

func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *Manager) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// Expired returns a channel that receives one notification when the session
// transitions to Expired. Every subscriber is notified; there is no way to
// target a single in-flight call.
func (m *Manager) Expired() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{}, 1)
	m.listeners = append(m.listeners, ch)
	return ch
}

// Do runs call with the current access token. On an authentication failure
// it performs (or joins) one refresh exchange and replays the call exactly
// once; a second failure is terminal and expires the session. Other errors
// pass through untouched.
func (m *Manager) Do(ctx context.Context, call func(ctx context.Context, accessToken string) error) error {
	m.mu.Lock()
	token := m.access
	m.mu.Unlock()

	err := call(ctx, token)
	if !errors.Is(err, common.ErrUnauthenticated) {
		return err
	}

	newToken, refreshErr := m.awaitRefresh(ctx, token)
	if refreshErr != nil {
		return refreshErr
	}

	err = call(ctx, newToken)
	if errors.Is(err, common.ErrUnauthenticated) {
		m.mu.Lock()
		m.expireLocked()
		m.mu.Unlock()
		return ErrExpired
	}
	return err
}

// awaitRefresh returns a usable access token, performing the refresh
// exchange itself or waiting on one already in flight. failedToken is the
// token the caller just failed with, so a refresh completed in the meantime
// is detected and reused without another exchange.
func (m *Manager) awaitRefresh(ctx context.Context, failedToken string) (string, error) {
	m.mu.Lock()

	if !m.refreshing && m.access != "" && m.access != failedToken {
		token := m.access
		m.mu.Unlock()
		return token, nil
	}

	if m.refresh == "" {
		m.expireLocked()
		m.mu.Unlock()
		return "", ErrExpired
	}

	if m.refreshing {
		ch := make(chan refreshResult, 1)
		m.waiters = append(m.waiters, ch)
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res := <-ch:
			return res.token, res.err
		}
	}

	m.refreshing = true
	m.state = StateRefreshing
	refreshToken := m.refresh
	m.mu.Unlock()

	// Network failure during the exchange fails closed: the session expires
	// rather than limping on with a stale pair.
	payload, err := m.refresher.Refresh(ctx, refreshToken)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.refreshing = false

	if err != nil {
		m.expireLocked()
		m.releaseWaiters(refreshResult{err: ErrExpired})
		return "", ErrExpired
	}

	m.setSessionLocked(payload)
	m.releaseWaiters(refreshResult{token: payload.AccessToken})
	return payload.AccessToken, nil
}

func (m *Manager) releaseWaiters(res refreshResult) {
	for _, ch := range m.waiters {
		ch <- res
	}
	m.waiters = nil
}

func (m *Manager) expireLocked() {
	m.access, m.refresh, m.user = "", "", nil
	m.state = StateExpired
	if m.store != nil {
		_ = m.store.Clear()
	}
	for _, ch := range m.listeners {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
