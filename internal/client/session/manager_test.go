package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/velotrans/tms/internal/client/api"
	"github.com/velotrans/tms/internal/common"
)

type fakeRefresher struct {
	mu      sync.Mutex
	calls   int
	delay   time.Duration
	err     error
	payload *api.AuthPayload
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (*api.AuthPayload, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.payload, nil
}

func (f *fakeRefresher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeStore struct {
	mu     sync.Mutex
	saved  *api.AuthPayload
	clears int
}

func (f *fakeStore) Save(p *api.AuthPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = p
	return nil
}

func (f *fakeStore) Load() (*api.AuthPayload, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved, nil
}

func (f *fakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = nil
	f.clears++
	return nil
}

func payload(access, refresh string) *api.AuthPayload {
	return &api.AuthPayload{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         api.User{ID: "u1", Email: "a@x.com", Role: "employee"},
	}
}

func TestManager_StateTransitions(t *testing.T) {
	m := NewManager(&fakeRefresher{}, nil)
	if m.State() != StateAnonymous {
		t.Fatalf("initial state = %v, want anonymous", m.State())
	}

	m.SetSession(payload("a1", "r1"))
	if m.State() != StateAuthenticated {
		t.Fatalf("after SetSession state = %v, want authenticated", m.State())
	}
	if m.AccessToken() != "a1" || m.RefreshToken() != "r1" {
		t.Fatalf("tokens not installed: %q %q", m.AccessToken(), m.RefreshToken())
	}
	if u := m.User(); u == nil || u.Email != "a@x.com" {
		t.Fatalf("user not installed: %+v", u)
	}

	m.Clear()
	if m.State() != StateAnonymous {
		t.Fatalf("after Clear state = %v, want anonymous", m.State())
	}
	if m.AccessToken() != "" || m.RefreshToken() != "" || m.User() != nil {
		t.Fatal("Clear left session data behind")
	}
}

func TestManager_RestoresFromStore(t *testing.T) {
	store := &fakeStore{saved: payload("a1", "r1")}
	m := NewManager(&fakeRefresher{}, store)

	if m.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", m.State())
	}
	if m.AccessToken() != "a1" {
		t.Fatalf("access = %q, want a1", m.AccessToken())
	}
}

func TestDo_PassesThroughOnSuccess(t *testing.T) {
	refresher := &fakeRefresher{}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	var seen string
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		seen = token
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != "a1" {
		t.Fatalf("call got token %q, want a1", seen)
	}
	if refresher.callCount() != 0 {
		t.Fatal("refresh must not run on success")
	}
}

// Errors other than the authentication sentinel pass through without touching
// the session.
func TestDo_OtherErrorsPassThrough(t *testing.T) {
	refresher := &fakeRefresher{}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	boom := errors.New("boom")
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if refresher.callCount() != 0 {
		t.Fatal("refresh must not run for non-auth errors")
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", m.State())
	}
}

func TestDo_RefreshesAndReplaysOnce(t *testing.T) {
	refresher := &fakeRefresher{payload: payload("a2", "r2")}
	store := &fakeStore{}
	m := NewManager(refresher, store)
	m.SetSession(payload("a1", "r1"))

	var tokens []string
	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		tokens = append(tokens, token)
		if token == "a1" {
			return common.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tokens) != 2 || tokens[0] != "a1" || tokens[1] != "a2" {
		t.Fatalf("call sequence = %v, want [a1 a2]", tokens)
	}
	if refresher.callCount() != 1 {
		t.Fatalf("refresh calls = %d, want 1", refresher.callCount())
	}
	if m.RefreshToken() != "r2" {
		t.Fatalf("rotated token not installed: %q", m.RefreshToken())
	}

	store.mu.Lock()
	saved := store.saved
	store.mu.Unlock()
	if saved == nil || saved.AccessToken != "a2" {
		t.Fatalf("new pair not persisted: %+v", saved)
	}
}

// Concurrent callers hitting an invalid token must produce exactly one
// refresh exchange; everyone else waits for its outcome.
func TestDo_SingleFlightRefresh(t *testing.T) {
	refresher := &fakeRefresher{payload: payload("a2", "r2"), delay: 50 * time.Millisecond}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Do(context.Background(), func(ctx context.Context, token string) error {
				if token == "a1" {
					return common.ErrUnauthenticated
				}
				return nil
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := refresher.callCount(); got != 1 {
		t.Fatalf("refresh calls = %d, want exactly 1", got)
	}
	if m.State() != StateAuthenticated {
		t.Fatalf("state = %v, want authenticated", m.State())
	}
}

func TestDo_RefreshFailureExpiresSession(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("network down")}
	store := &fakeStore{saved: payload("a1", "r1")}
	m := NewManager(refresher, store)

	expired := m.Expired()

	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		return common.ErrUnauthenticated
	})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
	if m.State() != StateExpired {
		t.Fatalf("state = %v, want expired", m.State())
	}
	if m.AccessToken() != "" || m.RefreshToken() != "" {
		t.Fatal("expired session kept its tokens")
	}

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("expiry was not broadcast to the listener")
	}

	store.mu.Lock()
	clears := store.clears
	store.mu.Unlock()
	if clears == 0 {
		t.Fatal("persisted session not cleared on expiry")
	}
}

// Concurrent waiters all receive the failure when the shared exchange fails.
func TestDo_SingleFlightFailureReleasesAllWaiters(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("server says no"), delay: 50 * time.Millisecond}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	const n = 5
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Do(context.Background(), func(ctx context.Context, token string) error {
				return common.ErrUnauthenticated
			})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("want ErrExpired, got %v", err)
		}
	}
	if got := refresher.callCount(); got != 1 {
		t.Fatalf("refresh calls = %d, want exactly 1", got)
	}
}

// A second authentication failure after a successful refresh is terminal.
func TestDo_SecondFailureAfterRefreshIsTerminal(t *testing.T) {
	refresher := &fakeRefresher{payload: payload("a2", "r2")}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		return common.ErrUnauthenticated
	})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
	if m.State() != StateExpired {
		t.Fatalf("state = %v, want expired", m.State())
	}
}

func TestDo_NoRefreshTokenExpiresImmediately(t *testing.T) {
	refresher := &fakeRefresher{}
	m := NewManager(refresher, nil)
	m.SetSession(&api.AuthPayload{AccessToken: "a1"})

	err := m.Do(context.Background(), func(ctx context.Context, token string) error {
		return common.ErrUnauthenticated
	})
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("want ErrExpired, got %v", err)
	}
	if refresher.callCount() != 0 {
		t.Fatal("refresher must not be called without a refresh token")
	}
}

func TestDo_WaiterHonorsContext(t *testing.T) {
	refresher := &fakeRefresher{payload: payload("a2", "r2"), delay: 200 * time.Millisecond}
	m := NewManager(refresher, nil)
	m.SetSession(payload("a1", "r1"))

	// first caller owns the exchange
	go func() {
		_ = m.Do(context.Background(), func(ctx context.Context, token string) error {
			if token == "a1" {
				return common.ErrUnauthenticated
			}
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := m.Do(ctx, func(ctx context.Context, token string) error {
		if token == "a1" {
			return common.ErrUnauthenticated
		}
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want context.DeadlineExceeded, got %v", err)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateAnonymous, "anonymous"},
		{StateAuthenticated, "authenticated"},
		{StateRefreshing, "refreshing"},
		{StateExpired, "expired"},
	}
	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("%d.String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}
