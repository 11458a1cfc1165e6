// Package session keeps the authenticated identity of the client: a bearer
// token and the username it belongs to, persisted through a Backend.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrIncomplete is returned by Login when either the token or the username
// is empty. A session always carries both.
var ErrIncomplete = errors.New("session requires both token and username")

// Record is the persisted form of a session under the fixed keys "token"
// and "username".
type Record struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Complete reports whether both values are present.
func (r Record) Complete() bool {
	return r.Token != "" && r.Username != ""
}

// Empty reports whether both values are absent.
func (r Record) Empty() bool {
	return r.Token == "" && r.Username == ""
}

// Backend persists a Record across runs.
type Backend interface {
	// Load returns the stored record. A missing record is not an error and
	// yields an empty Record.
	Load(ctx context.Context) (Record, error)
	// Save replaces the stored record with r.
	Save(ctx context.Context, r Record) error
	// Clear removes the stored record. Clearing an absent record is a no-op.
	Clear(ctx context.Context) error
}

// Toucher is implemented by backends that expire records left unused.
type Toucher interface {
	// Touch marks the stored record as in use now.
	Touch(ctx context.Context) error
}

// State is the read-only view consumers render from.
type State struct {
	IsAuthenticated bool
	Username        string
}

// Store is the single source of truth for "is the caller authenticated,
// and as whom".
type Store struct {
	backend Backend

	mu      sync.RWMutex
	current Record

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(State)
}

// NewStore returns a logged-out Store persisting through backend.
func NewStore(backend Backend) *Store {
	return &Store{
		backend: backend,
		subs:    make(map[int]func(State)),
	}
}

// Restore loads the persisted session. A record holding only one of the two
// values is treated as logged out and cleared from the backend.
func (s *Store) Restore(ctx context.Context) error {
	rec, err := s.backend.Load(ctx)
	if err != nil {
		s.set(Record{})
		return fmt.Errorf("load session: %w", err)
	}

	if !rec.Complete() {
		s.set(Record{})
		if rec.Empty() {
			return nil
		}
		if err := s.backend.Clear(ctx); err != nil {
			return fmt.Errorf("clear partial session: %w", err)
		}
		return nil
	}

	s.set(rec)
	return s.Touch(ctx)
}

// Touch keeps the persisted session from expiring on backends that sweep
// idle records. It does nothing when logged out.
func (s *Store) Touch(ctx context.Context) error {
	t, ok := s.backend.(Toucher)
	if !ok || !s.State().IsAuthenticated {
		return nil
	}
	if err := t.Touch(ctx); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}

// Login persists token and username and marks the session active. When
// persisting fails the session is forced to logged out and the error is
// returned.
func (s *Store) Login(ctx context.Context, token, username string) error {
	rec := Record{Token: token, Username: username}
	if !rec.Complete() {
		return ErrIncomplete
	}

	if err := s.backend.Save(ctx, rec); err != nil {
		logoutErr := s.Logout(ctx)
		return errors.Join(fmt.Errorf("save session: %w", err), logoutErr)
	}

	s.set(rec)
	return nil
}

// Logout clears both values. The in-memory state is always cleared, even
// when the backend fails. Calling it repeatedly is equivalent to calling it
// once.
func (s *Store) Logout(ctx context.Context) error {
	s.set(Record{})
	if err := s.backend.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// State returns a snapshot of the current session.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{IsAuthenticated: s.current.Complete(), Username: s.current.Username}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

// Subscribe registers fn to be called after every state change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) set(rec Record) {
	s.mu.Lock()
	changed := s.current != rec
	s.current = rec
	s.mu.Unlock()

	if changed {
		s.notify(State{IsAuthenticated: rec.Complete(), Username: rec.Username})
	}
}

// notify delivers st, the state set by the caller, rather than re-reading
// the store, which may already hold a later change.
func (s *Store) notify(st State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
