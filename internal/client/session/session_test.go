package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingBackend wraps a MemoryBackend and fails the configured operations.
type failingBackend struct {
	MemoryBackend
	loadErr  error
	saveErr  error
	clearErr error
	clears   int
}

func (f *failingBackend) Load(ctx context.Context) (Record, error) {
	if f.loadErr != nil {
		return Record{}, f.loadErr
	}
	return f.MemoryBackend.Load(ctx)
}

func (f *failingBackend) Save(ctx context.Context, r Record) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryBackend.Save(ctx, r)
}

func (f *failingBackend) Clear(ctx context.Context) error {
	f.clears++
	if f.clearErr != nil {
		return f.clearErr
	}
	return f.MemoryBackend.Clear(ctx)
}

func TestLogin_State(t *testing.T) {
	s := NewStore(NewMemoryBackend(Record{}))

	require.NoError(t, s.Login(context.Background(), "abc", "alice"))

	assert.Equal(t, State{IsAuthenticated: true, Username: "alice"}, s.State())
	assert.Equal(t, "abc", s.Token())
}

func TestLogin_RejectsPartial(t *testing.T) {
	backend := NewMemoryBackend(Record{})
	s := NewStore(backend)

	assert.ErrorIs(t, s.Login(context.Background(), "abc", ""), ErrIncomplete)
	assert.ErrorIs(t, s.Login(context.Background(), "", "alice"), ErrIncomplete)

	rec, _ := backend.Load(context.Background())
	assert.True(t, rec.Empty())
	assert.False(t, s.State().IsAuthenticated)
}

func TestLogin_SaveFailureForcesLogout(t *testing.T) {
	backend := &failingBackend{saveErr: errors.New("disk full")}
	s := NewStore(backend)
	s.set(Record{Token: "old", Username: "bob"})

	err := s.Login(context.Background(), "abc", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Equal(t, State{}, s.State())
	assert.Equal(t, "", s.Token())
	assert.Equal(t, 1, backend.clears)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name      string
		stored    Record
		wantState State
		wantKept  Record
	}{
		{
			name:      "complete session",
			stored:    Record{Token: "t", Username: "alice"},
			wantState: State{IsAuthenticated: true, Username: "alice"},
			wantKept:  Record{Token: "t", Username: "alice"},
		},
		{
			name: "nothing stored",
		},
		{
			name:   "token without username",
			stored: Record{Token: "t"},
		},
		{
			name:   "username without token",
			stored: Record{Username: "alice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := NewMemoryBackend(tt.stored)
			s := NewStore(backend)

			require.NoError(t, s.Restore(context.Background()))
			assert.Equal(t, tt.wantState, s.State())

			kept, _ := backend.Load(context.Background())
			assert.Equal(t, tt.wantKept, kept)
		})
	}
}

func TestRestore_LoadError(t *testing.T) {
	s := NewStore(&failingBackend{loadErr: errors.New("corrupt")})
	err := s.Restore(context.Background())
	require.Error(t, err)
	assert.False(t, s.State().IsAuthenticated)
}

func TestLogout_Idempotent(t *testing.T) {
	backend := NewMemoryBackend(Record{})
	s := NewStore(backend)
	require.NoError(t, s.Login(context.Background(), "abc", "alice"))

	require.NoError(t, s.Logout(context.Background()))
	once := s.State()
	onceRec, _ := backend.Load(context.Background())

	require.NoError(t, s.Logout(context.Background()))
	assert.Equal(t, once, s.State())
	twiceRec, _ := backend.Load(context.Background())
	assert.Equal(t, onceRec, twiceRec)
	assert.Equal(t, "", s.Token())
}

func TestLogout_BackendErrorStillClearsMemory(t *testing.T) {
	backend := &failingBackend{clearErr: errors.New("locked")}
	s := NewStore(backend)
	s.set(Record{Token: "abc", Username: "alice"})

	require.Error(t, s.Logout(context.Background()))
	assert.Equal(t, State{}, s.State())
	assert.Equal(t, "", s.Token())
}

func TestSubscribe(t *testing.T) {
	s := NewStore(NewMemoryBackend(Record{}))
	var got []State
	unsubscribe := s.Subscribe(func(st State) { got = append(got, st) })

	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "abc", "alice"))
	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Logout(ctx))

	require.Len(t, got, 2)
	assert.Equal(t, State{IsAuthenticated: true, Username: "alice"}, got[0])
	assert.Equal(t, State{}, got[1])

	unsubscribe()
	require.NoError(t, s.Login(ctx, "def", "bob"))
	assert.Len(t, got, 2)
}

// touchingBackend counts Touch calls.
type touchingBackend struct {
	MemoryBackend
	touches  int
	touchErr error
}

func (b *touchingBackend) Touch(context.Context) error {
	b.touches++
	return b.touchErr
}

func TestTouch(t *testing.T) {
	ctx := context.Background()

	b := &touchingBackend{MemoryBackend: MemoryBackend{rec: Record{Token: "abc", Username: "alice"}}}
	s := NewStore(b)
	require.NoError(t, s.Restore(ctx))
	assert.Equal(t, 1, b.touches, "restoring a session refreshes it")

	require.NoError(t, s.Touch(ctx))
	assert.Equal(t, 2, b.touches)

	require.NoError(t, s.Logout(ctx))
	require.NoError(t, s.Touch(ctx))
	assert.Equal(t, 2, b.touches, "nothing to refresh when logged out")

	b.touchErr = errors.New("db down")
	require.NoError(t, s.Login(ctx, "def", "bob"))
	assert.ErrorContains(t, s.Touch(ctx), "db down")

	// Backends without expiry are left alone.
	plain := NewStore(NewMemoryBackend(Record{Token: "abc", Username: "alice"}))
	require.NoError(t, plain.Restore(ctx))
	require.NoError(t, plain.Touch(ctx))
}

// TestSubscribe_ConcurrentLogins checks that every login is announced with
// its own state even when logins race.
func TestSubscribe_ConcurrentLogins(t *testing.T) {
	s := NewStore(NewMemoryBackend(Record{}))

	var (
		mu   sync.Mutex
		seen = map[string]int{}
	)
	s.Subscribe(func(st State) {
		mu.Lock()
		seen[st.Username]++
		mu.Unlock()
	})

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", i)
			assert.NoError(t, s.Login(context.Background(), "tok-"+user, user))
		}(i)
	}
	wg.Wait()

	// Each login changes the record, so each is delivered exactly once.
	mu.Lock()
	defer mu.Unlock()
	for i := 0; i < n; i++ {
		user := fmt.Sprintf("user%d", i)
		if seen[user] != 1 {
			t.Errorf("%s delivered %d times, want 1", user, seen[user])
		}
	}
}

// TestTokenAndUsernameTogether drives random operation sequences and checks
// that neither memory nor the backend ever holds half a session.
func TestTokenAndUsernameTogether(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	values := []string{"", "abc", "alice"}
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		backend := NewMemoryBackend(Record{
			Token:    values[rnd.Intn(len(values))],
			Username: values[rnd.Intn(len(values))],
		})
		s := NewStore(backend)

		for step := 0; step < 10; step++ {
			switch rnd.Intn(3) {
			case 0:
				_ = s.Restore(ctx)
			case 1:
				_ = s.Login(ctx, values[rnd.Intn(len(values))], values[rnd.Intn(len(values))])
			case 2:
				_ = s.Logout(ctx)
			}

			st := s.State()
			if st.IsAuthenticated != (s.Token() != "") || (s.Token() == "") != (st.Username == "") {
				t.Fatalf("partial in-memory session: state=%+v token=%q", st, s.Token())
			}
			rec, _ := backend.Load(ctx)
			if s.Token() != "" && !rec.Complete() {
				t.Fatalf("partial persisted session: %+v", rec)
			}
		}
	}
}

func TestParseClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := tok.SignedString([]byte("server-side-secret"))
	require.NoError(t, err)

	c, err := ParseClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Subject)
	assert.True(t, c.ExpiresAt.Equal(exp))
	assert.False(t, c.Expired(time.Now()))
	assert.True(t, c.Expired(exp.Add(time.Minute)))

	_, err = ParseClaims("not-a-jwt")
	assert.Error(t, err)
}
