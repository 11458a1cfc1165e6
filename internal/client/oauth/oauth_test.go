package oauth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/TrueFit/internal/client/api"
)

type fakeStore struct {
	token, username string
	logins          int
	err             error
}

func (f *fakeStore) Login(_ context.Context, token, username string) error {
	f.logins++
	if f.err != nil {
		return f.err
	}
	f.token, f.username = token, username
	return nil
}

type fakeExchanger struct {
	reply api.Reply
	err   error
	codes []string
}

func (f *fakeExchanger) OAuthCallback(_ context.Context, code string) (api.Reply, error) {
	f.codes = append(f.codes, code)
	return f.reply, f.err
}

func TestBootstrap(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		want   bool
		logins int
	}{
		{"token and username", "http://localhost:3000/?token=abc&username=alice", true, 1},
		{"token only", "http://localhost:3000/?token=abc", false, 0},
		{"username only", "/?username=alice", false, 0},
		{"no query", "http://localhost:3000/wardrobe", false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			ok, err := Bootstrap(context.Background(), tt.url, store)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.logins, store.logins)
			if tt.want {
				assert.Equal(t, "abc", store.token)
				assert.Equal(t, "alice", store.username)
			}
		})
	}
}

func TestBootstrap_Errors(t *testing.T) {
	_, err := Bootstrap(context.Background(), "http://[::1", &fakeStore{})
	assert.Error(t, err)

	store := &fakeStore{err: errors.New("disk full")}
	ok, err := Bootstrap(context.Background(), "/?token=abc&username=alice", store)
	assert.False(t, ok)
	assert.ErrorContains(t, err, "disk full")
}

func serve(t *testing.T, rc *Receiver, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "127.0.0.1:40000"
	rc.Handler().ServeHTTP(rec, req)
	return rec
}

func TestReceiver_TokenRedirect(t *testing.T) {
	store := &fakeStore{}
	rc := NewReceiver(&fakeExchanger{}, store, nil)

	rec := serve(t, rc, "/?token=abc&username=alice")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Signed in as alice")
	assert.Equal(t, "alice", store.username)

	res := <-rc.Results()
	assert.Equal(t, Result{Username: "alice"}, res)
}

func TestReceiver_CodeExchange(t *testing.T) {
	ex := &fakeExchanger{reply: api.Reply{Token: "tok", Username: "bob"}}
	rc := NewReceiver(ex, &fakeStore{}, nil)

	rec := serve(t, rc, "/callback?code=4%2Fxyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"4/xyz"}, ex.codes)
	assert.Equal(t, Result{Username: "bob"}, <-rc.Results())
}

func TestReceiver_CodeNeedsProfile(t *testing.T) {
	ex := &fakeExchanger{reply: api.Reply{Message: "profile incomplete", Email: "new@example.com"}}
	rc := NewReceiver(ex, &fakeStore{}, nil)

	rec := serve(t, rc, "/callback?code=c1")
	assert.Contains(t, rec.Body.String(), "Finish your profile")
	assert.Equal(t, Result{NeedsProfile: true, Email: "new@example.com"}, <-rc.Results())
}

func TestReceiver_Failures(t *testing.T) {
	ex := &fakeExchanger{err: &api.APIError{Status: 500, Message: "Failed to complete Google sign-in"}}
	rc := NewReceiver(ex, &fakeStore{}, nil)

	rec := serve(t, rc, "/callback?code=c1")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to complete Google sign-in")
	res := <-rc.Results()
	assert.Error(t, res.Err)

	rec = serve(t, rc, "/callback?error=access_denied")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	select {
	case <-rc.Results():
		t.Fatal("only the first result is delivered")
	default:
	}

	rec = serve(t, rc, "/callback")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReceiver_RejectsRemote(t *testing.T) {
	store := &fakeStore{}
	rc := NewReceiver(&fakeExchanger{}, store, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/?token=abc&username=alice", nil)
	req.RemoteAddr = "203.0.113.9:1234"
	rc.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, store.logins)
}

func TestReceiver_ListenAndWait(t *testing.T) {
	store := &fakeStore{}
	rc := NewReceiver(&fakeExchanger{}, store, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res, err := rc.ListenAndWait(ctx, "127.0.0.1:0", func(baseURL string) {
		go func() {
			resp, err := http.Get(baseURL + "/callback?token=abc&username=alice")
			if err == nil {
				resp.Body.Close()
			}
		}()
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Username)
	assert.Equal(t, "abc", store.token)
}

func TestReceiver_ListenAndWaitCancelled(t *testing.T) {
	rc := NewReceiver(&fakeExchanger{}, &fakeStore{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rc.ListenAndWait(ctx, "127.0.0.1:0", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
