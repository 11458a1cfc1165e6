package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/atinyakov/TrueFit/internal/middleware"
)

// DefaultAddr is where the receiver listens unless configured otherwise.
const DefaultAddr = "127.0.0.1:8085"

// Result is the outcome of one OAuth redirect.
type Result struct {
	// Username is set when a session was stored.
	Username string
	// NeedsProfile means the Google account has no TrueFit profile yet;
	// the caller must complete it for Email.
	NeedsProfile bool
	Email        string
	Err          error
}

// Receiver answers the browser redirect of a Google sign-in on a loopback
// address.
type Receiver struct {
	exchanger Exchanger
	store     SessionLogin
	log       *zap.Logger

	results chan Result
	once    sync.Once
}

// NewReceiver returns a Receiver storing sessions in store and exchanging
// codes through ex.
func NewReceiver(ex Exchanger, store SessionLogin, log *zap.Logger) *Receiver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Receiver{
		exchanger: ex,
		store:     store,
		log:       log,
		results:   make(chan Result, 1),
	}
}

// Handler builds the receiver's routes.
//
// Routes:
//
//	GET /          → callback
//	GET /callback  → callback
//
// Middleware chain: Recoverer, WithRequestLogging, LoopbackOnly.
func (rc *Receiver) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.WithRequestLogging(rc.log))
	r.Use(middleware.LoopbackOnly)

	r.Get("/", rc.callback)
	r.Get("/callback", rc.callback)

	return r
}

// Results delivers the first completed redirect. Later ones are answered
// but dropped.
func (rc *Receiver) Results() <-chan Result {
	return rc.results
}

func (rc *Receiver) callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := r.Context()

	var res Result
	switch {
	case q.Get("token") != "" && q.Get("username") != "":
		if _, err := bootstrapQuery(ctx, q, rc.store); err != nil {
			res.Err = err
		} else {
			res.Username = q.Get("username")
		}
	case q.Get("code") != "":
		reply, err := rc.exchanger.OAuthCallback(ctx, q.Get("code"))
		switch {
		case err != nil:
			res.Err = err
		case reply.Token != "" && reply.Username != "":
			res.Username = reply.Username
		default:
			res.NeedsProfile = true
			res.Email = reply.Email
		}
	case q.Get("error") != "":
		res.Err = fmt.Errorf("google sign-in: %s", q.Get("error"))
	default:
		http.Error(w, "missing token or code", http.StatusBadRequest)
		return
	}

	rc.deliver(res)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	switch {
	case res.Err != nil:
		w.WriteHeader(http.StatusBadGateway)
		_, _ = fmt.Fprintf(w, "Sign-in failed: %v\n", res.Err)
	case res.NeedsProfile:
		_, _ = fmt.Fprintln(w, "Almost there. Finish your profile in the terminal.")
	default:
		_, _ = fmt.Fprintf(w, "Signed in as %s. You can close this window.\n", res.Username)
	}
}

func (rc *Receiver) deliver(res Result) {
	rc.once.Do(func() {
		rc.results <- res
	})
}

// ListenAndWait serves on addr until the first redirect completes or ctx is
// done, then shuts the server down. ready is called with the base URL once
// the listener is up.
func (rc *Receiver) ListenAndWait(ctx context.Context, addr string, ready func(baseURL string)) (Result, error) {
	if addr == "" {
		addr = DefaultAddr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Result{}, fmt.Errorf("listen %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           rc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	baseURL := "http://" + ln.Addr().String()
	rc.log.Info("waiting for oauth redirect", zap.String("addr", baseURL))
	if ready != nil {
		ready(baseURL)
	}

	var (
		res     Result
		waitErr error
	)
	select {
	case res = <-rc.results:
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			waitErr = fmt.Errorf("serve: %w", err)
		}
	case <-ctx.Done():
		waitErr = ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rc.log.Warn("failed to shut down oauth receiver", zap.Error(err))
	}
	return res, waitErr
}
