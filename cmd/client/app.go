package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/TrueFit/internal/client/api"
	"github.com/atinyakov/TrueFit/internal/client/media"
	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/client/storage"
	"github.com/atinyakov/TrueFit/internal/client/view"
	"github.com/atinyakov/TrueFit/internal/config"
	"github.com/atinyakov/TrueFit/internal/db"
	"github.com/atinyakov/TrueFit/internal/repository"
)

// cleanInterval is how often stale SQL sessions are swept.
const cleanInterval = time.Hour

// app bundles everything a command needs.
type app struct {
	opts   *config.Options
	log    *zap.Logger
	store  *session.Store
	api    *api.Client
	media  media.Uploader
	router *view.Router
	pages  *view.App
	notify *view.Notifier
	prompt *storage.Prompter
	out    io.Writer

	// onListen is called once the OAuth receiver is accepting redirects.
	onListen func(baseURL string)

	closers []func()
}

// newApp builds the session backend, the API gateway, the media uploader
// and the pages from opts.
func newApp(ctx context.Context, opts *config.Options, log *zap.Logger, in io.Reader, out, errOut io.Writer) (*app, error) {
	a := &app{
		opts:   opts,
		log:    log,
		out:    out,
		notify: view.NewNotifier(errOut),
		prompt: storage.NewPrompter(in, out),
	}

	backend, err := a.sessionBackend(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	uploader, err := newUploader(ctx, opts)
	if err != nil {
		a.Close()
		return nil, err
	}

	hc, err := api.NewHTTPClient(opts.APICAFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	if err := a.wire(ctx, backend, uploader, hc); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// wire connects the pieces around backend and restores the saved session.
func (a *app) wire(ctx context.Context, backend session.Backend, uploader media.Uploader, hc *http.Client) error {
	a.store = session.NewStore(backend)
	if err := a.store.Restore(ctx); err != nil {
		a.log.Warn("failed to restore session", zap.Error(err))
	}

	a.router = view.NewRouter("")
	a.router.OnChange(func(from, to string) {
		a.log.Debug("navigate", zap.String("from", from), zap.String("to", to))
	})

	client, err := api.New(a.opts.APIBaseURL, a.store,
		api.WithHTTPClient(hc),
		api.WithNavigator(a.router),
		api.WithLogger(a.log),
	)
	if err != nil {
		return err
	}
	a.api = client
	a.media = uploader

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	a.pages = view.NewApp(client, a.store, a.router, a.notify, a.out, rng)
	a.closers = append(a.closers, a.pages.Close)
	return nil
}

func (a *app) sessionBackend(ctx context.Context) (session.Backend, error) {
	switch a.opts.SessionBackend {
	case config.BackendSQLite, config.BackendPostgres:
		dialect := db.SQLite
		if a.opts.SessionBackend == config.BackendPostgres {
			dialect = db.Postgres
		}
		conn, err := db.Open(dialect, a.opts.SessionDSN)
		if err != nil {
			return nil, fmt.Errorf("open session database: %w", err)
		}
		a.closers = append(a.closers, func() { _ = conn.Close() })

		cleanCtx, cancel := context.WithCancel(ctx)
		a.closers = append(a.closers, cancel)
		sweeper := db.NewSessionSweeper(conn, dialect, a.opts.SessionRetention, a.log)
		// Sweep before the store restores so an idle session is not revived.
		if _, err := sweeper.Sweep(ctx); err != nil {
			a.log.Warn("failed to clean stale sessions", zap.Error(err))
		}
		sweeper.Start(cleanCtx, cleanInterval)

		return repository.NewSQLSessionRepository(conn, dialect, a.opts.SessionProfile), nil
	default:
		path := a.opts.SessionFile
		if path == "" {
			p, err := storage.DefaultPath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		if a.opts.SessionKey == "" {
			return storage.NewFileStore(path, nil), nil
		}
		aead, err := storage.NewAEADFromSecret([]byte(a.opts.SessionKey))
		if err != nil {
			return nil, err
		}
		return storage.NewFileStore(path, aead), nil
	}
}

func newUploader(ctx context.Context, opts *config.Options) (media.Uploader, error) {
	if opts.MediaProvider == config.MediaS3 {
		return media.NewS3(ctx, opts.AWSRegion, opts.AWSBucket)
	}
	return media.NewCloudinary(opts.CloudinaryURL, opts.CloudinaryCloud, opts.CloudinaryPreset), nil
}

// Close releases everything newApp opened, last first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
