// Package api is the gateway to the TrueFit backend. Every call goes through
// one request path that attaches the bearer token, encodes the body by
// endpoint kind, maps failures to *APIError and evicts the session on 401.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoginPath is the login entry point the client is redirected to when the
// backend rejects its credentials.
const LoginPath = "/login"

// SessionContext is the part of the session store the gateway needs.
// *session.Store satisfies it.
type SessionContext interface {
	Token() string
	Login(ctx context.Context, token, username string) error
	Logout(ctx context.Context) error
}

// Navigator exposes the current location and performs redirects.
type Navigator interface {
	Location() string
	Redirect(path string)
}

// Client wraps every backend endpoint.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionContext
	nav     Navigator
	log     *zap.Logger
	newID   func() string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithNavigator sets the navigator consulted and redirected on 401.
func WithNavigator(nav Navigator) Option {
	return func(c *Client) { c.nav = nav }
}

// WithLogger sets the logger used for request outcomes.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a Client for the backend at baseURL.
func New(baseURL string, sess SessionContext, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.New("api base URL must be absolute")
	}
	if sess == nil {
		return nil, errors.New("session context is required")
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		// No Timeout: calls are bounded only by ctx.
		http:    &http.Client{},
		session: sess,
		nav:     noNavigator{},
		log:     zap.NewNop(),
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// evict clears the session and sends the navigator to the login page. It
// does nothing for endpoints that opt out or when the user is already on
// the login page.
func (c *Client) evict(ctx context.Context, ep Endpoint) bool {
	if ep.SuppressAuthRedirect || onLoginPage(c.nav.Location()) {
		return false
	}
	if err := c.session.Logout(ctx); err != nil {
		c.log.Warn("failed to clear session after 401", zap.String("endpoint", ep.Name), zap.Error(err))
	}
	c.nav.Redirect(LoginPath)
	return true
}

func onLoginPage(location string) bool {
	path := location
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	return path == LoginPath || strings.HasPrefix(path, LoginPath+"/")
}

type noNavigator struct{}

func (noNavigator) Location() string { return "" }
func (noNavigator) Redirect(string)  {}
