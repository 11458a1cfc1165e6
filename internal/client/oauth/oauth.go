// Package oauth completes Google sign-in for the terminal client. A session
// arrives either as token and username query parameters on a redirect URL or
// as an authorization code that is exchanged with the backend.
package oauth

import (
	"context"
	"fmt"
	"net/url"

	"github.com/atinyakov/TrueFit/internal/client/api"
)

// SessionLogin stores a session.
type SessionLogin interface {
	Login(ctx context.Context, token, username string) error
}

// Exchanger trades an authorization code for a session.
type Exchanger interface {
	OAuthCallback(ctx context.Context, code string) (api.Reply, error)
}

// Bootstrap logs in from a redirect URL carrying both token and username in
// its query. It reports false, and touches nothing, when either is missing.
func Bootstrap(ctx context.Context, rawURL string, store SessionLogin) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse url: %w", err)
	}
	return bootstrapQuery(ctx, u.Query(), store)
}

func bootstrapQuery(ctx context.Context, q url.Values, store SessionLogin) (bool, error) {
	token, username := q.Get("token"), q.Get("username")
	if token == "" || username == "" {
		return false, nil
	}
	if err := store.Login(ctx, token, username); err != nil {
		return false, fmt.Errorf("store session: %w", err)
	}
	return true, nil
}
