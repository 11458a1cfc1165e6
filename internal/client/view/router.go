// Package view renders the client pages as text and keeps track of which
// page is current.
package view

import (
	"strings"
	"sync"
)

// Page paths.
const (
	PathHome            = "/"
	PathLogin           = "/login"
	PathSignup          = "/signup"
	PathCompleteProfile = "/complete-profile"
	PathWardrobe        = "/wardrobe"
	PathProfile         = "/profile"
	PathAdmin           = "/admin"
)

// Router holds the current location. Each move bumps a generation counter
// so a page can tell whether it is still the one on screen.
type Router struct {
	mu       sync.Mutex
	location string
	gen      uint64
	onChange func(from, to string)
}

// NewRouter starts at start, or at the home page when start is empty.
func NewRouter(start string) *Router {
	if start == "" {
		start = PathHome
	}
	return &Router{location: start}
}

// OnChange registers fn to be called after every move.
func (r *Router) OnChange(fn func(from, to string)) {
	r.mu.Lock()
	r.onChange = fn
	r.mu.Unlock()
}

// Location returns the current path, query included.
func (r *Router) Location() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.location
}

// Path returns the current path without the query.
func (r *Router) Path() string {
	loc := r.Location()
	if i := strings.IndexAny(loc, "?#"); i >= 0 {
		return loc[:i]
	}
	return loc
}

// Navigate moves to path and returns the new generation.
func (r *Router) Navigate(path string) uint64 {
	r.mu.Lock()
	from := r.location
	r.location = path
	r.gen++
	gen := r.gen
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn(from, path)
	}
	return gen
}

// Redirect moves to path. It satisfies api.Navigator.
func (r *Router) Redirect(path string) {
	r.Navigate(path)
}

// Generation identifies the current visit.
func (r *Router) Generation() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gen
}

// Current reports whether gen is still the visit on screen.
func (r *Router) Current(gen uint64) bool {
	return r.Generation() == gen
}
