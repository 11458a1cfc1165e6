package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/models"
)

// Link is one navigation entry.
type Link struct {
	Label string
	Path  string
}

// NavBar is what the top bar shows for a session and role.
type NavBar struct {
	Links []Link
	// Greeting is "Welcome, <username>" when logged in.
	Greeting string
	// Logout is true when a logout action is offered.
	Logout bool
}

// BuildNav decides the navigation entries. Admins get the Admin Portal and
// lose the Wardrobe link.
func BuildNav(st session.State, role string) NavBar {
	if !st.IsAuthenticated {
		return NavBar{Links: []Link{{Label: "Login", Path: PathLogin}}}
	}

	admin := role == models.RoleAdmin
	links := []Link{{Label: "Home", Path: PathHome}}
	if !admin {
		links = append(links, Link{Label: "Wardrobe", Path: PathWardrobe})
	}
	if admin {
		links = append(links, Link{Label: "Admin Portal", Path: PathAdmin})
	}
	links = append(links, Link{Label: "Profile", Path: PathProfile})

	return NavBar{
		Links:    links,
		Greeting: "Welcome, " + st.Username,
		Logout:   true,
	}
}

// Render writes the bar on one line.
func (n NavBar) Render(w io.Writer) {
	parts := make([]string, 0, len(n.Links)+2)
	for _, l := range n.Links {
		parts = append(parts, fmt.Sprintf("%s (%s)", l.Label, l.Path))
	}
	if n.Greeting != "" {
		parts = append(parts, n.Greeting)
	}
	if n.Logout {
		parts = append(parts, "Logout")
	}
	fmt.Fprintf(w, "TrueFit3D | %s\n", strings.Join(parts, " | "))
}
