package view

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"

	"github.com/atinyakov/TrueFit/internal/client/outfit"
	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/models"
)

// Backend is the part of the API gateway the pages read from.
type Backend interface {
	Profile(ctx context.Context) (models.UserProfile, error)
	Outfits(ctx context.Context) (models.Wardrobe, error)
	SharedWardrobeItems(ctx context.Context, owner string) (models.Wardrobe, error)
	SharedWardrobes(ctx context.Context) ([]models.SharedWardrobe, error)
	WardrobesSharedByMe(ctx context.Context) ([]models.SharedWardrobe, error)
	TryOn(ctx context.Context, clothID string) (models.TryOnResult, error)
	Users(ctx context.Context) ([]models.AdminUser, error)
	Brands(ctx context.Context) ([]models.Brand, error)
	Companies(ctx context.Context) ([]models.Company, error)
}

// Session is the read side of the session store.
type Session interface {
	State() session.State
	Subscribe(fn func(session.State)) (unsubscribe func())
}

// ErrAccessDenied is returned when a non-admin opens the admin page.
var ErrAccessDenied = errors.New("only admins can access this page")

var protected = map[string]bool{
	PathHome:     true,
	PathWardrobe: true,
	PathProfile:  true,
	PathAdmin:    true,
}

// App renders pages for the current session.
type App struct {
	backend Backend
	router  *Router
	notify  *Notifier
	out     io.Writer
	rng     outfit.Rand

	mu          sync.Mutex
	state       session.State
	role        string
	lastTryOn   *models.TryOnResult
	unsubscribe func()
}

// NewApp wires the pages to backend and follows sess for state changes.
func NewApp(backend Backend, sess Session, router *Router, notify *Notifier, out io.Writer, rng outfit.Rand) *App {
	a := &App{
		backend: backend,
		router:  router,
		notify:  notify,
		out:     out,
		rng:     rng,
		state:   sess.State(),
	}
	a.unsubscribe = sess.Subscribe(a.onSession)
	return a
}

// Close stops following the session.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

func (a *App) onSession(st session.State) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st != a.state {
		a.role = ""
	}
	a.state = st
}

func (a *App) session() (session.State, string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state, a.role
}

func (a *App) setRole(role string) {
	a.mu.Lock()
	a.role = role
	a.mu.Unlock()
}

// Open navigates to path and renders it.
func (a *App) Open(ctx context.Context, path string) error {
	a.router.Navigate(path)
	switch a.router.Path() {
	case PathHome:
		return a.Home(ctx)
	case PathWardrobe:
		return a.Wardrobe(ctx, "")
	case PathProfile:
		return a.Profile(ctx)
	case PathAdmin:
		return a.Admin(ctx)
	case PathLogin, PathSignup, PathCompleteProfile:
		fmt.Fprintf(a.out, "%s: use the login, register or complete-profile commands\n", path)
		return nil
	default:
		return fmt.Errorf("no page at %s", path)
	}
}

// guard sends unauthenticated users to the login page. It returns false
// when the page must not render.
func (a *App) guard() bool {
	st, _ := a.session()
	if !protected[a.router.Path()] || st.IsAuthenticated {
		return true
	}
	a.notify.Notify(VariantDestructive, "Authentication Required", "Please log in to continue")
	a.router.Redirect(PathLogin)
	return false
}

// Nav renders the navigation bar. The role is fetched once per session.
func (a *App) Nav(ctx context.Context) NavBar {
	st, role := a.session()
	if st.IsAuthenticated && role == "" {
		if p, err := a.backend.Profile(ctx); err == nil {
			role = p.Role
			a.setRole(role)
		}
		st, _ = a.session()
	}
	bar := BuildNav(st, role)
	bar.Render(a.out)
	return bar
}

// Home shows the last try-on result, or else today's outfit.
func (a *App) Home(ctx context.Context) error {
	if !a.guard() {
		return nil
	}
	gen := a.router.Generation()

	a.mu.Lock()
	tryOn := a.lastTryOn
	a.lastTryOn = nil
	a.mu.Unlock()

	if tryOn != nil {
		fmt.Fprintln(a.out, "Your Try-On Result")
		fmt.Fprintf(a.out, "  %s\n", tryOn.ResultImageURL)
		fmt.Fprintf(a.out, "  Try-on result for %s\n", tryOn.ItemName)
		return nil
	}

	gender := models.GenderMale
	if p, err := a.backend.Profile(ctx); err == nil {
		a.setRole(p.Role)
		if p.Gender == models.GenderFemale {
			gender = models.GenderFemale
		}
	}
	if !a.router.Current(gen) {
		return nil
	}

	w, err := a.backend.Outfits(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}

	o := outfit.Select(gender, outfit.NewInventory(w), a.rng)
	fmt.Fprintln(a.out, "Your Perfect Fit, Virtually")
	if o.Empty() {
		fmt.Fprintln(a.out, "No outfit suggestion today. Add clothes to your wardrobe.")
		return nil
	}
	fmt.Fprintf(a.out, "Today's Outfit (code %s)\n", outfit.Code(o))
	for _, it := range []*models.ClothingItem{o.Top, o.Bottom} {
		if it != nil {
			fmt.Fprintf(a.out, "  %-8s %s  %s\n", it.Category, it.Name, it.ImageURL)
		}
	}
	return nil
}

// Profile shows the user's profile.
func (a *App) Profile(ctx context.Context) error {
	if !a.guard() {
		return nil
	}
	gen := a.router.Generation()

	p, err := a.backend.Profile(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	a.setRole(p.Role)

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Username\t%s\n", p.Username)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Gender\t%s\n", p.Gender)
	fmt.Fprintf(tw, "Role\t%s\n", p.Role)
	fmt.Fprintf(tw, "Member since\t%s\n", p.CreatedAt)
	if p.ProfileImageURL != "" {
		fmt.Fprintf(tw, "Profile image\t%s\n", p.ProfileImageURL)
	}
	return tw.Flush()
}

// Wardrobe lists the user's items, or owner's when owner is set, followed
// by the sharing lists.
func (a *App) Wardrobe(ctx context.Context, owner string) error {
	if !a.guard() {
		return nil
	}
	gen := a.router.Generation()

	var (
		w   models.Wardrobe
		err error
	)
	if owner == "" {
		w, err = a.backend.Outfits(ctx)
	} else {
		w, err = a.backend.SharedWardrobeItems(ctx, owner)
	}
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}

	title := "My Wardrobe"
	if owner != "" {
		title = owner + "'s Wardrobe"
	}
	fmt.Fprintln(a.out, title)
	renderWardrobe(a.out, w)

	if owner != "" {
		return nil
	}

	shared, err := a.backend.SharedWardrobes(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	byMe, err := a.backend.WardrobesSharedByMe(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Shared with me: %s\n", usernames(shared))
	fmt.Fprintf(a.out, "Shared by me: %s\n", usernames(byMe))
	return nil
}

// Admin lists users, brands and companies. Non-admins are sent home.
func (a *App) Admin(ctx context.Context) error {
	if !a.guard() {
		return nil
	}
	gen := a.router.Generation()

	p, err := a.backend.Profile(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		a.router.Redirect(PathHome)
		a.notify.Notify(VariantDestructive, "Error", "Failed to verify admin status")
		return nil
	}
	a.setRole(p.Role)
	if !p.IsAdmin() {
		a.router.Redirect(PathHome)
		a.notify.Notify(VariantDestructive, "Access Denied", "Only admins can access this page")
		return ErrAccessDenied
	}

	users, err := a.backend.Users(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	brands, err := a.backend.Brands(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	companies, err := a.backend.Companies(ctx)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERS")
	fmt.Fprintln(tw, "Username\tEmail\tGender\tRole")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Username, u.Email, u.Gender, u.Role)
	}
	fmt.Fprintln(tw, "\nBRANDS")
	fmt.Fprintln(tw, "ID\tName\tDescription")
	for _, b := range brands {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Name, b.Description)
	}
	fmt.Fprintln(tw, "\nCOMPANIES")
	fmt.Fprintln(tw, "ID\tName\tDescription\tWebsite")
	for _, c := range companies {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Description, c.Website)
	}
	return tw.Flush()
}

// TryOn renders clothID on the profile image and shows the result on the
// home page.
func (a *App) TryOn(ctx context.Context, clothID, itemName string) error {
	gen := a.router.Generation()
	res, err := a.backend.TryOn(ctx, clothID)
	if !a.router.Current(gen) {
		return nil
	}
	if err != nil {
		return err
	}
	if itemName == "" {
		itemName = "item " + clothID
	}
	res.ItemName = itemName

	a.mu.Lock()
	a.lastTryOn = &res
	a.mu.Unlock()

	a.notify.Success("Try-on complete", res.Message)
	return a.Open(ctx, PathHome)
}

func renderWardrobe(w io.Writer, wr models.Wardrobe) {
	if len(wr) == 0 {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	cats := make([]string, 0, len(wr))
	for c := range wr {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range cats {
		fmt.Fprintf(tw, "%s (%d)\n", cat, len(wr[cat]))
		for _, c := range wr[cat] {
			it := outfit.Item(cat, c)
			fmt.Fprintf(tw, "  %s\t%s\t%s\t%v %s\t%s\n", it.ID, it.Name, it.Brand, it.Size, it.SizeMetrics, it.ImageURL)
		}
	}
	tw.Flush()
}

func usernames(list []models.SharedWardrobe) string {
	if len(list) == 0 {
		return "(none)"
	}
	s := ""
	for i, sw := range list {
		if i > 0 {
			s += ", "
		}
		s += sw.Username
	}
	return s
}
