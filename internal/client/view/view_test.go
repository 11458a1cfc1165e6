package view

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/models"
)

type fakeBackend struct {
	profile    models.UserProfile
	profileErr error
	wardrobe   models.Wardrobe
	// onProfile runs inside Profile, before it returns.
	onProfile func()
	usersErr  error
	onUsers   func()
	calls     []string
}

func (f *fakeBackend) Profile(context.Context) (models.UserProfile, error) {
	f.calls = append(f.calls, "Profile")
	if f.onProfile != nil {
		f.onProfile()
	}
	return f.profile, f.profileErr
}

func (f *fakeBackend) Outfits(context.Context) (models.Wardrobe, error) {
	f.calls = append(f.calls, "Outfits")
	return f.wardrobe, nil
}

func (f *fakeBackend) SharedWardrobeItems(_ context.Context, owner string) (models.Wardrobe, error) {
	f.calls = append(f.calls, "SharedWardrobeItems:"+owner)
	return f.wardrobe, nil
}

func (f *fakeBackend) SharedWardrobes(context.Context) ([]models.SharedWardrobe, error) {
	return []models.SharedWardrobe{{Username: "bob"}}, nil
}

func (f *fakeBackend) WardrobesSharedByMe(context.Context) ([]models.SharedWardrobe, error) {
	return nil, nil
}

func (f *fakeBackend) TryOn(_ context.Context, clothID string) (models.TryOnResult, error) {
	return models.TryOnResult{Message: "ok", ResultImageURL: "https://cdn/result-" + clothID + ".png"}, nil
}

func (f *fakeBackend) Users(context.Context) ([]models.AdminUser, error) {
	f.calls = append(f.calls, "Users")
	if f.onUsers != nil {
		f.onUsers()
	}
	if f.usersErr != nil {
		return nil, f.usersErr
	}
	return []models.AdminUser{{Username: "alice", Role: models.RoleAdmin}}, nil
}

func (f *fakeBackend) Brands(context.Context) ([]models.Brand, error) {
	f.calls = append(f.calls, "Brands")
	return []models.Brand{{ID: 1, Name: "Acme"}}, nil
}

func (f *fakeBackend) Companies(context.Context) ([]models.Company, error) {
	return []models.Company{{ID: 2, Name: "Corp", Website: "https://corp.example"}}, nil
}

type fixture struct {
	app     *App
	store   *session.Store
	router  *Router
	backend *fakeBackend
	out     *bytes.Buffer
	notes   *bytes.Buffer
}

func newFixture(t *testing.T, loggedIn bool) *fixture {
	t.Helper()
	store := session.NewStore(session.NewMemoryBackend(session.Record{}))
	if loggedIn {
		require.NoError(t, store.Login(context.Background(), "tok", "alice"))
	}
	f := &fixture{
		store:   store,
		router:  NewRouter(""),
		backend: &fakeBackend{},
		out:     &bytes.Buffer{},
		notes:   &bytes.Buffer{},
	}
	f.app = NewApp(f.backend, store, f.router, NewNotifier(f.notes), f.out, rand.New(rand.NewSource(1)))
	t.Cleanup(f.app.Close)
	return f
}

func TestBuildNav(t *testing.T) {
	labels := func(n NavBar) []string {
		var out []string
		for _, l := range n.Links {
			out = append(out, l.Label)
		}
		return out
	}

	anon := BuildNav(session.State{}, "")
	assert.Equal(t, []string{"Login"}, labels(anon))
	assert.False(t, anon.Logout)
	assert.Empty(t, anon.Greeting)

	user := BuildNav(session.State{IsAuthenticated: true, Username: "alice"}, models.RoleUser)
	assert.Equal(t, []string{"Home", "Wardrobe", "Profile"}, labels(user))
	assert.Equal(t, "Welcome, alice", user.Greeting)
	assert.True(t, user.Logout)

	admin := BuildNav(session.State{IsAuthenticated: true, Username: "root"}, models.RoleAdmin)
	assert.Equal(t, []string{"Home", "Admin Portal", "Profile"}, labels(admin))
}

func TestNav_FetchesRoleAndResetsOnLogout(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Username: "alice", Role: models.RoleAdmin}

	bar := f.app.Nav(context.Background())
	assert.Contains(t, f.out.String(), "Admin Portal (/admin)")
	assert.True(t, bar.Logout)

	bar = f.app.Nav(context.Background())
	assert.Equal(t, []string{"Profile"}, f.backend.calls, "role should be cached")
	assert.True(t, bar.Logout)

	require.NoError(t, f.store.Logout(context.Background()))
	bar = f.app.Nav(context.Background())
	assert.Equal(t, []Link{{Label: "Login", Path: PathLogin}}, bar.Links)
}

func TestGuard_RedirectsAnonymous(t *testing.T) {
	for _, p := range []string{PathHome, PathWardrobe, PathProfile, PathAdmin} {
		t.Run(p, func(t *testing.T) {
			f := newFixture(t, false)

			require.NoError(t, f.app.Open(context.Background(), p))
			assert.Equal(t, PathLogin, f.router.Location())
			assert.Contains(t, f.notes.String(), "Authentication Required")
			assert.Empty(t, f.backend.calls)
		})
	}
}

func TestAdmin_NonAdminSentHome(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Username: "alice", Role: models.RoleUser}

	err := f.app.Open(context.Background(), PathAdmin)
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Equal(t, PathHome, f.router.Location())
	assert.Contains(t, f.notes.String(), "[destructive] Access Denied")
	assert.NotContains(t, f.backend.calls, "Users")
}

func TestAdmin_ProfileErrorSentHome(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profileErr = errors.New("boom")

	require.NoError(t, f.app.Open(context.Background(), PathAdmin))
	assert.Equal(t, PathHome, f.router.Location())
	assert.Contains(t, f.notes.String(), "Failed to verify admin status")
}

func TestAdmin_RendersTables(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Username: "alice", Role: models.RoleAdmin}

	require.NoError(t, f.app.Open(context.Background(), PathAdmin))
	out := f.out.String()
	assert.Contains(t, out, "USERS")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "https://corp.example")
}

func TestAdmin_EvictedMidPage(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Username: "alice", Role: models.RoleAdmin}
	f.backend.usersErr = errors.New("Unauthorized")
	f.backend.onUsers = func() { f.router.Redirect(PathLogin) }

	require.NoError(t, f.app.Open(context.Background(), PathAdmin))
	assert.Empty(t, f.out.String())
	assert.NotContains(t, f.backend.calls, "Brands")
	assert.Equal(t, PathLogin, f.router.Location())
}

func TestHome_Outfit(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Gender: models.GenderMale}
	f.backend.wardrobe = models.Wardrobe{
		models.CategoryTshirts: {{ID: 1, Name: "Tee"}},
		models.CategoryJeans:   {{ID: 3, Name: "Denim"}},
		models.CategorySkirts:  {{ID: 4, Name: "Pleated"}},
	}

	require.NoError(t, f.app.Open(context.Background(), PathHome))
	out := f.out.String()
	assert.Contains(t, out, "Today's Outfit (code 1-3)")
	assert.Contains(t, out, "Tee")
	assert.Contains(t, out, "Denim")
	assert.NotContains(t, out, "Pleated")
}

func TestHome_EmptyWardrobe(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.app.Open(context.Background(), PathHome))
	assert.Contains(t, f.out.String(), "No outfit suggestion today")
}

func TestHome_StaleResponseIgnored(t *testing.T) {
	f := newFixture(t, true)
	f.backend.onProfile = func() { f.router.Navigate(PathProfile) }

	require.NoError(t, f.app.Home(context.Background()))
	assert.Empty(t, f.out.String())
	assert.NotContains(t, f.backend.calls, "Outfits")
}

func TestTryOn_ShowsResultOnce(t *testing.T) {
	f := newFixture(t, true)

	require.NoError(t, f.app.TryOn(context.Background(), "9", "Tee"))
	assert.Equal(t, PathHome, f.router.Location())
	assert.Contains(t, f.out.String(), "Try-on result for Tee")
	assert.Contains(t, f.out.String(), "https://cdn/result-9.png")
	assert.Contains(t, f.notes.String(), "[success] Try-on complete")

	f.out.Reset()
	require.NoError(t, f.app.Open(context.Background(), PathHome))
	assert.NotContains(t, f.out.String(), "Try-on result")
}

func TestWardrobe(t *testing.T) {
	f := newFixture(t, true)
	f.backend.wardrobe = models.Wardrobe{models.CategoryJeans: {{ID: 3, Brand: "Acme"}}}

	require.NoError(t, f.app.Open(context.Background(), PathWardrobe))
	out := f.out.String()
	assert.Contains(t, out, "My Wardrobe")
	assert.Contains(t, out, "Jeans - Acme")
	assert.Contains(t, out, "Shared with me: bob")
	assert.Contains(t, out, "Shared by me: (none)")

	f.out.Reset()
	require.NoError(t, f.app.Wardrobe(context.Background(), "bob"))
	assert.Contains(t, f.out.String(), "bob's Wardrobe")
	assert.Contains(t, f.backend.calls, "SharedWardrobeItems:bob")
}

func TestProfile(t *testing.T) {
	f := newFixture(t, true)
	f.backend.profile = models.UserProfile{Username: "alice", Email: "a@b.c", Gender: "female", Role: "USER", CreatedAt: "2024-01-01"}

	require.NoError(t, f.app.Open(context.Background(), PathProfile))
	out := f.out.String()
	assert.Contains(t, out, "a@b.c")
	assert.Contains(t, out, "2024-01-01")
	assert.NotContains(t, out, "Profile image")
}

func TestOpen_UnknownPage(t *testing.T) {
	f := newFixture(t, true)
	assert.Error(t, f.app.Open(context.Background(), "/nowhere"))
}

func TestRouter(t *testing.T) {
	r := NewRouter("")
	assert.Equal(t, PathHome, r.Location())

	var moves []string
	r.OnChange(func(from, to string) { moves = append(moves, from+">"+to) })

	gen := r.Navigate("/wardrobe?owner=bob")
	assert.True(t, r.Current(gen))
	assert.Equal(t, "/wardrobe", r.Path())

	r.Redirect(PathLogin)
	assert.False(t, r.Current(gen))
	assert.Equal(t, []string{"/>/wardrobe?owner=bob", "/wardrobe?owner=bob>/login"}, moves)
}

func TestNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(&buf)
	n.Success("Saved", "")
	n.Error("Upload failed", errors.New("too big"))
	assert.Equal(t, "[success] Saved\n[destructive] Upload failed: too big\n", buf.String())
}
