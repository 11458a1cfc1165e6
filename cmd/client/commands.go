package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atinyakov/TrueFit/internal/client/api"
	"github.com/atinyakov/TrueFit/internal/client/media"
	"github.com/atinyakov/TrueFit/internal/client/oauth"
	"github.com/atinyakov/TrueFit/internal/client/session"
	"github.com/atinyakov/TrueFit/internal/client/view"
	"github.com/atinyakov/TrueFit/internal/logger"
)

// errExit ends the shell.
var errExit = errors.New("exit")

type command struct {
	usage string
	// args is the minimum number of arguments after the command name.
	args int
	run  func(ctx context.Context, a *app, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help": {usage: "help", run: cmdHelp},
		"exit": {usage: "exit", run: func(context.Context, *app, []string) error { return errExit }},

		"login":            {usage: "login <user> <pass>", args: 2, run: cmdLogin},
		"register":         {usage: "register <user> <email> <gender>", args: 3, run: cmdRegister},
		"logout":           {usage: "logout", run: cmdLogout},
		"whoami":           {usage: "whoami", run: cmdWhoami},
		"open":             {usage: "open <url>", args: 1, run: cmdOpen},
		"oauth":            {usage: "oauth", run: cmdOAuth},
		"complete-profile": {usage: "complete-profile <email> <user> <gender>", args: 3, run: cmdCompleteProfile},

		"forgot-password": {usage: "forgot-password <email>", args: 1, run: cmdForgotPassword},
		"verify-otp":      {usage: "verify-otp <email> <otp>", args: 2, run: cmdVerifyOTP},
		"reset-password":  {usage: "reset-password <email> <otp>", args: 2, run: cmdResetPassword},

		"profile":              {usage: "profile", run: page(view.PathProfile)},
		"update-profile":       {usage: "update-profile <name> <gender>", args: 2, run: cmdUpdateProfile},
		"upload-profile-image": {usage: "upload-profile-image <path>", args: 1, run: cmdUploadProfileImage},
		"set-profile-image":    {usage: "set-profile-image <url>", args: 1, run: cmdSetProfileImage},
		"change-password":      {usage: "change-password", run: cmdChangePassword},

		"home":     {usage: "home", run: page(view.PathHome)},
		"wardrobe": {usage: "wardrobe", run: page(view.PathWardrobe)},
		"admin":    {usage: "admin", run: page(view.PathAdmin)},
		"nav":      {usage: "nav", run: cmdNav},

		"upload-cloth":        {usage: "upload-cloth <path>", args: 1, run: cmdUploadCloth},
		"add-cloth":           {usage: "add-cloth <path>", args: 1, run: cmdAddCloth},
		"favorite":            {usage: "favorite <clothId>", args: 1, run: clothAction((*api.Client).FavoriteCloth)},
		"unfavorite":          {usage: "unfavorite <clothId>", args: 1, run: clothAction((*api.Client).UnfavoriteCloth)},
		"like":                {usage: "like <clothId>", args: 1, run: clothAction((*api.Client).LikeCloth)},
		"dislike":             {usage: "dislike <clothId>", args: 1, run: clothAction((*api.Client).DislikeCloth)},
		"like-combination":    {usage: "like-combination <code>", args: 1, run: clothAction((*api.Client).LikeCombination)},
		"dislike-combination": {usage: "dislike-combination <code>", args: 1, run: clothAction((*api.Client).DislikeCombination)},
		"share":               {usage: "share <user>", args: 1, run: clothAction((*api.Client).ShareWardrobe)},
		"unshare":             {usage: "unshare <user>", args: 1, run: clothAction((*api.Client).UnshareWardrobe)},
		"shared":              {usage: "shared <owner>", args: 1, run: cmdShared},
		"try-on":              {usage: "try-on <clothId> [name]", args: 1, run: cmdTryOn},

		"admin-users":  {usage: "admin-users", run: cmdAdminUsers},
		"create-admin": {usage: "create-admin <user> <email> <gender>", args: 3, run: cmdCreateAdmin},
		"brands":       {usage: "brands [add <name> [description] | update <id> <name> [description] | delete <id>]", run: cmdBrands},
		"companies":    {usage: "companies [add <name> [website] [description] | update <id> <name> [website] [description] | delete <id>]", run: cmdCompanies},
	}
}

// run executes one command line.
func (a *app) run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd, ok := commands[argv[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, type 'help' for a list of commands", argv[0])
	}
	args := argv[1:]
	if len(args) < cmd.args {
		return fmt.Errorf("usage: %s", cmd.usage)
	}
	return cmd.run(ctx, a, args)
}

func cmdHelp(_ context.Context, a *app, _ []string) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(a.out, "Available commands:")
	for _, name := range names {
		fmt.Fprintf(a.out, "  %s\n", commands[name].usage)
	}
	return nil
}

func page(path string) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, _ []string) error {
		return a.pages.Open(ctx, path)
	}
}

func cmdNav(ctx context.Context, a *app, _ []string) error {
	a.pages.Nav(ctx)
	return nil
}

// cmdLogin runs from the login page, as in the browser, so a 401 means a
// wrong password and leaves any current session alone.
func cmdLogin(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathLogin)
	if _, err := a.api.Login(ctx, api.Credentials{Username: args[0], Password: args[1]}); err != nil {
		return err
	}
	a.notify.Success("Login successful", "Welcome back, "+args[0])
	return a.pages.Open(ctx, view.PathHome)
}

func cmdRegister(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathSignup)
	pw, confirm, err := a.prompt.Passwords()
	if err != nil {
		return err
	}
	_, err = a.api.Register(ctx, api.RegisterData{
		Username:        args[0],
		Email:           args[1],
		Gender:          args[2],
		Password:        pw,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	if a.store.State().IsAuthenticated {
		a.notify.Success("Account created", "Welcome, "+args[0])
		return a.pages.Open(ctx, view.PathHome)
	}
	a.notify.Success("Account created", "Please log in")
	a.router.Navigate(view.PathLogin)
	return nil
}

func cmdLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	a.router.Navigate(view.PathLogin)
	a.notify.Success("Logged out", "")
	return nil
}

func cmdWhoami(_ context.Context, a *app, _ []string) error {
	st := a.store.State()
	if !st.IsAuthenticated {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Username\t%s\n", st.Username)
	fmt.Fprintf(tw, "Token\t%s\n", logger.RedactToken(a.store.Token()))
	if c, err := session.ParseClaims(a.store.Token()); err == nil {
		if c.Subject != "" {
			fmt.Fprintf(tw, "Subject\t%s\n", c.Subject)
		}
		if !c.ExpiresAt.IsZero() {
			state := "valid"
			if c.Expired(time.Now()) {
				state = "expired"
			}
			fmt.Fprintf(tw, "Expires\t%s (%s)\n", c.ExpiresAt.Format(time.RFC3339), state)
		}
	}
	return tw.Flush()
}

// cmdOpen behaves like following a link into the app: a redirect carrying
// token and username logs in, then the page at the URL's path is shown.
func cmdOpen(ctx context.Context, a *app, args []string) error {
	ok, err := oauth.Bootstrap(ctx, args[0], a.store)
	if err != nil {
		return err
	}
	if ok {
		a.notify.Success("Signed in", "Welcome, "+a.store.State().Username)
	}

	u, _ := url.Parse(args[0])
	path := u.Path
	if path == "" {
		path = view.PathHome
	}
	return a.pages.Open(ctx, path)
}

func cmdOAuth(ctx context.Context, a *app, _ []string) error {
	rc := oauth.NewReceiver(a.api, a.store, a.log)
	res, err := rc.ListenAndWait(ctx, a.opts.OAuthCallbackAddr, func(baseURL string) {
		fmt.Fprintf(a.out, "Waiting for the Google sign-in redirect on %s/callback\n", baseURL)
		if a.onListen != nil {
			a.onListen(baseURL)
		}
	})
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}
	if !res.NeedsProfile {
		a.notify.Success("Signed in", "Welcome, "+res.Username)
		return a.pages.Open(ctx, view.PathHome)
	}

	a.router.Navigate(view.PathCompleteProfile)
	fmt.Fprintf(a.out, "Complete your profile for %s\n", res.Email)
	username, err := a.prompt.Ask("Username: ")
	if err != nil {
		return err
	}
	gender, err := a.prompt.AskDefault("Gender (male/female/other)", "other")
	if err != nil {
		return err
	}
	return cmdCompleteProfile(ctx, a, []string{res.Email, username, gender})
}

func cmdCompleteProfile(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathCompleteProfile)
	_, err := a.api.CompleteOAuthProfile(ctx, api.OAuthProfile{Email: args[0], Username: args[1], Gender: args[2]})
	if err != nil {
		return err
	}
	a.notify.Success("Profile completed", "Welcome, "+args[1])
	return a.pages.Open(ctx, view.PathHome)
}

func cmdForgotPassword(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathLogin)
	r, err := a.api.ForgotPassword(ctx, args[0])
	if err != nil {
		return err
	}
	a.notify.Success("OTP sent", r.Message)
	return nil
}

func cmdVerifyOTP(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathLogin)
	r, err := a.api.VerifyOTP(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.notify.Success("OTP verified", r.Message)
	return nil
}

func cmdResetPassword(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathLogin)
	pw, confirm, err := a.prompt.Passwords()
	if err != nil {
		return err
	}
	r, err := a.api.ResetPassword(ctx, api.ResetPasswordData{
		Email:           args[0],
		OTP:             args[1],
		Password:        pw,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	a.notify.Success("Password reset", r.Message)
	a.router.Navigate(view.PathLogin)
	return nil
}

func cmdUpdateProfile(ctx context.Context, a *app, args []string) error {
	r, err := a.api.UpdateProfile(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	a.notify.Success("Profile updated", r.Message)
	return nil
}

func cmdUploadProfileImage(ctx context.Context, a *app, args []string) error {
	file, f, err := media.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := a.api.UploadProfileImage(ctx, file)
	if err != nil {
		return err
	}
	a.notify.Success("Profile image uploaded", r.ImageURL)
	return nil
}

func cmdSetProfileImage(ctx context.Context, a *app, args []string) error {
	r, err := a.api.UpdateProfileImage(ctx, args[0])
	if err != nil {
		return err
	}
	a.notify.Success("Profile image updated", r.ImageURL)
	return nil
}

func cmdChangePassword(ctx context.Context, a *app, _ []string) error {
	current, err := a.prompt.Ask("Current password: ")
	if err != nil {
		return err
	}
	pw, confirm, err := a.prompt.Passwords()
	if err != nil {
		return err
	}
	err = a.api.ChangePassword(ctx, api.ChangePasswordData{
		CurrentPassword: current,
		NewPassword:     pw,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	a.notify.Success("Password changed", "")
	return nil
}

// cmdUploadCloth sends the image and its metadata to the backend in one
// multipart request.
func cmdUploadCloth(ctx context.Context, a *app, args []string) error {
	file, f, err := media.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := api.CheckFileSize(file, api.MaxWardrobeImageSize); err != nil {
		return err
	}

	data, err := a.prompt.ClothData("")
	if err != nil {
		return err
	}
	r, err := a.api.UploadCloth(ctx, file, data)
	if err != nil {
		return err
	}
	a.notify.Success("Item added", r.Message)
	return nil
}

// cmdAddCloth hosts the image with the media provider first and then
// registers the item by URL.
func cmdAddCloth(ctx context.Context, a *app, args []string) error {
	file, f, err := media.OpenFile(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := api.CheckFileSize(file, api.MaxWardrobeImageSize); err != nil {
		return err
	}

	up, err := a.media.Upload(ctx, file)
	if err != nil {
		return err
	}
	data, err := a.prompt.ClothData(up.SecureURL)
	if err != nil {
		return err
	}
	r, err := a.api.AddCloth(ctx, data)
	if err != nil {
		return err
	}
	a.notify.Success("Item added", r.Message)
	return nil
}

func clothAction(fn func(*api.Client, context.Context, string) (api.Reply, error)) func(context.Context, *app, []string) error {
	return func(ctx context.Context, a *app, args []string) error {
		r, err := fn(a.api, ctx, args[0])
		if err != nil {
			return err
		}
		a.notify.Success("Done", r.Message)
		return nil
	}
}

func cmdShared(ctx context.Context, a *app, args []string) error {
	a.router.Navigate(view.PathWardrobe + "?owner=" + url.QueryEscape(args[0]))
	return a.pages.Wardrobe(ctx, args[0])
}

func cmdTryOn(ctx context.Context, a *app, args []string) error {
	return a.pages.TryOn(ctx, args[0], strings.Join(args[1:], " "))
}

func cmdAdminUsers(ctx context.Context, a *app, _ []string) error {
	users, err := a.api.Users(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Username\tEmail\tGender\tRole")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", u.Username, u.Email, u.Gender, u.Role)
	}
	return tw.Flush()
}

func cmdCreateAdmin(ctx context.Context, a *app, args []string) error {
	pw, confirm, err := a.prompt.Passwords()
	if err != nil {
		return err
	}
	r, err := a.api.CreateAdmin(ctx, api.RegisterData{
		Username:        args[0],
		Email:           args[1],
		Gender:          args[2],
		Password:        pw,
		ConfirmPassword: confirm,
	})
	if err != nil {
		return err
	}
	a.notify.Success("Admin created", r.Message)
	return nil
}

func cmdBrands(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		brands, err := a.api.Brands(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tName\tDescription")
		for _, b := range brands {
			fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Name, b.Description)
		}
		return tw.Flush()
	}

	usage := fmt.Errorf("usage: %s", commands["brands"].usage)
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return usage
		}
		b, err := a.api.CreateBrand(ctx, api.BrandInput{Name: args[1], Description: rest(args, 2)})
		if err != nil {
			return err
		}
		a.notify.Success("Brand created", fmt.Sprintf("%s (#%d)", b.Name, b.ID))
	case "update":
		if len(args) < 3 {
			return usage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if _, err := a.api.UpdateBrand(ctx, id, api.BrandInput{Name: args[2], Description: rest(args, 3)}); err != nil {
			return err
		}
		a.notify.Success("Brand updated", "")
	case "delete":
		if len(args) < 2 {
			return usage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.api.DeleteBrand(ctx, id); err != nil {
			return err
		}
		a.notify.Success("Brand deleted", "")
	default:
		return usage
	}
	return nil
}

func cmdCompanies(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		companies, err := a.api.Companies(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tName\tWebsite\tDescription")
		for _, c := range companies {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", c.ID, c.Name, c.Website, c.Description)
		}
		return tw.Flush()
	}

	usage := fmt.Errorf("usage: %s", commands["companies"].usage)
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return usage
		}
		in := api.CompanyInput{Name: args[1], Website: at(args, 2), Description: rest(args, 3)}
		c, err := a.api.CreateCompany(ctx, in)
		if err != nil {
			return err
		}
		a.notify.Success("Company created", fmt.Sprintf("%s (#%d)", c.Name, c.ID))
	case "update":
		if len(args) < 3 {
			return usage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		in := api.CompanyInput{Name: args[2], Website: at(args, 3), Description: rest(args, 4)}
		if _, err := a.api.UpdateCompany(ctx, id, in); err != nil {
			return err
		}
		a.notify.Success("Company updated", "")
	case "delete":
		if len(args) < 2 {
			return usage
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		if err := a.api.DeleteCompany(ctx, id); err != nil {
			return err
		}
		a.notify.Success("Company deleted", "")
	default:
		return usage
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func at(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// rest joins args from i on, so descriptions need no quoting.
func rest(args []string, i int) string {
	if i < len(args) {
		return strings.Join(args[i:], " ")
	}
	return ""
}
