package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Reply is the loose acknowledgement most mutating endpoints return: either
// a bare string or an object with a message and sometimes a token.
type Reply struct {
	Message  string `json:"message"`
	Token    string `json:"token,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

// UnmarshalJSON accepts a JSON string as well as an object.
func (r *Reply) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*r = Reply{Message: s}
		return nil
	}
	type plain Reply
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Reply(p)
	return nil
}

// UnmarshalText takes an unquoted text body as the message.
func (r *Reply) UnmarshalText(b []byte) error {
	*r = Reply{Message: string(b)}
	return nil
}

// Credentials are the username/password pair sent to /login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterData is the sign-up payload. ConfirmPassword never leaves the
// client.
type RegisterData struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	Gender          string `json:"gender"`
	ConfirmPassword string `json:"-"`
}

// ResetPasswordData completes a password reset with the mailed OTP.
type ResetPasswordData struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	OTP             string `json:"OTP"`
	ConfirmPassword string `json:"-"`
}

// OAuthProfile finishes a Google sign-in for a new account.
type OAuthProfile struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Gender   string `json:"gender"`
}

// ChangePasswordData is sent by an authenticated user.
type ChangePasswordData struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

// Login authenticates and stores the returned token with the username.
func (c *Client) Login(ctx context.Context, cred Credentials) (string, error) {
	// /login answers with the bare token; an object form is tolerated.
	token, err := do[string](ctx, c, epLogin, epLogin.Path, cred)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(token, "{") {
		var r Reply
		if err := json.Unmarshal([]byte(token), &r); err != nil {
			return "", &APIError{Endpoint: epLogin.Name, Message: epLogin.Fallback, Cause: err}
		}
		token = r.Token
	}
	if token == "" {
		return "", &APIError{Endpoint: epLogin.Name, Message: epLogin.Fallback}
	}
	if err := c.session.Login(ctx, token, cred.Username); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

// Register creates an account. The session is stored when the backend
// returns a token.
func (c *Client) Register(ctx context.Context, data RegisterData) (Reply, error) {
	if err := CheckPasswords(data.Password, data.ConfirmPassword); err != nil {
		return Reply{}, err
	}
	if err := CheckGender(data.Gender); err != nil {
		return Reply{}, err
	}
	r, err := do[Reply](ctx, c, epRegister, epRegister.Path, data)
	if err != nil {
		return Reply{}, err
	}
	if err := c.storeIfToken(ctx, r.Token, data.Username); err != nil {
		return Reply{}, err
	}
	return r, nil
}

// ForgotPassword asks the backend to mail a one-time password.
func (c *Client) ForgotPassword(ctx context.Context, email string) (Reply, error) {
	return do[Reply](ctx, c, epForgotPassword, epForgotPassword.Path, map[string]string{"email": email})
}

// VerifyOTP checks the mailed one-time password.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (Reply, error) {
	return do[Reply](ctx, c, epVerifyOTP, epVerifyOTP.Path, map[string]string{"email": email, "OTP": otp})
}

// ResetPassword sets a new password using a verified OTP.
func (c *Client) ResetPassword(ctx context.Context, data ResetPasswordData) (Reply, error) {
	if err := CheckPasswords(data.Password, data.ConfirmPassword); err != nil {
		return Reply{}, err
	}
	return do[Reply](ctx, c, epResetPassword, epResetPassword.Path, data)
}

// OAuthCallback exchanges a Google authorization code. When the reply
// carries both token and username the session is stored. A reply without a
// token means the account still needs CompleteOAuthProfile.
func (c *Client) OAuthCallback(ctx context.Context, code string) (Reply, error) {
	path := epOAuthCallback.Path + "?code=" + url.QueryEscape(code)
	r, err := do[Reply](ctx, c, epOAuthCallback, path, nil)
	if err != nil {
		return Reply{}, err
	}
	if r.Token != "" && r.Username != "" {
		if err := c.session.Login(ctx, r.Token, r.Username); err != nil {
			return Reply{}, fmt.Errorf("store session: %w", err)
		}
	}
	return r, nil
}

// CompleteOAuthProfile registers the username and gender of a Google
// account and stores the returned session.
func (c *Client) CompleteOAuthProfile(ctx context.Context, p OAuthProfile) (Reply, error) {
	if err := CheckGender(p.Gender); err != nil {
		return Reply{}, err
	}
	r, err := do[Reply](ctx, c, epCompleteOAuthProfile, epCompleteOAuthProfile.Path, p)
	if err != nil {
		return Reply{}, err
	}
	if err := c.storeIfToken(ctx, r.Token, p.Username); err != nil {
		return Reply{}, err
	}
	return r, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (models.UserProfile, error) {
	return do[models.UserProfile](ctx, c, epProfile, epProfile.Path, nil)
}

// UpdateProfile renames the user and sets the gender. A renamed account gets
// a fresh token, which replaces the stored session.
func (c *Client) UpdateProfile(ctx context.Context, name, gender string) (Reply, error) {
	if err := CheckGender(gender); err != nil {
		return Reply{}, err
	}
	r, err := do[Reply](ctx, c, epUpdateProfile, epUpdateProfile.Path, map[string]string{"name": name, "gender": gender})
	if err != nil {
		return Reply{}, err
	}
	if err := c.storeIfToken(ctx, r.Token, name); err != nil {
		return Reply{}, err
	}
	return r, nil
}

// UploadProfileImage sends the try-on portrait. A 401 here never evicts the
// session.
func (c *Client) UploadProfileImage(ctx context.Context, file models.File) (models.ImageResult, error) {
	if err := CheckFileSize(file, MaxProfileImageSize); err != nil {
		return models.ImageResult{}, err
	}
	form := &Form{}
	form.AddFile("file", file)
	return do[models.ImageResult](ctx, c, epUploadProfileImage, epUploadProfileImage.Path, form)
}

// UpdateProfileImage points the profile at an already hosted image.
func (c *Client) UpdateProfileImage(ctx context.Context, imageURL string) (models.ImageResult, error) {
	return do[models.ImageResult](ctx, c, epUpdateProfileImage, epUpdateProfileImage.Path, map[string]string{"imageUrl": imageURL})
}

// ChangePassword replaces the password of the authenticated user.
func (c *Client) ChangePassword(ctx context.Context, data ChangePasswordData) error {
	if err := CheckPasswords(data.NewPassword, data.ConfirmPassword); err != nil {
		return err
	}
	_, err := do[none](ctx, c, epChangePassword, epChangePassword.Path, data)
	return err
}

func (c *Client) storeIfToken(ctx context.Context, token, username string) error {
	if token == "" {
		return nil
	}
	if err := c.session.Login(ctx, token, username); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
