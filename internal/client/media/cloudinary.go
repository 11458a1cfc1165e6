package media

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atinyakov/TrueFit/internal/client/api"
	"github.com/atinyakov/TrueFit/internal/models"
)

// Cloudinary defaults used by the web client.
const (
	DefaultCloudinaryBase   = "https://api.cloudinary.com"
	DefaultCloudinaryCloud  = "dfxhwpopk"
	DefaultCloudinaryPreset = "ml_default"
)

const cloudinaryFailed = "failed to upload image to Cloudinary"

// Cloudinary uploads unsigned images with an upload preset. It never sends
// backend credentials.
type Cloudinary struct {
	BaseURL string
	Cloud   string
	Preset  string
	HTTP    *http.Client
}

// NewCloudinary fills empty settings with the defaults.
func NewCloudinary(baseURL, cloud, preset string) *Cloudinary {
	if baseURL == "" {
		baseURL = DefaultCloudinaryBase
	}
	if cloud == "" {
		cloud = DefaultCloudinaryCloud
	}
	if preset == "" {
		preset = DefaultCloudinaryPreset
	}
	return &Cloudinary{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Cloud:   cloud,
		Preset:  preset,
		HTTP:    &http.Client{},
	}
}

func (c *Cloudinary) endpoint() string {
	return fmt.Sprintf("%s/v1_1/%s/upload", c.BaseURL, c.Cloud)
}

func (c *Cloudinary) Upload(ctx context.Context, file models.File) (Upload, error) {
	if err := api.CheckFileSize(file, api.MaxWardrobeImageSize); err != nil {
		return Upload{}, err
	}

	form := &api.Form{}
	form.AddFile("file", file)
	form.AddField("upload_preset", c.Preset)
	form.AddField("cloud_name", c.Cloud)
	body, contentType, err := form.Encode()
	if err != nil {
		return Upload{}, &UploadError{Message: cloudinaryFailed, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), body)
	if err != nil {
		return Upload{}, &UploadError{Message: cloudinaryFailed, Cause: err}
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Upload{}, &UploadError{Message: cloudinaryFailed, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Upload{}, &UploadError{
			Message: cloudinaryFailed,
			Cause:   fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(data))),
		}
	}

	var out struct {
		SecureURL string `json:"secure_url"`
		PublicID  string `json:"public_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Upload{}, &UploadError{Message: cloudinaryFailed, Cause: err}
	}
	if out.SecureURL == "" {
		return Upload{}, &UploadError{Message: cloudinaryFailed, Cause: fmt.Errorf("response has no secure_url")}
	}
	return Upload{SecureURL: out.SecureURL, PublicID: out.PublicID}, nil
}
