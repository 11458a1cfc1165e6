// Package models defines the data structures exchanged with the TrueFit
// backend and shared between the client packages.
package models

import (
	"encoding/json"
	"io"
)

// Role values reported by the backend profile endpoint.
const (
	// RoleAdmin marks an administrator account.
	RoleAdmin = "ADMIN"
	// RoleUser marks a regular account.
	RoleUser = "USER"
)

// Gender values accepted by registration and profile completion.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Categories returned by the outfits endpoint.
const (
	CategoryTshirts = "tshirts"
	CategoryJeans   = "jeans"
	CategorySkirts  = "skirts"
)

// UserProfile is the profile of the authenticated user.
type UserProfile struct {
	// Username is the display and login name.
	Username string `json:"username"`
	// Email is the account email address.
	Email string `json:"email"`
	// Gender drives outfit suggestions ("male", "female", "other").
	Gender string `json:"gender"`
	// Role is "ADMIN" for administrators.
	Role string `json:"role"`
	// CreatedAt is the backend-formatted creation timestamp.
	CreatedAt string `json:"createdAt"`
	// ProfileImageURL is the image used for virtual try-on, if uploaded.
	ProfileImageURL string `json:"profileImageUrl,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (p UserProfile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// AdminUser is a row of the admin user listing.
type AdminUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Gender   string `json:"gender"`
	Role     string `json:"role"`
}

// Cloth is a clothing item as the backend serialises it.
type Cloth struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price,omitempty"`
	Size        float64 `json:"size,omitempty"`
	SizeMetrics string  `json:"size_metrics,omitempty"`
	Color       string  `json:"color,omitempty"`
	Material    string  `json:"material,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	NeckType    string  `json:"neckType,omitempty"`
	SleeveType  string  `json:"sleeveType,omitempty"`
	FitType     string  `json:"fitType,omitempty"`
	SkirtType   string  `json:"skirtType,omitempty"`
	ImgURL      string  `json:"imgUrl"`
}

// Wardrobe groups clothes by category ("tshirts", "jeans", "skirts", ...).
type Wardrobe map[string][]Cloth

// ClothData is the payload for creating a clothing item.
type ClothData struct {
	Typ         string  `json:"typ"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       string  `json:"price,omitempty"`
	Size        float64 `json:"size"`
	Color       string  `json:"color,omitempty"`
	Material    string  `json:"material,omitempty"`
	Brand       string  `json:"brand,omitempty"`
	SizeMetrics string  `json:"size_metrics"`
	NeckType    string  `json:"neckType,omitempty"`
	SleeveType  string  `json:"sleeveType,omitempty"`
	FitType     string  `json:"fitType,omitempty"`
	SkirtType   string  `json:"skirtType,omitempty"`
	ImgURL      string  `json:"imgUrl"`
}

// ClothingItem is the normalised view of a Cloth used by the pages.
type ClothingItem struct {
	ID          string
	Name        string
	Category    string
	ImageURL    string
	Material    string
	Brand       string
	Size        float64
	SizeMetrics string
}

// OutfitCombination pairs at most one top with at most one bottom.
type OutfitCombination struct {
	Top    *ClothingItem
	Bottom *ClothingItem
}

// Empty reports whether neither a top nor a bottom was picked.
func (o OutfitCombination) Empty() bool {
	return o.Top == nil && o.Bottom == nil
}

// Brand is a clothing brand managed by administrators.
type Brand struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Company is a company managed by administrators.
type Company struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Website     string `json:"website,omitempty"`
}

// TryOnResult is the outcome of a virtual try-on.
type TryOnResult struct {
	Message        string `json:"message"`
	ResultImageURL string `json:"resultImageUrl"`
	// ItemName is filled in by the client for display.
	ItemName string `json:"-"`
}

// ImageResult is returned by the profile image endpoints.
type ImageResult struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageUrl"`
}

// SharedWardrobe identifies a wardrobe shared with or by the user. The
// backend reports either bare usernames or objects, both are accepted.
type SharedWardrobe struct {
	Username string
}

// UnmarshalJSON accepts "alice", {"username":"alice"} or
// {"ownerUsername":"alice"}.
func (s *SharedWardrobe) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err == nil {
		s.Username = name
		return nil
	}
	var obj struct {
		Username      string `json:"username"`
		OwnerUsername string `json:"ownerUsername"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	s.Username = obj.Username
	if s.Username == "" {
		s.Username = obj.OwnerUsername
	}
	return nil
}

// File is a local file selected for upload.
type File struct {
	// Name is the base file name sent in the multipart part.
	Name string
	// Size is the content length in bytes, checked against upload ceilings.
	Size int64
	// Content streams the file body.
	Content io.Reader
}
