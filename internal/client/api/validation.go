package api

import (
	"fmt"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Upload ceilings enforced before any request is made.
const (
	MaxProfileImageSize  = 5 * 1024 * 1024
	MaxWardrobeImageSize = 2 * 1024 * 1024
)

// CheckFileSize rejects files larger than limit.
func CheckFileSize(f models.File, limit int64) error {
	if f.Size > limit {
		return &ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("File size must be less than %dMB", limit/(1024*1024)),
		}
	}
	return nil
}

// CheckPasswords rejects an empty password or a confirmation that differs.
func CheckPasswords(password, confirm string) error {
	if password == "" {
		return &ValidationError{Field: "password", Message: "Password is required"}
	}
	if password != confirm {
		return &ValidationError{Field: "confirmPassword", Message: "Passwords do not match"}
	}
	return nil
}

// CheckClothData enforces the fields the backend needs to file an item.
func CheckClothData(d models.ClothData) error {
	if d.Typ == "" || d.Size == 0 || d.SizeMetrics == "" {
		return &ValidationError{Field: "data", Message: "Type, size, and size metrics are required"}
	}
	return nil
}

// CheckGender accepts the three genders the backend knows.
func CheckGender(g string) error {
	switch g {
	case models.GenderMale, models.GenderFemale, models.GenderOther:
		return nil
	}
	return &ValidationError{Field: "gender", Message: "Gender must be male, female or other"}
}
