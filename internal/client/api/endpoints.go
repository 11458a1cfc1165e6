package api

import "net/http"

// Kind selects how a request body is encoded.
type Kind int

const (
	// KindJSON bodies are JSON documents sent as application/json.
	KindJSON Kind = iota
	// KindMultipart bodies are multipart forms. The Content-Type comes from
	// the multipart writer so that it carries the boundary.
	KindMultipart
)

func (k Kind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindMultipart:
		return "multipart"
	default:
		return "unknown"
	}
}

// Endpoint describes one backend operation.
type Endpoint struct {
	Name   string
	Method string
	Path   string
	Kind   Kind
	// Fallback is the error message used when the backend gives none.
	Fallback string
	// SuppressAuthRedirect keeps a 401 from this endpoint from evicting the
	// session. The error is still returned to the caller.
	SuppressAuthRedirect bool
}

var (
	epLogin                = Endpoint{Name: "Login", Method: http.MethodPost, Path: "/login", Fallback: "Login failed"}
	epRegister             = Endpoint{Name: "Register", Method: http.MethodPost, Path: "/register", Fallback: "Registration failed"}
	epForgotPassword       = Endpoint{Name: "ForgotPassword", Method: http.MethodPost, Path: "/forgot-password", Fallback: "Failed to process forgot password request"}
	epVerifyOTP            = Endpoint{Name: "VerifyOTP", Method: http.MethodPost, Path: "/forgot-password-verify", Fallback: "Invalid OTP"}
	epResetPassword        = Endpoint{Name: "ResetPassword", Method: http.MethodPost, Path: "/reset-password", Fallback: "Failed to reset password"}
	epOAuthCallback        = Endpoint{Name: "OAuthCallback", Method: http.MethodGet, Path: "/login/oauth2/code/google", Fallback: "Failed to complete Google sign-in"}
	epCompleteOAuthProfile = Endpoint{Name: "CompleteOAuthProfile", Method: http.MethodPost, Path: "/complete-oauth2-profile", Fallback: "Failed to complete profile"}

	epProfile            = Endpoint{Name: "Profile", Method: http.MethodGet, Path: "/profile", Fallback: "Failed to fetch profile"}
	epUpdateProfile      = Endpoint{Name: "UpdateProfile", Method: http.MethodPost, Path: "/update-profile", Fallback: "Failed to update profile"}
	epUploadProfileImage = Endpoint{Name: "UploadProfileImage", Method: http.MethodPost, Path: "/upload-profile-image", Kind: KindMultipart, Fallback: "Failed to upload profile image", SuppressAuthRedirect: true}
	epUpdateProfileImage = Endpoint{Name: "UpdateProfileImage", Method: http.MethodPost, Path: "/update-profile-image", Fallback: "Failed to update profile image"}
	epChangePassword     = Endpoint{Name: "ChangePassword", Method: http.MethodPost, Path: "/change-password", Fallback: "Failed to change password"}

	epUploadCloth          = Endpoint{Name: "UploadCloth", Method: http.MethodPost, Path: "/upload", Kind: KindMultipart, Fallback: "Failed to upload cloth"}
	epAddCloth             = Endpoint{Name: "AddCloth", Method: http.MethodPost, Path: "/clothes", Fallback: "Failed to add clothing item"}
	epOutfits              = Endpoint{Name: "Outfits", Method: http.MethodGet, Path: "/outfits", Fallback: "Failed to fetch outfits"}
	epSharedWardrobeItems  = Endpoint{Name: "SharedWardrobeItems", Method: http.MethodGet, Path: "/shared-wardrobe-items", Fallback: "Failed to fetch shared wardrobe items"}
	epFavoriteCloth        = Endpoint{Name: "FavoriteCloth", Method: http.MethodPost, Path: "/favorite-cloth", Fallback: "Failed to favorite clothing item"}
	epUnfavoriteCloth      = Endpoint{Name: "UnfavoriteCloth", Method: http.MethodPost, Path: "/unfavorite-cloth", Fallback: "Failed to unfavorite clothing item"}
	epLikeCloth            = Endpoint{Name: "LikeCloth", Method: http.MethodPost, Path: "/like-cloth", Fallback: "Failed to like clothing item"}
	epDislikeCloth         = Endpoint{Name: "DislikeCloth", Method: http.MethodPost, Path: "/dislike-cloth", Fallback: "Failed to dislike clothing item"}
	epLikeCombination      = Endpoint{Name: "LikeCombination", Method: http.MethodPost, Path: "/like-combination", Fallback: "Failed to like combination"}
	epDislikeCombination   = Endpoint{Name: "DislikeCombination", Method: http.MethodPost, Path: "/dislike-combination", Fallback: "Failed to dislike combination"}
	epShareWardrobe        = Endpoint{Name: "ShareWardrobe", Method: http.MethodPost, Path: "/share-wardrobe", Fallback: "Failed to share wardrobe"}
	epUnshareWardrobe      = Endpoint{Name: "UnshareWardrobe", Method: http.MethodPost, Path: "/unshare-wardrobe", Fallback: "Failed to unshare wardrobe"}
	epSharedWardrobes      = Endpoint{Name: "SharedWardrobes", Method: http.MethodGet, Path: "/shared-wardrobes", Fallback: "Failed to fetch shared wardrobes"}
	epWardrobesSharedByMe  = Endpoint{Name: "WardrobesSharedByMe", Method: http.MethodGet, Path: "/wardrobes-shared-by-me", Fallback: "Failed to fetch wardrobes shared by you"}
	epTryOn                = Endpoint{Name: "TryOn", Method: http.MethodPost, Path: "/try-on", Fallback: "Failed to try on clothing item"}

	epCreateAdmin   = Endpoint{Name: "CreateAdmin", Method: http.MethodPost, Path: "/admin/create-admin", Fallback: "Failed to create admin"}
	epUsers         = Endpoint{Name: "Users", Method: http.MethodGet, Path: "/admin/users", Fallback: "Failed to fetch users"}
	epBrands        = Endpoint{Name: "Brands", Method: http.MethodGet, Path: "/admin/brands", Fallback: "Failed to fetch brands"}
	epCreateBrand   = Endpoint{Name: "CreateBrand", Method: http.MethodPost, Path: "/admin/brands", Fallback: "Failed to create brand"}
	epUpdateBrand   = Endpoint{Name: "UpdateBrand", Method: http.MethodPut, Path: "/admin/brands/%d", Fallback: "Failed to update brand"}
	epDeleteBrand   = Endpoint{Name: "DeleteBrand", Method: http.MethodDelete, Path: "/admin/brands/%d", Fallback: "Failed to delete brand"}
	epCompanies     = Endpoint{Name: "Companies", Method: http.MethodGet, Path: "/admin/companies", Fallback: "Failed to fetch companies"}
	epCreateCompany = Endpoint{Name: "CreateCompany", Method: http.MethodPost, Path: "/admin/companies", Fallback: "Failed to create company"}
	epUpdateCompany = Endpoint{Name: "UpdateCompany", Method: http.MethodPut, Path: "/admin/companies/%d", Fallback: "Failed to update company"}
	epDeleteCompany = Endpoint{Name: "DeleteCompany", Method: http.MethodDelete, Path: "/admin/companies/%d", Fallback: "Failed to delete company"}
)

// Endpoints lists every operation the client knows.
func Endpoints() []Endpoint {
	return []Endpoint{
		epLogin, epRegister, epForgotPassword, epVerifyOTP, epResetPassword,
		epOAuthCallback, epCompleteOAuthProfile,
		epProfile, epUpdateProfile, epUploadProfileImage, epUpdateProfileImage, epChangePassword,
		epUploadCloth, epAddCloth, epOutfits, epSharedWardrobeItems,
		epFavoriteCloth, epUnfavoriteCloth, epLikeCloth, epDislikeCloth,
		epLikeCombination, epDislikeCombination,
		epShareWardrobe, epUnshareWardrobe, epSharedWardrobes, epWardrobesSharedByMe,
		epTryOn,
		epCreateAdmin, epUsers,
		epBrands, epCreateBrand, epUpdateBrand, epDeleteBrand,
		epCompanies, epCreateCompany, epUpdateCompany, epDeleteCompany,
	}
}
