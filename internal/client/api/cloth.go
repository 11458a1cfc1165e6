package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/atinyakov/TrueFit/internal/models"
)

// UploadCloth files a new item with its image. The metadata travels as a
// JSON string in the "data" field next to the "file" part.
func (c *Client) UploadCloth(ctx context.Context, file models.File, data models.ClothData) (Reply, error) {
	if err := CheckClothData(data); err != nil {
		return Reply{}, err
	}
	if err := CheckFileSize(file, MaxWardrobeImageSize); err != nil {
		return Reply{}, err
	}
	meta, err := json.Marshal(data)
	if err != nil {
		return Reply{}, fmt.Errorf("encode cloth data: %w", err)
	}

	form := &Form{}
	form.AddFile("file", file)
	form.AddField("data", string(meta))
	return do[Reply](ctx, c, epUploadCloth, epUploadCloth.Path, form)
}

// AddCloth files an item whose image is already hosted.
func (c *Client) AddCloth(ctx context.Context, data models.ClothData) (Reply, error) {
	if err := CheckClothData(data); err != nil {
		return Reply{}, err
	}
	return do[Reply](ctx, c, epAddCloth, epAddCloth.Path, data)
}

// Outfits returns the user's wardrobe grouped by category.
func (c *Client) Outfits(ctx context.Context) (models.Wardrobe, error) {
	return do[models.Wardrobe](ctx, c, epOutfits, epOutfits.Path, nil)
}

// SharedWardrobeItems returns the wardrobe another user shared.
func (c *Client) SharedWardrobeItems(ctx context.Context, owner string) (models.Wardrobe, error) {
	path := epSharedWardrobeItems.Path + "?ownerUsername=" + url.QueryEscape(owner)
	return do[models.Wardrobe](ctx, c, epSharedWardrobeItems, path, nil)
}

func (c *Client) FavoriteCloth(ctx context.Context, clothID string) (Reply, error) {
	return c.clothAction(ctx, epFavoriteCloth, clothID)
}

func (c *Client) UnfavoriteCloth(ctx context.Context, clothID string) (Reply, error) {
	return c.clothAction(ctx, epUnfavoriteCloth, clothID)
}

func (c *Client) LikeCloth(ctx context.Context, clothID string) (Reply, error) {
	return c.clothAction(ctx, epLikeCloth, clothID)
}

func (c *Client) DislikeCloth(ctx context.Context, clothID string) (Reply, error) {
	return c.clothAction(ctx, epDislikeCloth, clothID)
}

func (c *Client) clothAction(ctx context.Context, ep Endpoint, clothID string) (Reply, error) {
	return do[Reply](ctx, c, ep, ep.Path, map[string]string{"clothId": clothID})
}

// LikeCombination rates a suggested outfit by its code.
func (c *Client) LikeCombination(ctx context.Context, code string) (Reply, error) {
	return do[Reply](ctx, c, epLikeCombination, epLikeCombination.Path, map[string]string{"code": code})
}

// DislikeCombination rates a suggested outfit by its code.
func (c *Client) DislikeCombination(ctx context.Context, code string) (Reply, error) {
	return do[Reply](ctx, c, epDislikeCombination, epDislikeCombination.Path, map[string]string{"code": code})
}

// ShareWardrobe grants username read access to the caller's wardrobe.
func (c *Client) ShareWardrobe(ctx context.Context, username string) (Reply, error) {
	return do[Reply](ctx, c, epShareWardrobe, epShareWardrobe.Path, map[string]string{"username": username})
}

// UnshareWardrobe revokes a previous ShareWardrobe.
func (c *Client) UnshareWardrobe(ctx context.Context, username string) (Reply, error) {
	return do[Reply](ctx, c, epUnshareWardrobe, epUnshareWardrobe.Path, map[string]string{"username": username})
}

// SharedWardrobes lists owners who shared their wardrobe with the caller.
func (c *Client) SharedWardrobes(ctx context.Context) ([]models.SharedWardrobe, error) {
	return do[[]models.SharedWardrobe](ctx, c, epSharedWardrobes, epSharedWardrobes.Path, nil)
}

// WardrobesSharedByMe lists users the caller shared with.
func (c *Client) WardrobesSharedByMe(ctx context.Context) ([]models.SharedWardrobe, error) {
	return do[[]models.SharedWardrobe](ctx, c, epWardrobesSharedByMe, epWardrobesSharedByMe.Path, nil)
}

// TryOn renders the item on the user's profile image.
func (c *Client) TryOn(ctx context.Context, clothID string) (models.TryOnResult, error) {
	return do[models.TryOnResult](ctx, c, epTryOn, epTryOn.Path, map[string]string{"clothId": clothID})
}
