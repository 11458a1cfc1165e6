// Package outfit picks the daily outfit suggestion from a wardrobe.
package outfit

import (
	"fmt"
	"strconv"

	"github.com/atinyakov/TrueFit/internal/models"
)

// Rand is the subset of *rand.Rand used for picking.
type Rand interface {
	Intn(n int) int
}

// Inventory splits a wardrobe into tops and bottoms.
type Inventory struct {
	Tops    []models.ClothingItem
	Bottoms []models.ClothingItem
}

var labels = map[string]string{
	models.CategoryTshirts: "T-shirt",
	models.CategoryJeans:   "Jeans",
	models.CategorySkirts:  "Skirt",
}

// NewInventory normalizes the /outfits response. Tops come from tshirts,
// bottoms from jeans then skirts. Other categories are ignored.
func NewInventory(w models.Wardrobe) Inventory {
	var inv Inventory
	for _, c := range w[models.CategoryTshirts] {
		inv.Tops = append(inv.Tops, Item(models.CategoryTshirts, c))
	}
	for _, cat := range []string{models.CategoryJeans, models.CategorySkirts} {
		for _, c := range w[cat] {
			inv.Bottoms = append(inv.Bottoms, Item(cat, c))
		}
	}
	return inv
}

// Item converts a backend cloth into its display form. An unnamed item is
// called "<Label> - <brand>", with "Unknown Brand" when the brand is empty.
func Item(category string, c models.Cloth) models.ClothingItem {
	name := c.Name
	if name == "" {
		label, ok := labels[category]
		if !ok {
			label = category
		}
		brand := c.Brand
		if brand == "" {
			brand = "Unknown Brand"
		}
		name = fmt.Sprintf("%s - %s", label, brand)
	}
	return models.ClothingItem{
		ID:          strconv.FormatInt(c.ID, 10),
		Name:        name,
		Category:    category,
		ImageURL:    c.ImgURL,
		Material:    c.Material,
		Brand:       c.Brand,
		Size:        c.Size,
		SizeMetrics: c.SizeMetrics,
	}
}

// BottomCategories returns the categories a bottom may come from.
func BottomCategories(gender string) []string {
	if gender == models.GenderFemale {
		return []string{models.CategoryJeans, models.CategorySkirts}
	}
	return []string{models.CategoryJeans}
}

// Select picks one top and one allowed bottom, each uniformly. Either side
// is nil when nothing is available for it.
func Select(gender string, inv Inventory, rng Rand) models.OutfitCombination {
	var out models.OutfitCombination
	if len(inv.Tops) > 0 {
		top := inv.Tops[rng.Intn(len(inv.Tops))]
		out.Top = &top
	}

	allowed := make(map[string]bool)
	for _, cat := range BottomCategories(gender) {
		allowed[cat] = true
	}
	var bottoms []models.ClothingItem
	for _, b := range inv.Bottoms {
		if allowed[b.Category] {
			bottoms = append(bottoms, b)
		}
	}
	if len(bottoms) > 0 {
		bottom := bottoms[rng.Intn(len(bottoms))]
		out.Bottom = &bottom
	}
	return out
}

// Code identifies a combination for the like/dislike endpoints.
func Code(o models.OutfitCombination) string {
	top, bottom := "0", "0"
	if o.Top != nil {
		top = o.Top.ID
	}
	if o.Bottom != nil {
		bottom = o.Bottom.ID
	}
	return top + "-" + bottom
}
