package domain

// Main categories carried by the catalog.
const (
	MainCategorySlabs     = "slabs"
	MainCategoryTiles     = "tiles"
	MainCategoryPoolTiles = "pool-tiles"
)

// Product represents a tile or slab in the catalog. Products are built once
// from a CMS record and never mutated afterwards.
type Product struct {
	ID           int64    `json:"id"`
	Slug         string   `json:"slug"`
	Name         string   `json:"name"`
	Code         string   `json:"code,omitempty"`
	MainCategory string   `json:"main_category"`
	DesignStyle  string   `json:"design_style"`
	Finish       string   `json:"finish"`
	Price        float64  `json:"price"`
	Unit         string   `json:"unit"`
	Sizes        []string `json:"sizes,omitempty"`
	Thickness    string   `json:"thickness,omitempty"`
	Applications []string `json:"applications,omitempty"`
	Bookmatch    bool     `json:"bookmatch"`
	SixFace      bool     `json:"six_face"`
	FullBody     bool     `json:"full_body"`
	Images       []string `json:"images"`
	Description  string   `json:"description,omitempty"`
	Catalogues   []string `json:"catalogues,omitempty"`
}

// PrimaryImage returns the first image URL, or an empty string.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
