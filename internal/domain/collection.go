package domain

// Collection types partition which facet a collection groups.
const (
	CollectionTypeMainCategory = "mainCategory"
	CollectionTypeDesignStyle  = "designStyle"
)

// Collection is a browsable grouping shown in navigation and on the home page.
type Collection struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Image       string `json:"image"`
	Description string `json:"description,omitempty"`
}

// IsValidCollectionType checks whether t is a known collection type.
func IsValidCollectionType(t string) bool {
	return t == CollectionTypeMainCategory || t == CollectionTypeDesignStyle
}

// Catalogue is a downloadable brochure.
type Catalogue struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Thumbnail   string `json:"thumbnail"`
	FileURL     string `json:"file_url"`
	FileSize    string `json:"file_size,omitempty"`
	Description string `json:"description,omitempty"`
}

// Snapshot is one fully materialized fetch of the catalog.
type Snapshot struct {
	Products    []Product    `json:"products"`
	Collections []Collection `json:"collections"`
	Catalogues  []Catalogue  `json:"catalogues"`
	Source      string       `json:"source"`
}
