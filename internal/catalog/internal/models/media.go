package models

// Image is keyed by (EAN, URL). The first image of a product is primary
// and sort order is the index of first appearance.
type Image struct {
	EAN       string `json:"ean"`
	URL       string `json:"url"`
	Alt       string `json:"alt"`
	IsPrimary bool   `json:"is_primary"`
	SortOrder int    `json:"sort_order"`
}

// Attribute is keyed by (EAN, Key); at most one value per key per product.
type Attribute struct {
	EAN   string `json:"ean"`
	Key   string `json:"key"`
	Value string `json:"value"`
}
