package models

// CategoryObservation is one raw category reference as it appeared on a
// feed record: the observed id, a display name and the raw path string in
// whatever separator convention the source used.
type CategoryObservation struct {
	ID   string
	Name string
	Path string
}

// Category is a resolved node of the category tree. Synthetic nodes carry
// a generated id and exist only to complete an ancestor chain implied by
// an observed path.
type Category struct {
	ID        string `json:"category_id"`
	Name      string `json:"name"`
	Path      string `json:"path"`
	ParentID  string `json:"parent_id"` // empty = root
	Synthetic bool   `json:"synthetic"`
}

// ProductCategory links a product to a category it was observed under.
type ProductCategory struct {
	EAN        string `json:"ean"`
	CategoryID string `json:"category_id"`
}
