package models

// Product is the normalized catalog product. EAN is the natural key; every
// other field is overwritten wholesale on re-import.
type Product struct {
	EAN               string `json:"ean"`
	SupplierProductID string `json:"supplier_product_id"`
	Name              string `json:"name"`
	ShortDescription  string `json:"short_description"`
	LongDescription   string `json:"long_description"`
	DescriptionLang   string `json:"description_lang"`
	Producer          string `json:"producer"`
	Unit              string `json:"unit"`
	VATRate           string `json:"vat_rate"`
	Active            bool   `json:"active"`
	IsFeatured        bool   `json:"is_featured"`
}
