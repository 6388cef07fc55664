package models

import "github.com/shopspring/decimal"

// Variant is one size/stock sub-record of a product. The id is derived
// from the owning EAN plus the supplier size code.
type Variant struct {
	ID            string           `json:"variant_id"`
	EAN           string           `json:"ean"`
	Name          string           `json:"name"`
	Stock         int              `json:"stock"`
	SupplierPrice *decimal.Decimal `json:"supplier_price"`
	OnSale        bool             `json:"on_sale"`
}

// Price list identifiers are a fixed enumeration. Promotional entries are
// maintained by hand and never written by the importer.
const (
	PriceListSupplier    = 1
	PriceListBaseSelling = 2
	PriceListPromotional = 3
)

type PriceEntry struct {
	VariantID   string          `json:"variant_id"`
	PriceListID int             `json:"price_list_id"`
	Price       decimal.Decimal `json:"price"`
}
