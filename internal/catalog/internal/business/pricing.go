package business

import (
	"fmt"

	"github.com/shopspring/decimal"

	"gocatalog_api/internal/catalog/internal/models"
)

// PriceCalculator derives price-list entries from a variant's supplier
// price. The markup fraction comes from configuration; there is no
// built-in default percentage.
type PriceCalculator struct {
	markup    decimal.Decimal
	hasMarkup bool
}

func NewPriceCalculator(markupFraction string) (*PriceCalculator, error) {
	calc := &PriceCalculator{}
	if markupFraction == "" {
		return calc, nil
	}
	markup, err := decimal.NewFromString(markupFraction)
	if err != nil {
		return nil, fmt.Errorf("invalid markup fraction %q: %w", markupFraction, err)
	}
	if markup.IsNegative() {
		return nil, fmt.Errorf("markup fraction %q is negative", markupFraction)
	}
	calc.markup = markup
	calc.hasMarkup = true
	return calc, nil
}

// Entries maps a supplier price to its derived price-list entries. The
// supplier entry is written verbatim whenever a price is present; the
// base selling entry is supplier price * (1 + markup) rounded to two
// decimal places, and is only produced for a strictly positive supplier
// price. Promotional entries are a manual input and never produced here.
func (c *PriceCalculator) Entries(variantID string, supplierPrice *decimal.Decimal) []models.PriceEntry {
	if supplierPrice == nil {
		return nil
	}

	entries := []models.PriceEntry{{
		VariantID:   variantID,
		PriceListID: models.PriceListSupplier,
		Price:       *supplierPrice,
	}}

	if c.hasMarkup && supplierPrice.IsPositive() {
		selling := supplierPrice.Mul(decimal.NewFromInt(1).Add(c.markup)).Round(2)
		entries = append(entries, models.PriceEntry{
			VariantID:   variantID,
			PriceListID: models.PriceListBaseSelling,
			Price:       selling,
		})
	}

	return entries
}
