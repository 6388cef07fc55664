package business

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"gocatalog_api/internal/catalog/internal/models"
	"gocatalog_api/internal/supplier/feed"
	"gocatalog_api/pkg/business/service"
	"gocatalog_api/pkg/logger"
)

const (
	maxAttributeKeyLen   = 255
	maxAttributeValueLen = 1000
)

// boilerplateAttributeKeys are generic code labels that repeat the product
// code and carry no catalog value.
var boilerplateAttributeKeys = map[string]bool{
	"code":         true,
	"kod":          true,
	"kod produktu": true,
}

// NormalizedRecord is the typed form of one raw feed record.
type NormalizedRecord struct {
	Product    models.Product
	Categories []models.CategoryObservation
	Links      []models.ProductCategory
	Variants   []models.Variant
	Images     []models.Image
	Attributes []models.Attribute
}

// Normalizer maps one raw record to its typed sub-entities, applying the
// name and description fallback chains and locale-tolerant numeric
// parsing. Anything unusable inside a record is skipped with a warning;
// a record itself only fails when it has no EAN, which the engine checks
// before calling in.
type Normalizer struct {
	text          service.ITextService
	preferredLang string
	log           logger.Logger
}

func NewNormalizer(text service.ITextService, preferredLang string, log logger.Logger) *Normalizer {
	return &Normalizer{text: text, preferredLang: preferredLang, log: log}
}

// Normalize converts a raw record. The returned count is the number of
// skip-and-warn conditions hit inside the record.
func (n *Normalizer) Normalize(record *feed.ProductRecord) (*NormalizedRecord, int) {
	warnings := 0
	ean := strings.TrimSpace(record.EAN)

	desc := n.pickDescription(record.Descriptions)

	name := firstNonEmpty(record.Card, desc.Name, record.ID)
	shortDescription := firstNonEmpty(desc.ShortDesc, desc.Generic, name)
	longDescription := firstNonEmpty(desc.LongDesc, desc.Generic, name)

	out := &NormalizedRecord{
		Product: models.Product{
			EAN:               ean,
			SupplierProductID: strings.TrimSpace(record.ID),
			Name:              name,
			ShortDescription:  shortDescription,
			LongDescription:   longDescription,
			DescriptionLang:   desc.Lang,
			Producer:          strings.TrimSpace(record.Producer.Name),
			Unit:              firstNonEmpty(record.Unit.Name, record.Unit.Code),
			VATRate:           strings.TrimSpace(record.VAT),
			Active:            true,
		},
	}

	for _, cat := range record.Categories {
		if strings.TrimSpace(cat.Path) == "" {
			warnings++
			n.logf("WARN category observation without path on EAN %s, discarded", ean)
			continue
		}
		out.Categories = append(out.Categories, models.CategoryObservation{
			ID:   strings.TrimSpace(cat.ID),
			Name: strings.TrimSpace(cat.Name),
			Path: cat.Path,
		})
		if id := strings.TrimSpace(cat.ID); id != "" {
			out.Links = append(out.Links, models.ProductCategory{EAN: ean, CategoryID: id})
		}
	}

	warnings += n.extractVariants(record, out, name)
	n.extractImages(record, out, name)
	n.extractAttributes(record, out, desc)

	return out, warnings
}

func (n *Normalizer) extractVariants(record *feed.ProductRecord, out *NormalizedRecord, productName string) int {
	warnings := 0
	for _, size := range record.Sizes {
		code := strings.TrimSpace(size.Code)
		if code == "" {
			warnings++
			n.logf("WARN <size> without code on EAN %s, variant skipped", out.Product.EAN)
			continue
		}

		variant := models.Variant{
			ID:   out.Product.EAN + "-" + code,
			EAN:  out.Product.EAN,
			Name: productName + " - " + code,
		}

		if size.Stock != nil && strings.TrimSpace(size.Stock.Quantity) != "" {
			stock, err := parseStockQuantity(size.Stock.Quantity)
			if err != nil {
				warnings++
				n.logf("WARN invalid stock quantity %q for variant %s, using 0", size.Stock.Quantity, variant.ID)
			} else {
				variant.Stock = stock
			}
		}

		priceStr := ""
		if size.Price != nil {
			priceStr = strings.TrimSpace(size.Price.Net)
		}
		if priceStr == "" && record.Price != nil {
			priceStr = strings.TrimSpace(record.Price.Net)
		}
		if priceStr != "" {
			price, err := decimal.NewFromString(priceStr)
			if err != nil {
				warnings++
				n.logf("WARN unparsable supplier price %q for variant %s, using NULL", priceStr, variant.ID)
			} else {
				variant.SupplierPrice = &price
			}
		}

		out.Variants = append(out.Variants, variant)
	}
	return warnings
}

func (n *Normalizer) extractImages(record *feed.ProductRecord, out *NormalizedRecord, productName string) {
	alt := productName
	if alt == "" {
		alt = fmt.Sprintf("Image for %s", out.Product.EAN)
	}

	seen := make(map[string]bool)
	order := 0
	for _, image := range record.LargeImages {
		url := strings.TrimSpace(image.URL)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		out.Images = append(out.Images, models.Image{
			EAN:       out.Product.EAN,
			URL:       url,
			Alt:       alt,
			IsPrimary: order == 0,
			SortOrder: order,
		})
		order++
	}
}

func (n *Normalizer) extractAttributes(record *feed.ProductRecord, out *NormalizedRecord, desc feed.Description) {
	parts := make([]string, 0, 3)
	for _, html := range []string{desc.LongDesc, desc.ShortDesc, desc.Generic} {
		if strings.TrimSpace(html) != "" {
			parts = append(parts, html)
		}
	}
	if len(parts) == 0 {
		return
	}

	seen := make(map[string]bool)
	for _, pair := range n.text.ExtractPairs(strings.Join(parts, "\n")) {
		key := strings.TrimSpace(pair.Key)
		value := strings.TrimSpace(pair.Value)
		if key == "" || value == "" {
			continue
		}
		if len(key) >= maxAttributeKeyLen || len(value) >= maxAttributeValueLen {
			continue
		}
		if boilerplateAttributeKeys[strings.ToLower(key)] {
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Attributes = append(out.Attributes, models.Attribute{
			EAN:   out.Product.EAN,
			Key:   key,
			Value: value,
		})
	}
}

// pickDescription prefers the container for the configured language and
// falls back to the first one with any content. An empty preferred
// container does not shadow content available in another language.
func (n *Normalizer) pickDescription(descriptions []feed.Description) feed.Description {
	if n.preferredLang != "" {
		for _, d := range descriptions {
			if strings.EqualFold(d.Lang, n.preferredLang) &&
				firstNonEmpty(d.Name, d.ShortDesc, d.LongDesc, d.Generic) != "" {
				return d
			}
		}
	}
	for _, d := range descriptions {
		if firstNonEmpty(d.Name, d.ShortDesc, d.LongDesc, d.Generic) != "" {
			return d
		}
	}
	return feed.Description{}
}

// parseStockQuantity tolerates comma decimal separators and truncates to
// an integer. Negative quantities are out of contract and rejected.
func parseStockQuantity(raw string) (int, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("negative quantity %q", raw)
	}
	return int(value), nil
}

func (n *Normalizer) logf(format string, v ...interface{}) {
	if n.log != nil {
		n.log.Log(format, v...)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
