package feed

// ProductRecord mirrors one <product> element of the supplier feed. All
// values stay raw strings here; typing and fallback rules belong to the
// normalizer.
type ProductRecord struct {
	EAN          string        `xml:"EAN,attr"`
	ID           string        `xml:"id,attr"`
	VAT          string        `xml:"vat,attr"`
	Card         string        `xml:"card"`
	Producer     Producer      `xml:"producer"`
	Unit         Unit          `xml:"unit"`
	Descriptions []Description `xml:"description"`
	Categories   []CategoryRef `xml:"category"`
	Price        *PriceRef     `xml:"price"`
	Sizes        []SizeRecord  `xml:"sizes>size"`
	LargeImages  []ImageRef    `xml:"images>large>image"`
}

type Producer struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

type Unit struct {
	ID   string `xml:"id,attr"`
	Code string `xml:"code,attr"`
	Name string `xml:"name,attr"`
}

// Description is the per-language descriptive container.
type Description struct {
	Lang      string `xml:"lang,attr"`
	Name      string `xml:"name"`
	ShortDesc string `xml:"short_desc"`
	LongDesc  string `xml:"long_desc"`
	Generic   string `xml:"description"`
}

type CategoryRef struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	Path string `xml:"path,attr"`
}

type PriceRef struct {
	Net      string `xml:"net,attr"`
	Gross    string `xml:"gross,attr"`
	Currency string `xml:"currency,attr"`
}

type SizeRecord struct {
	Code         string    `xml:"code,attr"`
	CodeProducer string    `xml:"code_producer,attr"`
	StockID      string    `xml:"stock_id,attr"`
	Stock        *StockRef `xml:"stock"`
	Price        *PriceRef `xml:"price"`
}

type StockRef struct {
	Quantity string `xml:"quantity,attr"`
}

type ImageRef struct {
	URL string `xml:"url,attr"`
}
