package service

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type KeyValue struct {
	Key   string
	Value string
}

type ITextService interface {
	PlainText(input string) string
	ExtractPairs(input string) []KeyValue
}

// TextService turns supplier HTML description blobs into plain text and
// harvests key/value pairs from the structures suppliers actually use:
// "Label: value" paragraphs under a specification heading and two-column
// tables.
type TextService struct{}

func NewTextService() *TextService {
	return &TextService{}
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// specHeadings are the section titles that introduce "Label: value"
// paragraph blocks in supplier descriptions.
var specHeadings = []string{
	"specyfikacja techniczna:",
	"dane techniczne:",
	"technical specifications:",
	"technical data:",
	"charakterystyka produktu:",
	"product features:",
}

func (ts *TextService) PlainText(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return normalizeWhitespace(html.UnescapeString(input))
	}
	doc.Find("script, style").Remove()
	return normalizeWhitespace(doc.Text())
}

func (ts *TextService) ExtractPairs(input string) []KeyValue {
	if strings.TrimSpace(input) == "" {
		return nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(input))
	if err != nil {
		return nil
	}

	var pairs []KeyValue

	doc.Find("h2, h3, h4, strong").Each(func(_ int, heading *goquery.Selection) {
		if !isSpecHeading(normalizeWhitespace(heading.Text())) {
			return
		}
		heading.NextAll().EachWithBreak(func(_ int, sibling *goquery.Selection) bool {
			switch goquery.NodeName(sibling) {
			case "p":
				text := normalizeWhitespace(sibling.Text())
				if key, value, ok := strings.Cut(text, ":"); ok {
					key = strings.TrimSpace(key)
					value = strings.TrimSpace(value)
					if key != "" && value != "" {
						pairs = append(pairs, KeyValue{Key: key, Value: value})
					}
				}
				return true
			case "h2", "h3", "h4", "div", "table", "ul":
				return false
			}
			return true
		})
	})

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		key := normalizeWhitespace(cells.Eq(0).Text())
		value := normalizeWhitespace(cells.Eq(1).Text())
		if key != "" && value != "" {
			pairs = append(pairs, KeyValue{Key: key, Value: value})
		}
	})

	return pairs
}

func isSpecHeading(text string) bool {
	lowered := strings.ToLower(text)
	for _, heading := range specHeadings {
		if strings.Contains(lowered, heading) {
			return true
		}
	}
	return false
}

func normalizeWhitespace(input string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(input, " "))
}
