package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Source yields raw product records one at a time. Next returns io.EOF
// when the document is exhausted.
type Source interface {
	Next() (*ProductRecord, error)
	Close() error
}

// Reader streams <product> elements out of the feed document without ever
// holding more than one record in memory.
type Reader struct {
	rc  io.ReadCloser
	dec *xml.Decoder
}

// NewReader wraps rc with an XML decoder. encoding may name a charmap the
// document is known to use ("windows-1250" and friends); an empty value
// defers to the document's own XML declaration.
func NewReader(rc io.ReadCloser, encoding string) (*Reader, error) {
	var src io.Reader = rc
	if encoding != "" && !isUTF8(encoding) {
		cm, err := charmapFor(encoding)
		if err != nil {
			rc.Close()
			return nil, err
		}
		src = transform.NewReader(rc, cm.NewDecoder())
	}

	dec := xml.NewDecoder(src)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if isUTF8(charset) {
			return input, nil
		}
		cm, err := charmapFor(charset)
		if err != nil {
			return nil, err
		}
		return transform.NewReader(input, cm.NewDecoder()), nil
	}
	return &Reader{rc: rc, dec: dec}, nil
}

func (r *Reader) Next() (*ProductRecord, error) {
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "product" {
			continue
		}
		var record ProductRecord
		if err := r.dec.DecodeElement(&record, &start); err != nil {
			return nil, fmt.Errorf("decode product element: %w", err)
		}
		return &record, nil
	}
}

func (r *Reader) Close() error {
	return r.rc.Close()
}

func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

func charmapFor(name string) (*charmap.Charmap, error) {
	switch strings.ToLower(name) {
	case "windows-1250":
		return charmap.Windows1250, nil
	case "windows-1251":
		return charmap.Windows1251, nil
	case "windows-1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	case "iso-8859-2", "latin2":
		return charmap.ISO8859_2, nil
	}
	return nil, fmt.Errorf("unsupported feed encoding %q", name)
}
