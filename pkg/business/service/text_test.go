package service

import (
	"testing"
)

func TestPlainText(t *testing.T) {
	ts := NewTextService()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "   ", ""},
		{"strips tags", "<p>Compact <b>18V</b> drill.</p>", "Compact 18V drill."},
		{"collapses whitespace", "<div>one\n\n  two\tthree</div>", "one two three"},
		{"drops scripts", "<p>visible</p><script>alert(1)</script><style>p{}</style>", "visible"},
		{"unescapes entities", "<p>5 &amp; 6</p>", "5 & 6"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ts.PlainText(tt.input); got != tt.want {
				t.Fatalf("PlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractPairs_HeadingParagraphs(t *testing.T) {
	ts := NewTextService()

	input := `<p>Marketing copy first.</p>
<h3>Dane techniczne:</h3>
<p>Moc: 500W</p>
<p>Waga: 1,2 kg</p>
<p>no separator here</p>
<h3>Another section</h3>
<p>After: ignored</p>`

	pairs := ts.ExtractPairs(input)
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].Key != "Moc" || pairs[0].Value != "500W" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1].Key != "Waga" || pairs[1].Value != "1,2 kg" {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
}

func TestExtractPairs_StrongHeading(t *testing.T) {
	ts := NewTextService()

	input := `<strong>Technical data:</strong><p>Voltage: 230V</p>`
	pairs := ts.ExtractPairs(input)
	if len(pairs) != 1 || pairs[0].Key != "Voltage" || pairs[0].Value != "230V" {
		t.Fatalf("unexpected pairs: %v", pairs)
	}
}

func TestExtractPairs_TwoColumnTable(t *testing.T) {
	ts := NewTextService()

	input := `<table>
<tr><td>Power</td><td>500W</td></tr>
<tr><td>Weight</td><td>1.2 kg</td></tr>
<tr><td>one-cell row</td></tr>
<tr><td>a</td><td>b</td><td>c</td></tr>
<tr><td>Blank</td><td>  </td></tr>
</table>`

	pairs := ts.ExtractPairs(input)
	if len(pairs) != 2 {
		t.Fatalf("expected only the two-column rows, got %d: %v", len(pairs), pairs)
	}
	if pairs[0].Key != "Power" || pairs[0].Value != "500W" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	if pairs[1].Key != "Weight" || pairs[1].Value != "1.2 kg" {
		t.Fatalf("unexpected second pair: %+v", pairs[1])
	}
}

func TestExtractPairs_NoSpecContent(t *testing.T) {
	ts := NewTextService()

	if pairs := ts.ExtractPairs("<p>Just prose: with a colon.</p>"); pairs != nil {
		t.Fatalf("prose without a spec heading must yield nothing, got %v", pairs)
	}
	if pairs := ts.ExtractPairs(""); pairs != nil {
		t.Fatalf("empty input must yield nothing, got %v", pairs)
	}
}
