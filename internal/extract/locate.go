package extract

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RawPayload holds the artifacts pulled out of an embed page.
type RawPayload struct {
	CipherArray []string
	FragmentA   string // key
	FragmentB   string // iv
	FragmentC   string // extracted but unused by key derivation
}

// lexer extracts one named field from script text.
type lexer struct {
	field   Field
	pattern *regexp.Regexp
}

// find returns the first capture group of the pattern and whether it matched.
func (l lexer) find(text string) (string, bool) {
	m := l.pattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Order matters: the first missing field is the one reported.
var lexers = []lexer{
	{FieldCipherArray, regexp.MustCompile(`(?s)\bsources\s*=\s*(\[.*?\])`)},
	{FieldFragmentA, regexp.MustCompile(`\bconst\s+a\s*=\s*'([^'\n]*)'`)},
	{FieldFragmentB, regexp.MustCompile(`\bconst\s+b\s*=\s*'([^'\n]*)'`)},
	{FieldFragmentC, regexp.MustCompile(`\bconst\s+c\s*=\s*'([^'\n]*)'`)},
}

// Locate scans the inline script text of doc for the cipher-text array and
// the three key fragments.
func Locate(doc *EmbedDocument) (*RawPayload, error) {
	text := scriptText(doc.Body)

	found := make(map[Field]string, len(lexers))
	for _, l := range lexers {
		v, ok := l.find(text)
		if !ok {
			return nil, &MissingFieldError{Field: l.field}
		}
		found[l.field] = v
	}

	var cipherArray []string
	if err := json.Unmarshal([]byte(found[FieldCipherArray]), &cipherArray); err != nil {
		return nil, &MalformedArrayError{Err: err}
	}

	return &RawPayload{
		CipherArray: cipherArray,
		FragmentA:   found[FieldFragmentA],
		FragmentB:   found[FieldFragmentB],
		FragmentC:   found[FieldFragmentC],
	}, nil
}

// scriptText joins the bodies of all inline <script> elements. Pages
// without inline scripts are scanned whole.
func scriptText(body string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return body
	}

	var parts []string
	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		if _, external := s.Attr("src"); external {
			return
		}
		if text := s.Text(); strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		return body
	}
	return strings.Join(parts, "\n")
}
