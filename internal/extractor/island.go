package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"mediascraper/internal/domain"
	"mediascraper/internal/jsontree"
)

// loadDocument parses an HTML page.
func loadDocument(page []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIslandNotFound, err)
	}
	return doc, nil
}

// scriptByID returns the trimmed text of <script id="id">.
func scriptByID(doc *goquery.Document, id string) (string, bool) {
	sel := doc.Find(`script[id="` + id + `"]`).First()
	if sel.Length() == 0 {
		return "", false
	}
	return strings.TrimSpace(sel.Text()), true
}

// scriptsByType returns the trimmed text of every <script type="typ">, in document order.
func scriptsByType(doc *goquery.Document, typ string) []string {
	var out []string
	doc.Find(`script[type="` + typ + `"]`).Each(func(i int, s *goquery.Selection) {
		out = append(out, strings.TrimSpace(s.Text()))
	})
	return out
}

// parseJSON decodes a data island or a JSON API response.
func parseJSON(data []byte) (*jsontree.Value, error) {
	v, err := jsontree.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidJSON, err)
	}
	return v, nil
}
