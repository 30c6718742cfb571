// =============================================================================
// Sample Reducer - HTML Document Loading
// =============================================================================
//
// Notebook sections arrive as HTML fragments produced by a rich-text editor.
// The fragment is parsed with the HTML5 algorithm, so a bare <tr> directly
// under <table> gets the implied <tbody> a browser would give it, and the
// locator can rely on thead/tbody structure being present.
//
// =============================================================================

package htmlparser

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ginjaninja78/sample-reducer/internal/errors"
)

// Parse reads an HTML document or fragment into a queryable document.
func Parse(r io.Reader) (*goquery.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse section HTML")
	}
	return goquery.NewDocumentFromNode(root), nil
}

// ParseString is Parse for in-memory HTML.
func ParseString(s string) (*goquery.Document, error) {
	return Parse(strings.NewReader(s))
}

// cellText returns the trimmed text content of a selection.
func cellText(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
