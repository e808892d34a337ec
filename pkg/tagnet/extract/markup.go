package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// StripMarkup reduces an HTML-flavoured text field to plain text: tags are
// dropped and entities such as &amp; are decoded. Text without '<' or '&'
// is returned unchanged.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// keep words on either side of a tag apart
			b.WriteByte(' ')
		}
	}
}
