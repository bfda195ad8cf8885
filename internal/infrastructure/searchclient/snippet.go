package searchclient

import (
	"strings"

	"golang.org/x/net/html"
)

// SanitizeFragment reduces a highlighted fragment to text plus the <strong>
// emphasis the query asked for. Any other markup the index echoes back is
// stripped so the widget never renders tags it did not request.
func SanitizeFragment(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return html.EscapeString(fragment)
	}

	var builder strings.Builder
	var walk func(n *html.Node, emphasized bool)
	walk = func(n *html.Node, emphasized bool) {
		if n.Type == html.TextNode {
			if n.Data == "" {
				return
			}
			if emphasized {
				builder.WriteString("<strong>")
				builder.WriteString(html.EscapeString(n.Data))
				builder.WriteString("</strong>")
			} else {
				builder.WriteString(html.EscapeString(n.Data))
			}
			return
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		childEmphasized := emphasized || (n.Type == html.ElementNode && n.Data == "strong")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, childEmphasized)
		}
	}
	walk(doc, false)
	return builder.String()
}

// SanitizeHighlights applies SanitizeFragment across a hit's highlight map.
func SanitizeHighlights(highlight map[string][]string) map[string][]string {
	if highlight == nil {
		return nil
	}
	out := make(map[string][]string, len(highlight))
	for field, fragments := range highlight {
		clean := make([]string, 0, len(fragments))
		for _, fragment := range fragments {
			clean = append(clean, SanitizeFragment(fragment))
		}
		out[field] = clean
	}
	return out
}
