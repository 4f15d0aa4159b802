package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// FindOrigin selects the origin node inside a snapshot: the deepest element
// whose text contains the needle. It is the snapshot-world substitute for
// the element under the cursor at right-click time. Returns nil when the
// needle appears nowhere.
func FindOrigin(root *html.Node, needle string) *html.Node {
	if needle == "" {
		return nil
	}

	var deepest *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if deepest != nil {
			return
		}
		if n.Type == html.ElementNode && strings.Contains(textContent(n), needle) {
			deepest = n
		}
	}
	walk(root)
	return deepest
}
