// Package extract recovers structured message data from a parsed snapshot of
// the Discord web client. The page's class names are generated and churn
// between releases, so everything here is a prioritized chain of heuristic
// matchers with explicit unresolved sentinels rather than exceptions.
package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// attrValue returns the value of the named attribute, or "".
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// classContains reports whether any class token contains the substring.
func classContains(n *html.Node, substr string) bool {
	return strings.Contains(attrValue(n, "class"), substr)
}

// isElement reports whether the node is an element with the given tag name.
func isElement(n *html.Node, tag string) bool {
	return n.Type == html.ElementNode && n.Data == tag
}

// findDescendant returns the first descendant (depth-first, document order)
// satisfying pred, or nil.
func findDescendant(n *html.Node, pred func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && pred(c) {
			return c
		}
		if found := findDescendant(c, pred); found != nil {
			return found
		}
	}
	return nil
}

// documentRoot walks up to the topmost node, normally the *html.Node
// returned by html.Parse.
func documentRoot(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// elementByID returns the element with the exact id within root, or nil.
func elementByID(root *html.Node, id string) *html.Node {
	return findDescendant(root, func(n *html.Node) bool {
		return attrValue(n, "id") == id
	})
}

// textContent extracts the rendered text of a node: text nodes concatenated,
// with line breaks at <br> and after block-level children, and surrounding
// whitespace trimmed. No further normalization is applied; the tracker
// receives the message as the host rendered it.
func textContent(n *html.Node) string {
	var b strings.Builder
	writeText(&b, n)
	return strings.TrimSpace(b.String())
}

func writeText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if isElement(n, "br") {
		b.WriteString("\n")
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	switch {
	case isElement(n, "div"), isElement(n, "p"), isElement(n, "li"):
		b.WriteString("\n")
	}
}

// PageTitle returns the document's <title> text, or "".
func PageTitle(root *html.Node) string {
	title := findDescendant(root, func(n *html.Node) bool {
		return n.Data == "title"
	})
	if title == nil {
		return ""
	}
	return textContent(title)
}

// PageURL recovers the page's own URL from the snapshot: a canonical link
// if present, otherwise a <base href>. Returns "" when the snapshot carries
// neither.
func PageURL(root *html.Node) string {
	link := findDescendant(root, func(n *html.Node) bool {
		return n.Data == "link" && attrValue(n, "rel") == "canonical"
	})
	if link != nil {
		return attrValue(link, "href")
	}
	base := findDescendant(root, func(n *html.Node) bool {
		return n.Data == "base" && attrValue(n, "href") != ""
	})
	if base != nil {
		return attrValue(base, "href")
	}
	return ""
}
