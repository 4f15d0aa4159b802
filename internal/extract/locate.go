package extract

import (
	"errors"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoMessageFound is returned when no message container encloses the
// origin node. It is the only way extraction fails outright; every
// individual field instead degrades to a default.
var ErrNoMessageFound = errors.New("could not find message element; select a point on the message text itself")

// Id prefixes the Discord client assigns to message elements. These are the
// most reliable anchors because they survive class-name churn.
const (
	contentIDPrefix = "message-content-"
	rowIDPrefix     = "chat-messages-"
	usernameIDBase  = "message-username-"
)

// Located identifies the message unit enclosing an origin node.
type Located struct {
	// Row is the message row/group container, nil if only a content node
	// was found.
	Row *html.Node
	// Content is the message content node, nil if only a row was found.
	Content *html.Node
}

// Container returns the best element representing the message: the row when
// known, otherwise the content node.
func (l *Located) Container() *html.Node {
	if l.Row != nil {
		return l.Row
	}
	return l.Content
}

// Excerpt returns the leading text of the located message, truncated to
// max runes. Used to echo the selection back to the user, since the
// heuristic can silently pick a neighboring message.
func (l *Located) Excerpt(max int) string {
	node := l.Content
	if node == nil {
		node = l.Row
	}
	text := textContent(node)
	if line, _, found := strings.Cut(text, "\n"); found {
		text = line
	}
	runes := []rune(text)
	if len(runes) > max {
		return string(runes[:max]) + "…"
	}
	return text
}

// MessageID recovers the opaque message identifier, preferring the content
// node's id suffix over the row's. Returns "" when neither element carries
// a usable id.
func (l *Located) MessageID() string {
	if l.Content != nil {
		if id := idSuffix(attrValue(l.Content, "id")); id != "" {
			return id
		}
	}
	if l.Row != nil {
		if id := idSuffix(attrValue(l.Row, "id")); id != "" {
			return id
		}
	}
	return ""
}

// idSuffix returns the trailing "-"-delimited segment of an element id,
// which is where the client embeds the message snowflake.
func idSuffix(id string) string {
	if id == "" {
		return ""
	}
	parts := strings.Split(id, "-")
	return parts[len(parts)-1]
}

// isContentNode matches the message content element by its id prefix.
func isContentNode(n *html.Node) bool {
	return strings.HasPrefix(attrValue(n, "id"), contentIDPrefix) ||
		classContains(n, "messageContent")
}

// isRowNode matches the message row/group element: the id-anchored form
// first, then the generic role/class signals.
func isRowNode(n *html.Node) bool {
	if strings.HasPrefix(attrValue(n, "id"), rowIDPrefix) {
		return true
	}
	if attrValue(n, "role") == "article" {
		return true
	}
	return classContains(n, "message")
}

// Locate walks the ancestor chain of the origin node looking for the
// enclosing message unit: first a content node, then a row node. When only
// one of the two is found, the other is searched for among its descendants
// as corroboration. It fails with ErrNoMessageFound only when neither is
// locatable anywhere.
func Locate(origin *html.Node) (*Located, error) {
	if origin == nil {
		return nil, errors.New("no element selected")
	}

	loc := &Located{}
	for n := origin; n != nil; n = n.Parent {
		if n.Type != html.ElementNode {
			continue
		}
		if loc.Content == nil && isContentNode(n) {
			loc.Content = n
		}
		if loc.Row == nil && isRowNode(n) && !isContentNode(n) {
			loc.Row = n
		}
	}

	switch {
	case loc.Content == nil && loc.Row != nil:
		loc.Content = findDescendant(loc.Row, isContentNode)
	case loc.Content != nil && loc.Row == nil:
		// Coalesced follow-up messages sit in a bare container; a nested
		// content node corroborates that the ancestor match was real.
		if nested := findDescendant(loc.Content, isContentNode); nested != nil {
			loc.Content = nested
		}
	}

	if loc.Content == nil && loc.Row == nil {
		return nil, ErrNoMessageFound
	}
	return loc, nil
}
