package extract

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// platformName is the host platform's own name. It shows up as a trailing
// title token and occasionally leaks into a resolved field, where it must
// be treated as noise.
const platformName = "Discord"

// dmSentinel is used for the server slot when the title indicates a direct
// message rather than a guild channel.
const dmSentinel = "Direct Message / Other"

// badgePattern strips a leading unread-count or notification-dot badge from
// the document title, e.g. "(3) " or "● ".
var badgePattern = regexp.MustCompile(`^[\(●].*?[\)\s]\s?`)

// Context is the logical location of a message. Empty fields mean
// "unresolved"; callers substitute display sentinels where needed.
type Context struct {
	ServerName  string
	ChannelName string
}

// ResolveContext determines the server and channel a message belongs to.
// It never fails: each stage of the cascade only runs for fields the prior
// stages left unresolved, and anything still unknown stays empty.
//
// The title format is the most stable signal across client releases (it is
// a user-visible contract, unlike the generated class names), so DOM
// queries are fallbacks, not primaries.
func ResolveContext(title string, root *html.Node) Context {
	ctx := resolveFromTitle(title)

	if needsDOMFallback(ctx) {
		fillFromLandmarks(&ctx, root)
	}
	if unresolved(ctx.ServerName) {
		fillFromSidebar(&ctx, root)
	}

	sanityCorrect(&ctx)
	return ctx
}

// resolveFromTitle parses the document title. Web client titles read
// "channel | server | Discord"; some variants use "channel - server" with
// an optional trailing platform token.
func resolveFromTitle(title string) Context {
	var ctx Context

	title = strings.TrimSpace(badgePattern.ReplaceAllString(title, ""))

	switch {
	case strings.Contains(title, " | "):
		parts := strings.Split(title, " | ")
		if len(parts) >= 3 {
			ctx.ChannelName = strings.TrimSpace(parts[0])
			ctx.ServerName = strings.TrimSpace(parts[1])
		} else if len(parts) == 2 {
			// "channel | Discord" is the direct-message form.
			ctx.ChannelName = strings.TrimSpace(parts[0])
			ctx.ServerName = dmSentinel
		}
	case strings.Contains(title, " - "):
		parts := strings.Split(title, " - ")
		if strings.TrimSpace(parts[len(parts)-1]) == platformName {
			parts = parts[:len(parts)-1]
		}
		if len(parts) >= 2 {
			ctx.ChannelName = strings.TrimSpace(parts[0])
			ctx.ServerName = strings.TrimSpace(parts[1])
		} else if len(parts) == 1 {
			ctx.ChannelName = strings.TrimSpace(parts[0])
		}
	}

	return ctx
}

// needsDOMFallback reports whether any field is still unresolved (or was
// polluted with the platform name) after title parsing.
func needsDOMFallback(ctx Context) bool {
	return unresolved(ctx.ServerName) || unresolved(ctx.ChannelName)
}

func unresolved(value string) bool {
	return value == "" || strings.EqualFold(value, platformName)
}

// fillFromLandmarks reads the navigation header for the server name and the
// chat header region for the channel name, filling only unresolved fields.
func fillFromLandmarks(ctx *Context, root *html.Node) {
	if root == nil {
		return
	}

	if unresolved(ctx.ServerName) {
		if h := navHeaderHeading(root); h != nil {
			if name := textContent(h); name != "" {
				ctx.ServerName = name
			}
		}
	}

	if unresolved(ctx.ChannelName) {
		if h := chatHeaderHeading(root); h != nil {
			if name := textContent(h); name != "" {
				ctx.ChannelName = name
			}
		}
	}
}

// navHeaderHeading finds the h1 inside the guild navigation header.
func navHeaderHeading(root *html.Node) *html.Node {
	nav := findDescendant(root, func(n *html.Node) bool {
		return n.Data == "nav"
	})
	if nav == nil {
		return nil
	}
	header := findDescendant(nav, func(n *html.Node) bool {
		return n.Data == "header"
	})
	if header == nil {
		return nil
	}
	return findDescendant(header, func(n *html.Node) bool {
		return n.Data == "h1"
	})
}

// chatHeaderHeading finds the channel-name heading in the chat header:
// the data-cy marker if present, otherwise an h3 with a title-ish class.
func chatHeaderHeading(root *html.Node) *html.Node {
	if h := findDescendant(root, func(n *html.Node) bool {
		return attrValue(n, "data-cy") == "channel-name"
	}); h != nil {
		return h
	}
	return findDescendant(root, func(n *html.Node) bool {
		return n.Data == "h3" && classContains(n, "title")
	})
}

// fillFromSidebar reads the accessible label of the currently selected
// guild icon in the server sidebar.
func fillFromSidebar(ctx *Context, root *html.Node) {
	if root == nil {
		return
	}

	nav := findDescendant(root, func(n *html.Node) bool {
		return n.Data == "nav" && classContains(n, "guilds")
	})
	if nav == nil {
		return
	}
	selected := findDescendant(nav, func(n *html.Node) bool {
		return classContains(n, "selected")
	})
	if selected == nil {
		return
	}

	label := attrValue(selected, "aria-label")
	if label == "" {
		if labelled := findDescendant(selected, func(n *html.Node) bool {
			return attrValue(n, "aria-label") != ""
		}); labelled != nil {
			label = attrValue(labelled, "aria-label")
		}
	}
	if label != "" {
		ctx.ServerName = label
	}
}

// sanityCorrect scrubs the platform's own name from either slot and fixes
// the misclassification where a channel name (leading '#') landed in the
// server slot.
func sanityCorrect(ctx *Context) {
	if strings.EqualFold(ctx.ServerName, platformName) {
		ctx.ServerName = ""
	}
	if strings.EqualFold(ctx.ChannelName, platformName) {
		ctx.ChannelName = ""
	}

	if strings.HasPrefix(ctx.ServerName, "#") {
		if ctx.ChannelName == "" {
			ctx.ChannelName = ctx.ServerName
		}
		ctx.ServerName = ""
	}
}
