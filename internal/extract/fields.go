package extract

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ysakura/discue/internal/logging"
	"github.com/ysakura/discue/pkg/models"
)

// Display sentinels for fields that stayed unresolved.
const (
	unknownUser    = "Unknown User"
	unknownServer  = "Unknown Server"
	unknownChannel = "Unknown Channel"
)

// Extractor recovers an ExtractedMessage from a located message unit inside
// a parsed page snapshot.
type Extractor struct {
	// Root is the document root the snapshot was parsed into.
	Root *html.Node

	// PageURL is the page's own URL, used as the permalink base. Falls
	// back to whatever the snapshot declares (canonical link, base href).
	PageURL string

	// Title is the document title fed to context resolution.
	Title string

	// Now supplies the extraction instant for the timestamp default.
	// Defaults to time.Now.
	Now func() time.Time

	// OnLocate, when set, is invoked with the located message unit before
	// field recovery. The CLI uses it to echo a highlighted excerpt so
	// the user can confirm the heuristic picked the right message.
	OnLocate func(*Located)
}

// Extract locates the message unit enclosing origin and recovers all
// fields, each independently defaulted. The titlePrefix and selection feed
// the generated summary. The only failure mode is ErrNoMessageFound.
func (e *Extractor) Extract(origin *html.Node, titlePrefix, selection string) (*models.ExtractedMessage, error) {
	loc, err := Locate(origin)
	if err != nil {
		return nil, err
	}
	if e.OnLocate != nil {
		e.OnLocate(loc)
	}

	msg := &models.ExtractedMessage{
		Content:   e.content(loc),
		Author:    e.author(loc),
		Timestamp: e.timestamp(loc),
	}

	ctx := ResolveContext(e.Title, e.Root)
	msg.ServerName = ctx.ServerName
	msg.ChannelName = ctx.ChannelName
	if msg.ServerName == "" {
		msg.ServerName = unknownServer
	}
	if msg.ChannelName == "" {
		msg.ChannelName = unknownChannel
	}

	msg.MessageLink = e.permalink(loc)
	msg.Summary = defaultSummary(titlePrefix, selection, msg.Author, msg.ChannelName)

	logging.Debug("extracted message",
		"author", msg.Author,
		"server", msg.ServerName,
		"channel", msg.ChannelName,
		"link", msg.MessageLink)

	return msg, nil
}

// content returns the text of the content node, or of whichever container
// was found when no dedicated content node exists.
func (e *Extractor) content(loc *Located) string {
	if loc.Content != nil {
		return textContent(loc.Content)
	}
	return textContent(loc.Container())
}

// author resolves the display name: a heading-scoped username element in
// the row first, then the coalesced-message fallback that pairs the content
// node's id suffix with a username header elsewhere in the document.
func (e *Extractor) author(loc *Located) string {
	if loc.Row != nil {
		heading := findDescendant(loc.Row, func(n *html.Node) bool {
			switch n.Data {
			case "h1", "h2", "h3":
				return findDescendant(n, func(c *html.Node) bool {
					return classContains(c, "username")
				}) != nil
			}
			return false
		})
		if heading != nil {
			username := findDescendant(heading, func(n *html.Node) bool {
				return classContains(n, "username")
			})
			if name := textContent(username); name != "" {
				return name
			}
		}
	}

	// Coalesced follow-up rows omit the author header; the header of the
	// first message in the group carries the same id suffix.
	if loc.Content != nil {
		if msgID := idSuffix(attrValue(loc.Content, "id")); msgID != "" {
			root := e.Root
			if root == nil {
				root = documentRoot(loc.Content)
			}
			if header := elementByID(root, usernameIDBase+msgID); header != nil {
				if name := textContent(header); name != "" {
					return name
				}
			}
		}
	}

	return unknownUser
}

// timestamp reads the datetime attribute of a <time> element within the
// message unit, defaulting to the extraction instant.
func (e *Extractor) timestamp(loc *Located) string {
	timeEl := findDescendant(loc.Container(), func(n *html.Node) bool {
		return n.Data == "time" && attrValue(n, "datetime") != ""
	})
	if timeEl != nil {
		return attrValue(timeEl, "datetime")
	}

	now := e.Now
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339)
}

// permalink deep-links to the message by appending the recovered message id
// to the page URL, unless the URL already ends with it.
func (e *Extractor) permalink(loc *Located) string {
	pageURL := e.PageURL
	if pageURL == "" && e.Root != nil {
		pageURL = PageURL(e.Root)
	}

	id := loc.MessageID()
	if id != "" && pageURL != "" && !strings.HasSuffix(pageURL, id) {
		return pageURL + "/" + id
	}
	return pageURL
}

// defaultSummary generates the ticket title shown in the edit dialog. A
// text selection takes the place of the generic lead-in when present.
func defaultSummary(titlePrefix, selection, author, channel string) string {
	displayChannel := channel
	if !strings.HasPrefix(displayChannel, "#") {
		displayChannel = "#" + displayChannel
	}

	var summary string
	if selection = strings.TrimSpace(selection); selection != "" {
		flattened := strings.Join(strings.FieldsFunc(selection, func(r rune) bool {
			return r == '\n' || r == '\r'
		}), " ")
		summary = fmt.Sprintf("%s (%s) in %s", flattened, author, displayChannel)
	} else {
		summary = fmt.Sprintf("Message from %s in %s", author, displayChannel)
	}

	if titlePrefix != "" {
		summary = titlePrefix + " " + summary
	}
	return summary
}
