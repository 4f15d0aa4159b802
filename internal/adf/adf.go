// Package adf renders the description template into an Atlassian Document
// Format tree, the structured rich-text representation Jira Cloud requires
// for issue descriptions.
package adf

import (
	"regexp"
	"strings"
	"time"

	"github.com/ysakura/discue/pkg/models"
)

// Document is the root ADF node.
type Document struct {
	Type    string `json:"type"`
	Version int    `json:"version"`
	Content []Node `json:"content"`
}

// Node is a block or inline ADF node. Block nodes carry Content, inline
// text nodes carry Text and optional Marks.
type Node struct {
	Type    string `json:"type"`
	Text    string `json:"text,omitempty"`
	Marks   []Mark `json:"marks,omitempty"`
	Content []Node `json:"content,omitempty"`
}

// Mark annotates a text node, e.g. strong or link.
type Mark struct {
	Type  string            `json:"type"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// inlinePattern matches the two supported inline spans, non-overlapping and
// left-to-right: **bold** and [label](url). Nesting one inside the other is
// not supported.
var inlinePattern = regexp.MustCompile(`\*\*.*?\*\*|\[.*?\]\(.*?\)`)

// linkPattern splits a matched link span into label and destination.
var linkPattern = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

// Compile renders the template with the message's fields substituted and
// the markup subset parsed into an ADF tree. It is a pure function and
// never fails: missing input degrades to whitespace placeholder nodes,
// since the tracker rejects empty documents and empty text nodes.
func Compile(template string, msg models.ExtractedMessage, lang string) *Document {
	text := substitute(template, msg, lang)

	doc := &Document{Type: "doc", Version: 1}

	var currentList *Node
	flushList := func() {
		if currentList != nil {
			doc.Content = append(doc.Content, *currentList)
			currentList = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			// A blank line closes any open list and becomes an empty
			// paragraph: ADF has no native blank-line concept, so the
			// empty paragraph acts as vertical spacing.
			flushList()
			doc.Content = append(doc.Content, Node{Type: "paragraph"})
			continue
		}

		if strings.HasPrefix(trimmed, "- ") {
			if currentList == nil {
				currentList = &Node{Type: "bulletList"}
			}
			currentList.Content = append(currentList.Content, Node{
				Type: "listItem",
				Content: []Node{{
					Type:    "paragraph",
					Content: parseInline(trimmed[2:]),
				}},
			})
			continue
		}

		flushList()
		doc.Content = append(doc.Content, Node{
			Type:    "paragraph",
			Content: parseInline(line),
		})
	}
	flushList()

	if len(doc.Content) == 0 {
		doc.Content = append(doc.Content, Node{
			Type:    "paragraph",
			Content: []Node{{Type: "text", Text: " "}},
		})
	}

	return doc
}

// substitute replaces the placeholder tokens with the message's fields.
// Replacement is literal: a field value that itself contains a placeholder
// token is inserted as plain text, never expanded again.
func substitute(template string, msg models.ExtractedMessage, lang string) string {
	r := strings.NewReplacer(
		"{author}", msg.Author,
		"{server}", msg.ServerName,
		"{channel}", msg.ChannelName,
		"{time}", FormatTime(msg.Timestamp, lang),
		"{link}", msg.MessageLink,
		"{content}", msg.Content,
	)
	return r.Replace(template)
}

// FormatTime renders an ISO-8601 instant in the display format for the
// given language. Unparseable input is passed through unchanged.
func FormatTime(iso string, lang string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	if lang == "ja" {
		return t.Format("2006/01/02 15:04:05")
	}
	return t.Format("1/2/2006, 3:04:05 PM")
}

// parseInline scans a line for the supported inline spans. Unmatched spans
// become plain text nodes; an entirely empty result is replaced with a
// single-space text node.
func parseInline(text string) []Node {
	var nodes []Node

	appendText := func(s string) {
		if s != "" {
			nodes = append(nodes, Node{Type: "text", Text: s})
		}
	}

	last := 0
	for _, loc := range inlinePattern.FindAllStringIndex(text, -1) {
		appendText(text[last:loc[0]])
		span := text[loc[0]:loc[1]]

		switch {
		case strings.HasPrefix(span, "**"):
			inner := span[2 : len(span)-2]
			if inner == "" {
				appendText(span)
				break
			}
			nodes = append(nodes, Node{
				Type:  "text",
				Text:  inner,
				Marks: []Mark{{Type: "strong"}},
			})
		default:
			m := linkPattern.FindStringSubmatch(span)
			if m == nil || m[1] == "" {
				appendText(span)
				break
			}
			nodes = append(nodes, Node{
				Type:  "text",
				Text:  m[1],
				Marks: []Mark{{Type: "link", Attrs: map[string]string{"href": m[2]}}},
			})
		}
		last = loc[1]
	}
	appendText(text[last:])

	if len(nodes) == 0 {
		nodes = []Node{{Type: "text", Text: " "}}
	}
	return nodes
}
