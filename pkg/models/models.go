// Package models defines data structures shared across the application.
package models

// ExtractedMessage represents a single chat message recovered from a Discord
// page snapshot, together with the context needed to file it as a ticket.
// Every field carries a usable default: extraction fills in sentinels rather
// than failing when an individual signal is missing.
type ExtractedMessage struct {
	// Summary is the user-facing ticket title, either generated or edited.
	Summary string `json:"summary"`

	// Content is the message body text.
	Content string `json:"content"`

	// Author is the display name of the message author. Defaults to
	// "Unknown User" when no author element can be resolved.
	Author string `json:"author"`

	// Timestamp is the message time as an ISO-8601 instant. Defaults to
	// the extraction time when the message carries no timestamp.
	Timestamp string `json:"timestamp"`

	// ServerName is the guild/server the message belongs to.
	ServerName string `json:"serverName"`

	// ChannelName is the channel the message belongs to.
	ChannelName string `json:"channelName"`

	// MessageLink is a best-effort deep link to the message. Falls back
	// to the page URL when no message identifier is recoverable.
	MessageLink string `json:"messageLink"`

	// ParentKey is the parent issue or epic chosen for this invocation.
	// Empty when the ticket should not be linked under a parent.
	ParentKey string `json:"parentKey,omitempty"`
}

// CreatedTicket describes a successfully filed tracker issue.
type CreatedTicket struct {
	// Key is the issue identifier (e.g. "SUP-42").
	Key string

	// BrowseURL is the human-facing link to the created issue.
	BrowseURL string
}
