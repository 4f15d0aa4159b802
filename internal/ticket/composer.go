// Package ticket assembles the create-issue request from extracted message
// data and persisted settings, and submits it to the tracker.
package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ysakura/discue/internal/adf"
	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/internal/jira"
	"github.com/ysakura/discue/internal/logging"
	"github.com/ysakura/discue/pkg/models"
)

// TrackerClient is the subset of the Jira client the composer needs.
type TrackerClient interface {
	Myself(ctx context.Context) (string, error)
	CreateIssue(ctx context.Context, issue *jira.IssueRequest) (*models.CreatedTicket, error)
}

// Composer merges settings and an extracted message into a tracker request.
type Composer struct {
	Settings *config.Settings
	Client   TrackerClient

	// SaveAccountID persists a freshly resolved account id for later
	// invocations. Optional; persistence failure is non-fatal.
	SaveAccountID func(accountID string) error

	// Now supplies the reference time for the due-date offset.
	// Defaults to time.Now.
	Now func() time.Time
}

// Compose builds the request body for an extracted message without
// submitting it. It encodes the merge and precedence rules: summary
// fallback, parent-key precedence, lazy assignee resolution, and the
// due-date offset.
func (c *Composer) Compose(ctx context.Context, msg models.ExtractedMessage) (*jira.IssueRequest, error) {
	if err := config.ValidateRequired(c.Settings); err != nil {
		return nil, err
	}

	summary := msg.Summary
	if summary == "" {
		summary = fallbackSummary(c.Settings, msg)
	}

	fields := jira.IssueFields{
		Project:     jira.ProjectRef{Key: c.Settings.ProjectKey},
		Summary:     summary,
		Description: adf.Compile(c.Settings.Template, msg, c.Settings.Lang),
		IssueType:   jira.NameRef{Name: c.Settings.IssueType},
	}

	if parent := c.parentKey(msg); parent != "" {
		fields.Parent = &jira.KeyRef{Key: parent}
	}

	if accountID := c.resolveAccountID(ctx); accountID != "" {
		fields.Assignee = &jira.IDRef{ID: accountID}
	}

	if c.Settings.DueDateOffset > 0 {
		now := c.Now
		if now == nil {
			now = time.Now
		}
		fields.DueDate = now().AddDate(0, 0, c.Settings.DueDateOffset).Format("2006-01-02")
	}

	return &jira.IssueRequest{Fields: fields}, nil
}

// Submit composes and files the ticket.
func (c *Composer) Submit(ctx context.Context, msg models.ExtractedMessage) (*models.CreatedTicket, error) {
	req, err := c.Compose(ctx, msg)
	if err != nil {
		return nil, err
	}
	return c.Client.CreateIssue(ctx, req)
}

// parentKey picks the parent issue key: the user's per-invocation choice
// wins over the configured default. A multi-line configured value (a preset
// list accidentally stored where a single key belongs) is reduced to its
// first non-empty line.
func (c *Composer) parentKey(msg models.ExtractedMessage) string {
	target := msg.ParentKey
	if target == "" {
		target = c.Settings.ParentKeys
	}
	return firstNonEmptyLine(target)
}

// resolveAccountID returns the assignee account id, looking it up once via
// the tracker's current-user endpoint when no cached value exists. Lookup
// failure is non-fatal: the ticket is filed without an assignee and the
// lookup is not retried within the invocation.
func (c *Composer) resolveAccountID(ctx context.Context) string {
	if c.Settings.AccountID != "" {
		return c.Settings.AccountID
	}

	accountID, err := c.Client.Myself(ctx)
	if err != nil {
		logging.Warn("failed to resolve account id, filing without assignee", "error", err)
		return ""
	}

	c.Settings.AccountID = accountID
	if c.SaveAccountID != nil {
		if err := c.SaveAccountID(accountID); err != nil {
			logging.Warn("failed to cache account id", "error", err)
		}
	}
	return accountID
}

// fallbackSummary generates a title when the dialog was bypassed and no
// override was given.
func fallbackSummary(settings *config.Settings, msg models.ExtractedMessage) string {
	channel := msg.ChannelName
	if !strings.HasPrefix(channel, "#") {
		channel = "#" + channel
	}

	summary := fmt.Sprintf("Message from %s in %s", msg.Author, channel)
	if prefixes := settings.TitlePrefixList(); len(prefixes) > 0 {
		summary = prefixes[0] + " " + summary
	}
	return summary
}

func firstNonEmptyLine(value string) string {
	for _, line := range strings.Split(value, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
