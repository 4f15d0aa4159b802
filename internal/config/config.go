// Package config provides centralized configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ErrNotConfigured indicates that required tracker settings are missing and
// no network call should be attempted.
var ErrNotConfigured = errors.New("tracker connection is not configured")

// DefaultTemplate is the description template used when the user has not
// configured one. Placeholders are substituted at compile time; the markup
// subset (**bold**, [label](url), "- " lists) is rendered into the tracker's
// document format.
const DefaultTemplate = `**Extracted from Discord Message**

- Author: {author}
- Server: {server}
- Channel: {channel}
- Time: {time}
- Link: [Open Message]({link})

**Message Content**

{content}`

// Settings holds the persisted configuration consumed by the ticket flow.
// It is read at the start of every invocation and written only by the
// settings surface (and the opportunistic account-id cache).
type Settings struct {
	// Domain is the Jira Cloud domain, e.g. "example.atlassian.net".
	Domain string
	// Email is the Atlassian account email used for Basic auth.
	Email string
	// APIToken is the Atlassian API token paired with Email.
	APIToken string
	// ProjectKey is the project new issues are created in.
	ProjectKey string
	// IssueType is the issue type name, e.g. "Task".
	IssueType string
	// TitlePrefixes holds newline-delimited title prefix presets.
	TitlePrefixes string
	// ParentKeys holds newline-delimited parent/epic key presets.
	ParentKeys string
	// PrefixParents holds "prefix:key" lines mapping a title prefix to a
	// default parent key.
	PrefixParents string
	// DueDateOffset is the number of days from creation to due date.
	// Zero means no due date is set.
	DueDateOffset int
	// Template is the description template.
	Template string
	// Lang selects the UI/date language ("en" or "ja").
	Lang string
	// AccountID is the cached Jira account id of the authenticated user.
	// Cleared whenever credential-affecting settings are saved.
	AccountID string
}

// DefaultPath returns the default settings file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "discue.yaml"
	}
	return filepath.Join(home, ".config", "discue", "config.yaml")
}

// newViper builds a viper instance bound to the settings file and the
// DISCUE_* environment variables.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("issue_type", "Task")
	v.SetDefault("title_prefixes", "[Discord]")
	v.SetDefault("template", DefaultTemplate)
	v.SetDefault("lang", "en")

	// Map specific environment variables
	v.BindEnv("domain", "DISCUE_DOMAIN")
	v.BindEnv("email", "DISCUE_EMAIL")
	v.BindEnv("api_token", "DISCUE_API_TOKEN")
	v.BindEnv("project_key", "DISCUE_PROJECT_KEY")

	return v
}

// Load reads settings from the given file path. A missing file is not an
// error: defaults and environment variables still apply, and the required
// field check happens later, right before any network call. An empty path
// selects the default location.
func Load(path string) (*Settings, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
	}

	settings := &Settings{
		Domain:        normalizeDomain(v.GetString("domain")),
		Email:         v.GetString("email"),
		APIToken:      v.GetString("api_token"),
		ProjectKey:    v.GetString("project_key"),
		IssueType:     v.GetString("issue_type"),
		TitlePrefixes: v.GetString("title_prefixes"),
		ParentKeys:    v.GetString("parent_keys"),
		PrefixParents: v.GetString("prefix_parents"),
		DueDateOffset: v.GetInt("due_date_offset"),
		Template:      v.GetString("template"),
		Lang:          v.GetString("lang"),
		AccountID:     v.GetString("account_id"),
	}

	return settings, nil
}

// Save persists the settings to the given path. Saving always clears the
// cached account id so the next ticket creation re-resolves it against the
// (possibly changed) credentials.
func Save(path string, settings *Settings) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	settings.AccountID = ""

	v := newViper(path)
	writeAll(v, settings)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write settings file %s: %w", path, err)
	}
	return nil
}

// SaveAccountID updates only the cached account id, preserving everything
// else on disk. Used by the lazy assignee resolution.
func SaveAccountID(path string, accountID string) error {
	if path == "" {
		path = DefaultPath()
	}

	settings, err := Load(path)
	if err != nil {
		return err
	}

	v := newViper(path)
	writeAll(v, settings)
	v.Set("account_id", accountID)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to cache account id: %w", err)
	}
	return nil
}

func writeAll(v *viper.Viper, settings *Settings) {
	v.Set("domain", settings.Domain)
	v.Set("email", settings.Email)
	v.Set("api_token", settings.APIToken)
	v.Set("project_key", settings.ProjectKey)
	v.Set("issue_type", settings.IssueType)
	v.Set("title_prefixes", settings.TitlePrefixes)
	v.Set("parent_keys", settings.ParentKeys)
	v.Set("prefix_parents", settings.PrefixParents)
	v.Set("due_date_offset", settings.DueDateOffset)
	v.Set("template", settings.Template)
	v.Set("lang", settings.Lang)
	v.Set("account_id", settings.AccountID)
}

// ValidateRequired ensures the settings needed for any tracker call are
// present. It reports every missing field at once.
func ValidateRequired(settings *Settings) error {
	var missing []string

	if settings.Domain == "" {
		missing = append(missing, "domain")
	}
	if settings.Email == "" {
		missing = append(missing, "email")
	}
	if settings.APIToken == "" {
		missing = append(missing, "api_token")
	}
	if settings.ProjectKey == "" {
		missing = append(missing, "project_key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", ErrNotConfigured, missing)
	}
	return nil
}

// TitlePrefixList returns the configured title prefix presets, one per line,
// with blank lines dropped.
func (s *Settings) TitlePrefixList() []string {
	return splitLines(s.TitlePrefixes)
}

// ParentKeyList returns the configured parent key presets, one per line,
// with blank lines dropped.
func (s *Settings) ParentKeyList() []string {
	return splitLines(s.ParentKeys)
}

// ParentForPrefix returns the default parent key mapped to the given title
// prefix via the "prefix:key" lines, or "" when no mapping exists.
func (s *Settings) ParentForPrefix(prefix string) string {
	for _, line := range splitLines(s.PrefixParents) {
		name, key, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(name) == prefix {
			return strings.TrimSpace(key)
		}
	}
	return ""
}

// normalizeDomain strips a scheme and trailing slashes so that both
// "example.atlassian.net" and "https://example.atlassian.net/" work.
func normalizeDomain(domain string) string {
	domain = strings.TrimPrefix(domain, "https://")
	domain = strings.TrimPrefix(domain, "http://")
	return strings.TrimRight(domain, "/")
}

func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
