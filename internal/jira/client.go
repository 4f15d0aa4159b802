// Package jira handles interactions with the Jira Cloud REST API.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	jira "github.com/andygrunwald/go-jira"

	"github.com/ysakura/discue/internal/adf"
	"github.com/ysakura/discue/internal/logging"
	"github.com/ysakura/discue/pkg/models"
)

// rawBodyLimit caps how much of an unstructured error response is surfaced
// to the user.
const rawBodyLimit = 100

// IssueRequest is the create-issue payload for POST /rest/api/3/issue.
// The v3 endpoint is used because only it accepts an ADF description; the
// typed create call of the underlying library targets the v2 shape.
type IssueRequest struct {
	Fields IssueFields `json:"fields"`
}

// IssueFields holds the writable fields of a new issue.
type IssueFields struct {
	Project     ProjectRef    `json:"project"`
	Summary     string        `json:"summary"`
	Description *adf.Document `json:"description"`
	IssueType   NameRef       `json:"issuetype"`
	Parent      *KeyRef       `json:"parent,omitempty"`
	Assignee    *IDRef        `json:"assignee,omitempty"`
	DueDate     string        `json:"duedate,omitempty"`
}

// ProjectRef identifies a project by key.
type ProjectRef struct {
	Key string `json:"key"`
}

// NameRef identifies an entity by name.
type NameRef struct {
	Name string `json:"name"`
}

// KeyRef identifies an issue by key.
type KeyRef struct {
	Key string `json:"key"`
}

// IDRef identifies an entity by id.
type IDRef struct {
	ID string `json:"id"`
}

// Client handles interactions with the Jira API.
type Client struct {
	client  *jira.Client
	baseURL string
}

// NewClient creates a Jira client authenticating with HTTP Basic auth
// (email + API token). The domain may be a bare host like
// "example.atlassian.net" or a full base URL.
func NewClient(domain, email, apiToken string) (*Client, error) {
	baseURL := domain
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/") + "/"

	tp := jira.BasicAuthTransport{
		Username: email,
		Password: apiToken,
	}

	client, err := jira.NewClient(tp.Client(), baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	logging.Debug("jira client created",
		"base_url", baseURL,
		"email", email,
		"api_token", logging.MaskSensitive(apiToken))

	return &Client{client: client, baseURL: baseURL}, nil
}

// Myself resolves the account id of the authenticated user via
// GET /rest/api/3/myself. Callers treat failure as non-fatal: a ticket can
// be filed without an assignee.
func (c *Client) Myself(ctx context.Context) (string, error) {
	req, err := c.client.NewRawRequestWithContext(ctx, "GET", "rest/api/3/myself", nil)
	if err != nil {
		return "", fmt.Errorf("failed to build myself request: %w", err)
	}

	var me struct {
		AccountID string `json:"accountId"`
	}
	resp, err := c.client.Do(req, &me)
	if err != nil {
		if resp != nil {
			return "", fmt.Errorf("self lookup failed (status %d)", resp.StatusCode)
		}
		return "", fmt.Errorf("self lookup failed: %v", err)
	}

	return me.AccountID, nil
}

// CreateIssue files a new issue via POST /rest/api/3/issue. A 201 response
// yields the created key and browse URL; any other status is turned into a
// user-facing error carrying the parsed detail from the response body.
func (c *Client) CreateIssue(ctx context.Context, issue *IssueRequest) (*models.CreatedTicket, error) {
	payload, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("failed to encode issue: %w", err)
	}

	req, err := c.client.NewRawRequestWithContext(ctx, "POST", "rest/api/3/issue", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build create request: %w", err)
	}

	var created struct {
		Key string `json:"key"`
	}
	resp, err := c.client.Do(req, &created)
	if err != nil {
		if resp == nil {
			return nil, fmt.Errorf("network error occurred: %v", err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		logging.Error("jira api error",
			"status", resp.StatusCode,
			"body_length", len(body))
		return nil, fmt.Errorf("%s", apiErrorMessage(resp.StatusCode, body))
	}

	logging.Info("created jira issue", "key", created.Key)

	return &models.CreatedTicket{
		Key:       created.Key,
		BrowseURL: c.baseURL + "browse/" + created.Key,
	}, nil
}

// apiErrorMessage formats a non-201 create response for the user. Field
// errors and general error messages are surfaced verbatim; an unstructured
// body is truncated.
func apiErrorMessage(status int, body []byte) string {
	msg := fmt.Sprintf("Failed to create ticket. Status: %d", status)

	var parsed struct {
		Errors        map[string]string `json:"errors"`
		ErrorMessages []string          `json:"errorMessages"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if len(parsed.Errors) > 0 {
			fields := make([]string, 0, len(parsed.Errors))
			for field := range parsed.Errors {
				fields = append(fields, field)
			}
			sort.Strings(fields)

			details := make([]string, 0, len(fields))
			for _, field := range fields {
				details = append(details, fmt.Sprintf("%s: %s", field, parsed.Errors[field]))
			}
			return msg + "\n\nDetails:\n" + strings.Join(details, "\n")
		}
		if len(parsed.ErrorMessages) > 0 {
			return msg + "\n\nMessages:\n" + strings.Join(parsed.ErrorMessages, "\n")
		}
	}

	raw := string(body)
	if len(raw) > rawBodyLimit {
		raw = raw[:rawBodyLimit] + "..."
	}
	return msg + "\n\nResponse: " + raw
}
