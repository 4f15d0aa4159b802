package ticket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysakura/discue/internal/config"
	"github.com/ysakura/discue/internal/jira"
	"github.com/ysakura/discue/pkg/models"
)

// fakeTracker records calls and returns canned responses.
type fakeTracker struct {
	accountID  string
	myselfErr  error
	myselfHits int

	created   *jira.IssueRequest
	createErr error
}

func (f *fakeTracker) Myself(ctx context.Context) (string, error) {
	f.myselfHits++
	if f.myselfErr != nil {
		return "", f.myselfErr
	}
	return f.accountID, nil
}

func (f *fakeTracker) CreateIssue(ctx context.Context, issue *jira.IssueRequest) (*models.CreatedTicket, error) {
	f.created = issue
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &models.CreatedTicket{Key: "PROJ-1", BrowseURL: "https://example.atlassian.net/browse/PROJ-1"}, nil
}

func validSettings() *config.Settings {
	return &config.Settings{
		Domain:     "example.atlassian.net",
		Email:      "me@example.com",
		APIToken:   "token",
		ProjectKey: "PROJ",
		IssueType:  "Task",
		Template:   "{content}",
		Lang:       "en",
	}
}

func testMessage() models.ExtractedMessage {
	return models.ExtractedMessage{
		Summary:     "[Discord] Message from Alice in #general",
		Content:     "hello",
		Author:      "Alice",
		ChannelName: "general",
	}
}

func TestComposeNotConfigured(t *testing.T) {
	tracker := &fakeTracker{}
	c := &Composer{Settings: &config.Settings{}, Client: tracker}

	_, err := c.Compose(context.Background(), testMessage())

	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrNotConfigured))
	assert.Zero(t, tracker.myselfHits, "no network call should happen before validation passes")
}

func TestComposeBasicFields(t *testing.T) {
	c := &Composer{Settings: validSettings(), Client: &fakeTracker{}}

	req, err := c.Compose(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "PROJ", req.Fields.Project.Key)
	assert.Equal(t, "Task", req.Fields.IssueType.Name)
	assert.Equal(t, "[Discord] Message from Alice in #general", req.Fields.Summary)
	require.NotNil(t, req.Fields.Description)
	assert.Equal(t, "doc", req.Fields.Description.Type)
	assert.Nil(t, req.Fields.Parent)
	assert.Empty(t, req.Fields.DueDate)
}

func TestComposeSummaryFallback(t *testing.T) {
	settings := validSettings()
	settings.TitlePrefixes = "[Discord]\n[Support]"
	c := &Composer{Settings: settings, Client: &fakeTracker{}}

	msg := testMessage()
	msg.Summary = ""

	req, err := c.Compose(context.Background(), msg)
	require.NoError(t, err)

	assert.Equal(t, "[Discord] Message from Alice in #general", req.Fields.Summary)
}

func TestComposeParentPrecedence(t *testing.T) {
	testCases := []struct {
		name       string
		msgParent  string
		configured string
		want       string
	}{
		{
			name:       "Message choice wins over configured default",
			msgParent:  "PROJ-20",
			configured: "PROJ-10",
			want:       "PROJ-20",
		},
		{
			name:       "Configured default used when no choice made",
			msgParent:  "",
			configured: "PROJ-10",
			want:       "PROJ-10",
		},
		{
			name:       "Multi-line configured value reduced to first entry",
			msgParent:  "",
			configured: "\nPROJ-10\nPROJ-11",
			want:       "PROJ-10",
		},
		{
			name:       "No parent anywhere",
			msgParent:  "",
			configured: "",
			want:       "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			settings := validSettings()
			settings.ParentKeys = tc.configured
			c := &Composer{Settings: settings, Client: &fakeTracker{}}

			msg := testMessage()
			msg.ParentKey = tc.msgParent

			req, err := c.Compose(context.Background(), msg)
			require.NoError(t, err)

			if tc.want == "" {
				assert.Nil(t, req.Fields.Parent)
			} else {
				require.NotNil(t, req.Fields.Parent)
				assert.Equal(t, tc.want, req.Fields.Parent.Key)
			}
		})
	}
}

func TestComposeAssigneeResolution(t *testing.T) {
	tracker := &fakeTracker{accountID: "abc123"}
	var saved string
	c := &Composer{
		Settings: validSettings(),
		Client:   tracker,
		SaveAccountID: func(accountID string) error {
			saved = accountID
			return nil
		},
	}

	req, err := c.Compose(context.Background(), testMessage())
	require.NoError(t, err)

	require.NotNil(t, req.Fields.Assignee)
	assert.Equal(t, "abc123", req.Fields.Assignee.ID)
	assert.Equal(t, "abc123", saved)
	assert.Equal(t, 1, tracker.myselfHits)

	// Second compose reuses the cached id without another lookup.
	_, err = c.Compose(context.Background(), testMessage())
	require.NoError(t, err)
	assert.Equal(t, 1, tracker.myselfHits)
}

func TestComposeAssigneeCached(t *testing.T) {
	tracker := &fakeTracker{accountID: "fresh"}
	settings := validSettings()
	settings.AccountID = "cached"
	c := &Composer{Settings: settings, Client: tracker}

	req, err := c.Compose(context.Background(), testMessage())
	require.NoError(t, err)

	require.NotNil(t, req.Fields.Assignee)
	assert.Equal(t, "cached", req.Fields.Assignee.ID)
	assert.Zero(t, tracker.myselfHits)
}

func TestComposeAssigneeLookupFailureNonFatal(t *testing.T) {
	tracker := &fakeTracker{myselfErr: errors.New("401")}
	c := &Composer{Settings: validSettings(), Client: tracker}

	req, err := c.Compose(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Nil(t, req.Fields.Assignee)
}

func TestComposeDueDate(t *testing.T) {
	settings := validSettings()
	settings.DueDateOffset = 7
	c := &Composer{
		Settings: settings,
		Client:   &fakeTracker{},
		Now: func() time.Time {
			return time.Date(2024, 6, 1, 23, 0, 0, 0, time.UTC)
		},
	}

	req, err := c.Compose(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "2024-06-08", req.Fields.DueDate)
}

func TestSubmit(t *testing.T) {
	tracker := &fakeTracker{}
	c := &Composer{Settings: validSettings(), Client: tracker}

	ticket, err := c.Submit(context.Background(), testMessage())
	require.NoError(t, err)

	assert.Equal(t, "PROJ-1", ticket.Key)
	assert.Equal(t, "https://example.atlassian.net/browse/PROJ-1", ticket.BrowseURL)
	require.NotNil(t, tracker.created)
	assert.Equal(t, "[Discord] Message from Alice in #general", tracker.created.Fields.Summary)
}

func TestSubmitCreateError(t *testing.T) {
	tracker := &fakeTracker{createErr: errors.New("Failed to create ticket. Status: 400")}
	c := &Composer{Settings: validSettings(), Client: tracker}

	_, err := c.Submit(context.Background(), testMessage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Status: 400")
}
