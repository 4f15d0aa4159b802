package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "", settings.Domain)
	assert.Equal(t, "Task", settings.IssueType)
	assert.Equal(t, "[Discord]", settings.TitlePrefixes)
	assert.Equal(t, DefaultTemplate, settings.Template)
	assert.Equal(t, "en", settings.Lang)
	assert.Zero(t, settings.DueDateOffset)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("DISCUE_DOMAIN", "env.atlassian.net")
	t.Setenv("DISCUE_EMAIL", "env@example.com")
	t.Setenv("DISCUE_API_TOKEN", "env-token")
	t.Setenv("DISCUE_PROJECT_KEY", "ENV")

	settings, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "env.atlassian.net", settings.Domain)
	assert.Equal(t, "env@example.com", settings.Email)
	assert.Equal(t, "env-token", settings.APIToken)
	assert.Equal(t, "ENV", settings.ProjectKey)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	saved := &Settings{
		Domain:        "example.atlassian.net",
		Email:         "me@example.com",
		APIToken:      "token",
		ProjectKey:    "PROJ",
		IssueType:     "Bug",
		TitlePrefixes: "[Discord]\n[Support]",
		ParentKeys:    "PROJ-10\nPROJ-11",
		PrefixParents: "[Support]:PROJ-11",
		DueDateOffset: 7,
		Template:      "{content}",
		Lang:          "ja",
	}
	require.NoError(t, Save(path, saved))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, saved.Domain, loaded.Domain)
	assert.Equal(t, saved.Email, loaded.Email)
	assert.Equal(t, saved.APIToken, loaded.APIToken)
	assert.Equal(t, saved.ProjectKey, loaded.ProjectKey)
	assert.Equal(t, "Bug", loaded.IssueType)
	assert.Equal(t, saved.TitlePrefixes, loaded.TitlePrefixes)
	assert.Equal(t, saved.ParentKeys, loaded.ParentKeys)
	assert.Equal(t, saved.PrefixParents, loaded.PrefixParents)
	assert.Equal(t, 7, loaded.DueDateOffset)
	assert.Equal(t, "{content}", loaded.Template)
	assert.Equal(t, "ja", loaded.Lang)
}

func TestSaveClearsAccountID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	settings := &Settings{
		Domain:     "example.atlassian.net",
		Email:      "me@example.com",
		APIToken:   "token",
		ProjectKey: "PROJ",
		AccountID:  "stale",
	}
	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "", loaded.AccountID)
}

func TestSaveAccountIDPreservesRest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Save(path, &Settings{
		Domain:     "example.atlassian.net",
		Email:      "me@example.com",
		APIToken:   "token",
		ProjectKey: "PROJ",
	}))

	require.NoError(t, SaveAccountID(path, "abc123"))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", loaded.AccountID)
	assert.Equal(t, "example.atlassian.net", loaded.Domain)
	assert.Equal(t, "PROJ", loaded.ProjectKey)
}

func TestValidateRequired(t *testing.T) {
	testCases := []struct {
		name     string
		settings Settings
		missing  []string
	}{
		{
			name: "All present",
			settings: Settings{
				Domain:     "example.atlassian.net",
				Email:      "me@example.com",
				APIToken:   "token",
				ProjectKey: "PROJ",
			},
		},
		{
			name:     "All missing",
			settings: Settings{},
			missing:  []string{"domain", "email", "api_token", "project_key"},
		},
		{
			name: "Single missing field reported",
			settings: Settings{
				Domain:   "example.atlassian.net",
				Email:    "me@example.com",
				APIToken: "token",
			},
			missing: []string{"project_key"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRequired(&tc.settings)
			if len(tc.missing) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNotConfigured)
			for _, field := range tc.missing {
				assert.Contains(t, err.Error(), field)
			}
		})
	}
}

func TestPresetLists(t *testing.T) {
	settings := &Settings{
		TitlePrefixes: "[Discord]\n\n  [Support]  \n",
		ParentKeys:    "PROJ-10\nPROJ-11",
	}

	assert.Equal(t, []string{"[Discord]", "[Support]"}, settings.TitlePrefixList())
	assert.Equal(t, []string{"PROJ-10", "PROJ-11"}, settings.ParentKeyList())

	empty := &Settings{}
	assert.Empty(t, empty.TitlePrefixList())
	assert.Empty(t, empty.ParentKeyList())
}

func TestParentForPrefix(t *testing.T) {
	settings := &Settings{
		PrefixParents: "[Discord]:PROJ-10\n[Support] : PROJ-11\nmalformed line",
	}

	assert.Equal(t, "PROJ-10", settings.ParentForPrefix("[Discord]"))
	assert.Equal(t, "PROJ-11", settings.ParentForPrefix("[Support]"))
	assert.Equal(t, "", settings.ParentForPrefix("[Other]"))
}

func TestNormalizeDomain(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{input: "example.atlassian.net", want: "example.atlassian.net"},
		{input: "https://example.atlassian.net", want: "example.atlassian.net"},
		{input: "https://example.atlassian.net/", want: "example.atlassian.net"},
		{input: "http://example.atlassian.net//", want: "example.atlassian.net"},
		{input: "", want: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, normalizeDomain(tc.input))
	}
}
