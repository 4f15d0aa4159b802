package adf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ysakura/discue/pkg/models"
)

func TestCompilePlainLines(t *testing.T) {
	testCases := []struct {
		name       string
		template   string
		wantBlocks []string
	}{
		{
			name:       "Single line",
			template:   "hello",
			wantBlocks: []string{"paragraph"},
		},
		{
			name:       "Two lines with spacer",
			template:   "first\n\nsecond",
			wantBlocks: []string{"paragraph", "paragraph", "paragraph"},
		},
		{
			name:       "Three lines no blanks",
			template:   "a\nb\nc",
			wantBlocks: []string{"paragraph", "paragraph", "paragraph"},
		},
		{
			name:       "Trailing blank line",
			template:   "a\n",
			wantBlocks: []string{"paragraph", "paragraph"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Compile(tc.template, models.ExtractedMessage{}, "en")

			require.Len(t, doc.Content, len(tc.wantBlocks))
			for i, want := range tc.wantBlocks {
				assert.Equal(t, want, doc.Content[i].Type)
			}
		})
	}
}

func TestCompileBulletList(t *testing.T) {
	doc := Compile("- a\n- b", models.ExtractedMessage{}, "en")

	// Consecutive markers must accumulate into a single list block.
	require.Len(t, doc.Content, 1)
	list := doc.Content[0]
	assert.Equal(t, "bulletList", list.Type)
	require.Len(t, list.Content, 2)

	for i, want := range []string{"a", "b"} {
		item := list.Content[i]
		assert.Equal(t, "listItem", item.Type)
		require.Len(t, item.Content, 1)
		para := item.Content[0]
		assert.Equal(t, "paragraph", para.Type)
		require.Len(t, para.Content, 1)
		assert.Equal(t, want, para.Content[0].Text)
	}
}

func TestCompileListClosedByParagraphAndBlank(t *testing.T) {
	doc := Compile("- a\ntext\n- b\n\n- c", models.ExtractedMessage{}, "en")

	types := make([]string, 0, len(doc.Content))
	for _, block := range doc.Content {
		types = append(types, block.Type)
	}
	assert.Equal(t, []string{"bulletList", "paragraph", "bulletList", "paragraph", "bulletList"}, types)
}

func TestCompileNeverEmpty(t *testing.T) {
	testCases := []struct {
		name     string
		template string
	}{
		{name: "Empty template", template: ""},
		{name: "Only blank lines", template: "\n\n"},
		{name: "Empty bold", template: "****"},
		{name: "Bare list marker", template: "- "},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			doc := Compile(tc.template, models.ExtractedMessage{}, "en")

			require.NotEmpty(t, doc.Content)
			assertNoEmptyText(t, doc.Content)
		})
	}
}

// assertNoEmptyText walks the tree checking the tracker's constraint that
// text nodes are never zero-length.
func assertNoEmptyText(t *testing.T, nodes []Node) {
	t.Helper()
	for _, n := range nodes {
		if n.Type == "text" {
			assert.NotEmpty(t, n.Text)
		}
		assertNoEmptyText(t, n.Content)
	}
}

func TestCompilePlaceholders(t *testing.T) {
	msg := models.ExtractedMessage{
		Author:      "Alice",
		ServerName:  "MyServer",
		ChannelName: "general",
		Timestamp:   "2024-01-02T03:04:05Z",
		MessageLink: "https://discord.com/channels/1/2/3",
		Content:     "hello there",
	}

	doc := Compile("{author} in {channel} on {server}: {content}", msg, "en")

	require.Len(t, doc.Content, 1)
	require.Len(t, doc.Content[0].Content, 1)
	assert.Equal(t, "Alice in general on MyServer: hello there", doc.Content[0].Content[0].Text)
}

func TestCompilePlaceholderNotRecursive(t *testing.T) {
	// A field value containing a placeholder token is inserted as plain
	// text, never expanded again.
	msg := models.ExtractedMessage{
		Author:  "{content}",
		Content: "secret",
	}

	doc := Compile("{author}", msg, "en")

	require.Len(t, doc.Content, 1)
	require.Len(t, doc.Content[0].Content, 1)
	assert.Equal(t, "{content}", doc.Content[0].Content[0].Text)
}

func TestCompileInlineFormatting(t *testing.T) {
	doc := Compile("see **bold** and [docs](https://example.com) here", models.ExtractedMessage{}, "en")

	require.Len(t, doc.Content, 1)
	nodes := doc.Content[0].Content
	require.Len(t, nodes, 5)

	assert.Equal(t, "see ", nodes[0].Text)
	assert.Empty(t, nodes[0].Marks)

	assert.Equal(t, "bold", nodes[1].Text)
	require.Len(t, nodes[1].Marks, 1)
	assert.Equal(t, "strong", nodes[1].Marks[0].Type)

	assert.Equal(t, " and ", nodes[2].Text)

	assert.Equal(t, "docs", nodes[3].Text)
	require.Len(t, nodes[3].Marks, 1)
	assert.Equal(t, "link", nodes[3].Marks[0].Type)
	assert.Equal(t, "https://example.com", nodes[3].Marks[0].Attrs["href"])

	assert.Equal(t, " here", nodes[4].Text)
}

func TestCompileInlineFirstMatchWins(t *testing.T) {
	// Nesting is unsupported: the bold span is consumed first and the
	// remainder stays plain.
	doc := Compile("**[x](y)** tail", models.ExtractedMessage{}, "en")

	require.Len(t, doc.Content, 1)
	nodes := doc.Content[0].Content
	require.NotEmpty(t, nodes)
	assert.Equal(t, "[x](y)", nodes[0].Text)
	require.Len(t, nodes[0].Marks, 1)
	assert.Equal(t, "strong", nodes[0].Marks[0].Type)
}

func TestFormatTime(t *testing.T) {
	testCases := []struct {
		name     string
		iso      string
		lang     string
		expected string
	}{
		{
			name:     "English format",
			iso:      "2024-01-02T15:04:05Z",
			lang:     "en",
			expected: "1/2/2024, 3:04:05 PM",
		},
		{
			name:     "Japanese format",
			iso:      "2024-01-02T03:04:05Z",
			lang:     "ja",
			expected: "2024/01/02 03:04:05",
		},
		{
			name:     "Unparseable input passed through",
			iso:      "not-a-time",
			lang:     "en",
			expected: "not-a-time",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, FormatTime(tc.iso, tc.lang))
		})
	}
}
