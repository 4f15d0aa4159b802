package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/net/html"

	"github.com/ysakura/discue/internal/extract"
)

var (
	// highlightStyle marks the located message excerpt, the snapshot-world
	// counterpart of the in-page background pulse.
	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("232")).
			Background(lipgloss.Color("229"))

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46"))

	alertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)
)

// parseSnapshot reads and parses the page snapshot. "-" selects stdin.
func parseSnapshot(path string) (*html.Node, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}
	return root, nil
}

// newExtractor wires an extractor for the parsed snapshot. The page URL
// flag wins over whatever the snapshot declares.
func newExtractor(root *html.Node, pageURL string) *extract.Extractor {
	if pageURL == "" {
		pageURL = extract.PageURL(root)
	}
	return &extract.Extractor{
		Root:    root,
		PageURL: pageURL,
		Title:   extract.PageTitle(root),
		OnLocate: func(loc *extract.Located) {
			fmt.Fprintln(os.Stderr, highlightStyle.Render(" "+loc.Excerpt(80)+" "))
		},
	}
}

// alertUser renders a failure message the way the in-page modal alert did.
func alertUser(message string) {
	fmt.Fprintln(os.Stderr, alertStyle.Render(message))
}
