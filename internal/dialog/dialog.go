// Package dialog implements the interactive ticket-edit dialog: a pure
// view over an editable summary and a parent-key preset picker, completed
// by an explicit confirm or cancel. Rendering is fully separated from the
// extraction logic so the latter stays testable without a terminal.
package dialog

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Options configures a dialog run.
type Options struct {
	// Summary pre-fills the title input with the generated default.
	Summary string
	// Parents holds the parent-key presets the user can pick from.
	Parents []string
	// DefaultParent pre-selects a parent preset when it matches one.
	DefaultParent string
	// Lang selects the label language ("en" or "ja").
	Lang string
}

// Result is the completed dialog state.
type Result struct {
	Summary   string
	ParentKey string
	Cancelled bool
}

// Focusable sections.
const (
	focusSummary = iota
	focusParent
	focusCount
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	choiceStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type labels struct {
	title   string
	summary string
	parent  string
	none    string
	help    string
}

func labelsFor(lang string) labels {
	if lang == "ja" {
		return labels{
			title:   " チケット作成 ",
			summary: "タイトル",
			parent:  "親課題 / エピック",
			none:    "(なし)",
			help:    "tab: 移動 | ↑/↓: 選択 | enter: 作成 | esc: キャンセル",
		}
	}
	return labels{
		title:   " Create Ticket ",
		summary: "Summary",
		parent:  "Parent / Epic",
		none:    "(none)",
		help:    "tab: switch field | up/down: select | enter: create | esc: cancel",
	}
}

type model struct {
	input     textinput.Model
	parents   []string // index 0 is the "no parent" entry
	parentIdx int
	focus     int
	labels    labels
	cancelled bool
	done      bool
}

func newModel(opts Options) model {
	input := textinput.New()
	input.SetValue(opts.Summary)
	input.CursorEnd()
	input.Focus()

	lb := labelsFor(opts.Lang)

	parents := append([]string{lb.none}, opts.Parents...)
	parentIdx := 0
	for i, p := range opts.Parents {
		if p == opts.DefaultParent {
			parentIdx = i + 1
			break
		}
	}

	return model{
		input:     input,
		parents:   parents,
		parentIdx: parentIdx,
		labels:    lb,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			m.cancelled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		case "tab":
			m.setFocus((m.focus + 1) % focusCount)
			return m, nil
		case "shift+tab":
			m.setFocus((m.focus - 1 + focusCount) % focusCount)
			return m, nil
		case "up", "down":
			if m.focus == focusParent {
				if msg.String() == "up" {
					m.parentIdx = (m.parentIdx - 1 + len(m.parents)) % len(m.parents)
				} else {
					m.parentIdx = (m.parentIdx + 1) % len(m.parents)
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.focus == focusSummary {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *model) setFocus(focus int) {
	m.focus = focus
	if focus == focusSummary {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(m.labels.title))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(m.labels.summary))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(m.labels.parent))
	b.WriteString("\n")
	for i, p := range m.parents {
		cursor := "  "
		style := choiceStyle
		if i == m.parentIdx {
			style = selectedStyle
			if m.focus == focusParent {
				cursor = "> "
			}
		}
		b.WriteString(fmt.Sprintf("%s%s\n", cursor, style.Render(p)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.labels.help))
	b.WriteString("\n")

	return b.String()
}

func (m model) result() Result {
	if m.cancelled {
		return Result{Cancelled: true}
	}

	parent := ""
	if m.parentIdx > 0 {
		parent = m.parents[m.parentIdx]
	}
	return Result{
		Summary:   strings.TrimSpace(m.input.Value()),
		ParentKey: parent,
	}
}

// Run shows the dialog and blocks until the user confirms, cancels, or
// dismisses it. Cancellation is reported in the Result, not as an error.
func Run(opts Options) (Result, error) {
	p := tea.NewProgram(newModel(opts))
	final, err := p.Run()
	if err != nil {
		return Result{}, fmt.Errorf("dialog failed: %w", err)
	}
	return final.(model).result(), nil
}
