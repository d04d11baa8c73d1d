package commands

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/forgelint/forgelint/internal/cli/output"
	"github.com/spf13/cobra"
)

var specDocStyle = lipgloss.NewStyle().Margin(1, 2)

// specItem is one behavior in the interactive browser.
type specItem struct {
	sentence string
	source   string
}

func (i specItem) Title() string       { return i.sentence }
func (i specItem) Description() string { return i.source }
func (i specItem) FilterValue() string { return i.sentence }

// specBrowser is the Bubble Tea model for browsing behaviors. The list
// delegate handles navigation and fuzzy filtering.
type specBrowser struct {
	list list.Model
}

func newSpecBrowser(spec *output.SpecOutput) specBrowser {
	items := make([]list.Item, 0, spec.Tests)
	for _, contract := range spec.Contracts {
		for _, b := range contract.Behaviors {
			items = append(items, specItem{
				sentence: b.Sentence,
				source:   fmt.Sprintf("%s  %s:%d", contract.Name, contract.File, b.Line),
			})
		}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = fmt.Sprintf("Behavior Specification (%d)", len(items))
	return specBrowser{list: l}
}

func (m specBrowser) Init() tea.Cmd {
	return nil
}

func (m specBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Keep q available as input while the filter prompt is open.
		if m.list.FilterState() == list.Filtering {
			break
		}
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		h, v := specDocStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m specBrowser) View() string {
	return specDocStyle.Render(m.list.View())
}

// browseSpec opens the interactive behavior browser.
func browseSpec(cmd *cobra.Command, r *output.Renderer, spec *output.SpecOutput) error {
	if !r.IsTTY() {
		return fmt.Errorf("interactive mode requires a terminal")
	}
	if spec.Tests == 0 {
		r.Muted("No convention-named tests found")
		return nil
	}

	program := tea.NewProgram(newSpecBrowser(spec), tea.WithOutput(cmd.OutOrStdout()), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
