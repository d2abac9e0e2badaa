package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/schemadapt/pkg/corpus"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// MatchListModel - Interactive template selection
// =============================================================================

// MatchListModel is the bubbletea model for picking one ranked template.
type MatchListModel struct {
	Matches  []corpus.Match
	Cursor   int
	Selected *corpus.Match
	Height   int
	Offset   int
}

// NewMatchListModel creates a list over matches, best first.
func NewMatchListModel(matches []corpus.Match) MatchListModel {
	return MatchListModel{Matches: matches, Height: 15}
}

func (m MatchListModel) Init() tea.Cmd {
	return nil
}

func (m MatchListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Matches)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Matches) == 0 {
				return m, tea.Quit
			}
			sel := m.Matches[m.Cursor]
			m.Selected = &sel
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m MatchListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ adapt  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Matches))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		mt := m.Matches[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			mt.Name,
			fmt.Sprintf("%.2f", mt.Distance.Value),
			fmt.Sprintf("%d/%d", mt.Distance.UnmatchedBoxes, mt.Distance.UnmatchedPins),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Template", "Distance", "Unmatched").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 2 {
				return StyleNumber
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Matches))))

	return b.String()
}

// pickMatch runs the interactive picker and returns the chosen match, or
// nil when the user quits without choosing.
func pickMatch(matches []corpus.Match) (*corpus.Match, error) {
	final, err := tea.NewProgram(NewMatchListModel(matches)).Run()
	if err != nil {
		return nil, err
	}
	fm, ok := final.(MatchListModel)
	if !ok {
		return nil, nil
	}
	return fm.Selected, nil
}
