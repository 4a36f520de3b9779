package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/quest-cli/internal/core/domain"
)

// Palette used for list output. lipgloss drops colours when stdout is not
// a terminal, so piped output stays plain.
var (
	colourPrimary = lipgloss.Color("#7C3AED") // Purple
	colourMuted   = lipgloss.Color("#6C7086") // Medium gray
	colourSuccess = lipgloss.Color("#A6E3A1") // Green
	colourWarning = lipgloss.Color("#F9E2AF") // Yellow
	colourError   = lipgloss.Color("#F38BA8") // Red
)

// listStyles contains pre-configured styles for quest output.
type listStyles struct {
	Title    lipgloss.Style
	ID       lipgloss.Style
	Active   lipgloss.Style
	Done     lipgloss.Style
	Obsolete lipgloss.Style
	Closed   lipgloss.Style
	Error    lipgloss.Style
	Child    lipgloss.Style
}

func newListStyles() listStyles {
	return listStyles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(colourPrimary),
		ID:       lipgloss.NewStyle().Foreground(colourMuted),
		Active:   lipgloss.NewStyle(),
		Done:     lipgloss.NewStyle().Foreground(colourSuccess),
		Obsolete: lipgloss.NewStyle().Foreground(colourWarning),
		Closed:   lipgloss.NewStyle().Foreground(colourMuted).Strikethrough(true),
		Error:    lipgloss.NewStyle().Foreground(colourError),
		Child:    lipgloss.NewStyle().PaddingLeft(2),
	}
}

// marker returns the status glyph for q.
func (s listStyles) marker(q *domain.Quest) string {
	switch {
	case q.IsCompleted:
		return s.Done.Render("✓")
	case q.IsDismissed:
		return s.ID.Render("✗")
	case q.IsObsolete:
		return s.Obsolete.Render("!")
	default:
		return s.Active.Render("•")
	}
}

// question renders the question text for q.
func (s listStyles) question(q *domain.Quest) string {
	switch {
	case q.IsCompleted, q.IsDismissed:
		return s.Closed.Render(q.Question)
	case q.IsObsolete:
		return s.Obsolete.Render(q.Question)
	default:
		return s.Active.Render(q.Question)
	}
}
