package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/laesemaskine/internal/ui/theme"
)

// ScoreBar displays a value out of Max as a horizontal bar.
type ScoreBar struct {
	Label string
	Value float64
	Max   float64
	Width int
}

// NewScoreBar creates a bar for a 1–10 mastery score.
func NewScoreBar(label string, score, width int) ScoreBar {
	return ScoreBar{Label: label, Value: float64(score), Max: 10, Width: width}
}

// Fraction returns Value/Max clamped to 0.0–1.0.
func (b ScoreBar) Fraction() float64 {
	if b.Max <= 0 {
		return 0
	}
	f := b.Value / b.Max
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}

// Filled returns how many of the bar's cells are filled.
func (b ScoreBar) Filled() int {
	return int(float64(b.barWidth()) * b.Fraction())
}

func (b ScoreBar) barWidth() int {
	return max(b.Width, 4)
}

// View renders the bar followed by "value/max".
func (b ScoreBar) View() string {
	var result string

	if b.Label != "" {
		result += lipgloss.NewStyle().Foreground(theme.Text).Render(b.Label) + "  "
	}

	filled := b.Filled()
	empty := b.barWidth() - filled

	filledStr := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Render(strings.Repeat("█", filled))

	emptyStr := lipgloss.NewStyle().
		Foreground(theme.Border).
		Render(strings.Repeat("░", empty))

	result += filledStr + emptyStr

	result += lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("  %g/%g", b.Value, b.Max))

	return result
}
