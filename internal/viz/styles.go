package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// panelStyles are the sidebar styles derived from the active theme.
type panelStyles struct {
	frame   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	hint    lipgloss.Style
	running lipgloss.Style
	paused  lipgloss.Style
	status  lipgloss.Style
	rule    lipgloss.Style
	spark   lipgloss.Style
	sel     lipgloss.Style
}

func newPanelStyles(t Theme) panelStyles {
	return panelStyles{
		frame: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 1).
			Width(sidebarWidth - 1),
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(t.Muted),
		label:   lipgloss.NewStyle().Foreground(t.Secondary).Width(12),
		value:   lipgloss.NewStyle().Foreground(t.Text).Bold(true),
		hint:    lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		running: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		paused:  lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
		status:  lipgloss.NewStyle().Foreground(t.Warning),
		rule:    lipgloss.NewStyle().Foreground(t.Muted),
		spark:   lipgloss.NewStyle().Foreground(t.TrailFine),
		sel:     lipgloss.NewStyle().Foreground(t.Accent).Bold(true),
	}
}

// ParamBar renders where p.Value sits in [p.Min, p.Max], on a log axis for
// logarithmic parameters.
func ParamBar(p dynamo.Param, width int) string {
	lo, hi, v := p.Min, p.Max, p.Value
	if p.Log && lo > 0 {
		lo, hi, v = math.Log(lo), math.Log(hi), math.Log(math.Max(v, p.Min))
	}
	frac := 1.0
	if hi > lo {
		frac = dynamo.Clamp((v-lo)/(hi-lo), 0, 1)
	}
	filled := int(frac*float64(width) + 0.5)
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline scales the newest width values between their min and max.
func Sparkline(values []float64, width int) string {
	if len(values) > width {
		values = values[len(values)-width:]
	}
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	out := make([]rune, len(values))
	top := len(sparkRunes) - 1
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(top))
		}
		out[i] = sparkRunes[max(0, min(idx, top))]
	}
	return string(out)
}

// Rule is a horizontal divider.
func Rule(width int) string {
	return strings.Repeat("─", max(width, 0))
}
