package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/fraycore/types"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleDamage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleHeal = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleStatus = lipgloss.NewStyle().
			Foreground(lipgloss.Color("177"))

	styleAction = lipgloss.NewStyle().
			Bold(true)

	styleInfo = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Italic(true)

	styleOutcome = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Roster panel.
	styleActive = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Bold(true)

	styleDead = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Strikethrough(true)

	styleBarHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	styleBarMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleBarLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleBarMP   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleBarGap  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindDamage
	kindHeal
	kindStatus
	kindAction
	kindInfo
	kindOutcome
	kindSystem
	kindError
	kindTrace
)

// kindOf maps a battle event category to its line style.
func kindOf(cat types.EventCategory) lineKind {
	switch cat {
	case types.EventDamage:
		return kindDamage
	case types.EventHeal:
		return kindHeal
	case types.EventStatus:
		return kindStatus
	case types.EventAction:
		return kindAction
	case types.EventInfo:
		return kindInfo
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindDamage:
		return styleDamage.Render(line)
	case kindHeal:
		return styleHeal.Render(line)
	case kindStatus:
		return styleStatus.Render(line)
	case kindAction:
		return styleAction.Render(line)
	case kindInfo:
		return styleInfo.Render(line)
	case kindOutcome:
		return styleOutcome.Render(line)
	case kindSystem:
		return styledSystemMsg(line)
	case kindError:
		return styleError.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}

// styledSystemMsg renders a system message in gray with brackets.
func styledSystemMsg(text string) string {
	return styleSystem.Render("[" + text + "]")
}

// gauge renders a cur/max bar of the given cell width. HP bars shift from
// green to orange to red as they drain; MP bars stay blue.
func gauge(cur, max, width int, mp bool) string {
	if width < 1 {
		return ""
	}
	filled := 0
	if max > 0 {
		filled = cur * width / max
		if cur > 0 && filled == 0 {
			filled = 1
		}
	}
	if filled > width {
		filled = width
	}

	fill := styleBarMP
	if !mp {
		switch {
		case max > 0 && cur*2 > max:
			fill = styleBarHigh
		case max > 0 && cur*4 > max:
			fill = styleBarMid
		default:
			fill = styleBarLow
		}
	}
	return fill.Render(strings.Repeat("█", filled)) + styleBarGap.Render(strings.Repeat("░", width-filled))
}
