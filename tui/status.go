package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/fraycore/types"
)

const (
	nameWidth = 14
	barWidth  = 10
)

// renderStatusBar produces a full-width inverted status line showing the
// encounter, the turn, whose move it is, and the party's items.
func (m Model) renderStatusBar() string {
	b := m.session.Battle
	s := b.State

	encName := m.session.Encounter().Name
	if encName == "" {
		encName = b.Encounter
	}

	who := string(s.Phase)
	if a := b.Active(); a != nil && !b.Over() {
		who = a.Name
	}
	left := fmt.Sprintf(" %s | %s", encName, who)
	right := fmt.Sprintf("T:%d ", s.TurnNumber)

	// Show item names if they fit, otherwise just the count.
	if items := m.session.ItemNames(); len(items) > 0 {
		candidate := fmt.Sprintf("Items: %s | T:%d ", strings.Join(items, ", "), s.TurnNumber)
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Items: %d | T:%d ", len(items), s.TurnNumber)
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}

// renderRoster lists every combatant, party first, with HP/MP gauges and
// active status effects. The acting entity is highlighted.
func (m Model) renderRoster() string {
	s := m.session.Battle.State
	var rows []string
	for _, players := range []bool{true, false} {
		for i, e := range s.Entities {
			if e.IsPlayer != players {
				continue
			}
			rows = append(rows, m.rosterRow(e, i == s.CurrentEntityIndex && !m.session.Battle.Over()))
		}
	}
	return strings.Join(rows, "\n")
}

func (m Model) rosterRow(e types.CombatEntity, active bool) string {
	name := e.Name
	if len(name) > nameWidth {
		name = name[:nameWidth]
	}
	name = fmt.Sprintf("%-*s", nameWidth, name)

	marker := "  "
	switch {
	case e.Stats.CurrentHP == 0:
		name = styleDead.Render(name)
	case active:
		marker = "▶ "
		name = styleActive.Render(name)
	}

	row := marker + name +
		fmt.Sprintf(" HP %s %3d/%-3d", gauge(e.Stats.CurrentHP, e.Stats.MaxHP, barWidth, false), e.Stats.CurrentHP, e.Stats.MaxHP)
	if e.Stats.MaxMP > 0 {
		row += fmt.Sprintf(" MP %s %3d/%-3d", gauge(e.Stats.CurrentMP, e.Stats.MaxMP, barWidth, true), e.Stats.CurrentMP, e.Stats.MaxMP)
	}
	if e.IsDefending {
		row += " " + styleInfo.Render("guard")
	}
	for _, se := range e.StatusEffects {
		row += " " + styleStatus.Render(fmt.Sprintf("%s(%d)", se.Name, se.RemainingTurns))
	}
	return row
}

// rosterHeight is the number of lines renderRoster produces.
func (m Model) rosterHeight() int {
	return len(m.session.Battle.State.Entities)
}
