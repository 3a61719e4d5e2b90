// Package events builds the ordered, categorized narration log emitted by
// every battle step.
package events

import (
	"fmt"

	"github.com/nathoo/fraycore/types"
)

// Log accumulates events stamped with a turn number. The zero value is
// ready to use.
type Log struct {
	Turn   int
	events []types.Event
}

// New creates a log for the given turn.
func New(turn int) *Log {
	return &Log{Turn: turn}
}

// Add appends an event with a formatted message.
func (l *Log) Add(cat types.EventCategory, entityID string, amount int, format string, args ...any) {
	l.events = append(l.events, types.Event{
		Turn:     l.Turn,
		Category: cat,
		Message:  fmt.Sprintf(format, args...),
		EntityID: entityID,
		Amount:   amount,
	})
}

// Damage appends a damage event.
func (l *Log) Damage(entityID string, amount int, format string, args ...any) {
	l.Add(types.EventDamage, entityID, amount, format, args...)
}

// Heal appends a heal event.
func (l *Log) Heal(entityID string, amount int, format string, args ...any) {
	l.Add(types.EventHeal, entityID, amount, format, args...)
}

// Status appends a status event.
func (l *Log) Status(entityID string, format string, args ...any) {
	l.Add(types.EventStatus, entityID, 0, format, args...)
}

// Action appends an action event.
func (l *Log) Action(entityID string, format string, args ...any) {
	l.Add(types.EventAction, entityID, 0, format, args...)
}

// Info appends an info event.
func (l *Log) Info(format string, args ...any) {
	l.Add(types.EventInfo, "", 0, format, args...)
}

// Append copies already-built events onto the log, keeping their turn.
func (l *Log) Append(evts ...types.Event) {
	l.events = append(l.events, evts...)
}

// Events returns the accumulated events in order.
func (l *Log) Events() []types.Event {
	return l.events
}

// Len returns the number of events.
func (l *Log) Len() int {
	return len(l.events)
}

// Filter returns events of one category.
func Filter(evts []types.Event, cat types.EventCategory) []types.Event {
	var out []types.Event
	for _, e := range evts {
		if e.Category == cat {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the message text of each event, in order.
func Messages(evts []types.Event) []string {
	out := make([]string, 0, len(evts))
	for _, e := range evts {
		out = append(out, e.Message)
	}
	return out
}
