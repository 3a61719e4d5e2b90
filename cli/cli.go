// Package cli provides terminal I/O, output formatting, and meta-command
// dispatch for a fraycore battle.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nathoo/fraycore/engine"
	"github.com/nathoo/fraycore/engine/state"
	"github.com/nathoo/fraycore/session"
	"github.com/nathoo/fraycore/types"
)

// CLI handles terminal interaction with the player.
type CLI struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given session.
func New(sess *session.Session) *CLI {
	return &CLI{
		Session: sess,
		In:      os.Stdin,
		Out:     os.Stdout,
		SaveDir: ".",
	}
}

// Run plays the battle. It shows the intro and the opening turns, then
// loops: prompt → input → dispatch → output, until the battle ends, input
// runs out, or the player quits.
func (c *CLI) Run() {
	defs := c.Session.Defs
	if defs.Game.Title != "" {
		c.printLine(defs.Game.Title)
	}
	if defs.Game.Intro != "" {
		c.printLine(defs.Game.Intro)
		c.printLine("")
	}
	if enc := c.Session.Encounter(); enc.Name != "" {
		c.printLine(fmt.Sprintf("== %s ==", enc.Name))
	}

	if c.printTurn(c.Session.Start()) {
		return
	}

	scanner := bufio.NewScanner(c.In)
	for {
		c.printStatus()
		c.print(c.prompt())
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		// Meta-commands start with '/'.
		if strings.HasPrefix(input, "/") {
			if c.handleMeta(input) {
				return // /quit
			}
			continue
		}

		turn, err := c.Session.Step(input)
		if err != nil {
			c.printError(err)
			continue
		}
		if c.printTurn(turn) {
			return
		}
	}
}

// handleMeta dispatches meta-commands. Returns true if the game should exit.
func (c *CLI) handleMeta(input string) bool {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true

	case "/save":
		c.cmdSave(arg)

	case "/help":
		c.cmdHelp()

	case "/state":
		c.cmdState()

	case "/items":
		c.cmdItems()

	case "/trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}

	return false
}

func (c *CLI) cmdSave(name string) {
	path, err := c.Session.SaveTranscript(c.SaveDir, name)
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Transcript saved to %s.", path))
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  - Save a replay transcript (default: battle)",
		"  /items        - List the party's items",
		"  /quit         - Exit",
		"  /help         - Show this help",
		"  /state        - Debug: dump current state",
		"  /trace        - Toggle debug trace output",
		"",
		"Battle commands:",
		"  attack <target> (a)            - Basic attack",
		"  cast <skill> [on <target>] (c) - Use a skill; 'cast <skill> all' for groups",
		"  use <item> [on <ally>] (u)     - Use an item (defaults to yourself)",
		"  defend (d)                     - Brace until your next turn",
		"  flee (r)                       - Try to escape",
		"  again (g)                      - Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func (c *CLI) cmdState() {
	b := c.Session.Battle
	s := b.State
	c.printSystem(fmt.Sprintf("Battle: %s (%s)", b.ID, b.Encounter))
	c.printSystem(fmt.Sprintf("Turn: %d  Phase: %s  Can flee: %t", s.TurnNumber, s.Phase, s.CanFlee))
	c.printSystem(fmt.Sprintf("RNG: seed %d, position %d", c.Session.RNG.Seed(), c.Session.RNG.Position()))
	for i, e := range s.Entities {
		marker := " "
		if i == s.CurrentEntityIndex {
			marker = "*"
		}
		c.printSystem(fmt.Sprintf("%s %s", marker, entityLine(e)))
	}
	c.printSystem(fmt.Sprintf("Inventory: %v", c.Session.Inventory))
}

func (c *CLI) cmdItems() {
	items := c.Session.ItemNames()
	if len(items) == 0 {
		c.printLine("You have no items.")
		return
	}
	c.printLine("Items: " + strings.Join(items, ", "))
}

// printTurn prints a turn's narration. Returns true once the battle is over.
func (c *CLI) printTurn(turn session.Turn) bool {
	for _, e := range turn.Events {
		c.printLine(e.Message)
		if c.Trace {
			c.printSystem(fmt.Sprintf("[trace] turn %d %s %s %d", e.Turn, e.Category, e.EntityID, e.Amount))
		}
	}
	if c.Trace {
		c.printSystem(fmt.Sprintf("[trace] phase %s, rng position %d", c.Session.Battle.Phase(), c.Session.RNG.Position()))
	}
	if !turn.Over {
		return false
	}

	c.printLine("")
	c.printLine(session.OutcomeLine(turn.Outcome))
	for _, n := range turn.Notes {
		c.printLine(n)
	}
	sum := c.Session.Battle.Summary()
	for _, fs := range sum.Party {
		name := fs.ID
		if m, ok := c.Session.Defs.Members[fs.ID]; ok {
			name = m.Name
		}
		c.printLine(fmt.Sprintf("  %s: HP %d, MP %d", name, fs.CurrentHP, fs.CurrentMP))
	}
	return true
}

// printStatus shows who is acting and what they can see.
func (c *CLI) printStatus() {
	s := c.Session.Battle.State
	var foes []string
	for _, e := range s.Entities {
		if !e.IsPlayer && state.IsAlive(&e) {
			foes = append(foes, fmt.Sprintf("%s %d/%d", e.Name, e.Stats.CurrentHP, e.Stats.MaxHP))
		}
	}
	if len(foes) > 0 {
		c.printLine("Foes: " + strings.Join(foes, ", "))
	}
}

func (c *CLI) prompt() string {
	if a := c.Session.Battle.Active(); a != nil {
		return fmt.Sprintf("[T%d] %s HP %d/%d MP %d/%d> ",
			c.Session.Battle.State.TurnNumber, a.Name,
			a.Stats.CurrentHP, a.Stats.MaxHP, a.Stats.CurrentMP, a.Stats.MaxMP)
	}
	return "> "
}

func (c *CLI) printError(err error) {
	switch {
	case errors.Is(err, session.ErrNothingToRepeat):
		c.printLine("Nothing to repeat.")
	case errors.Is(err, engine.ErrBattleOver):
		c.printLine("The battle is over.")
	default:
		msg := err.Error()
		if msg != "" {
			msg = strings.ToUpper(msg[:1]) + msg[1:]
		}
		c.printLine(msg)
	}
}

// entityLine renders one combatant for /state.
func entityLine(e types.CombatEntity) string {
	side := "enemy"
	if e.IsPlayer {
		side = "party"
	}
	line := fmt.Sprintf("%s [%s, %s] HP %d/%d MP %d/%d ATK %d DEF %d SPD %d",
		e.Name, e.ID, side,
		e.Stats.CurrentHP, e.Stats.MaxHP, e.Stats.CurrentMP, e.Stats.MaxMP,
		e.Stats.Attack, e.Stats.Defense, e.Stats.Speed)
	if e.IsDefending {
		line += " defending"
	}
	for _, se := range e.StatusEffects {
		line += fmt.Sprintf(" %s(%d)", se.Name, se.RemainingTurns)
	}
	return line
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
