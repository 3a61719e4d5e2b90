package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/fraycore/engine"
	"github.com/nathoo/fraycore/session"
	"github.com/nathoo/fraycore/types"
)

// rawLine stores an unstyled output line with its classification,
// so we can re-wrap and re-style when the terminal is resized.
type rawLine struct {
	text    string
	kind    lineKind
	isInput bool // true for echoed player input
}

// Model is the Bubble Tea model for the battle screen.
type Model struct {
	session *session.Session

	viewport viewport.Model
	input    textinput.Model
	history  *History

	rawLines []rawLine // accumulated battle log (unstyled, for re-wrapping)

	width    int
	height   int
	ready    bool
	trace    bool
	quitting bool
	saveDir  string
}

// battleOutputMsg carries narration into the Update loop.
type battleOutputMsg struct {
	input string // echoed player input (empty for the opening)
	lines []rawLine
}

// New creates a TUI model wired to the given session. Transcripts saved
// with /save go to saveDir.
func New(sess *session.Session, saveDir string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Focus()
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	if saveDir == "" {
		saveDir = "."
	}
	return Model{
		session: sess,
		input:   ti,
		history: NewHistory(100),
		saveDir: saveDir,
	}
}

// Option configures the model before the program starts.
type Option func(*Model)

// WithTrace starts with trace output enabled.
func WithTrace(on bool) Option {
	return func(m *Model) { m.trace = on }
}

// Run starts the Bubble Tea program.
func Run(sess *session.Session, saveDir string, opts ...Option) error {
	m := New(sess, saveDir)
	for _, opt := range opts {
		opt(&m)
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Init returns the initial command that produces the intro and the
// opening turns.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.initialOutput())
}

func (m Model) initialOutput() tea.Cmd {
	return func() tea.Msg {
		game := m.session.Defs.Game
		var lines []rawLine

		title := game.Title
		if game.Version != "" {
			title += " v" + game.Version
		}
		if game.Author != "" {
			title += " by " + game.Author
		}
		lines = append(lines, rawLine{text: title, kind: kindOutcome}, rawLine{})

		if game.Intro != "" {
			lines = append(lines, rawLine{text: game.Intro}, rawLine{})
		}
		if enc := m.session.Encounter(); enc.Name != "" {
			lines = append(lines, rawLine{text: "== " + enc.Name + " ==", kind: kindAction})
		}

		lines = append(lines, m.turnLines(m.session.Start())...)
		return battleOutputMsg{lines: lines}
	}
}

// Update handles messages (key presses, window resize, battle output).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.viewportHeight()
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}

		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			return m.handleEnter()

		case "up":
			if prev, ok := m.history.Prev(); ok {
				m.input.SetValue(prev)
				m.input.CursorEnd()
			}
			return m, nil

		case "down":
			if next, ok := m.history.Next(); ok {
				m.input.SetValue(next)
				m.input.CursorEnd()
			} else {
				m.input.SetValue("")
			}
			return m, nil

		case "pgup", "pgdown":
			var vpCmd tea.Cmd
			m.viewport, vpCmd = m.viewport.Update(msg)
			return m, vpCmd
		}

	case battleOutputMsg:
		m = m.appendOutput(msg)
	}

	var inputCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	cmds = append(cmds, inputCmd)

	return m, tea.Batch(cmds...)
}

// handleEnter processes the submitted input line.
func (m Model) handleEnter() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	m.input.SetValue("")

	if input == "" {
		return m, nil
	}
	m.history.Push(input)

	// Meta-commands.
	if strings.HasPrefix(input, "/") {
		output, quit := m.handleMeta(input)
		lines := make([]rawLine, 0, len(output))
		for _, l := range output {
			lines = append(lines, rawLine{text: l, kind: kindSystem})
		}
		m = m.appendOutput(battleOutputMsg{input: input, lines: lines})
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	// Battle command.
	turn, err := m.session.Step(input)
	if err != nil {
		m = m.appendOutput(battleOutputMsg{input: input, lines: []rawLine{errorLine(err)}})
		return m, nil
	}
	m = m.appendOutput(battleOutputMsg{input: input, lines: m.turnLines(turn)})
	return m, nil
}

// turnLines converts a turn into styled log lines, closing with the
// outcome, rewards and party summary once the battle is over.
func (m Model) turnLines(turn session.Turn) []rawLine {
	var lines []rawLine
	for _, e := range turn.Events {
		lines = append(lines, rawLine{text: e.Message, kind: kindOf(e.Category)})
		if m.trace {
			lines = append(lines, rawLine{
				text: fmt.Sprintf("[trace] turn %d %s %s %d", e.Turn, e.Category, e.EntityID, e.Amount),
				kind: kindTrace,
			})
		}
	}
	if m.trace {
		lines = append(lines, rawLine{
			text: fmt.Sprintf("[trace] phase %s, rng position %d", m.session.Battle.Phase(), m.session.RNG.Position()),
			kind: kindTrace,
		})
	}
	if !turn.Over {
		return lines
	}

	lines = append(lines, rawLine{}, rawLine{text: session.OutcomeLine(turn.Outcome), kind: kindOutcome})
	for _, n := range turn.Notes {
		lines = append(lines, rawLine{text: n, kind: kindHeal})
	}
	for _, fs := range m.session.Battle.Summary().Party {
		name := fs.ID
		if mem, ok := m.session.Defs.Members[fs.ID]; ok {
			name = mem.Name
		}
		lines = append(lines, rawLine{text: fmt.Sprintf("%s: HP %d, MP %d", name, fs.CurrentHP, fs.CurrentMP)})
	}
	lines = append(lines, rawLine{text: "Type /save to keep a transcript, /quit to leave.", kind: kindSystem})
	return lines
}

func errorLine(err error) rawLine {
	switch {
	case errors.Is(err, session.ErrNothingToRepeat):
		return rawLine{text: "Nothing to repeat.", kind: kindError}
	case errors.Is(err, engine.ErrBattleOver):
		return rawLine{text: "The battle is over. /quit to leave.", kind: kindSystem}
	}
	msg := err.Error()
	if msg != "" {
		msg = strings.ToUpper(msg[:1]) + msg[1:]
	}
	return rawLine{text: msg, kind: kindError}
}

// appendOutput adds lines to the battle log and refreshes the viewport.
func (m Model) appendOutput(msg battleOutputMsg) Model {
	if msg.input != "" {
		m.rawLines = append(m.rawLines, rawLine{text: "> " + msg.input, isInput: true})
	}
	m.rawLines = append(m.rawLines, msg.lines...)

	// Blank line separator between turns.
	m.rawLines = append(m.rawLines, rawLine{})

	m.refreshViewport()

	return m
}

// viewportHeight leaves room for the roster, the status bar and the input.
func (m Model) viewportHeight() int {
	h := m.height - 2 - m.rosterHeight() - 1
	if h < 1 {
		h = 1
	}
	return h
}

// refreshViewport re-wraps and re-styles all raw lines at the current width
// and updates the viewport content.
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}

	width := m.width
	if width < 10 {
		width = 10
	}

	var styled []string
	for _, rl := range m.rawLines {
		if rl.text == "" {
			styled = append(styled, "")
			continue
		}

		wrapped := wordWrap(rl.text, width)
		if rl.isInput {
			styled = append(styled, stylePlayerInput.Render(wrapped))
			continue
		}
		styled = append(styled, renderLineKind(wrapped, rl.kind))
	}

	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// wordWrap wraps text to fit within the given width, breaking at word
// boundaries.
func wordWrap(text string, width int) string {
	if width <= 0 || len(text) <= width {
		return text
	}

	var result strings.Builder
	words := strings.Fields(text)
	lineLen := 0

	for i, word := range words {
		wLen := len(word)

		if i == 0 {
			result.WriteString(word)
			lineLen = wLen
			continue
		}

		if lineLen+1+wLen > width {
			result.WriteString("\n")
			result.WriteString(word)
			lineLen = wLen
		} else {
			result.WriteString(" ")
			result.WriteString(word)
			lineLen += 1 + wLen
		}
	}

	return result.String()
}

// View renders the full layout: log viewport, roster, status bar, input.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}

	return m.viewport.View() + "\n" +
		m.renderRoster() + "\n" +
		m.renderStatusBar() + "\n" +
		m.input.View()
}

// handleMeta dispatches meta-commands. Returns output lines and quit flag.
func (m *Model) handleMeta(input string) ([]string, bool) {
	parts := strings.Fields(input)
	cmd := parts[0]
	var arg string
	if len(parts) > 1 {
		arg = parts[1]
	}

	switch cmd {
	case "/quit", "/exit":
		return []string{"Goodbye."}, true

	case "/save":
		path, err := m.session.SaveTranscript(m.saveDir, arg)
		if err != nil {
			return []string{fmt.Sprintf("Save failed: %v", err)}, false
		}
		return []string{fmt.Sprintf("Transcript saved to %s.", path)}, false

	case "/help":
		return m.cmdHelp(), false

	case "/state":
		return m.cmdState(), false

	case "/history":
		recent := m.history.Recent(10)
		if len(recent) == 0 {
			return []string{"No commands yet."}, false
		}
		return recent, false

	case "/trace":
		m.trace = !m.trace
		if m.trace {
			return []string{"Trace output enabled."}, false
		}
		return []string{"Trace output disabled."}, false

	default:
		return []string{fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd)}, false
	}
}

func (m *Model) cmdHelp() []string {
	return []string{
		"System:",
		"  /save [name]  - Save a replay transcript (default: battle)",
		"  /history      - Show recent commands",
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
		"",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}

func (m *Model) cmdState() []string {
	b := m.session.Battle
	s := b.State
	output := []string{
		fmt.Sprintf("Battle: %s (%s)", b.ID, b.Encounter),
		fmt.Sprintf("Turn: %d  Phase: %s  Can flee: %t", s.TurnNumber, s.Phase, s.CanFlee),
		fmt.Sprintf("RNG: seed %d, position %d", m.session.RNG.Seed(), m.session.RNG.Position()),
	}
	for _, e := range s.Entities {
		output = append(output, stateLine(e))
	}
	output = append(output, fmt.Sprintf("Inventory: %v", m.session.Inventory))
	return output
}

func stateLine(e types.CombatEntity) string {
	return fmt.Sprintf("%s [%s] HP %d/%d MP %d/%d ATK %d DEF %d SPD %d effects %d",
		e.Name, e.ID,
		e.Stats.CurrentHP, e.Stats.MaxHP, e.Stats.CurrentMP, e.Stats.MaxMP,
		e.Stats.Attack, e.Stats.Defense, e.Stats.Speed, len(e.StatusEffects))
}

// viewportKeyMap returns a viewport keymap with Up/Down disabled
// (we use those for input history).
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
