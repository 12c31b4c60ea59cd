// Package repl implements the interactive read-eval-print loop.
//
// The REPL keeps one engine for the whole session: globals and constants
// persist across lines, functions defined on one line are callable from
// later lines, and a dedicated local table plays the role of the current
// code block's symbols. Lines that are not statements are evaluated by
// assigning to the implicit symbol "it".
package repl

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/gamescript/script"
)

// Run starts the interactive session and blocks until the user quits.
func Run(ctx context.Context) error {
	p := tea.NewProgram(newModel(ctx))

	_, err := p.Run()

	return err
}

// styles used to render the transcript.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))
	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

const prompt = "» "

// model is the bubbletea model for one session.
type model struct {
	ctx        context.Context
	engine     *script.Engine
	locals     *script.SymbolTable
	funcs      []*script.Function
	input      textinput.Model
	history    *history
	completer  *completer
	transcript []string
	quitting   bool
}

func newModel(ctx context.Context) *model {
	input := textinput.New()
	input.Prompt = promptStyle.Render(prompt)
	input.Focus()

	return &model{
		ctx:       ctx,
		engine:    script.NewEngine(),
		locals:    script.NewSymbolTable(nil),
		input:     input,
		history:   newHistory(),
		completer: newCompleter(),
		transcript: []string{
			hintStyle.Render(
				"gamescript repl — :help for commands, ctrl+d to quit",
			),
		},
	}
}

func (m *model) Init() tea.Cmd { return textinput.Blink }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd

		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true

		return m, tea.Quit

	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())

		m.input.SetValue("")
		m.completer.reset()

		if line != "" {
			m.history.push(line)
			m.submit(line)
		}

		if m.quitting {
			return m, tea.Quit
		}

		return m, nil

	case tea.KeyUp:
		if prev, ok := m.history.prev(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}

		return m, nil

	case tea.KeyDown:
		next, _ := m.history.next()
		m.input.SetValue(next)
		m.input.CursorEnd()

		return m, nil

	case tea.KeyTab:
		m.complete()

		return m, nil
	}

	m.completer.reset()

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m *model) View() string {
	var buf strings.Builder

	for _, line := range m.transcript {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	if m.quitting {
		return buf.String()
	}

	buf.WriteString(m.input.View())

	if hint := m.completer.hint(); hint != "" {
		buf.WriteByte('\n')
		buf.WriteString(hintStyle.Render(hint))
	}

	return buf.String()
}

// echo appends a rendered line to the transcript.
func (m *model) echo(lines ...string) {
	m.transcript = append(m.transcript, lines...)
}

// submit evaluates one input line.
func (m *model) submit(line string) {
	m.echo(promptStyle.Render(prompt) + line)

	if strings.HasPrefix(line, ":") {
		m.command(line)

		return
	}

	m.eval(line)
}

// eval compiles and runs a line against the session scope. Lines that
// fail to parse as statements and contain no assignment are retried as an
// assignment to the implicit symbol "it", whose value is then displayed.
func (m *model) eval(line string) {
	implicit := false

	cb, err := m.compile(line)
	if err != nil {
		if errors.Is(err, script.ErrSyntax) && !strings.Contains(line, "=") {
			implicit = true
			cb, err = m.compile("it = " + line)
		}

		if err != nil {
			m.echo(errorStyle.Render(err.Error()))

			return
		}
	}

	scope := script.Scope{Globals: m.engine.Globals(), Locals: m.locals}

	if err := cb.Run(m.ctx, scope); err != nil {
		m.echo(errorStyle.Render(err.Error()))

		return
	}

	// Keep functions defined on this line callable from later lines.
	for fn := range cb.Functions() {
		if fn.Builtin == nil && !m.knows(fn.Name) {
			m.funcs = append(m.funcs, fn)
		}
	}

	if implicit {
		m.echo(resultStyle.Render("it = " + scope.Get("it").String()))
	}
}

func (m *model) compile(source string) (*script.CodeBlock, error) {
	return script.Compile(m.ctx, "repl", source,
		script.WithFunctions(m.funcs...),
	)
}

func (m *model) knows(name string) bool {
	for _, fn := range m.funcs {
		if fn.Name == name {
			return true
		}
	}

	return false
}

// command handles control-mode input.
func (m *model) command(line string) {
	switch strings.TrimPrefix(line, ":") {
	case "help":
		for _, line := range []string{
			":help    show this message",
			":vars    show the session's local symbols",
			":globals show global symbols and constants",
			":funcs   show callable functions",
			":clear   clear the transcript",
			":quit    exit",
		} {
			m.echo(hintStyle.Render(line))
		}

	case "vars":
		m.dump(m.locals)

	case "globals":
		m.dump(m.engine.Globals())

	case "funcs":
		names := make([]string, 0)
		for name := range m.engine.Functions() {
			names = append(names, name)
		}

		for _, fn := range m.funcs {
			names = append(names, fn.Name)
		}

		m.echo(resultStyle.Render(strings.Join(names, " ")))

	case "clear":
		m.transcript = nil

	case "quit", "exit":
		m.quitting = true

	default:
		m.echo(errorStyle.Render("unknown command " + line))
	}
}

func (m *model) dump(table *script.SymbolTable) {
	empty := true

	for name, value := range table.All() {
		m.echo(resultStyle.Render("  " + name + " = " + value.String()))

		empty = false
	}

	if empty {
		m.echo(hintStyle.Render("  (empty)"))
	}
}

// complete cycles fuzzy completions for the word at the cursor.
func (m *model) complete() {
	word, replaced := m.completer.next(
		m.input.Value(),
		m.input.Position(),
		m.candidates(),
	)
	if word == "" {
		return
	}

	m.input.SetValue(replaced)
	m.input.CursorEnd()
}

// candidates lists every completable name: session symbols, globals,
// builtins, and user-defined functions.
func (m *model) candidates() []string {
	var names []string

	for name := range m.locals.Names() {
		names = append(names, name)
	}

	for name := range m.engine.Globals().Names() {
		names = append(names, name)
	}

	for name := range m.engine.Functions() {
		names = append(names, name)
	}

	for _, fn := range m.funcs {
		names = append(names, fn.Name)
	}

	return names
}
