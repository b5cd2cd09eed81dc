package repl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/wz/lang"
	"github.com/ardnew/wz/log"
)

// editDoneMsg is sent when the edited script compiled and should replace the
// session.
type editDoneMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a compile
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters any other error.
type editErrorMsg struct{ err error }

const prompt = "➜ "

func helpMessage() string {
	return `
Commands:

  :help    Print this cruft
  :vars    List session variables
  :edit    Edit session variables in external $EDITOR
  :reset   Discard all session variables
  :clear   Clear screen
  :quit    Exit REPL

Usage:
  Enter a statement to execute it, or an expression to print its value
  A missing trailing semicolon is inserted
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Press Esc to cancel cycling or clear the line
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`
}

// Styles.
var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	inputStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	outputStyle     = lipgloss.NewStyle()
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// formatCommand formats the command echo line with prompt and input styled.
func formatCommand(input string) string {
	return promptStyle.Render(prompt) + inputStyle.Render(input)
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	session      *session
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches // current fuzzy match results
	candidates   []string      // backing candidate list
	wordStart    int           // byte offset of current word start
	wordEnd      int           // byte offset of current word end
	suggIdx      int           // selected candidate index
	tabActive    bool          // whether user is tab-cycling
	preTabText   string        // input text before tab-cycling began
	preTabCursor int           // cursor position before tab-cycling began
	width        int           // terminal width for ellipsization
	quitting     bool
}

// Run starts the REPL. Each preload script is executed in the session before
// the first prompt. History is kept in cacheDir, or in memory only if
// cacheDir is empty.
func Run(
	ctx context.Context,
	cacheDir string,
	logger log.Logger,
	preload []string,
	opts ...lang.Option,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("cache_dir", cacheDir),
		slog.Int("preload", len(preload)),
	)

	s := newSession(append(opts, lang.WithLogger(logger))...)

	for _, src := range preload {
		r := s.run(ctx, src)
		fmt.Fprint(os.Stdout, r.output)

		if err := r.diags.Err(); err != nil {
			return err
		}
	}

	logger.TraceContext(
		ctx,
		"repl preload complete",
		slog.Int("variables", s.env().Len()),
	)

	historyPath := ""
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		fmt.Printf("Warning: could not load history: %v\n", err)
	}

	logger.TraceContext(
		ctx,
		"repl history loaded",
		slog.Int("entry_count", history.Len()),
	)

	m := newModel(ctx, s, history, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx))
	_, err = p.Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	s *session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    s,
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - len(prompt) - 2

		return m, nil

	case editDoneMsg:
		m.session.reset()

		r := m.session.run(m.ctxFunc(), msg.source)
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl edit complete",
			slog.Int("variables", m.session.env().Len()),
			slog.Int("diagnostics", len(r.diags)),
		)

		return m, tea.Sequence(
			tea.Println(resultStyle.Render("✔ session replaced")),
			printResult(r),
		)

	case editCancelledMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit cancelled"))

	case editDeclinedMsg:
		return m, tea.Println(hintStyle.Render("🗴 edit discarded"))

	case editErrorMsg:
		return m, tea.Println(
			errorStyle.Render("🗴 error: " + msg.err.Error()),
		)
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteString("\n")

	input := m.input.Value()
	viewingHistory := m.historyIdx < m.history.Len()

	switch {
	case viewingHistory:
		pos := m.historyIdx + 1 // 1-based for display
		hint := fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(pos)),
			m.history.Len())
		b.WriteString(hintStyle.Render(hint))

	case strings.TrimSpace(input) == "":
		b.WriteString(hintStyle.Render(
			"Enter a statement or expression, :help for commands"))

	case m.tabActive || len(m.matches) > 1:
		b.WriteString(renderCandidateBar(
			m.matches, m.suggIdx, m.tabActive, m.width,
		))

	default:
		word := input[m.wordStart:m.wordEnd]
		if hint := bindingHint(m.session.env(), word, m.width); hint != "" {
			b.WriteString(hint)
		} else {
			b.WriteString(renderCandidateBar(
				m.matches, m.suggIdx, m.tabActive, m.width,
			))
		}
	}

	b.WriteString("\n")

	return b.String()
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
		slog.Int("type", int(msg.Type)),
	)

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.clearInput()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if !m.tabActive || len(m.matches) == 0 {
			return m.executeInput()
		}
		// Lock in the current tab candidate without executing.
		m.tabActive = false
		refreshMatches(&m, true)

		return m, nil

	case tea.KeyTab:
		return m.handleTab()

	case tea.KeyShiftTab:
		return m.handleShiftTab()

	case tea.KeyUp:
		return m.historyPrev()

	case tea.KeyDown:
		return m.historyNext()

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		m.clearInput()

		return m, nil

	case tea.KeyRunes, tea.KeySpace:
		// Typing breaks out of tab-cycling, keeping the candidate.
		m.tabActive = false

		var cmd tea.Cmd

		m.historyIdx = m.history.Len()
		m.input, cmd = m.input.Update(msg)
		refreshMatches(&m, true)

		return m, cmd
	}

	// For any other key (backspace, delete, arrows, etc.),
	// update input and recompute matches without auto-confirm.
	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, false)

	return m, cmd
}

func (m *model) clearInput() {
	m.input.SetValue("")
	m.tabActive = false
	m.historyIdx = m.history.Len()
	refreshMatches(m, false)
}

func (m model) handleTab() (model, tea.Cmd) {
	return m.cycle(1)
}

func (m model) handleShiftTab() (model, tea.Cmd) {
	return m.cycle(-1)
}

// cycle selects the next candidate in direction step and substitutes it for
// the current word. A sole candidate is completed and confirmed.
func (m model) cycle(step int) (model, tea.Cmd) {
	if len(m.matches) == 0 {
		return m, nil
	}

	if len(m.matches) == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m, nil
	}

	if m.tabActive {
		m.suggIdx = (m.suggIdx + step + len(m.matches)) % len(m.matches)
	} else {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.input.Position()

		if step > 0 {
			m.suggIdx = 0
		} else {
			m.suggIdx = len(m.matches) - 1
		}
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m, nil
}

// replaceCurrentWord replaces the current word boundaries in the input with
// the given replacement text and repositions the cursor.
func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()
	newInput := input[:m.wordStart] + replacement + input[m.wordEnd:]
	newCursor := m.wordStart + len(replacement)

	m.input.SetValue(newInput)
	m.input.SetCursor(newCursor)

	m.wordEnd = newCursor
}

// refreshMatches recomputes fuzzy matches for the current input state.
// When autoConfirm is true it also auto-confirms the completion when exactly
// one candidate remains and the typed word already equals that candidate.
// autoConfirm should be false for deletions and cursor navigation so that
// the user can freely edit without unexpected completions.
func refreshMatches(m *model, autoConfirm bool) {
	if m.tabActive {
		return
	}

	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()
	m.suggIdx = -1

	if !autoConfirm || len(m.matches) != 1 {
		return
	}

	candidate := m.matches[0].Str
	if m.input.Value()[m.wordStart:m.wordEnd] == candidate {
		m.matches = nil
	}
}

func (m model) executeInput() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	_, _ = m.history.Write(input)
	m.historyIdx = m.history.Len()

	echoCmd := tea.Println(formatCommand(input))

	if strings.HasPrefix(input, ":") {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl command",
			slog.String("input", input),
		)

		var cmd tea.Cmd

		m, cmd = m.executeCommand(input)

		return m, tea.Sequence(echoCmd, cmd)
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval",
		slog.String("input", input),
	)

	r := m.session.eval(m.ctxFunc(), input)

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl eval result",
		slog.Bool("has_value", r.hasValue),
		slog.Int("diagnostics", len(r.diags)),
	)

	return m, tea.Sequence(echoCmd, printResult(r))
}

// printResult prints program output, then the value of an expression, then
// any diagnostics.
func printResult(r result) tea.Cmd {
	var lines []string

	if out := strings.TrimSuffix(r.output, "\n"); out != "" {
		lines = append(lines, outputStyle.Render(out))
	}

	if r.hasValue {
		lines = append(lines, resultStyle.Render(formatValue(r.value)))
	}

	for _, d := range r.diags {
		lines = append(lines, errorStyle.Render(d.Error()))
	}

	if len(lines) == 0 {
		return nil
	}

	return tea.Println(strings.Join(lines, "\n"))
}

// formatValue renders v as it would be written in source where possible.
func formatValue(v lang.Value) string {
	if lit, ok := lang.SourceLiteral(v); ok {
		return lit
	}

	return v.String()
}

func (m model) executeCommand(input string) (model, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := strings.TrimPrefix(parts[0], ":")
	args := parts[1:]

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl exec command",
		slog.String("command", cmd),
		slog.Any("args", args),
	)

	switch cmd {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Quit

	case "h", "help":
		return m, tea.Println(helpMessage())

	case "v", "vars":
		return m, tea.Println(m.listVars())

	case "r", "reset":
		m.session.reset()

		return m, tea.Println(hintStyle.Render("session reset"))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, m.handleEdit()

	default:
		return m, tea.Println(
			errorStyle.Render("Unknown command: " + cmd + " (try :help)"),
		)
	}
}

func (m model) handleEdit() tea.Cmd {
	cmd := &editCommand{
		env:     m.session.env(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if cmd.source == "" {
			return editCancelledMsg{}
		}

		return editDoneMsg{source: cmd.source}
	})
}

func (m model) historyPrev() (model, tea.Cmd) {
	if m.historyIdx > 0 {
		m.historyIdx--
		m.showHistory()
	}

	return m, nil
}

func (m model) historyNext() (model, tea.Cmd) {
	if m.historyIdx < m.history.Len()-1 {
		m.historyIdx++
		m.showHistory()
	} else {
		m.clearInput()
	}

	return m, nil
}

func (m *model) showHistory() {
	line, err := m.history.GetLine(m.historyIdx)
	if err != nil {
		return
	}

	m.tabActive = false
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	refreshMatches(m, false)
}

// listVars renders each session variable with a preview of its value.
func (m model) listVars() string {
	var b strings.Builder

	for name, v := range m.session.env().All() {
		fmt.Fprintf(&b, "  %s %s\n", name,
			hintStyle.Render(ellipsize(formatValue(v), max(m.width-len(name)-4, 8))))
	}

	if b.Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	return strings.TrimSuffix(b.String(), "\n")
}
