package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/demonstrate/lang"
	"github.com/ardnew/demonstrate/log"
)

// Session describes the suite being edited.
type Session struct {
	Source   string // initial suite source
	Path     string // file path for saving, may be empty
	Package  string // package name for the generated preview
	Autosave string // recovery file written on exit, may be empty
}

// editDoneMsg is sent when external editing completes successfully.
type editDoneMsg struct{ source string }

// editCancelledMsg is sent when the user cleared the editor content.
type editCancelledMsg struct{}

// editDeclinedMsg is sent when the user declined to re-edit after a parse
// error.
type editDeclinedMsg struct{}

// editErrorMsg is sent when the edit process encounters a non-parse error.
type editErrorMsg struct{ err error }

// focusPane identifies which pane receives key input.
type focusPane int

const (
	focusEditor focusPane = iota
	focusPreview
)

// Styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))
	focusedPaneStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("6"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

const hintBar = "Esc switch pane · Ctrl+S save · Ctrl+E $EDITOR · Ctrl+C quit"

// model is the Bubble Tea model for the live preview editor.
type model struct {
	ctxFunc func() context.Context
	editor  textarea.Model
	preview viewport.Model
	session Session
	logger  log.Logger

	focus    focusPane
	width    int
	height   int
	status   string
	quitting bool
}

// Run starts the live preview editor for the given session.
func Run(
	ctx context.Context,
	session Session,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger.TraceContext(
		ctx,
		"repl start",
		slog.String("path", session.Path),
		slog.Int("source_length", len(session.Source)),
	)

	m := newModel(ctx, session, logger)

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err = p.Run()

	return err
}

const (
	defaultWidth  = 80
	defaultHeight = 24
)

func newModel(
	ctx context.Context,
	session Session,
	logger log.Logger,
) model {
	ta := textarea.New()
	ta.Placeholder = `describe example { it works { ... } }`
	ta.CharLimit = 0
	ta.SetValue(session.Source)
	ta.Focus()

	vp := viewport.New(defaultWidth/2, defaultHeight)

	m := model{
		ctxFunc: func() context.Context { return ctx },
		editor:  ta,
		preview: vp,
		session: session,
		logger:  logger,
		focus:   focusEditor,
		width:   defaultWidth,
		height:  defaultHeight,
	}

	m.refreshPreview()

	return m
}

func (m model) Init() tea.Cmd {
	return textarea.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

		return m, nil

	case editDoneMsg:
		m.editor.SetValue(msg.source)
		m.refreshPreview()
		m.status = statusStyle.Render("suite updated from editor")

		return m, nil

	case editCancelledMsg:
		m.status = hintStyle.Render("edit cancelled")

		return m, nil

	case editDeclinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		m.status = errorStyle.Render("error: " + msg.err.Error())

		return m, nil
	}

	return m.updatePanes(msg)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.TraceContext(
		m.ctxFunc(),
		"repl keypress",
		slog.String("key", msg.String()),
	)

	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyCtrlD:
		m.quitting = true
		m.writeAutosave()

		return m, tea.Quit

	case tea.KeyEsc:
		return m.toggleFocus()

	case tea.KeyCtrlS:
		return m.save()

	case tea.KeyCtrlE:
		return m.handleEdit()
	}

	return m.updatePanes(msg)
}

func (m model) updatePanes(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	if m.focus == focusEditor {
		before := m.editor.Value()
		m.editor, cmd = m.editor.Update(msg)

		if m.editor.Value() != before {
			m.status = ""

			m.refreshPreview()
		}

		return m, cmd
	}

	m.preview, cmd = m.preview.Update(msg)

	return m, cmd
}

func (m model) toggleFocus() (tea.Model, tea.Cmd) {
	if m.focus == focusEditor {
		m.focus = focusPreview
		m.editor.Blur()

		return m, nil
	}

	m.focus = focusEditor

	return m, m.editor.Focus()
}

func (m model) save() (tea.Model, tea.Cmd) {
	if m.session.Path == "" {
		m.status = errorStyle.Render(ErrNoPath.Error())

		return m, nil
	}

	err := os.WriteFile(m.session.Path, []byte(m.editor.Value()), 0o644)
	if err != nil {
		m.status = errorStyle.Render("save failed: " + err.Error())

		return m, nil
	}

	m.logger.TraceContext(
		m.ctxFunc(),
		"repl save",
		slog.String("path", m.session.Path),
		slog.Int("source_length", len(m.editor.Value())),
	)

	m.status = statusStyle.Render("saved " + m.session.Path)

	return m, nil
}

func (m model) handleEdit() (tea.Model, tea.Cmd) {
	cmd := &editSuiteCommand{
		source:  m.editor.Value(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return m, tea.Exec(cmd, func(err error) tea.Msg {
		if errors.Is(err, ErrEditDeclined) {
			return editDeclinedMsg{}
		}

		if err != nil {
			return editErrorMsg{err: err}
		}

		if !cmd.edited {
			return editCancelledMsg{}
		}

		return editDoneMsg{source: cmd.result}
	})
}

// writeAutosave records the in-progress suite source for recovery.
func (m *model) writeAutosave() {
	source := m.editor.Value()
	if m.session.Autosave == "" || strings.TrimSpace(source) == "" {
		return
	}

	if err := os.WriteFile(m.session.Autosave, []byte(source), 0o600); err != nil {
		m.logger.TraceContext(
			m.ctxFunc(),
			"repl autosave failed",
			slog.String("path", m.session.Autosave),
			slog.String("error", err.Error()),
		)
	}
}

// refreshPreview recompiles the current suite source into the preview pane.
// Compile errors replace the preview with the error text.
func (m *model) refreshPreview() {
	out, err := compile(m.ctxFunc(), m.editor.Value(), m.session.Package)
	if err != nil {
		m.preview.SetContent(errorStyle.Render(err.Error()))

		return
	}

	m.preview.SetContent(out)
}

// compile parses, expands, and emits the suite source as Go test code.
func compile(ctx context.Context, source, pkgName string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return hintStyle.Render("(empty suite)"), nil
	}

	root, err := lang.ParseString(ctx, source)
	if err != nil {
		return "", err
	}

	suite, err := root.Generate(ctx)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := suite.EmitGo(ctx, &buf, pkgName); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// layout resizes both panes to split the terminal evenly.
func (m *model) layout() {
	const chrome = 4 // borders and padding per pane

	paneWidth := m.width/2 - chrome
	paneHeight := m.height - 5 // title, status, and hint lines

	if paneWidth < 10 {
		paneWidth = 10
	}

	if paneHeight < 3 {
		paneHeight = 3
	}

	m.editor.SetWidth(paneWidth)
	m.editor.SetHeight(paneHeight)
	m.preview.Width = paneWidth
	m.preview.Height = paneHeight
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	editorPane := paneStyle
	previewPane := paneStyle

	if m.focus == focusEditor {
		editorPane = focusedPaneStyle
	} else {
		previewPane = focusedPaneStyle
	}

	title := titleStyle.Render("suite") + strings.Repeat(" ",
		max(1, m.width/2-len("suite")-len("generated"))) +
		titleStyle.Render("generated")

	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		editorPane.Render(m.editor.View()),
		previewPane.Render(m.preview.View()),
	)

	return fmt.Sprintf("%s\n%s\n%s\n%s\n",
		title,
		body,
		m.status,
		hintStyle.Render(hintBar),
	)
}
