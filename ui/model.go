package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/drake/dmconnect/text"
)

const rosterWidth = 22

// tickMsg drives result polling.
type tickMsg time.Time

func doTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	chat      *Chat
	completer *Completer
	styles    Styles
	refresh   time.Duration

	viewport viewport.Model
	input    textinput.Model
	status   StatusBar

	width    int
	height   int
	ready    bool
	quitting bool
}

// NewModel creates the TUI model around chat.
func NewModel(chat *Chat) Model {
	styles := DefaultStyles()

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = chat.opts.MaxLineLength
	ti.Width = 80
	ti.Focus()

	return Model{
		chat:      chat,
		completer: &Completer{},
		styles:    styles,
		refresh:   chat.opts.RefreshInterval,
		viewport:  viewport.New(80, 20),
		input:     ti,
		status:    NewStatusBar(styles, chat.opts.Credentials.Address()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, doTick(m.refresh))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.resize()
		m.render(true)
		return m, nil

	case tickMsg:
		if m.chat.Collect() {
			m.completer.SetNames(m.chat.Roster())
		}
		m.render(false)
		return m, doTick(m.refresh)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyEnter:
		quit := m.chat.Submit(m.input.Value())
		m.input.Reset()
		m.completer.Reset()
		if quit {
			m.quitting = true
			return m, tea.Quit
		}
		m.render(false)
		return m, nil

	case tea.KeyTab:
		if value, cursor, ok := m.completer.Complete(m.input.Value(), m.input.Position()); ok {
			m.input.SetValue(value)
			m.input.SetCursor(cursor)
		}
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.render(false)
		return m, cmd
	}

	m.completer.Reset()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) chatWidth() int {
	if m.width > rosterWidth*3 {
		return m.width - rosterWidth
	}
	return m.width
}

func (m *Model) resize() {
	h := m.height - 2 // input + status
	if h < 1 {
		h = 1
	}
	m.viewport.Width = m.chatWidth()
	m.viewport.Height = h
	m.input.Width = m.width - len(m.input.Prompt) - 1
	m.status.SetWidth(m.width)
}

// render refreshes the scrollback and status bar from the chat. The
// scrollback is rebuilt when lines were added or force is set.
func (m *Model) render(force bool) {
	fresh := m.chat.TakeFresh()
	follow := m.viewport.AtBottom()

	if len(fresh) > 0 || force {
		var b strings.Builder
		for i, l := range m.chat.Lines() {
			if i > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(m.styleLine(l))
		}
		m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(b.String()))
		if follow {
			m.viewport.GotoBottom()
		}
	}

	errs, _ := m.chat.Errors()
	m.status.Update(m.chat.State(), len(m.chat.Roster()), errs, !m.viewport.AtBottom())
}

func (m *Model) styleLine(l Line) string {
	switch l.Kind {
	case LineEcho:
		return m.styles.Echo.Render(l.Text)
	case LineLocal:
		return m.styles.Local.Render(l.Text)
	case LineError:
		return m.styles.Error.Render(l.Text)
	default:
		return m.styles.Chat.Render(l.Text)
	}
}

func (m Model) rosterView() string {
	height := m.viewport.Height
	inner := rosterWidth - 2

	names := m.chat.Roster()
	rows := []string{m.styles.RosterHdr.Render(text.FitWidth(" Members", inner))}
	for _, n := range names {
		if len(rows) == height {
			break
		}
		rows = append(rows, text.FitWidth(n, inner))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return m.styles.Roster.Width(inner + 1).Render(strings.Join(rows, "\n"))
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Starting..."
	}

	body := m.viewport.View()
	if m.chatWidth() < m.width {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.rosterView())
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		body,
		m.styles.Input.Render(m.input.View()),
		m.status.View(),
	)
}
