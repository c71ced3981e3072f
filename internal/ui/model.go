package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicebot/internal/application"
	"voicebot/internal/conversation"
	"voicebot/internal/domain"
)

type Model struct {
	ctx       context.Context
	assistant *application.Assistant
	backend   application.QueryService

	states <-chan conversation.State
	state  conversation.State

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keys     keyMap

	width  int
	height int

	stats      domain.Stats
	statsKnown bool
	inputMode  bool
	ready      bool
}

type stateMsg conversation.State

type statsMsg struct {
	stats domain.Stats
	err   error
}

func NewModel(ctx context.Context, assistant *application.Assistant, backend application.QueryService) Model {
	input := textinput.New()
	input.Placeholder = "type a question and press enter"
	input.CharLimit = 512

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = listeningStyle

	return Model{
		ctx:       ctx,
		assistant: assistant,
		backend:   backend,
		states:    assistant.Store().Subscribe(),
		state:     assistant.Store().State(),
		input:     input,
		spinner:   spin,
		keys:      defaultKeyMap(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForState(), m.statsCmd(), m.spinner.Tick)
}

func (m Model) waitForState() tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-m.states)
	}
}

func (m Model) statsCmd() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.backend.Stats(m.ctx)
		return statsMsg{stats: stats, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.refreshTranscript()
		m.ready = true

	case stateMsg:
		m.state = conversation.State(msg)
		m.refreshTranscript()
		m.viewport.GotoBottom()
		cmds = append(cmds, m.waitForState())

	case statsMsg:
		// Stats are decorative; a failed probe just leaves the footer bare.
		if msg.err == nil {
			m.stats = msg.stats
			m.statsKnown = true
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case tea.KeyMsg:
		if m.inputMode {
			switch msg.String() {
			case "esc":
				m.inputMode = false
				m.input.SetValue("")
				m.input.Blur()
				return m, tea.Batch(cmds...)
			case "enter":
				text := strings.TrimSpace(m.input.Value())
				m.inputMode = false
				m.input.SetValue("")
				m.input.Blur()
				if text != "" {
					m.assistant.SubmitText(m.ctx, text)
				}
				return m, tea.Batch(cmds...)
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
			return m, tea.Batch(cmds...)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Mic):
			m.assistant.ToggleMic(m.ctx)
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.Type):
			m.inputMode = true
			m.input.Focus()
			return m, tea.Batch(cmds...)
		case key.Matches(msg, m.keys.Up):
			m.viewport.LineUp(1)
		case key.Matches(msg, m.keys.Down):
			m.viewport.LineDown(1)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.viewport.Width = m.width - 2
	height := m.height - 6
	if height < 4 {
		height = 4
	}
	m.viewport.Height = height
	m.input.Width = m.width - 8
}

func (m *Model) refreshTranscript() {
	m.viewport.SetContent(RenderMessages(m.state.Messages, m.viewport.Width))
}

func (m Model) View() string {
	if !m.ready {
		return "Starting..."
	}

	var sections []string
	sections = append(sections, m.headerLine())
	sections = append(sections, m.viewport.View())
	if banner := m.bannerLine(); banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, m.footerLine())
	if m.inputMode {
		sections = append(sections, "  "+m.input.View())
	} else {
		sections = append(sections, helpStyle.Render("  space: talk  i: type  q: quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) headerLine() string {
	title := "Voice Bot"
	if m.statsKnown {
		title += fmt.Sprintf("  |  %d FAQs, %d accounts", m.stats.TotalFAQs, m.stats.TotalUsers)
	}
	return headerStyle.Width(m.width).Render(title)
}

func (m Model) bannerLine() string {
	if m.state.Listening {
		line := m.spinner.View() + " listening"
		if m.state.Transcript != "" {
			line += ": " + m.state.Transcript
		}
		return listeningStyle.Render("  " + line)
	}
	if m.state.InFlight {
		return thinkingStyle.Render("  " + m.spinner.View() + " thinking...")
	}
	if m.state.Err != "" {
		return errorStyle.Render("  ! " + m.state.Err)
	}
	return ""
}

func (m Model) footerLine() string {
	status := fmt.Sprintf("queries: %d  answered: %d", m.state.QueryCount, m.state.Answered)
	if len(m.state.Missing) > 0 {
		status += "  unavailable: " + strings.Join(m.state.Missing, ", ")
	}
	return statusStyle.Width(m.width).Render(status)
}

// RenderMessages lays the chat log out as alternating bubbles. Bot
// messages carry the intent annotation when the backend reported one.
func RenderMessages(messages []domain.Message, width int) string {
	if len(messages) == 0 {
		return emptyStyle.Render("\n  Press space and ask a question.\n")
	}

	var b strings.Builder
	for _, msg := range messages {
		switch msg.Sender {
		case domain.SenderUser:
			b.WriteString(userLabelStyle.Render("You"))
			b.WriteString("  ")
			b.WriteString(msg.Text)
		case domain.SenderBot:
			b.WriteString(botLabelStyle.Render("Bot"))
			b.WriteString("  ")
			b.WriteString(msg.Text)
			if msg.Intent != "" {
				b.WriteString("\n")
				annotation := "Intent: " + msg.Intent
				if msg.ActionTaken != "" {
					annotation += " | " + msg.ActionTaken
				}
				b.WriteString(annotationStyle.Render("     " + annotation))
			}
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

type keyMap struct {
	Mic  key.Binding
	Type key.Binding
	Up   key.Binding
	Down key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Mic: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "push to talk"),
		),
		Type: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "type a question"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)
	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Background(lipgloss.Color("236")).
			Padding(0, 1)
	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))
	botLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("114"))
	annotationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
	listeningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))
	thinkingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("179"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)
