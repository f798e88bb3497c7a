package tui

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/ssechat/internal/chat"
	"github.com/diogo/ssechat/internal/models"
	"github.com/diogo/ssechat/internal/render"
)

// eventBuffer is the capacity of the controller event channel
const eventBuffer = 256

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// eventMsg carries one controller event into Update
	eventMsg chat.Event
	// turnDoneMsg is sent once the stream goroutine of a turn has exited
	turnDoneMsg struct {
		turn    uint64
		outcome chat.Outcome
		err     error
	}
	clipboardMsg struct {
		err error
	}
)

// ChatController is the part of chat.Controller the TUI drives
type ChatController interface {
	Submit(ctx context.Context, input string) (*chat.Turn, error)
	Stop() bool
	Reset()
	State() chat.State
	Conversation() *chat.Conversation
}

// EventBridge returns a channel and a listener that feeds it.
// The listener never blocks the controller: when the TUI falls behind,
// events are dropped and the next one re-renders the whole conversation.
func EventBridge() (<-chan chat.Event, chat.Listener) {
	ch := make(chan chat.Event, eventBuffer)
	return ch, func(ev chat.Event) {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Options configures the chat screen
type Options struct {
	Endpoint string
	Theme    render.TUITheme
	Markdown render.Options
}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	ctrl   ChatController
	events <-chan chat.Event
	opts   Options
	copyFn func(string) error

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading        bool
	activeTurn     uint64
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(ctx context.Context, ctrl ChatController, events <-chan chat.Event, opts Options) Model {
	ApplyTheme(opts.Theme)

	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		events:   events,
		opts:     opts,
		copyFn:   clipboard.WriteAll,
		textarea: ta,
		spinner:  s,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForEvent(m.events),
	)
}

// waitForEvent blocks until the controller emits the next event
func waitForEvent(events <-chan chat.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return nil
		}
		return eventMsg(ev)
	}
}

// waitForTurn reports when the stream goroutine of turn has exited
func waitForTurn(turn *chat.Turn) tea.Cmd {
	return func() tea.Msg {
		outcome, err := turn.Wait()
		return turnDoneMsg{turn: turn.ID(), outcome: outcome, err: err}
	}
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.ctrl.Stop()
			return m, tea.Quit

		case "esc":
			if !m.loading {
				return m, tea.Quit
			}
			m.ctrl.Stop()
			m.finishTurn()
			m.notice = "Stopped"
			return m, nil

		case "ctrl+r":
			m.ctrl.Reset()
			m.finishTurn()
			m.err = nil
			m.notice = "Conversation reset"
			m.refresh()
			return m, nil

		case "ctrl+y":
			last, ok := m.ctrl.Conversation().Last(models.RoleAssistant)
			if !ok {
				return m, nil
			}
			return m, m.copyToClipboard(last.Content)

		case "enter":
			if m.loading {
				return m, nil
			}
			return m.submit()
		}

	case eventMsg:
		m.handleEvent(chat.Event(msg))
		cmds = append(cmds, waitForEvent(m.events))

	case turnDoneMsg:
		if msg.turn == m.activeTurn && m.loading {
			m.finishTurn()
			m.refresh()
		}

	case clipboardMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy failed: %w", msg.err)
		} else {
			m.notice = "Copied last reply"
		}

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.loading {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit starts a turn with the textarea content
func (m Model) submit() (tea.Model, tea.Cmd) {
	input := m.textarea.Value()
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return m, nil
	}

	switch trimmed {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	case "/reset":
		m.textarea.Reset()
		m.ctrl.Reset()
		m.notice = "Conversation reset"
		m.refresh()
		return m, nil
	}

	turn, err := m.ctrl.Submit(m.ctx, input)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.activeTurn = turn.ID()
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.refresh()

	return m, tea.Batch(
		waitForTurn(turn),
		m.spinner.Tick,
		animationTick(),
	)
}

func (m *Model) handleEvent(ev chat.Event) {
	switch ev.Kind {
	case chat.EventTurnEnded:
		if ev.Turn == m.activeTurn {
			m.finishTurn()
		}
	case chat.EventReset:
		m.err = nil
	}
	m.refresh()
}

func (m *Model) finishTurn() {
	m.loading = false
	m.activeTurn = 0
}

func (m Model) copyToClipboard(text string) tea.Cmd {
	copyFn := m.copyFn
	return func() tea.Msg {
		return clipboardMsg{err: copyFn(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{titleStyle.Render("✦ ssechat")}
	if host := endpointHost(m.opts.Endpoint); host != "" {
		headerParts = append(headerParts,
			hintStyle.Render("  •  "),
			subtitleStyle.Render(host),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	messagesPanel := messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(m.viewport.View())
	sections = append(sections, messagesPanel)

	// Input
	var inputContent string
	if m.loading {
		inputContent = m.renderLoadingAnimation()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderLoadingAnimation renders the animated indicator shown while streaming
func (m Model) renderLoadingAnimation() string {
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}
	frame := m.animationFrame

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	text := lipgloss.NewStyle().Foreground(colorText).Render(" streaming ")
	hint := lipgloss.NewStyle().Foreground(colorWarning).Render("(esc to stop)")

	return fmt.Sprintf("%s %s %s %s", m.spinner.View(), bar.String(), text, hint)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Esc", "Stop/Quit"},
		{"Ctrl+R", "Reset"},
		{"Ctrl+Y", "Copy"},
		{"↑↓", "Scroll"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// refresh re-renders the conversation into the viewport and scrolls to
// the newest message
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages(m.ctrl.Conversation().Messages()))
	m.viewport.GotoBottom()
}

// renderMessages lays out messages with user bubbles on the right and
// assistant bubbles on the left
func (m Model) renderMessages(messages []models.Message) string {
	width := m.viewport.Width
	bubbleWidth := width * 3 / 4
	if bubbleWidth < 20 {
		bubbleWidth = width
	}
	mdOpts := m.opts.Markdown.WithWidth(bubbleWidth - 4)

	var content strings.Builder
	for i, msg := range messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("You ⬤")
			style := userBubbleStyle
			if lipgloss.Width(msg.Content) > bubbleWidth-4 {
				style = style.Width(bubbleWidth)
			}
			bubble := style.Render(msg.Content)
			block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
			content.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Right, block))
		} else {
			label := assistantLabelStyle.Render("✦ Assistant")
			style := assistantBubbleStyle
			if strings.HasPrefix(msg.Content, "Error: ") {
				style = errorBubbleStyle
			}
			bubble := style.Width(bubbleWidth).Render(render.MessageBody(msg, mdOpts))
			content.WriteString(lipgloss.JoinVertical(lipgloss.Left, label, bubble))
		}
		content.WriteString("\n")
	}

	return content.String()
}

func endpointHost(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}

// RunChat starts the chat TUI
func RunChat(ctx context.Context, ctrl ChatController, events <-chan chat.Event, opts Options) error {
	m := NewChatModel(ctx, ctrl, events, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	ctrl.Stop()
	return err
}
