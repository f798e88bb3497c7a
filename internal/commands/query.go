package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/ssechat/internal/chat"
	"github.com/diogo/ssechat/internal/models"
	"github.com/diogo/ssechat/internal/render"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorAccent   = lipgloss.Color("#bb9af7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorAccent).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)

	userLabelStyle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	userBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Foreground(colorText).
			Padding(0, 1).
			MarginBottom(1)

	errorBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorError).
				Foreground(colorError).
				Padding(0, 1).
				MarginBottom(1)

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorError)
)

// spinner handles the animated loading indicator
type spinner struct {
	out     io.Writer
	message string
	stopCh  chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner writing to out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stopCh:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(gradientColors[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stop halts the animation and clears its line. Safe to call more than once.
func (s *spinner) stop() {
	s.mu.Lock()
	if !s.stopped {
		close(s.stopCh)
		s.stopped = true
	}
	s.mu.Unlock()
	<-s.done
}

// printer writes the messages of one turn as they are appended
type printer struct {
	w       io.Writer
	raw     bool
	opts    render.Options
	width   int
	onFirst func()

	started bool
	printed int
}

func newPrinter(w io.Writer, raw bool, opts render.Options, termWidth int) *printer {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	return &printer{
		w:     w,
		raw:   raw,
		opts:  opts.WithWidth(bubbleWidth - 4),
		width: bubbleWidth,
	}
}

// handle is the controller listener. The submitted message is skipped;
// everything after the turn starts is printed.
func (p *printer) handle(ev chat.Event) {
	switch ev.Kind {
	case chat.EventTurnStarted:
		p.started = true
	case chat.EventMessage:
		if !p.started {
			return
		}
		if p.printed == 0 && p.onFirst != nil {
			p.onFirst()
		}
		p.printed++
		p.print(ev.Message)
	}
}

func (p *printer) print(msg models.Message) {
	if p.raw {
		fmt.Fprintf(p.w, "%s: %s\n", msg.Role, msg.Content)
		return
	}

	var label string
	style := assistantBubbleStyle
	switch {
	case msg.IsUser():
		label = userLabelStyle.Render("You ⬤")
		style = userBubbleStyle
	case strings.HasPrefix(msg.Content, "Error: "):
		label = assistantLabelStyle.Render("✦ Assistant")
		style = errorBubbleStyle
	default:
		label = assistantLabelStyle.Render("✦ Assistant")
	}

	fmt.Fprintln(p.w, label)
	fmt.Fprintln(p.w, style.Width(p.width).Render(render.MessageBody(msg, p.opts)))
}

// runQuery runs a single turn and prints its messages as they stream in
func runQuery(ctx context.Context, deps *Dependencies, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	cfg, err := loadConfig(deps.Stderr)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg, deps.Stderr, false)
	if err != nil {
		return err
	}
	defer closeLog()

	streamer, err := deps.NewStreamer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer streamer.Close()

	raw := rawFlag || !deps.IsTTY()
	p := newPrinter(deps.Stdout, raw, render.OptionsFromConfig(cfg), getTerminalWidth())

	var spin *spinner
	if !raw {
		spin = newSpinner(deps.Stderr, "Waiting for reply")
		spin.start()
		defer spin.stop()
		p.onFirst = spin.stop
	}

	ctrl := chat.NewController(streamer, chat.NewConversation(""),
		chat.WithLogger(log),
		chat.WithListener(p.handle),
		chat.WithTurnTimeout(time.Duration(cfg.RequestTimeout)*time.Second),
	)

	startTime := time.Now()
	turn, err := ctrl.Submit(ctx, prompt)
	if err != nil {
		return err
	}

	outcome, err := turn.Wait()
	log.Debug("turn done", "outcome", outcome, "messages", p.printed, "elapsed", time.Since(startTime).Round(time.Millisecond))

	switch outcome {
	case chat.OutcomeCompleted:
	case chat.OutcomeCancelled:
		return fmt.Errorf("stopped: %w", err)
	default:
		return err
	}

	if spin != nil {
		spin.stop()
	}

	reply := assistantReply(ctrl.Conversation().Messages())
	if reply == "" {
		if !raw {
			fmt.Fprintln(deps.Stderr, warningStyle.Render("⚠ The stream ended without a reply"))
		}
		return nil
	}

	if copyFlag || cfg.CopyToClipboard {
		if err := deps.CopyToClipboard(reply); err != nil {
			fmt.Fprintln(deps.Stderr, warningStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if !raw {
			fmt.Fprintln(deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(reply), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !raw {
			fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Reply saved to %s", outputFlag)))
		}
	}

	return nil
}

// assistantReply joins the assistant messages of a one-shot conversation
func assistantReply(messages []models.Message) string {
	var parts []string
	for _, msg := range messages {
		if msg.Role == models.RoleAssistant {
			parts = append(parts, msg.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}

// writeClipboard copies text, reporting a missing clipboard utility clearly
func writeClipboard(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
