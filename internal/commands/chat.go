package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/diogo/ssechat/internal/chat"
	"github.com/diogo/ssechat/internal/render"
	"github.com/diogo/ssechat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Replies stream in message by message. Esc stops the reply in progress,
Ctrl+R starts over, Ctrl+Y copies the last reply.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runChat(ctx, deps)
		},
	}
}

func runChat(ctx context.Context, deps *Dependencies) error {
	cfg, err := loadConfig(deps.Stderr)
	if err != nil {
		return err
	}

	log, closeLog, err := newLogger(cfg, deps.Stderr, true)
	if err != nil {
		return err
	}
	defer closeLog()

	streamer, err := deps.NewStreamer(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer streamer.Close()

	events, listener := tui.EventBridge()
	ctrl := chat.NewController(streamer, chat.NewConversation(cfg.Greeting),
		chat.WithLogger(log),
		chat.WithListener(listener),
		chat.WithResetOnStop(cfg.ResetOnStop),
		chat.WithTurnTimeout(time.Duration(cfg.RequestTimeout)*time.Second),
	)

	theme := render.TUIThemeOrDefault(cfg.TUITheme)
	mdOpts := render.OptionsFromConfig(cfg)
	if cfg.Markdown.Style == "" && os.Getenv(render.EnvStyle) == "" {
		mdOpts = mdOpts.WithStyle(theme.Markdown)
	}

	log.Info("chat started", "endpoint", cfg.Endpoint, "theme", theme.Name)

	return deps.TUI.RunChat(ctx, ctrl, events, tui.Options{
		Endpoint: cfg.Endpoint,
		Theme:    theme,
		Markdown: mdOpts,
	})
}
