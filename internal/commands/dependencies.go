package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/diogo/ssechat/internal/api"
	"github.com/diogo/ssechat/internal/chat"
	"github.com/diogo/ssechat/internal/config"
	"github.com/diogo/ssechat/internal/tui"
)

// Streamer is the transport a command drives. *api.Client implements it.
type Streamer interface {
	chat.Streamer
	Close()
}

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, ctrl tui.ChatController, events <-chan chat.Event, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewStreamer builds the transport for the resolved configuration.
	NewStreamer func(cfg config.Config, log *slog.Logger) (Streamer, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// CopyToClipboard writes text to the system clipboard.
	CopyToClipboard func(string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// IsTTY reports whether Stdout is a terminal.
	IsTTY func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, ctrl tui.ChatController, events <-chan chat.Event, opts tui.Options) error {
	return tui.RunChat(ctx, ctrl, events, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewStreamer:     newClient,
		TUI:             &DefaultTUI{},
		CopyToClipboard: writeClipboard,
		Stdin:           os.Stdin,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		IsTTY:           isStdoutTTY,
	}
}

// newClient builds the tls-client transport from cfg
func newClient(cfg config.Config, log *slog.Logger) (Streamer, error) {
	opts := []api.ClientOption{
		api.WithEndpoint(cfg.Endpoint),
		api.WithLogger(log),
		api.WithMaxFrameSize(cfg.MaxFrameBytes),
	}
	if cfg.RequestTimeout > 0 {
		opts = append(opts, api.WithTimeout(time.Duration(cfg.RequestTimeout)*time.Second))
	}
	if cfg.Proxy != "" {
		opts = append(opts, api.WithProxy(cfg.Proxy))
	}
	return api.NewClient(opts...)
}
