// Package commands provides CLI commands for ssechat.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/ssechat/internal/config"
	"github.com/diogo/ssechat/internal/logger"
	"github.com/diogo/ssechat/internal/tui"
)

var (
	// Global flags
	endpointFlag string
	debugFlag    bool
	logFileFlag  string
	outputFlag   string
	fileFlag     string
	rawFlag      bool
	copyFlag     bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd creates the root command and its subcommands
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ssechat [prompt]",
		Short: "Streaming chat client for SSE endpoints",
		Long: `ssechat talks to a chat backend that answers over Server-Sent Events.
Every reply is shown message by message as the frames arrive.

Examples:
  ssechat chat                          Start interactive chat
  ssechat config show                   Show settings
  ssechat config set endpoint https://host/api/stream
  ssechat "What is Go?"                 Send a single message
  ssechat -f prompt.md                  Read the message from a file
  cat prompt.md | ssechat               Read the message from stdin
  ssechat "Hello" -o reply.md           Save the reply to a file`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "ssechat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := readPrompt(deps, args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return runQuery(ctx, deps, prompt)
		},
	}

	cmd.PersistentFlags().StringVar(&endpointFlag, "endpoint", "", "SSE endpoint URL (overrides config and "+config.EnvEndpoint+")")
	cmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&logFileFlag, "log-file", "", "Write logs to this file as JSON")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Save the assistant reply to file")
	cmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the message from file")
	cmd.Flags().BoolVar(&rawFlag, "raw", false, "Print plain role: text lines")
	cmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the assistant reply to the clipboard")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// readPrompt returns the message from --file, piped stdin or the argument.
// ok is false when no input was given.
func readPrompt(deps *Dependencies, args []string) (string, bool, error) {
	if fileFlag != "" {
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if hasPipedInput(deps.Stdin) {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

// hasPipedInput reports whether r is a non-terminal file or any other reader
func hasPipedInput(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// signalContext cancels on SIGINT or SIGTERM so Ctrl+C stops the active turn
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// loadConfig loads the user configuration and applies the global flags.
// A broken config file is reported and the defaults are used.
func loadConfig(stderr io.Writer) (config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v, using defaults\n", err)
	}

	if endpointFlag != "" {
		cfg.Endpoint = endpointFlag
	}
	if debugFlag {
		cfg.Debug = true
	}
	if logFileFlag != "" {
		cfg.LogFile = logFileFlag
	}

	if err := config.ValidateEndpoint(cfg.Endpoint); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the logger for cfg. The TUI owns the terminal, so
// interactive mode only logs to the log file.
func newLogger(cfg config.Config, stderr io.Writer, interactive bool) (*slog.Logger, func(), error) {
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l := logger.New(
			logger.WithWriter(f),
			logger.WithJSON(true),
			logger.WithDebug(cfg.Debug),
		)
		return l, func() { _ = f.Close() }, nil
	}

	if interactive {
		return logger.Nop(), func() {}, nil
	}

	l := logger.New(
		logger.WithWriter(stderr),
		logger.WithPretty(true),
		logger.WithDebug(cfg.Debug),
		logger.WithPrefix("ssechat"),
	)
	return l, func() {}, nil
}
