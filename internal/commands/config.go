package commands

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"github.com/diogo/ssechat/internal/config"
	"github.com/diogo/ssechat/internal/render"
)

// NewConfigCmd creates a new config command
func NewConfigCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
		Long: `Show or change ssechat settings.

Settings live in config.json under the config directory
(~/.ssechat, or ` + config.EnvConfigDir + ` when set).`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current settings as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow(deps)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GetConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(deps.Stdout, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigSet(deps, args[0], args[1])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List keys with their values, themes and markdown styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigKeys(deps)
		},
	})

	return cmd
}

func runConfigShow(deps *Dependencies) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(data))
	return nil
}

func runConfigSet(deps *Dependencies, key, value string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	if err := cfg.SetValue(key, value); err != nil {
		return err
	}

	if strings.EqualFold(key, "tui_theme") {
		if _, ok := render.GetTUIThemeByName(value); !ok {
			fmt.Fprintf(deps.Stderr, "Warning: unknown theme %q, the default theme will be used\n", value)
		}
	}

	if err := config.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, successStyle.Render(fmt.Sprintf("✓ %s = %s", key, value)))
	return nil
}

func runConfigKeys(deps *Dependencies) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// keys use the JSON field names, so gjson paths resolve them directly
	w := tabwriter.NewWriter(deps.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, key := range config.Keys() {
		fmt.Fprintf(w, "%s\t%s\n", key, gjson.GetBytes(data, key).String())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout)
	fmt.Fprintln(deps.Stdout, "Themes:")
	for _, name := range render.TUIThemeNames() {
		theme, _ := render.GetTUIThemeByName(name)
		fmt.Fprintf(deps.Stdout, "  %-12s %s\n", name, theme.Description)
	}

	fmt.Fprintln(deps.Stdout)
	fmt.Fprintln(deps.Stdout, "Markdown styles:")
	for _, name := range render.StyleNames() {
		fmt.Fprintf(deps.Stdout, "  %s\n", name)
	}
	return nil
}
