package render

import (
	"os"

	"github.com/diogo/ssechat/internal/config"
)

// EnvStyle overrides the configured markdown style
const EnvStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from the markdown section of cfg.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(cfg config.Config) Options {
	opts := DefaultOptions()

	md := cfg.Markdown
	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv(EnvStyle); style != "" {
		opts.Style = style
	}

	return opts
}

// LoadOptionsFromConfig loads the user configuration and builds render options.
// A config that fails to load yields the defaults.
func LoadOptionsFromConfig() Options {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	return OptionsFromConfig(cfg)
}
