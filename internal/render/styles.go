package render

import (
	"os"
	"sort"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Markdown style names
const (
	StyleAuto       = "auto"
	StyleDark       = styles.DarkStyle
	StyleLight      = styles.LightStyle
	StyleTokyoNight = styles.TokyoNightStyle
	StyleNoTTY      = styles.NoTTYStyle
	StyleASCII      = styles.AsciiStyle
)

// styleAliases maps TUI theme names to the closest glamour style
var styleAliases = map[string]string{
	"tokyonight": styles.TokyoNightStyle,
	"catppuccin": styles.DarkStyle,
	"plain":      styles.NoTTYStyle,
}

// ResolveStyle returns the glamour style name for style, following aliases.
// Unknown names are returned unchanged and treated as file paths.
func ResolveStyle(style string) string {
	if alias, ok := styleAliases[style]; ok {
		return alias
	}
	return style
}

// IsBuiltinStyle reports whether style names a glamour built-in style
func IsBuiltinStyle(style string) bool {
	if style == StyleAuto {
		return true
	}
	_, ok := styles.DefaultStyles[ResolveStyle(style)]
	return ok
}

// StyleNames lists the built-in style names, sorted
func StyleNames() []string {
	names := []string{StyleAuto}
	for name := range styles.DefaultStyles {
		names = append(names, name)
	}
	sort.Strings(names[1:])
	return names
}

// styleOption picks the glamour option for a style name or file path.
// A missing file falls back to the dark style.
func styleOption(style string) glamour.TermRendererOption {
	style = ResolveStyle(style)
	switch {
	case style == "" || style == StyleAuto:
		return glamour.WithAutoStyle()
	case IsBuiltinStyle(style):
		return glamour.WithStandardStyle(style)
	}

	if _, err := os.Stat(style); err != nil {
		return glamour.WithStandardStyle(StyleDark)
	}
	return glamour.WithStylePath(style)
}
