package render

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/ssechat/internal/config"
	"github.com/diogo/ssechat/internal/models"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Width != 80 {
		t.Errorf("expected Width=80, got %d", opts.Width)
	}
	if opts.Style != StyleDark {
		t.Errorf("expected Style=dark, got %s", opts.Style)
	}
	if !opts.EnableEmoji || !opts.PreserveNewLines || !opts.TableWrap {
		t.Errorf("unexpected defaults: %+v", opts)
	}
	if opts.InlineTableLinks {
		t.Error("expected InlineTableLinks=false")
	}
}

func TestOptionsChaining(t *testing.T) {
	opts := DefaultOptions().
		WithWidth(100).
		WithStyle(StyleLight).
		WithEmoji(false).
		WithPreserveNewLines(false)

	if opts.Width != 100 || opts.Style != StyleLight || opts.EnableEmoji || opts.PreserveNewLines {
		t.Errorf("chained options not applied: %+v", opts)
	}
	if !opts.TableWrap {
		t.Error("untouched options should be preserved")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	t.Setenv(EnvStyle, "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = StyleLight
	cfg.Markdown.EnableEmoji = false

	opts := OptionsFromConfig(cfg)
	if opts.Style != StyleLight {
		t.Errorf("Style = %s, want light", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("EnableEmoji should follow config")
	}

	t.Setenv(EnvStyle, StyleNoTTY)
	if got := OptionsFromConfig(cfg).Style; got != StyleNoTTY {
		t.Errorf("Style = %s, want env override notty", got)
	}
}

func TestOptionsFromConfig_EmptyStyleKeepsDefault(t *testing.T) {
	t.Setenv(EnvStyle, "")

	cfg := config.DefaultConfig()
	cfg.Markdown.Style = ""
	if got := OptionsFromConfig(cfg).Style; got != StyleDark {
		t.Errorf("Style = %s, want dark", got)
	}
}

func TestResolveStyle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tokyonight", StyleTokyoNight},
		{"catppuccin", StyleDark},
		{"plain", StyleNoTTY},
		{StyleLight, StyleLight},
		{"/tmp/theme.json", "/tmp/theme.json"},
	}
	for _, tt := range tests {
		if got := ResolveStyle(tt.in); got != tt.want {
			t.Errorf("ResolveStyle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsBuiltinStyle(t *testing.T) {
	for _, style := range []string{StyleAuto, StyleDark, StyleLight, StyleTokyoNight, "tokyonight", "dracula", StyleASCII} {
		if !IsBuiltinStyle(style) {
			t.Errorf("IsBuiltinStyle(%q) = false", style)
		}
	}
	if IsBuiltinStyle("./custom.json") {
		t.Error("file paths are not built-in styles")
	}

	names := StyleNames()
	if names[0] != StyleAuto {
		t.Errorf("StyleNames()[0] = %s, want auto", names[0])
	}
	if len(names) < 5 {
		t.Errorf("StyleNames() = %v", names)
	}
}

func TestMarkdown(t *testing.T) {
	ClearCache()
	defer ClearCache()

	out, err := Markdown("# Title\n\nsome **bold** text", DefaultOptions().WithStyle(StyleNoTTY))
	if err != nil {
		t.Fatalf("Markdown() error = %v", err)
	}
	for _, want := range []string{"Title", "bold", "text"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestMarkdown_StyleFile(t *testing.T) {
	ClearCache()
	defer ClearCache()

	path := filepath.Join(t.TempDir(), "style.json")
	if err := os.WriteFile(path, []byte(`{"document":{}}`), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Markdown("hello", DefaultOptions().WithStyle(path)); err != nil {
		t.Errorf("Markdown() with style file error = %v", err)
	}

	// Missing files fall back to the dark style
	if _, err := Markdown("hello", DefaultOptions().WithStyle(filepath.Join(t.TempDir(), "missing.json"))); err != nil {
		t.Errorf("Markdown() with missing style file error = %v", err)
	}
}

func TestMarkdownWithWidth(t *testing.T) {
	out, err := MarkdownWithWidth("plain words", 40)
	if err != nil {
		t.Fatalf("MarkdownWithWidth() error = %v", err)
	}
	if !strings.Contains(out, "plain") {
		t.Errorf("output %q missing text", out)
	}
}

func TestMessageBody(t *testing.T) {
	opts := DefaultOptions().WithStyle(StyleNoTTY)

	user := models.NewUserMessage("**not rendered**")
	if got := MessageBody(user, opts); got != "**not rendered**" {
		t.Errorf("user body = %q, want raw text", got)
	}

	assistant := models.NewAssistantMessage("**rendered**")
	got := MessageBody(assistant, opts)
	if strings.Contains(got, "**") || !strings.Contains(got, "rendered") {
		t.Errorf("assistant body = %q, want markdown rendered", got)
	}
	if strings.HasPrefix(got, "\n") || strings.HasSuffix(got, "\n") {
		t.Errorf("assistant body %q should be trimmed", got)
	}
}

func TestCacheKey(t *testing.T) {
	base := DefaultOptions()
	if cacheKey(base) == cacheKey(base.WithWidth(100)) {
		t.Error("different widths should produce different keys")
	}
	if cacheKey(base) == cacheKey(base.WithStyle(StyleLight)) {
		t.Error("different styles should produce different keys")
	}
	if cacheKey(base) != cacheKey(DefaultOptions()) {
		t.Error("same options should produce same key")
	}
}

func TestPoolGetAndPut(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	r1, err := globalPool.get(opts)
	if err != nil || r1 == nil {
		t.Fatalf("get() = %v, %v", r1, err)
	}
	globalPool.put(opts, r1)

	r2, err := globalPool.get(opts.WithWidth(60))
	if err != nil || r2 == nil {
		t.Fatalf("get() = %v, %v", r2, err)
	}
	globalPool.put(opts.WithWidth(60), r2)
	globalPool.put(opts, nil)

	if CacheSize() != 2 {
		t.Errorf("CacheSize() = %d, want 2", CacheSize())
	}
}

func TestPoolConcurrency(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions().WithStyle(StyleNoTTY)
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("concurrent *render*", opts); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Markdown() error = %v", err)
	}
}

func TestTUIThemes(t *testing.T) {
	names := TUIThemeNames()
	if len(names) != 4 {
		t.Fatalf("TUIThemeNames() = %v", names)
	}

	for _, name := range names {
		theme, ok := GetTUIThemeByName(name)
		if !ok {
			t.Errorf("GetTUIThemeByName(%q) not found", name)
			continue
		}
		if theme.Name != name {
			t.Errorf("theme name = %q, want %q", theme.Name, name)
		}
		if theme.UserBubble == "" || theme.AssistantBubble == "" {
			t.Errorf("theme %q missing bubble colors", name)
		}
		if !IsBuiltinStyle(theme.Markdown) {
			t.Errorf("theme %q markdown style %q is not built in", name, theme.Markdown)
		}
	}

	if _, ok := GetTUIThemeByName("nope"); ok {
		t.Error("unknown theme should not be found")
	}
	if TUIThemeOrDefault("nope").Name != TokyoNightTheme.Name {
		t.Error("TUIThemeOrDefault should fall back to tokyonight")
	}
}
