package render

import (
	"strings"

	"github.com/diogo/ssechat/internal/models"
)

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders with the default options at the given width.
func MarkdownWithWidth(content string, width int) (string, error) {
	return Markdown(content, DefaultOptions().WithWidth(width))
}

// MessageBody renders the body of one chat message. Assistant messages are
// markdown; user messages are shown as typed. Rendering failures fall back
// to the raw text.
func MessageBody(msg models.Message, opts Options) string {
	if msg.IsUser() {
		return msg.Content
	}

	out, err := Markdown(msg.Content, opts)
	if err != nil {
		return msg.Content
	}
	return strings.Trim(out, "\n")
}
