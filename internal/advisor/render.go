package advisor

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Render formats advisor markdown for the terminal. Text is returned as is
// if the renderer cannot be built.
func Render(markdown string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
