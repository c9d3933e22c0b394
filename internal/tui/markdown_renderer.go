package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer renders the layout description and caches the last result per width.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
	source   string
	output   string
}

// render converts markdown into ANSI-styled text wrapped at width. It falls back to the raw
// markdown when glamour cannot build a renderer.
func (r *markdownRenderer) render(markdown string, width int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, 24)
	if r.renderer != nil && r.width == wrapWidth && r.source == markdown {
		return r.output
	}
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
	}
	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	r.source = markdown
	r.output = strings.TrimRight(rendered, "\n")
	return r.output
}
