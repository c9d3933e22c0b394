package app

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/evanschultz/dockyard/internal/domain"
)

// DescribeMarkdown renders the current layout as a markdown summary.
func (m *Manager) DescribeMarkdown() string {
	return DescribeLayout(m.columns.Snapshot(), m.cfg.Slot)
}

// DescribeLayout renders l as markdown with one table per column.
func DescribeLayout(l domain.Layout, slot string) string {
	var b strings.Builder
	b.WriteString("# Panel layout\n\n")
	state := "customized"
	if l.Default {
		state = "default"
	}
	fmt.Fprintf(&b, "- slot: `%s`\n- columns: %d of %d\n- panels: %d\n- state: %s\n",
		slot, len(l.Columns), domain.MaxColumns, l.PanelCount(), state)

	for _, col := range l.Columns {
		fmt.Fprintf(&b, "\n## Column %d\n\n", col.Index+1)
		if len(col.Panels) == 0 {
			b.WriteString("_empty_\n")
			continue
		}
		b.WriteString("| # | Panel | ID | Size | Min |\n|---|---|---|---|---|\n")
		for _, p := range col.Panels {
			title := p.Title
			if p.Fixed {
				title += " (fixed)"
			}
			fmt.Fprintf(&b, "| %d | %s | `%s` | %s | %s |\n",
				p.Position+1, escapeCell(title), p.ID, formatSize(p.Size), formatSize(p.MinSize))
		}
	}
	return b.String()
}

func formatSize(v float64) string {
	return strconv.FormatFloat(math.Round(v*10)/10, 'f', -1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
