package parser

import (
	"regexp"
	"strings"

	"labrag/internal/domain"
)

var blankRuns = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)+`)

// Flatten renders blocks back to markdown-equivalent text in reading order.
func Flatten(blocks []domain.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case domain.BlockHeading:
			level := min(max(b.Level, 1), 3)
			parts = append(parts, strings.Repeat("#", level)+" "+b.Text)
		case domain.BlockParagraph:
			parts = append(parts, b.Text)
		case domain.BlockTable:
			parts = append(parts, renderTable(b.Rows))
		case domain.BlockTableRaw:
			parts = append(parts, "TABLE:\n"+strings.Join(b.Lines, "\n"))
		case domain.BlockFigure:
			parts = append(parts, "FIGURE: "+b.Text)
		}
	}
	out := strings.Join(parts, "\n\n")
	return strings.TrimSpace(blankRuns.ReplaceAllString(out, "\n\n"))
}

func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}
	row := func(cells []string) string {
		padded := make([]string, width)
		copy(padded, cells)
		return "| " + strings.Join(padded, " | ") + " |"
	}
	divider := make([]string, width)
	for i := range divider {
		divider[i] = "---"
	}
	lines := []string{row(rows[0]), row(divider)}
	for _, r := range rows[1:] {
		lines = append(lines, row(r))
	}
	return strings.Join(lines, "\n")
}
