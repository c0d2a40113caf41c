// Package parser recovers document structure from layout-extracted text.
//
// The parser is heuristic: lines are classified as table rows, figure
// captions, headings or paragraph text using layout cues only. It never
// fails; text with no recognisable structure becomes one paragraph.
package parser

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"labrag/internal/domain"
)

const (
	maxHeadingLen       = 70
	maxNumberedLen      = 100
	maxShortCellLen     = 25
	minTableLines       = 2
	headingCaseRatio    = 0.7
	terminalPunctuation = ".!?;,"
)

var (
	figureRe   = regexp.MustCompile(`(?i)^(figure|fig\.|chart|graph)\s*\d+`)
	captionRe  = regexp.MustCompile(`^FIGURE:\s+(.+)$`)
	markdownRe = regexp.MustCompile(`^(#{1,6})\s+(.+)$`)
	numberedRe = regexp.MustCompile(`^(\d+(?:\.\d+)*)\.?\s+\p{L}`)
	labelledRe = regexp.MustCompile(`(?i)^(section|chapter|figure|table)\s+\d+`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
	dividerRe  = regexp.MustCompile(`^:?-{2,}:?$`)
	numberPfx  = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+`)
)

var headingKeywords = map[string]bool{
	"introduction": true, "summary": true, "executive summary": true, "abstract": true,
	"background": true, "objectives": true, "overview": true, "methods": true,
	"methodology": true, "materials and methods": true, "results": true,
	"discussion": true, "conclusion": true, "conclusions": true,
	"recommendations": true, "references": true, "appendix": true,
	"acknowledgements": true, "environment": true, "performance": true,
	"interpretation": true,
}

var topLevelKeywords = map[string]bool{
	"introduction": true, "summary": true, "executive summary": true, "abstract": true,
	"methods": true, "methodology": true, "materials and methods": true,
	"results": true, "discussion": true, "conclusion": true, "conclusions": true,
}

// minor words do not count against title case.
var minorWords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "of": true, "in": true,
	"on": true, "for": true, "to": true, "at": true, "by": true, "with": true,
	"or": true, "vs": true, "vs.": true,
}

type state struct {
	blocks []domain.Block
	para   []string
}

func (s *state) flush() {
	if len(s.para) == 0 {
		return
	}
	s.blocks = append(s.blocks, domain.Block{Kind: domain.BlockParagraph, Text: mergeLines(s.para)})
	s.para = nil
}

func (s *state) add(b domain.Block) {
	s.flush()
	s.blocks = append(s.blocks, b)
}

// Parse turns raw extracted text into an ordered list of blocks.
func Parse(text string) []domain.Block {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	s := &state{}
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			s.flush()
			continue
		}
		if looksTabular(lines[i]) {
			j := i
			for j < len(lines) && strings.TrimSpace(lines[j]) != "" && looksTabular(lines[j]) {
				j++
			}
			if j-i >= minTableLines {
				run := make([]string, 0, j-i)
				for _, l := range lines[i:j] {
					run = append(run, strings.TrimSpace(l))
				}
				s.add(parseTable(lines[i:j], run))
				i = j - 1
				continue
			}
		}
		if m := markdownRe.FindStringSubmatch(line); m != nil {
			s.add(domain.Block{Kind: domain.BlockHeading, Level: min(len(m[1]), 3), Text: strings.TrimSpace(m[2])})
			continue
		}
		if m := captionRe.FindStringSubmatch(line); m != nil {
			s.add(domain.Block{Kind: domain.BlockFigure, Text: m[1]})
			continue
		}
		if figureRe.MatchString(line) {
			s.add(domain.Block{Kind: domain.BlockFigure, Text: line})
			continue
		}
		if level, ok := headingLevel(line); ok {
			s.add(domain.Block{Kind: domain.BlockHeading, Level: level, Text: strings.TrimSuffix(line, ":")})
			continue
		}
		s.para = append(s.para, line)
	}
	s.flush()
	if len(s.blocks) == 0 {
		return []domain.Block{{Kind: domain.BlockParagraph, Text: text}}
	}
	return s.blocks
}

// looksTabular reports whether a raw (untrimmed) line reads as a table row:
// it has a pipe, or splits on runs of spaces into columns that are mostly short.
func looksTabular(line string) bool {
	if strings.Contains(line, "|") {
		return true
	}
	cols := multiSpace.Split(strings.TrimSpace(line), -1)
	if len(cols) < 2 {
		return false
	}
	short := 0
	for _, c := range cols {
		if utf8.RuneCountInString(c) <= maxShortCellLen {
			short++
		}
	}
	return short*2 >= len(cols)
}

func parseTable(raw, trimmed []string) domain.Block {
	piped := false
	for _, l := range trimmed {
		if strings.Contains(l, "|") {
			piped = true
			break
		}
	}
	var rows [][]string
	multiColumn := false
	for i, l := range trimmed {
		var cells []string
		if piped {
			cells = splitPiped(l)
			if isDivider(cells) {
				continue
			}
		} else {
			cells = multiSpace.Split(strings.TrimSpace(raw[i]), -1)
		}
		if len(cells) == 0 {
			continue
		}
		if len(cells) > 1 {
			multiColumn = true
		}
		rows = append(rows, cells)
	}
	if !multiColumn {
		return domain.Block{Kind: domain.BlockTableRaw, Lines: trimmed}
	}
	return domain.Block{Kind: domain.BlockTable, Rows: rows}
}

func splitPiped(line string) []string {
	line = strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(line), "|"), "|")
	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	if len(cells) == 1 && cells[0] == "" {
		return nil
	}
	return cells
}

func isDivider(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !dividerRe.MatchString(c) {
			return false
		}
	}
	return true
}

// headingLevel classifies a trimmed line, returning its heading level.
func headingLevel(line string) (int, bool) {
	n := utf8.RuneCountInString(line)
	key := headingKey(line)
	numbered := numberedRe.FindStringSubmatch(line)

	if headingKeywords[key] {
		if numbered != nil {
			return numberingLevel(numbered[1]), true
		}
		if topLevelKeywords[key] {
			return 1, true
		}
		return 2, true
	}
	if terminal(line) {
		return 0, false
	}
	if labelledRe.MatchString(line) && n <= maxNumberedLen {
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "figure") || strings.HasPrefix(lower, "table") {
			return 3, true
		}
		return 2, true
	}
	if numbered != nil && n <= maxNumberedLen {
		return numberingLevel(numbered[1]), true
	}
	if n <= maxHeadingLen && hasLetter(line) && !danglingMinor(line) {
		if strings.HasSuffix(line, ":") || upperRatio(line) >= headingCaseRatio || titleRatio(line) >= headingCaseRatio {
			return 2, true
		}
	}
	return 0, false
}

// headingKey lowercases a heading and strips numbering and a trailing colon.
func headingKey(line string) string {
	key := strings.ToLower(strings.TrimSpace(line))
	key = numberPfx.ReplaceAllString(key, "")
	return strings.TrimSpace(strings.TrimSuffix(key, ":"))
}

func numberingLevel(number string) int {
	switch dots := strings.Count(number, "."); {
	case dots == 0:
		return 1
	case dots == 1:
		return 2
	default:
		return 3
	}
}

func terminal(line string) bool {
	r, _ := utf8.DecodeLastRuneInString(line)
	return strings.ContainsRune(terminalPunctuation, r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func upperRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// danglingMinor reports a line ending in a connecting word, which marks a
// soft-wrapped sentence rather than a heading.
func danglingMinor(s string) bool {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return false
	}
	return minorWords[strings.ToLower(fields[len(fields)-1])]
}

func titleRatio(s string) float64 {
	words, titled := 0, 0
	for _, w := range strings.Fields(s) {
		if minorWords[strings.ToLower(w)] {
			continue
		}
		r, _ := utf8.DecodeRuneInString(w)
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		words++
		if unicode.IsUpper(r) || unicode.IsDigit(r) {
			titled++
		}
	}
	if words == 0 {
		return 0
	}
	return float64(titled) / float64(words)
}

// mergeLines rejoins soft-wrapped lines. A newline survives after terminal
// punctuation, a closing quote or bracket, or a trailing hyphen.
func mergeLines(lines []string) string {
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			if hardBreak(lines[i-1]) {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(line)
	}
	return b.String()
}

func hardBreak(line string) bool {
	r, _ := utf8.DecodeLastRuneInString(line)
	return strings.ContainsRune(".!?:;\"')]”’-", r)
}
