// Package preview condenses a chunk into the sentences most relevant to a query.
package preview

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	DefaultMaxChars = 280
	ellipsis        = "…"
	// queryWeight is added per query term a sentence contains, on top of
	// the normalized in-chunk frequency score.
	queryWeight = 1.0
)

// Previewer ranks sentences by word frequency (stopwords filtered) and by
// overlap with the query.
type Previewer struct {
	maxChars     int
	sentencePat  *regexp.Regexp
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// New creates a previewer whose output never exceeds maxChars runes.
func New(maxChars int) *Previewer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Previewer{
		maxChars:     maxChars,
		sentencePat:  regexp.MustCompile(`(?:[^.!?]|[.!?]\S)+(?:[.!?]+|$)`),
		tokenPattern: regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}\p{N}]+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Preview returns text itself when it fits, otherwise the best-scoring
// sentences in their original order.
func (p *Previewer) Preview(text, query string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= p.maxChars {
		return text
	}
	sentences := p.sentences(text)
	if len(sentences) == 0 {
		return truncate(text, p.maxChars)
	}

	order := p.rank(sentences, query)
	var (
		selected []int
		used     int
	)
	for _, idx := range order {
		n := utf8.RuneCountInString(sentences[idx])
		if len(selected) > 0 {
			n++ // joining space
		}
		if used+n > p.maxChars {
			continue
		}
		selected = append(selected, idx)
		used += n
	}
	if len(selected) == 0 {
		return truncate(sentences[order[0]], p.maxChars)
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

// BestSentence returns the single sentence of text most relevant to query.
func (p *Previewer) BestSentence(text, query string) string {
	sentences := p.sentences(strings.Join(strings.Fields(text), " "))
	if len(sentences) == 0 {
		return ""
	}
	return sentences[p.rank(sentences, query)[0]]
}

func (p *Previewer) sentences(text string) []string {
	raw := p.sentencePat.FindAllString(text, -1)
	out := raw[:0]
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rank returns sentence indexes best first; ties keep document order.
func (p *Previewer) rank(sentences []string, query string) []int {
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range p.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}
	queryTerms := map[string]struct{}{}
	for _, tok := range p.tokens(query) {
		queryTerms[tok] = struct{}{}
	}

	scores := make([]float64, len(sentences))
	for i, sent := range sentences {
		toks := p.tokens(sent)
		score := 0.0
		seen := map[string]struct{}{}
		for _, tok := range toks {
			score += freq[tok]
			if _, ok := queryTerms[tok]; ok {
				if _, dup := seen[tok]; !dup {
					score += queryWeight
					seen[tok] = struct{}{}
				}
			}
		}
		// Normalize by sentence length to avoid bias
		if l := float64(len(toks)); l > 0 {
			score /= math.Sqrt(l)
		}
		scores[i] = score
	}

	order := make([]int, len(sentences))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] > scores[order[b]] })
	return order
}

func (p *Previewer) tokens(text string) []string {
	raw := p.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := p.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func truncate(s string, maxChars int) string {
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxChars-1])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + ellipsis
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"what", "which", "who", "how", "did", "do", "does", "we", "our",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
