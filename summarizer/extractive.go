// Package summarizer produces extractive summaries locally, for when the
// summarizer service cannot be reached.
package summarizer

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var (
	sentenceBoundary = regexp.MustCompile(`[.?!]\s*[A-Z]`)
	wordPattern      = regexp.MustCompile(`\w+`)
)

// Summary mirrors the summarizer service's response body. Lengths are
// counted in characters.
type Summary struct {
	OriginalText   string `json:"original_text"`
	Summary        string `json:"summary"`
	OriginalLength int    `json:"original_length"`
	SummaryLength  int    `json:"summary_length"`
}

// Summarize runs Extractive and reports both lengths.
func Summarize(text string, k int) Summary {
	summary := Extractive(text, k)
	return Summary{
		OriginalText:   text,
		Summary:        summary,
		OriginalLength: utf8.RuneCountInString(text),
		SummaryLength:  utf8.RuneCountInString(summary),
	}
}

// SplitSentences cuts text after every terminator that is followed,
// past any whitespace, by an uppercase letter. The whitespace between
// sentences is dropped.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, m := range sentenceBoundary.FindAllStringIndex(text, -1) {
		sentences = append(sentences, text[start:m[0]+1])
		start = m[1] - 1
	}
	return append(sentences, text[start:])
}

// Extractive keeps the k sentences whose long words are most frequent
// across the text, in their original order. Text with k or fewer
// sentences comes back unchanged.
func Extractive(text string, k int) string {
	sentences := SplitSentences(text)
	if len(sentences) <= k {
		return text
	}

	freq := map[string]int{}
	tokens := make([][]string, len(sentences))
	for i, s := range sentences {
		tokens[i] = wordPattern.FindAllString(strings.ToLower(s), -1)
		for _, w := range tokens[i] {
			if len(w) > 3 {
				freq[w]++
			}
		}
	}

	type scored struct {
		index int
		score float64
	}
	ranked := make([]scored, len(sentences))
	for i, words := range tokens {
		ranked[i].index = i
		if len(words) == 0 {
			continue
		}
		sum := 0
		for _, w := range words {
			if len(w) > 3 {
				sum += freq[w]
			}
		}
		ranked[i].score = float64(sum) / float64(len(words))
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})
	top := ranked[:max(k, 0)]
	sort.Slice(top, func(a, b int) bool {
		return top[a].index < top[b].index
	})

	picked := make([]string, len(top))
	for i, s := range top {
		picked[i] = sentences[s.index]
	}
	return strings.Join(picked, " ")
}
