// Package chunker splits long text into pieces that fit a model's token budget.
package chunker

import (
	"strings"

	"github.com/nikhilbhutani/podcastsummarizer/pkg/tokenizer"
)

// separators are tried coarsest first. Each one stays attached to the piece
// it ends, so concatenating the pieces restores the input.
var separators = []string{"\n\n", "\n", ". ", "。", "? ", "! ", " "}

// Split breaks text into trimmed chunks of at most maxTokens tokens, as
// counted by tokenizer.CountTokens, cutting at the coarsest boundary that
// fits. Text within budget comes back as a single chunk; empty text as none.
func Split(text string, maxTokens int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxTokens <= 0 || tokenizer.CountTokens(text) <= maxTokens {
		return []string{text}
	}

	var out []string
	for _, piece := range split(text, separators, maxTokens) {
		if p := strings.TrimSpace(piece); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func split(text string, seps []string, maxTokens int) []string {
	if tokenizer.CountTokens(text) <= maxTokens {
		return []string{text}
	}
	if len(seps) == 0 {
		return splitRunes(text, maxTokens)
	}

	parts := strings.SplitAfter(text, seps[0])
	if len(parts) == 1 {
		return split(text, seps[1:], maxTokens)
	}

	var result []string
	var current strings.Builder
	for _, part := range parts {
		if current.Len() > 0 && tokenizer.CountTokens(current.String()+part) > maxTokens {
			result = append(result, split(current.String(), seps[1:], maxTokens)...)
			current.Reset()
		}
		current.WriteString(part)
	}
	if current.Len() > 0 {
		result = append(result, split(current.String(), seps[1:], maxTokens)...)
	}
	return result
}

// splitRunes is the last resort for unbroken text; one rune never counts
// for more than one token.
func splitRunes(text string, maxTokens int) []string {
	runes := []rune(text)
	var result []string
	for i := 0; i < len(runes); i += maxTokens {
		end := min(i+maxTokens, len(runes))
		result = append(result, string(runes[i:end]))
	}
	return result
}
