package tokenizer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// CountTokens provides a rough token count estimate.
// Whitespace-delimited text averages about 4/3 tokens per word; scripts
// written without spaces (CJK, Thai) are closer to one token per rune.
func CountTokens(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}

	var spaceless int
	for _, r := range text {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul, unicode.Thai) {
			spaceless++
		}
	}
	if spaceless > utf8.RuneCountInString(text)/2 {
		return max(spaceless, 1)
	}
	return max(len(words)*4/3, 1)
}

// OutputBudget estimates the completion tokens needed to echo text back with
// light edits, bounded to [floor, ceiling].
func OutputBudget(text string, floor, ceiling int) int {
	n := CountTokens(text) * 5 / 4
	if n < floor {
		n = floor
	}
	if ceiling > 0 && n > ceiling {
		n = ceiling
	}
	return n
}
