package chunker

import (
	"strings"
	"testing"

	"github.com/nikhilbhutani/podcastsummarizer/pkg/tokenizer"
)

func TestSplitShortTextIsOneChunk(t *testing.T) {
	got := Split("  a short transcript.  ", 100)
	if len(got) != 1 || got[0] != "a short transcript." {
		t.Fatalf("Split() = %q", got)
	}
	if got := Split("   ", 100); got != nil {
		t.Fatalf("Split(blank) = %q, want nil", got)
	}
}

func TestSplitRespectsBudgetAtSentenceBoundaries(t *testing.T) {
	sentence := "The guest talked about distributed systems and latency budgets. "
	text := strings.Repeat(sentence, 40)

	chunks := Split(text, 50)
	if len(chunks) < 2 {
		t.Fatalf("got %d chunks, want several", len(chunks))
	}
	for i, c := range chunks {
		if n := tokenizer.CountTokens(c); n > 50 {
			t.Fatalf("chunk %d has %d tokens", i, n)
		}
		if !strings.HasSuffix(c, ".") {
			t.Fatalf("chunk %d does not end at a sentence: %q", i, c)
		}
	}
	if got := strings.Join(chunks, " "); got != strings.TrimSpace(text) {
		t.Fatal("chunks do not reassemble the input")
	}
}

func TestSplitPrefersParagraphs(t *testing.T) {
	para := strings.Repeat("word ", 20)
	text := para + "\n\n" + para + "\n\n" + para

	chunks := Split(text, 30)
	if len(chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks))
	}
}

func TestSplitUnbrokenCJK(t *testing.T) {
	text := strings.Repeat("音声認識", 50)

	chunks := Split(text, 60)
	var total int
	for i, c := range chunks {
		if n := tokenizer.CountTokens(c); n > 60 {
			t.Fatalf("chunk %d has %d tokens", i, n)
		}
		total += len([]rune(c))
	}
	if total != 200 {
		t.Fatalf("runes across chunks = %d, want 200", total)
	}
}

func TestSplitNoBudget(t *testing.T) {
	text := strings.Repeat("many words here ", 500)
	if got := Split(text, 0); len(got) != 1 {
		t.Fatalf("Split(text, 0) returned %d chunks", len(got))
	}
}
