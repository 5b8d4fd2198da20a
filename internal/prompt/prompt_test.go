package prompt

import (
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	out, err := Render("Hello {{name}}, {{name}} speaks {{lang}}.", map[string]string{"name": "Ada", "lang": "English"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if out != "Hello Ada, Ada speaks English." {
		t.Fatalf("Render() = %q", out)
	}
}

func TestRenderMissingVariable(t *testing.T) {
	_, err := Render("{{a}} and {{b}}", map[string]string{"a": "x"})
	if err == nil || !strings.Contains(err.Error(), "b") {
		t.Fatalf("error = %v, want missing b", err)
	}
}

func TestVariables(t *testing.T) {
	got := Variables("{{b}} {{a}} {{b}}")
	if len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("Variables() = %v", got)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		code string
		want string
		ok   bool
	}{
		{"en", "en", true},
		{"ES", "es", true},
		{"pt-BR", "pt", true},
		{" fr ", "fr", true},
		{"xx", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		l, ok := Lookup(tt.code)
		if ok != tt.ok || l.Code != tt.want {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tt.code, l.Code, ok, tt.want, tt.ok)
		}
	}
}

func TestLanguagesSortedAndComplete(t *testing.T) {
	langs := Languages()
	if len(langs) != len(languages) {
		t.Fatalf("len = %d", len(langs))
	}
	for i, l := range langs {
		if i > 0 && langs[i-1].Code >= l.Code {
			t.Fatalf("not sorted at %d: %q >= %q", i, langs[i-1].Code, l.Code)
		}
		if l.Name == "" || l.Flag == "" {
			t.Errorf("%s: missing name or flag", l.Code)
		}
		// Every built-in template must render without missing variables.
		for _, fn := range []func(string) string{TranscriptionPrompt, CorrectionPrompt, SummaryPrompt} {
			if s := fn(l.Code); s == "" || strings.Contains(s, "{{") {
				t.Errorf("%s: bad prompt %q", l.Code, s)
			}
		}
		if s := TooLargeMessage(l.Code, 25<<20); !strings.Contains(s, "25 MB") {
			t.Errorf("%s: too-large message %q", l.Code, s)
		}
		if s := TooLongMessage(l.Code, 300*time.Second); !strings.Contains(s, "5m0s") {
			t.Errorf("%s: too-long message %q", l.Code, s)
		}
	}
}

func TestPromptsFallBackToEnglish(t *testing.T) {
	if CorrectionPrompt("klingon") != CorrectionPrompt("en") {
		t.Fatal("unknown language should use the English correction prompt")
	}
	if !strings.Contains(CorrectionPrompt("en"), "English") {
		t.Fatalf("correction prompt does not name the language: %q", CorrectionPrompt("en"))
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		25 << 20:   "25 MB",
		1536 << 10: "1.5 MB",
		512:        "512 bytes",
	}
	for n, want := range tests {
		if got := formatBytes(n); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", n, got, want)
		}
	}
}
