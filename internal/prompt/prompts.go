package prompt

import (
	"fmt"
	"time"
)

// TranscriptionPrompt is the priming text sent with a speech recognition request.
func TranscriptionPrompt(code string) string {
	return Resolve(code).domain
}

// CorrectionPrompt is the system instruction for transcript correction.
func CorrectionPrompt(code string) string {
	l := Resolve(code)
	return mustRender(l.correction, map[string]string{"language": l.Name})
}

// SummaryPrompt is the system instruction for summarization.
func SummaryPrompt(code string) string {
	l := Resolve(code)
	return mustRender(l.summary, map[string]string{"language": l.Name})
}

// TooLargeMessage is the localized upload size error.
func TooLargeMessage(code string, maxBytes int64) string {
	return mustRender(Resolve(code).tooLarge, map[string]string{"limit": formatBytes(maxBytes)})
}

// TooLongMessage is the localized duration error.
func TooLongMessage(code string, max time.Duration) string {
	return mustRender(Resolve(code).tooLong, map[string]string{"limit": max.String()})
}

// mustRender is for the built-in templates, whose variables are fixed.
func mustRender(tmpl string, vars map[string]string) string {
	out, err := Render(tmpl, vars)
	if err != nil {
		panic(err)
	}
	return out
}

func formatBytes(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%d MB", n/mb)
	}
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
