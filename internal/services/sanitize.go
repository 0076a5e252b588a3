package services

import "strings"

// Reasoning side-channel markers some models emit before the actual answer.
const (
	thinkStart = "<think>"
	thinkEnd   = "</think>"
)

// Conversational openers a chat model may prepend despite being told to
// return the explanation text only. Matched case-insensitively at the start
// of the response.
var knownPreambles = []string{
	"here is the explanation:",
	"here's the explanation:",
	"here is the rewritten explanation:",
	"here's the rewritten explanation:",
	"here is your explanation:",
	"sure, here you go:",
	"sure!",
	"sure,",
	"certainly!",
	"certainly,",
	"of course!",
	"of course,",
}

// SanitizeCompletion cleans a raw model response: it removes a paired
// reasoning block, strips known conversational preambles, and trims
// whitespace. It may return an empty string; callers decide the fallback.
func SanitizeCompletion(raw string) string {
	s := stripReasoning(raw)

	s = strings.TrimSpace(s)
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(s)
		for _, p := range knownPreambles {
			if strings.HasPrefix(lower, p) {
				s = strings.TrimSpace(s[len(p):])
				changed = true
				break
			}
		}
	}
	return strings.TrimSpace(s)
}

// stripReasoning removes everything between the first start marker and its
// closing marker, inclusive. A closing marker without an opener drops the
// prefix; an opener without a closer leaves the text unchanged.
func stripReasoning(s string) string {
	start := strings.Index(s, thinkStart)
	end := strings.Index(s, thinkEnd)
	switch {
	case start >= 0 && end > start:
		return s[:start] + s[end+len(thinkEnd):]
	case start < 0 && end >= 0:
		// Closing marker only: the opener was swallowed upstream.
		return s[end+len(thinkEnd):]
	default:
		return s
	}
}
