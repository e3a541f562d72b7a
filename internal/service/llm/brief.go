package llm

import (
	"context"
	"strings"

	domsvc "MarketPulse/internal/domain/service"
)

const briefPrompt = "You are a financial news and filings summarizer. Summarize the following text in 2-3 crisp sentences for an investor."

// Brief summarizes text with s, falling back to its first two sentences when s is
// nil, fails or returns nothing.
func Brief(ctx context.Context, s domsvc.Summarizer, text string) string {
	if s != nil && strings.TrimSpace(text) != "" {
		if out, err := s.Summarize(ctx, briefPrompt, text); err == nil && strings.TrimSpace(out) != "" {
			return strings.TrimSpace(out)
		}
	}
	return FirstSentences(text, 2)
}

// FirstSentences returns the first n sentences of text. A sentence ends at '.',
// '!' or '?' followed by one or more spaces.
func FirstSentences(text string, n int) string {
	var out []string
	start := 0
	for i := 0; i < len(text) && len(out) < n; i++ {
		switch text[i] {
		case '.', '!', '?':
		default:
			continue
		}
		j := i + 1
		for j < len(text) && text[j] == ' ' {
			j++
		}
		if j == i+1 || j == len(text) {
			continue
		}
		out = append(out, text[start:i+1])
		start = j
		i = j - 1
	}
	if len(out) < n && start < len(text) {
		out = append(out, text[start:])
	}
	return strings.Join(out, " ")
}
