package util

import "strings"

// SplitList splits a comma separated list, trimming blanks and dropping empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeTickers upper-cases tickers and removes duplicates, keeping first-seen order.
func NormalizeTickers(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// ContainsFold reports whether sub occurs in s ignoring case. An empty sub never matches.
func ContainsFold(s, sub string) bool {
	if sub == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(s), strings.ToUpper(sub))
}
