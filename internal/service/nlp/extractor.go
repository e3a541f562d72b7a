package nlp

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/service/sentiment"
)

var (
	tokenRe   = regexp.MustCompile(`\$?[\p{L}\p{N}][\p{L}\p{N}.'&-]*%?|[.!?;:,()"]`)
	moneyRe   = regexp.MustCompile(`^\$\d[\d,.]*[kKmMbBtT]?$`)
	percentRe = regexp.MustCompile(`^\d[\d.]*%$`)
	yearRe    = regexp.MustCompile(`^(19|20)\d{2}$`)
)

type token struct {
	text  string
	lower string
	start bool
	punct bool
}

// Extractor finds entities and noun phrases with gazetteer and capitalisation rules.
type Extractor struct{}

func NewExtractor() *Extractor { return &Extractor{} }

func (x *Extractor) Extract(_ context.Context, text string) (models.ExtractedEvents, error) {
	toks := tokenize(text)
	return models.ExtractedEvents{
		Entities:   entities(toks),
		KeyPhrases: keyPhrases(toks),
		Sentiment:  sentiment.Polarity(text),
	}, nil
}

func tokenize(text string) []token {
	raw := tokenRe.FindAllString(text, -1)
	out := make([]token, 0, len(raw))
	start := true
	for _, r := range raw {
		t := strings.TrimRight(r, ".")
		if t == "" || (len(r) == 1 && strings.ContainsAny(r, "!?;:,()\"")) {
			out = append(out, token{text: r, lower: r, punct: true})
			if strings.ContainsAny(r, ".!?") {
				start = true
			}
			continue
		}
		// "Inc." and "U.S." keep their dot, a trailing full stop ends the sentence.
		endsSentence := t != r && !isAbbrev(r)
		if !endsSentence {
			t = r
		}
		out = append(out, token{text: t, lower: strings.ToLower(t), start: start})
		start = false
		if endsSentence {
			out = append(out, token{text: ".", lower: ".", punct: true})
			start = true
		}
	}
	return out
}

func isAbbrev(s string) bool {
	lower := strings.ToLower(s)
	if _, ok := orgSuffixes[lower]; ok && strings.HasSuffix(lower, ".") {
		return true
	}
	return strings.Count(s, ".") > 1
}

func capitalized(t token) bool {
	if t.punct || t.text == "" {
		return false
	}
	r := []rune(strings.TrimPrefix(t.text, "$"))
	return len(r) > 0 && unicode.IsUpper(r[0])
}

func entities(toks []token) []models.Entity {
	out := []models.Entity{}
	seen := map[string]struct{}{}
	add := func(text, label string) {
		key := text + "|" + label
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, models.Entity{Text: text, Label: label})
	}

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch {
		case t.punct:
			continue
		case moneyRe.MatchString(t.text):
			add(t.text, LabelMoney)
			continue
		case percentRe.MatchString(t.text):
			add(t.text, LabelPercent)
			continue
		}

		if _, ok := months[t.lower]; ok && capitalized(t) {
			j := i + 1
			for j < len(toks) && !toks[j].punct && (isNumber(toks[j].text) || yearRe.MatchString(toks[j].text)) {
				j++
			}
			if j > i+1 || strings.HasPrefix(t.lower, "q") {
				add(join(toks[i:j]), LabelDate)
				i = j - 1
				continue
			}
		}
		if yearRe.MatchString(t.text) {
			add(t.text, LabelDate)
			continue
		}

		if !capitalized(t) {
			continue
		}
		j := i
		for j < len(toks) && capitalized(toks[j]) {
			j++
		}
		run := toks[i:j]
		i = j - 1

		// A lone sentence-initial function word ("The", "In") is not a name.
		for len(run) > 0 {
			if _, ok := stopwords[run[0].lower]; ok {
				run = run[1:]
				continue
			}
			break
		}
		if len(run) == 0 {
			continue
		}
		text := join(run)
		if len(run) == 1 && run[0].start && !isAcronym(run[0].text) {
			if _, known := gazetteer[run[0].lower]; !known {
				continue
			}
		}
		add(text, label(run, text))
	}
	return out
}

func label(run []token, text string) string {
	if l, ok := gazetteer[strings.ToLower(text)]; ok {
		return l
	}
	last := run[len(run)-1].lower
	if _, ok := orgSuffixes[last]; ok {
		return LabelOrg
	}
	if l, ok := gazetteer[run[0].lower]; ok && len(run) > 1 {
		if l == LabelOrg {
			// "Apple Vision" or "Microsoft Azure" name a product line of the org.
			return LabelProduct
		}
		return l
	}
	if len(run) == 1 && isAcronym(run[0].text) {
		return LabelOrg
	}
	if len(run) >= 2 && len(run) <= 3 && allTitle(run) {
		return LabelPerson
	}
	return LabelOrg
}

func keyPhrases(toks []token) []string {
	out := []string{}
	var cur []token
	flush := func() {
		if len(cur) > 0 {
			out = append(out, join(cur))
			cur = nil
		}
	}
	for _, t := range toks {
		if t.punct {
			flush()
			continue
		}
		if _, ok := determiners[t.lower]; ok {
			flush()
			cur = append(cur, t)
			continue
		}
		if _, ok := stopwords[t.lower]; ok || isVerbLike(t) {
			flush()
			continue
		}
		// A capitalised word after lower-case words starts a new phrase.
		if len(cur) > 0 && capitalized(t) && !capitalized(cur[len(cur)-1]) && !isDeterminer(cur[len(cur)-1]) {
			flush()
		}
		cur = append(cur, t)
	}
	flush()

	// drop phrases that are only a determiner
	kept := out[:0]
	for _, p := range out {
		if _, ok := determiners[strings.ToLower(p)]; !ok {
			kept = append(kept, p)
		}
	}
	return kept
}

func isVerbLike(t token) bool {
	if capitalized(t) || len(t.lower) < 5 {
		return false
	}
	return strings.HasSuffix(t.lower, "ed") || strings.HasSuffix(t.lower, "ing")
}

func isDeterminer(t token) bool {
	_, ok := determiners[t.lower]
	return ok
}

func isNumber(s string) bool {
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isAcronym(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

func allTitle(run []token) bool {
	for _, t := range run {
		if isAcronym(t.text) {
			return false
		}
		if _, ok := orgSuffixes[t.lower]; ok {
			return false
		}
	}
	return true
}

func join(toks []token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.text
	}
	return strings.Join(parts, " ")
}
