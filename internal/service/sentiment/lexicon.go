package sentiment

import (
	"math"
	"strings"
	"unicode"
)

// lexicon maps lower-case words to a polarity in [-1, 1].
var lexicon = map[string]float64{
	// positive
	"good": 0.7, "great": 0.8, "excellent": 1.0, "strong": 0.43, "stronger": 0.5, "strongest": 0.6,
	"positive": 0.23, "gain": 0.4, "gains": 0.4, "gained": 0.4, "growth": 0.3, "grow": 0.3, "grows": 0.3,
	"profit": 0.4, "profits": 0.4, "profitable": 0.5, "beat": 0.4, "beats": 0.4, "record": 0.2,
	"rally": 0.5, "rallies": 0.5, "surge": 0.5, "surges": 0.5, "soar": 0.6, "soars": 0.6, "jump": 0.3,
	"jumps": 0.3, "rise": 0.3, "rises": 0.3, "rising": 0.3, "up": 0.1, "upgrade": 0.5, "upgraded": 0.5,
	"bullish": 0.6, "bull": 0.4, "buy": 0.3, "outperform": 0.5, "robust": 0.5, "innovation": 0.4,
	"innovative": 0.5, "success": 0.6, "successful": 0.7, "win": 0.6, "wins": 0.6, "best": 1.0,
	"better": 0.5, "improve": 0.4, "improved": 0.4, "optimistic": 0.5, "boost": 0.4, "boosts": 0.4,
	"momentum": 0.2, "moon": 0.4, "happy": 0.8, "love": 0.5, "exciting": 0.3, "impressive": 0.8,
	"solid": 0.3, "stable": 0.2, "upward": 0.3, "higher": 0.25, "expand": 0.3, "expansion": 0.3,
	// negative
	"bad": -0.7, "poor": -0.4, "weak": -0.38, "weaker": -0.4, "negative": -0.3, "loss": -0.4,
	"losses": -0.4, "lose": -0.4, "lost": -0.4, "decline": -0.4, "declines": -0.4, "declined": -0.4,
	"drop": -0.3, "drops": -0.3, "dropped": -0.3, "fall": -0.3, "falls": -0.3, "fell": -0.3,
	"plunge": -0.6, "plunges": -0.6, "crash": -0.7, "crashes": -0.7, "slump": -0.5, "miss": -0.4,
	"misses": -0.4, "missed": -0.4, "down": -0.16, "downgrade": -0.5, "downgraded": -0.5,
	"bearish": -0.6, "bear": -0.4, "sell": -0.3, "underperform": -0.5, "risk": -0.2, "risks": -0.2,
	"risky": -0.4, "lawsuit": -0.4, "fraud": -0.8, "fear": -0.5, "fears": -0.5, "worry": -0.4,
	"worries": -0.4, "concern": -0.3, "concerns": -0.3, "recession": -0.6, "inflation": -0.2,
	"layoffs": -0.5, "cut": -0.3, "cuts": -0.3, "worst": -1.0, "worse": -0.4, "terrible": -1.0,
	"volatile": -0.2, "volatility": -0.1, "uncertain": -0.3, "uncertainty": -0.3, "lower": -0.2,
	"debt": -0.2, "default": -0.5, "bankrupt": -0.9, "bankruptcy": -0.9, "dump": -0.4,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nor": {}, "without": {},
}

var intensifiers = map[string]float64{
	"very": 1.3, "extremely": 1.5, "really": 1.2, "highly": 1.3, "incredibly": 1.4, "super": 1.3,
	"slightly": 0.6, "somewhat": 0.7,
}

// Polarity scores text in [-1, 1] as the mean of matched lexicon words. A
// preceding negator flips and halves the word, an intensifier scales it.
// Text with no lexicon words scores 0.
func Polarity(text string) float64 {
	words := Tokenize(text)
	var sum float64
	var n int
	for i, w := range words {
		score, ok := lexicon[w]
		if !ok {
			continue
		}
		if i > 0 {
			prev := words[i-1]
			if f, ok := intensifiers[prev]; ok {
				score *= f
				if i > 1 && isNegator(words[i-2]) {
					score *= -0.5
				}
			} else if isNegator(prev) {
				score *= -0.5
			}
		}
		sum += score
		n++
	}
	if n == 0 {
		return 0
	}
	return clamp(sum / float64(n))
}

// Tokenize lower-cases text and splits it into words. Contractions ending in
// n't become "not".
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		if strings.HasSuffix(f, "n't") {
			if stem := strings.TrimSuffix(f, "n't"); stem != "" {
				out = append(out, stem)
			}
			out = append(out, "not")
			continue
		}
		out = append(out, f)
	}
	return out
}

func isNegator(w string) bool {
	_, ok := negators[w]
	return ok
}

func clamp(v float64) float64 {
	v = math.Max(-1, math.Min(1, v))
	return math.Round(v*1e6) / 1e6
}
