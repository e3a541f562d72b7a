package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPolarity(t *testing.T) {
	tests := []struct {
		name string
		text string
		sign int
	}{
		{"empty", "", 0},
		{"no lexicon words", "Apple held an event in Cupertino.", 0},
		{"positive", "Strong growth and record profits.", 1},
		{"negative", "Shares plunge after earnings miss.", -1},
		{"negated positive", "This is not good.", -1},
		{"contraction", "Results weren't bad at all", 1},
		{"mixed leans positive", "Great quarter despite some risk", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Polarity(tt.text)
			assert.GreaterOrEqual(t, got, -1.0)
			assert.LessOrEqual(t, got, 1.0)
			switch tt.sign {
			case 0:
				assert.Zero(t, got)
			case 1:
				assert.Greater(t, got, 0.0)
			default:
				assert.Less(t, got, 0.0)
			}
		})
	}
}

func TestPolarityIntensifier(t *testing.T) {
	assert.Greater(t, Polarity("very good"), Polarity("good"))
	assert.Less(t, Polarity("very bad"), Polarity("bad"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"it", "is", "not", "up"}, Tokenize("It isn't UP!"))
	assert.Equal(t, []string{"aapl", "10", "k"}, Tokenize("AAPL 10-K"))
}
