package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollingMean(t *testing.T) {
	got := RollingMean([]float64{1, 2, 3, 4, 5}, 3)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2, got[2], 1e-9)
	assert.InDelta(t, 3, got[3], 1e-9)
	assert.InDelta(t, 4, got[4], 1e-9)
}

func TestRSI(t *testing.T) {
	rising := make([]float64, 20)
	for i := range rising {
		rising[i] = float64(100 + i)
	}
	got := RSI(rising, 14)
	assert.True(t, math.IsNaN(got[12]))
	assert.Equal(t, 100.0, got[13])
	assert.Equal(t, 100.0, got[14])

	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 50
	}
	assert.True(t, math.IsNaN(RSI(flat, 14)[19]))

	// alternating +2 / -1 moves: avg gain 1, avg loss 0.5 over an even window
	alt := []float64{10}
	for i := 1; i <= 14; i++ {
		if i%2 == 1 {
			alt = append(alt, alt[i-1]+2)
		} else {
			alt = append(alt, alt[i-1]-1)
		}
	}
	rsi := RSI(alt, 14)[14]
	assert.InDelta(t, 100-100/(1+2.0), rsi, 1e-9)

	// the first full window spans indices 0..13: seven +2 moves and six -1 moves
	first := RSI(alt, 14)[13]
	assert.InDelta(t, 100-100/(1+14.0/6.0), first, 1e-9)
}

func TestRSISignal(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{math.NaN(), "N/A"},
		{25, "Buy"},
		{30, "Hold"},
		{70, "Hold"},
		{75, "Sell"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RSISignal(tt.in))
	}
}
