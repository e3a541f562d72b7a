package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricUnmarshal(t *testing.T) {
	tests := []struct {
		raw   string
		want  float64
		valid bool
	}{
		{raw: `101.5`, want: 101.5, valid: true},
		{raw: `"99.25"`, want: 99.25, valid: true},
		{raw: `" 42 "`, want: 42, valid: true},
		{raw: `null`},
		{raw: `"N/A"`},
		{raw: `""`},
		{raw: `"NaN"`},
		{raw: `true`},
		{raw: `{"v":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var m Metric
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &m))
			assert.Equal(t, tt.valid, m.Valid)
			if tt.valid {
				assert.InDelta(t, tt.want, m.Value, 1e-9)
			}
		})
	}
}

func TestMetricRowKeys(t *testing.T) {
	var row MarketRecord
	require.NoError(t, json.Unmarshal([]byte(`{"ticker":"AAPL","close":"N/A","SMA_20":180.1,"RSI_14":null}`), &row))
	assert.False(t, row.Close.Valid)
	assert.True(t, row.SMA20.Valid)
	assert.False(t, row.RSI14.Valid)

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"close":null`)
	assert.Contains(t, string(out), `"SMA_20":180.1`)
}

func TestMetricComparisons(t *testing.T) {
	assert.True(t, Num(2).GreaterThan(Num(1)))
	assert.False(t, Num(2).GreaterThan(NullMetric()))
	assert.False(t, NullMetric().GreaterThan(Num(1)))
	assert.True(t, Num(35).LessThan(40))
	assert.False(t, NullMetric().LessThan(40))
}
