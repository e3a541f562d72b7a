package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Metric is an optional numeric value. Upstream rows mix numbers, numeric strings,
// empty strings and nulls; anything that is not a finite number decodes as invalid.
type Metric struct {
	Value float64
	Valid bool
}

// Num returns a valid Metric.
func Num(v float64) Metric { return Metric{Value: v, Valid: true} }

// NullMetric returns an invalid Metric.
func NullMetric() Metric { return Metric{} }

// ParseMetric converts free-form text into a Metric.
func ParseMetric(s string) Metric {
	s = strings.TrimSpace(s)
	if s == "" {
		return Metric{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || isNonFinite(v) {
		return Metric{}
	}
	return Num(v)
}

// GreaterThan reports m > o; false when either side is invalid.
func (m Metric) GreaterThan(o Metric) bool {
	return m.Valid && o.Valid && m.Value > o.Value
}

// LessThan reports m < v; false when m is invalid.
func (m Metric) LessThan(v float64) bool {
	return m.Valid && m.Value < v
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*m = Metric{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*m = ParseMetric(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		// booleans, objects and arrays are treated as missing values
		return nil
	}
	*m = Num(v)
	return nil
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
