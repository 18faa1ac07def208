package costfunction

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultSpeedKmh = 20.0 // used when the speed limit is missing or unusable
	MinSpeedMs      = 1.0
	DefaultLength   = 1.0 // meter, for edges without a length
)

// TimeCostFunction. travel time in seconds from the edge length and its posted speed limit.
type TimeCostFunction struct{}

func NewTimeCostFunction() *TimeCostFunction {
	return &TimeCostFunction{}
}

func (tf *TimeCostFunction) GetWeight(e EdgeAttributes) float64 {
	length, ok := e.GetLength()
	if !ok {
		length = DefaultLength
	}
	return length / SpeedMs(tf.SpeedKmh(e))
}

// SpeedKmh resolves the speed of an edge: the first value of a speed limit list, or the scalar value.
func (tf *TimeCostFunction) SpeedKmh(e EdgeAttributes) float64 {
	raw, ok := e.GetSpeedLimit().First()
	if !ok {
		return DefaultSpeedKmh
	}
	kmh, ok := ParseSpeedLimit(raw)
	if !ok {
		return DefaultSpeedKmh
	}
	return kmh
}

func SpeedMs(kmh float64) float64 {
	return math.Max(kmh/3.6, MinSpeedMs)
}

// ParseSpeedLimit parses a plain decimal speed in km/h. underscores are allowed between digits ("1_000").
// unit suffixes ("30 mph"), hex literals, non-finite and non-positive values are rejected.
func ParseSpeedLimit(raw string) (float64, bool) {
	s, ok := stripDigitSeparators(strings.TrimSpace(raw))
	if !ok || s == "" {
		return 0, false
	}
	unsigned := strings.TrimLeft(s, "+-")
	if len(unsigned) > 1 && unsigned[0] == '0' && (unsigned[1] == 'x' || unsigned[1] == 'X') {
		return 0, false
	}

	kmh, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(kmh) || math.IsInf(kmh, 0) || kmh <= 0 {
		return 0, false
	}
	return kmh, true
}

func stripDigitSeparators(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			continue
		}
		if i == 0 || i == len(s)-1 || !isDigit(s[i-1]) || !isDigit(s[i+1]) {
			return "", false
		}
	}
	return strings.ReplaceAll(s, "_", ""), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
