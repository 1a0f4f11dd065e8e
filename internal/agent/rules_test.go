package agent

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nidhogg/nuka-agent/internal/action"
)

func TestExtractNumbers(t *testing.T) {
	tests := []struct {
		in   string
		want []float64
	}{
		{"Calculate 15 plus 27", []float64{15, 27}},
		{"math -3 +4.5 .5 6.", []float64{-3, 4.5, 0.5, 6}},
		{"1.2.3 and 4-5 and 7?", nil},
		{"no numbers here", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, extractNumbers(tt.in))
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{42, "42.0"},
		{-7, "-7.0"},
		{2.5, "2.5"},
		{0.1, "0.1"},
		{math.Inf(1), "inf"},
		{math.Inf(-1), "-inf"},
		{1e20, "1e+20"},
		{1e-05, "1e-05"},
		{-0.00002, "-2e-05"},
		{0.0001, "0.0001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatNumber(tt.in))
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "<nil>", formatValue(nil))
	assert.Equal(t, "42.0", formatValue(42.0))
	assert.Equal(t, "hi", formatValue("hi"))
	assert.Equal(t, "7", formatValue(7))
}

func TestFormatParams(t *testing.T) {
	got := formatParams(action.Params{"operation": "add", "b": 2.0, "a": 1})
	assert.Equal(t, "{a: 1, b: 2.0, operation: add}", got)
	assert.Equal(t, "{}", formatParams(nil))
}

func TestRuleMatches(t *testing.T) {
	rules := defaultRules()
	assert.True(t, rules[0].matches("do the math"))
	assert.False(t, rules[0].matches("hello"))
	assert.True(t, rules[len(rules)-1].matches("anything at all"))
}
