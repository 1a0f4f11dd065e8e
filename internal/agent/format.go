package agent

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/nidhogg/nuka-agent/internal/action"
)

// formatNumber renders floats the way a conversational reply expects them:
// whole numbers keep one decimal place ("42.0"), very small or very large
// magnitudes use exponent form ("1e-05", "1e+20").
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == math.Trunc(f) && math.Abs(f) < 1e16:
		return strconv.FormatFloat(f, 'f', 1, 64)
	case f == math.Trunc(f), math.Abs(f) < 1e-4:
		return strconv.FormatFloat(f, 'g', -1, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// formatParams renders params as "{a: 1.0, b: 2.0}" with keys sorted.
func formatParams(params action.Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + formatValue(params[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
