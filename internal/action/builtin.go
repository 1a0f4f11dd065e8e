package action

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"
)

// RegisterBuiltins adds the default actions to a registry and returns the
// first registration error.
func RegisterBuiltins(reg *Registry, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}

	if err := reg.Register("calculate", "Perform basic math operations", Calculate, "a", "b"); err != nil {
		return fmt.Errorf("register calculate: %w", err)
	}

	err := reg.Register("greet", "Greet someone by name", func(ctx context.Context, params Params) (any, error) {
		name := "there"
		if v, ok := params["name"]; ok {
			name = fmt.Sprint(v)
		}
		return fmt.Sprintf("Hello, %s! Nice to meet you.", name), nil
	})
	if err != nil {
		return fmt.Errorf("register greet: %w", err)
	}

	err = reg.Register("get_time", "Get the current time", func(ctx context.Context, params Params) (any, error) {
		return fmt.Sprintf("The current time is %s", now().Format(time.DateTime)), nil
	})
	if err != nil {
		return fmt.Errorf("register get_time: %w", err)
	}
	return nil
}

// Calculate applies operation (default "add") to the numeric params a and b.
// Dividing by zero yields +Inf.
func Calculate(_ context.Context, params Params) (any, error) {
	a, err := Float(params["a"])
	if err != nil {
		return nil, fmt.Errorf("parameter a: %w", err)
	}
	b, err := Float(params["b"])
	if err != nil {
		return nil, fmt.Errorf("parameter b: %w", err)
	}

	op := "add"
	if v, ok := params["operation"]; ok {
		op = fmt.Sprint(v)
	}

	switch op {
	case "add":
		return a + b, nil
	case "subtract":
		return a - b, nil
	case "multiply":
		return a * b, nil
	case "divide":
		if b == 0 {
			return math.Inf(1), nil
		}
		return a / b, nil
	default:
		return nil, fmt.Errorf("unknown operation: %s", op)
	}
}

// Float coerces a parameter value to float64. Strings are parsed.
func Float(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}
