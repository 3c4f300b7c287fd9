package graphql

import (
	"encoding/json"
	"fmt"
	"math"
)

// Argument readers. Literal ints arrive as int64 from the parser, variables
// as int64 or float64 depending on how the body was decoded.

func argString(args map[string]interface{}, name string) string {
	s, _ := args[name].(string)
	return s
}

func argOptString(args map[string]interface{}, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}

func argOptInt(args map[string]interface{}, name string) (*int, error) {
	raw, ok := args[name]
	if !ok || raw == nil {
		return nil, nil
	}
	n, err := toInt(raw)
	if err != nil {
		return nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return &n, nil
}

func argInt(args map[string]interface{}, name string) (int, error) {
	n, err := argOptInt(args, name)
	if err != nil || n == nil {
		return 0, err
	}
	return *n, nil
}

func argObject(args map[string]interface{}, name string) map[string]interface{} {
	m, _ := args[name].(map[string]interface{})
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return toInt(int64(n))
	case int32:
		return int(n), nil
	case int64:
		if n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("%d overflows Int", n)
		}
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt32 || n < math.MinInt32 {
			return 0, fmt.Errorf("%v is not an Int", n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, err
		}
		return toInt(i)
	default:
		return 0, fmt.Errorf("unexpected %T for Int", v)
	}
}
