package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

func (k Key) convert(raw interface{}) (interface{}, error) {
	switch k.Kind {
	case KindInt:
		n, ok := toInt(raw)
		if !ok || n < k.Min || n > k.Max {
			return nil, k.invalid(raw)
		}
		return n, nil
	case KindBool:
		b, ok := toBool(raw)
		if !ok {
			return nil, k.invalid(raw)
		}
		return b, nil
	case KindEnum:
		str, ok := k.toString(raw)
		if !ok {
			return nil, k.invalid(raw)
		}
		str = strings.TrimSpace(str)
		for _, c := range k.Choices {
			if strings.EqualFold(c, str) {
				return c, nil
			}
		}
		return nil, k.invalid(raw)
	case KindString:
		str, ok := k.toString(raw)
		if !ok {
			return nil, k.invalid(raw)
		}
		if k.MaxLength > 0 && utf8.RuneCountInString(str) > k.MaxLength {
			return nil, k.invalid(raw)
		}
		return str, nil
	default:
		return nil, fmt.Errorf("key %q has unsupported kind %d", k.Name, k.Kind)
	}
}

func (k Key) invalid(raw interface{}) error {
	return &ValidationError{Key: k.Name, Value: raw, Constraint: k.Constraint()}
}

func toInt(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return 0, false
		}
		return int(v), true
	case uint:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case uint64:
		if v > math.MaxInt32 {
			return 0, false
		}
		return int(v), true
	case float32:
		return floatToInt(float64(v))
	case float64:
		return floatToInt(v)
	case json.Number:
		return toInt(string(v))
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 32)
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

func toBool(raw interface{}) (bool, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "y", "yes", "true", "on", "1":
			return true, true
		case "n", "no", "false", "off", "0":
			return false, true
		}
		return false, false
	default:
		n, ok := toInt(raw)
		if !ok || (n != 0 && n != 1) {
			return false, false
		}
		return n == 1, true
	}
}

// toString accepts strings, nil as the empty string, numbers for values
// that decoders typed too eagerly (a host named 1234), and lists when the
// key has a separator.
func (k Key) toString(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case []string:
		if k.ListSeparator == "" {
			return "", false
		}
		return strings.Join(v, k.ListSeparator), true
	case []interface{}:
		if k.ListSeparator == "" {
			return "", false
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, k.ListSeparator), true
	case bool:
		return "", false
	default:
		if n, ok := toInt(raw); ok {
			return strconv.Itoa(n), true
		}
		return "", false
	}
}
