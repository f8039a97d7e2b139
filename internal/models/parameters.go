package models

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrNotWholeNumber is returned for parameter values that are not integers
var ErrNotWholeNumber = errors.New("value is not a whole number")

// Parameters are the intent parameters extracted by the NLU platform.
// Values arrive as decoded JSON: strings, float64 numbers, lists or nil.
type Parameters map[string]interface{}

// StringList returns the string values under key. A scalar string counts as a
// one-element list and a missing key as an empty one. ok is false when any
// element is not a string.
func (p Parameters) StringList(key string) (values []string, ok bool) {
	switch v := p[key].(type) {
	case nil:
		return nil, true
	case string:
		if v == "" {
			return nil, true
		}
		return []string{v}, true
	case []string:
		return v, true
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, elem := range v {
			s, isString := elem.(string)
			if !isString {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	default:
		return nil, false
	}
}

// IntList returns the whole-number values under key, with the same scalar and
// missing-key rules as StringList.
func (p Parameters) IntList(key string) ([]int, error) {
	switch v := p[key].(type) {
	case nil:
		return nil, nil
	case []interface{}:
		out := make([]int, 0, len(v))
		for _, elem := range v {
			n, err := ToInt(elem)
			if err != nil {
				return nil, err
			}
			out = append(out, n)
		}
		return out, nil
	default:
		n, err := ToInt(v)
		if err != nil {
			return nil, err
		}
		return []int{n}, nil
	}
}

// Int returns the whole number under key. present is false when the key is
// missing, null or an empty string.
func (p Parameters) Int(key string) (n int, present bool, err error) {
	v, ok := p[key]
	if !ok || v == nil {
		return 0, false, nil
	}
	if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
		return 0, false, nil
	}
	n, err = ToInt(v)
	return n, true, err
}

// ToInt converts a decoded JSON value to an int when it holds a whole number
func ToInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, ErrNotWholeNumber
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, ErrNotWholeNumber
			}
			return ToInt(f)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, ErrNotWholeNumber
		}
		return i, nil
	default:
		return 0, ErrNotWholeNumber
	}
}
