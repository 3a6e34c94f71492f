package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/spf13/cast"
)

// ToUint64 coerces an encode input to an unsigned integer. nil is zero.
// Floats must be integral; json.Number is parsed.
func ToUint64(v any) (uint64, error) {
	if v == nil {
		return 0, nil
	}
	in, err := numericInput("integer", v, true)
	if err != nil {
		return 0, err
	}
	f := cast.ToFloat64(in)
	if f < 0 || (!isUint(in) && f >= math.MaxUint64) {
		return 0, ErrValueRange
	}
	u, err := cast.ToUint64E(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValueRange, err)
	}
	return u, nil
}

// ToInt64 coerces an encode input to a signed integer. nil is zero.
func ToInt64(v any) (int64, error) {
	if v == nil {
		return 0, nil
	}
	in, err := numericInput("integer", v, true)
	if err != nil {
		return 0, err
	}
	switch n := in.(type) {
	case uint64:
		if n > math.MaxInt64 {
			return 0, ErrValueRange
		}
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, ErrValueRange
		}
	case float64:
		if n < math.MinInt64 || n >= math.MaxInt64 {
			return 0, ErrValueRange
		}
	}
	i, err := cast.ToInt64E(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValueRange, err)
	}
	return i, nil
}

// ToFloat64 coerces any numeric encode input to a float. nil is zero.
func ToFloat64(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	in, err := numericInput("float", v, false)
	if err != nil {
		return 0, err
	}
	f, err := cast.ToFloat64E(in)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValueRange, err)
	}
	return f, nil
}

// ToBytes coerces []byte or string input. nil is an empty slice.
func ToBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case nil:
		return []byte{}, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, &TypeError{Codec: "bytes", Value: v}
	}
}

// numericInput screens v before it reaches cast, which would also parse
// strings, accept bools and truncate fractions. json.Number resolves to a
// concrete number. When integer is set, floats must be finite and whole.
func numericInput(kind string, v any, integer bool) (any, error) {
	switch n := v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	case float32:
		return checkFloat(float64(n), integer)
	case float64:
		return checkFloat(n, integer)
	case json.Number:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, nil
		}
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, ErrValueRange
		}
		return checkFloat(f, integer)
	default:
		return nil, &TypeError{Codec: kind, Value: v}
	}
}

func checkFloat(f float64, integer bool) (any, error) {
	if integer && (math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f)) {
		return nil, ErrValueRange
	}
	return f, nil
}

func isUint(v any) bool {
	switch v.(type) {
	case uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func inRange(v int64, lo, hi int64) error {
	if v < lo || v > hi {
		return ErrValueRange
	}
	return nil
}
