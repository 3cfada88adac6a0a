package schema

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"

	"github.com/oy3o/scale"
)

// ErrValue is returned when a dynamic value does not fit its type.
var ErrValue = errors.New("schema: value does not match type")

func mismatch(want string, v any) error {
	return fmt.Errorf("%w: want %s, got %T", ErrValue, want, v)
}

// ParseJSON decodes a JSON document into the dynamic value form. Numbers
// keep their full precision.
func ParseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("schema: parse value: %w", err)
	}
	if dec.More() {
		return nil, errors.New("schema: parse value: trailing data")
	}
	return v, nil
}

func toBig(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return n, nil
	case json.Number:
		x, ok := new(big.Int).SetString(n.String(), 10)
		if !ok {
			return nil, mismatch("integer", n.String())
		}
		return x, nil
	case string:
		x, ok := new(big.Int).SetString(n, 0)
		if !ok {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrValue, n)
		}
		return x, nil
	case float64:
		if n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return nil, fmt.Errorf("%w: %v is not an exact integer", ErrValue, n)
		}
		return big.NewInt(int64(n)), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case scale.Uint128:
		return n.Big(), nil
	case scale.Int128:
		return n.Big(), nil
	}
	return nil, mismatch("integer", v)
}

func toUint[T constraints.Unsigned](v any) (T, error) {
	x, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if x.Sign() < 0 || !x.IsUint64() || uint64(T(x.Uint64())) != x.Uint64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrValue, x)
	}
	return T(x.Uint64()), nil
}

func toInt[T constraints.Signed](v any) (T, error) {
	x, err := toBig(v)
	if err != nil {
		return 0, err
	}
	if !x.IsInt64() || int64(T(x.Int64())) != x.Int64() {
		return 0, fmt.Errorf("%w: %s out of range", ErrValue, x)
	}
	return T(x.Int64()), nil
}

func toUint128(v any) (scale.Uint128, error) {
	x, err := toBig(v)
	if err != nil {
		return scale.Uint128{}, err
	}
	u, ok := scale.Uint128FromBig(x)
	if !ok {
		return u, fmt.Errorf("%w: %s out of range", ErrValue, x)
	}
	return u, nil
}

func toInt128(v any) (scale.Int128, error) {
	x, err := toBig(v)
	if err != nil {
		return scale.Int128{}, err
	}
	i, ok := scale.Int128FromBig(x)
	if !ok {
		return i, fmt.Errorf("%w: %s out of range", ErrValue, x)
	}
	return i, nil
}

func toBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mismatch("bool", v)
	}
	return b, nil
}

func toString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", mismatch("string", v)
	}
	return s, nil
}

// toBytes accepts a byte slice, a 0x-prefixed hex string or a list of
// numbers.
func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		if !strings.HasPrefix(b, "0x") {
			return nil, fmt.Errorf("%w: byte strings are 0x-prefixed hex, got %q", ErrValue, b)
		}
		out, err := hex.DecodeString(b[2:])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValue, err)
		}
		return out, nil
	case []any:
		out := make([]byte, len(b))
		for i, e := range b {
			n, err := toUint[uint8](e)
			if err != nil {
				return nil, fmt.Errorf("byte %d: %w", i, err)
			}
			out[i] = n
		}
		return out, nil
	}
	return nil, mismatch("bytes", v)
}

func toList(v any) ([]any, error) {
	l, ok := v.([]any)
	if !ok {
		return nil, mismatch("list", v)
	}
	return l, nil
}

// toBitVec accepts a string of '0' and '1' or a list of booleans.
func toBitVec(v any) (scale.BitVec, error) {
	switch b := v.(type) {
	case scale.BitVec:
		return b, nil
	case string:
		bits := make([]bool, len(b))
		for i, c := range b {
			switch c {
			case '0':
			case '1':
				bits[i] = true
			default:
				return scale.BitVec{}, fmt.Errorf("%w: bit string %q", ErrValue, b)
			}
		}
		return scale.BitVecOf(bits...), nil
	case []any:
		bits := make([]bool, len(b))
		for i, e := range b {
			bit, err := toBool(e)
			if err != nil {
				return scale.BitVec{}, fmt.Errorf("bit %d: %w", i, err)
			}
			bits[i] = bit
		}
		return scale.BitVecOf(bits...), nil
	}
	return scale.BitVec{}, mismatch("bit string", v)
}

// single splits a one-entry object such as {"Ok": 1} or {"Transfer": {...}}.
func single(v any) (string, any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, e := range m {
		return k, e, true
	}
	return "", nil, false
}

// Plain converts a decoded value into a form that JSON and YAML encoders
// render faithfully: bytes become 0x-prefixed hex and integers wider than
// 64 bits become decimal strings.
func Plain(v any) any {
	switch x := v.(type) {
	case []byte:
		return "0x" + hex.EncodeToString(x)
	case *big.Int:
		switch {
		case x.IsInt64():
			return x.Int64()
		case x.IsUint64():
			return x.Uint64()
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Plain(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = Plain(e)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
