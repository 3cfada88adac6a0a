package schema

import (
	"strconv"
	"strings"
)

// Kind identifies the shape of a type expression.
type Kind uint8

const (
	KindBool Kind = iota
	KindU8
	KindU16
	KindU32
	KindU64
	KindU128
	KindI8
	KindI16
	KindI32
	KindI64
	KindI128
	KindStr
	KindBytes
	KindBitVec
	KindCompact
	KindVec
	KindOption
	KindResult
	KindArray
	KindTuple
	KindNamed
)

var kindNames = [...]string{
	KindBool:    "bool",
	KindU8:      "u8",
	KindU16:     "u16",
	KindU32:     "u32",
	KindU64:     "u64",
	KindU128:    "u128",
	KindI8:      "i8",
	KindI16:     "i16",
	KindI32:     "i32",
	KindI64:     "i64",
	KindI128:    "i128",
	KindStr:     "str",
	KindBytes:   "bytes",
	KindBitVec:  "BitVec",
	KindCompact: "Compact",
	KindVec:     "Vec",
	KindOption:  "Option",
	KindResult:  "Result",
	KindArray:   "array",
	KindTuple:   "tuple",
	KindNamed:   "named",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether k takes no type parameters.
func (k Kind) IsPrimitive() bool {
	return k <= KindBitVec
}

// IsUnsigned reports whether k is a fixed-width unsigned integer, the only
// kinds Compact accepts.
func (k Kind) IsUnsigned() bool {
	return k >= KindU8 && k <= KindU128
}

// Type is a parsed type expression.
type Type struct {
	Kind Kind
	// Elem is the parameter of Compact, Vec, Option and arrays, and the Ok
	// type of Result.
	Elem *Type
	// Err is the Err type of Result.
	Err *Type
	// Len is the length of an array.
	Len int
	// Members are the tuple members in order.
	Members []*Type
	// Name is the registry name of a named type.
	Name string
}

func (t *Type) String() string {
	switch t.Kind {
	case KindCompact, KindVec, KindOption:
		return t.Kind.String() + "<" + t.Elem.String() + ">"
	case KindResult:
		return "Result<" + t.Elem.String() + ", " + t.Err.String() + ">"
	case KindArray:
		return "[" + t.Elem.String() + "; " + strconv.Itoa(t.Len) + "]"
	case KindTuple:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindNamed:
		return t.Name
	}
	return t.Kind.String()
}
