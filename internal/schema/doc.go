// Package schema describes SCALE layouts at run time. Type expressions in
// a Rust-like syntax ("Vec<(u32, Option<str>)>", "[u8; 32]") and named
// types from a YAML registry compile into scale.Codec[any] values that
// encode dynamic data, such as JSON decoded with ParseJSON.
//
// Dynamic values take these forms:
//
//	bool                      bool
//	u8..u64, Compact<u8..u64> uint64 on decode; any integer, json.Number or
//	                          decimal string on encode
//	i8..i64                   int64
//	u128, i128, Compact<u128> *big.Int
//	str                       string
//	bytes, Vec<u8>, [u8; N]   []byte, or 0x-prefixed hex on encode
//	BitVec                    "1011"
//	Vec<T>, [T; N], tuples    []any
//	Option<T>                 nil or the value
//	Result<T, E>              {"Ok": v} or {"Err": e}
//	named struct              map[string]any
//	named enum                "Variant" or {"Variant": payload}
package schema
