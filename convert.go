// convert.go: argument and result conversion contracts (C7), the boundary
// between typed external caller values and the engine's Response Value
// carrier (spec.md §4.6, §6)
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package embedis

import "strconv"

// ArgumentEncoder is the "encodable as engine argument(s)" capability:
// implementations serialize themselves into one or more raw byte-string
// arguments, the canonical form every C5 operation contract accepts
// (spec.md §4.6). Grounded on the original source's `ToRedisArgs` trait
// (_examples/original_source/src/types/to_redis_args.rs), generalized from
// a single-trait-object scheme to an explicit Go interface.
type ArgumentEncoder interface {
	EncodeArgs() [][]byte
}

// BytesArg is a raw byte-string argument; it encodes to itself unchanged.
type BytesArg []byte

// EncodeArgs implements ArgumentEncoder.
func (b BytesArg) EncodeArgs() [][]byte { return [][]byte{[]byte(b)} }

// StringArg is a byte-string argument sourced from a Go string.
type StringArg string

// EncodeArgs implements ArgumentEncoder.
func (s StringArg) EncodeArgs() [][]byte { return [][]byte{[]byte(s)} }

// IntArg is a signed 64-bit integer argument, encoded as its decimal
// representation.
type IntArg int64

// EncodeArgs implements ArgumentEncoder.
func (n IntArg) EncodeArgs() [][]byte {
	return [][]byte{[]byte(strconv.FormatInt(int64(n), 10))}
}

// UintArg is an unsigned 64-bit integer argument, encoded as its decimal
// representation.
type UintArg uint64

// EncodeArgs implements ArgumentEncoder.
func (n UintArg) EncodeArgs() [][]byte {
	return [][]byte{[]byte(strconv.FormatUint(uint64(n), 10))}
}

// BoolArg is a boolean argument, encoded as "1"/"0" (Redis convention).
type BoolArg bool

// EncodeArgs implements ArgumentEncoder.
func (b BoolArg) EncodeArgs() [][]byte {
	if b {
		return [][]byte{[]byte("1")}
	}
	return [][]byte{[]byte("0")}
}

// OptionalArg wraps an ArgumentEncoder that may be absent: nil Value
// encodes to zero arguments, matching the original source's
// `Option<T>::to_redis_args` ("None" contributes nothing rather than a
// null placeholder, since engine argument lists are positional-by-count
// only for the fixed-arity ops that use this contract).
type OptionalArg struct {
	Value ArgumentEncoder
}

// EncodeArgs implements ArgumentEncoder.
func (o OptionalArg) EncodeArgs() [][]byte {
	if o.Value == nil {
		return nil
	}
	return o.Value.EncodeArgs()
}

// SequenceArg flattens a slice of ArgumentEncoders into one argument list,
// matching `Vec<T>::to_redis_args`'s flat-map behavior.
type SequenceArg []ArgumentEncoder

// EncodeArgs implements ArgumentEncoder.
func (s SequenceArg) EncodeArgs() [][]byte {
	var out [][]byte
	for _, v := range s {
		out = append(out, v.EncodeArgs()...)
	}
	return out
}

// TupleArg flattens a fixed-arity group of ArgumentEncoders in order,
// matching the original source's `impl_tuple!` macro expansion.
type TupleArg []ArgumentEncoder

// EncodeArgs implements ArgumentEncoder.
func (t TupleArg) EncodeArgs() [][]byte {
	return SequenceArg(t).EncodeArgs()
}

// EncodeAll flattens a list of ArgumentEncoders into one positional
// argument slice, the entry point callers use to build a multi-argument
// engine call from typed pieces.
func EncodeAll(args ...ArgumentEncoder) [][]byte {
	return SequenceArg(args).EncodeArgs()
}

// ResponseDecoder is the "decodable from a Response Value" capability:
// implementations recover a typed Go value from a Response, returning
// ParseError on a variant mismatch (spec.md §4.6). Grounded on the
// original source's `FromRedisValue` trait
// (_examples/original_source/src/types/from_redis_value.rs).
type ResponseDecoder[T any] interface {
	DecodeResponse(r Response) (T, error)
}

// DecodeString recovers a Go string from r: RespBytes is UTF-8 decoded
// as-is, RespInt/RespBool/RespOk are stringified (mirroring the original
// source's String decoder, which accepts several reply shapes).
func DecodeString(r Response) (string, error) {
	switch r.Kind {
	case RespBytes:
		return string(r.Bytes), nil
	case RespInt:
		return strconv.FormatInt(r.Int, 10), nil
	case RespOk:
		return "OK", nil
	case RespBool:
		return strconv.FormatBool(r.Bool), nil
	default:
		return "", NewErrParseError("cannot decode " + r.Kind.String() + " as string")
	}
}

// DecodeBytes recovers a raw byte string from r. Only RespBytes decodes;
// every other variant is a ParseError.
func DecodeBytes(r Response) ([]byte, error) {
	if r.Kind != RespBytes {
		return nil, NewErrParseError("cannot decode " + r.Kind.String() + " as bytes")
	}
	return r.Bytes, nil
}

// DecodeInt recovers an int64 from r: RespInt directly, RespBytes parsed
// as a base-10 integer, RespBool as 0/1.
func DecodeInt(r Response) (int64, error) {
	switch r.Kind {
	case RespInt:
		return r.Int, nil
	case RespBytes:
		n, err := strconv.ParseInt(string(r.Bytes), 10, 64)
		if err != nil {
			return 0, NewErrParseError("cannot decode bytes as int")
		}
		return n, nil
	case RespBool:
		if r.Bool {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, NewErrParseError("cannot decode " + r.Kind.String() + " as int")
	}
}

// DecodeUint recovers a uint64 from r via DecodeInt.
func DecodeUint(r Response) (uint64, error) {
	n, err := DecodeInt(r)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// DecodeBool recovers a bool from r: RespBool directly, RespInt as
// nonzero, RespBytes as non-empty, RespNull as false.
func DecodeBool(r Response) (bool, error) {
	switch r.Kind {
	case RespBool:
		return r.Bool, nil
	case RespInt:
		return r.Int != 0, nil
	case RespBytes:
		return len(r.Bytes) > 0, nil
	case RespNull:
		return false, nil
	default:
		return false, NewErrParseError("cannot decode " + r.Kind.String() + " as bool")
	}
}

// DecodeOptionalBytes recovers an optional []byte from r: RespNull decodes to nil,
// anything else defers to DecodeBytes, matching the original source's
// `Option<T>::from_redis_value`.
func DecodeOptionalBytes(r Response) ([]byte, error) {
	if r.Kind == RespNull {
		return nil, nil
	}
	return DecodeBytes(r)
}

// DecodeBytesSlice recovers a [][]byte from r: RespArray/RespSet decode
// element-wise via DecodeBytes, RespNull decodes to an empty slice,
// matching the original source's `Vec<T>::from_redis_value`.
func DecodeBytesSlice(r Response) ([][]byte, error) {
	var items []Response
	switch r.Kind {
	case RespNull:
		return nil, nil
	case RespArray:
		items = r.Array
	case RespSet:
		items = r.Set
	default:
		return nil, NewErrParseError("cannot decode " + r.Kind.String() + " as a sequence")
	}
	out := make([][]byte, len(items))
	for i, it := range items {
		b, err := DecodeOptionalBytes(it)
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}
