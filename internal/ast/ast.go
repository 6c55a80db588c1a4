// Package ast defines the syntax tree produced by the parser: Field,
// Header, Length, Cond, Packet, PacketGroup and the TopLevel compilation
// unit, plus the small expression trees used inside length and condition
// declarations.
package ast

// Span is a half-open byte-offset range into the source file.
type Span struct {
	Start int
	End   int
}

func (s Span) Union(o Span) Span {
	u := s
	if o.Start < u.Start {
		u.Start = o.Start
	}
	if o.End > u.End {
		u.End = o.End
	}
	return u
}

// Code is a raw-code escape: the text between a matching %%...%% pair,
// passed through verbatim. It is the only leaf through which
// target-language syntax enters the tree; its contents are never parsed.
type Code struct {
	Text string
	Span Span
}

// Endian selects the byte order codegen uses to read/write a multi-byte
// field.
type Endian int

const (
	BigEndian Endian = iota
	LittleEndian
)

// BuiltinType is one of the scalar repr types, the byte-slice repr, or the
// bool arg override.
type BuiltinType int

const (
	U8 BuiltinType = iota
	U16
	U32
	U64
	ByteSlice
	Bool
)

func (b BuiltinType) String() string {
	switch b {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case ByteSlice:
		return "&[u8]"
	case Bool:
		return "bool"
	default:
		return "?"
	}
}

// ArgKind distinguishes the two ways a Field's public type can be spelled.
type ArgKind int

const (
	ArgBuiltin ArgKind = iota
	ArgCode
)

// Arg is the tagged union over "decoded as a built-in scalar/bool type" and
// "decoded via a user-supplied raw-code type".
type Arg struct {
	Kind    ArgKind
	Builtin BuiltinType
	Code    *Code
}

// DefaultKind distinguishes the three shapes a default value literal can
// take.
type DefaultKind int

const (
	DefaultNum DefaultKind = iota
	DefaultBool
	DefaultBytes
)

// DefaultVal is a Field's default value, one of an unsigned integer, a
// boolean, or a byte array.
type DefaultVal struct {
	Kind  DefaultKind
	Num   uint64
	Bool  bool
	Bytes []byte
}
