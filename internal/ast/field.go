package ast

import "fmt"

// maxMtuInBytes bounds the widest byte-array field pktfmt accepts, ported
// from the original compiler's MAX_MTU_IN_BYTES constant.
const maxMtuInBytes = 2000

// Field is one typed header slot: a bit width, a representation type, a
// public arg type, an optional default, and whether accessors are emitted.
type Field struct {
	Bit          uint64
	Repr         BuiltinType
	Arg          Arg
	Default      DefaultVal
	DefaultFixed bool
	Gen          bool
	Endian       Endian
	Span         Span
}

// FieldOpts carries the subfields a `Field{...}` literal can optionally
// supply; any left unset (nil) is inferred from Bit and from what else was
// supplied, the way the original ast::Field::new does.
type FieldOpts struct {
	Repr         *BuiltinType
	Arg          *Arg
	Default      *DefaultVal
	DefaultFixed bool
	Gen          *bool
	Endian       *Endian
}

// NewField validates and builds a Field, inferring any subfield the caller
// did not supply. The bit-width ceiling (bit == 0, or bit > 64 unaligned to
// a byte, or bit exceeding the MTU ceiling) is the exact boundary the
// original compiler enforces (see SPEC_FULL.md item 4).
func NewField(bit uint64, opts FieldOpts, span Span) (*Field, error) {
	if bit == 0 || (bit > 64 && bit%8 != 0) || bit > maxMtuInBytes*8 {
		return nil, newErr(InvalidBitWidth, span, fmt.Sprintf(
			"invalid bit %d: bit must not be 0, must be byte-aligned above 64, and must not exceed %d",
			bit, maxMtuInBytes*8))
	}

	repr, err := resolveRepr(bit, opts.Repr, span)
	if err != nil {
		return nil, err
	}

	arg, err := resolveArg(bit, repr, opts.Arg, span)
	if err != nil {
		return nil, err
	}

	defVal, fixed, err := resolveDefault(bit, repr, arg, opts.Default, opts.DefaultFixed, span)
	if err != nil {
		return nil, err
	}

	gen := true
	if opts.Gen != nil {
		gen = *opts.Gen
	}
	endian := BigEndian
	if opts.Endian != nil {
		endian = *opts.Endian
	}

	return &Field{
		Bit: bit, Repr: repr, Arg: arg, Default: defVal, DefaultFixed: fixed,
		Gen: gen, Endian: endian, Span: span,
	}, nil
}

func inferRepr(bit uint64) BuiltinType {
	switch {
	case bit <= 8:
		return U8
	case bit <= 16:
		return U16
	case bit <= 32:
		return U32
	case bit <= 64:
		return U64
	default:
		return ByteSlice
	}
}

func resolveRepr(bit uint64, defined *BuiltinType, span Span) (BuiltinType, error) {
	inferred := inferRepr(bit)
	if defined == nil {
		return inferred, nil
	}
	if *defined == inferred {
		return *defined, nil
	}
	// &[u8] may override a whole-byte scalar repr.
	if *defined == ByteSlice && bit > 8 && bit%8 == 0 {
		return *defined, nil
	}
	return 0, newErr(InvalidRepr, span, fmt.Sprintf(
		"invalid repr %s for bit=%d, expected %s", defined, bit, inferred))
}

func resolveArg(bit uint64, repr BuiltinType, defined *Arg, span Span) (Arg, error) {
	if defined == nil {
		return Arg{Kind: ArgBuiltin, Builtin: repr}, nil
	}
	switch defined.Kind {
	case ArgCode:
		return *defined, nil
	case ArgBuiltin:
		if defined.Builtin == repr {
			return *defined, nil
		}
		if defined.Builtin == Bool && bit == 1 {
			return *defined, nil
		}
		return Arg{}, newErr(InvalidArg, span, fmt.Sprintf(
			"invalid arg %s under repr %s", defined.Builtin, repr))
	}
	return Arg{}, newErr(InvalidArg, span, "malformed arg")
}

func inferDefault(bit uint64, repr BuiltinType, arg Arg) DefaultVal {
	switch {
	case repr == U8 && arg.Kind == ArgBuiltin && arg.Builtin == Bool:
		return DefaultVal{Kind: DefaultBool, Bool: false}
	case repr == ByteSlice:
		return DefaultVal{Kind: DefaultBytes, Bytes: make([]byte, bit/8)}
	default:
		return DefaultVal{Kind: DefaultNum, Num: 0}
	}
}

// NeedWriteGuard reports whether a generated setter for this field must
// assert the incoming value is in range before writing it (ported from the
// original compiler's Field::need_write_guard). A write guard is required
// when the default is fixed (the assert pins the value to that default), or
// when the field doesn't occupy whole repr-sized bytes -- either because its
// bit width isn't byte-aligned, or because it's byte-aligned but narrower
// than its repr's natural width (bit one of 24, 40, 48, 56).
func (f *Field) NeedWriteGuard() bool {
	if f.DefaultFixed || f.Bit%8 != 0 {
		return true
	}
	return f.Bit/8 != reprByteLen(f.Repr, f.Bit)
}

func reprByteLen(repr BuiltinType, bit uint64) uint64 {
	switch repr {
	case Bool, U8:
		return 1
	case U16:
		return 2
	case U32:
		return 4
	case U64:
		return 8
	case ByteSlice:
		return bit / 8
	}
	return 0
}

func maxUnsigned(bit uint64) uint64 {
	if bit >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bit) - 1
}

func resolveDefault(bit uint64, repr BuiltinType, arg Arg, defined *DefaultVal, fixed bool, span Span) (DefaultVal, bool, error) {
	if defined == nil {
		return inferDefault(bit, repr, arg), false, nil
	}

	boolArg := repr == U8 && arg.Kind == ArgBuiltin && arg.Builtin == Bool
	switch {
	case boolArg:
		if defined.Kind != DefaultBool {
			return DefaultVal{}, false, newErr(DefaultOutOfRange, span,
				"default must be a boolean literal for a bool-arg field")
		}
	case repr == ByteSlice:
		if defined.Kind != DefaultBytes {
			return DefaultVal{}, false, newErr(DefaultOutOfRange, span,
				"default must be a byte array for a &[u8] field")
		}
		if uint64(len(defined.Bytes)) != bit/8 {
			return DefaultVal{}, false, newErr(DefaultOutOfRange, span, fmt.Sprintf(
				"default byte array has length %d, expected %d", len(defined.Bytes), bit/8))
		}
	default:
		if defined.Kind != DefaultNum {
			return DefaultVal{}, false, newErr(DefaultOutOfRange, span,
				"default must be an integer literal for this field")
		}
		if defined.Num > maxUnsigned(bit) {
			return DefaultVal{}, false, newErr(DefaultOutOfRange, span, fmt.Sprintf(
				"default %d does not fit in %d bits", defined.Num, bit))
		}
	}

	if fixed && defined.Kind == DefaultBool {
		// A fixed default expresses "this field always carries exactly this
		// value"; spec.md §4.3.1(c) extends that to byte-array fields
		// (compared byte-wise) but a boolean arg is a display convenience
		// over a 1-bit field, not a value worth pinning.
		return DefaultVal{}, false, newErr(DefaultFixedNotAllowed, span,
			"a fixed (@) default can not be a boolean value")
	}

	return *defined, fixed, nil
}
