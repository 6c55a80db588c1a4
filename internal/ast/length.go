package ast

import "fmt"

// LengthFieldKind distinguishes the shapes a single length slot can take.
type LengthFieldKind int

const (
	// LenNone: the slot was not assigned at all.
	LenNone LengthFieldKind = iota
	// LenUndefined: the slot was assigned nothing (`header_len =` followed
	// directly by `,` or `]`),
	// deferring to a user-supplied raw-code function (SPEC_FULL.md item 6,
	// resolving spec.md §9 Open Question (a)).
	LenUndefined
	// LenExpr: the slot holds a usable arithmetic expression.
	LenExpr
	// LenFieldRef: the slot is a degenerate direct reference to a single
	// field (e.g. `packet_len = length_`).
	LenFieldRef
)

// LengthField is one of the three header/payload/packet length slots.
type LengthField struct {
	Kind  LengthFieldKind
	Expr  *AlgExpr // set for LenExpr and LenFieldRef (a single-field AlgExpr)
	Span  Span
}

// Appear reports whether this slot was assigned any value (expression,
// field reference, or the blank-undefined marker).
func (lf LengthField) Appear() bool { return lf.Kind != LenNone }

// Length holds the three length slots: header_len, payload_len, packet_len.
type Length struct {
	HeaderLen  LengthField
	PayloadLen LengthField
	PacketLen  LengthField
}

// NewLength validates the parsed list of (name, LengthField) assignments
// against the three admissible shapes named in spec.md §4.2 and builds a
// Length. The parser invokes this during reduction so that shape errors are
// reported at the parse site (spec.md §4.2).
func NewLength(slots map[string]LengthField, span Span) (*Length, error) {
	l := &Length{
		HeaderLen:  slots["header_len"],
		PayloadLen: slots["payload_len"],
		PacketLen:  slots["packet_len"],
	}

	h, p, k := l.HeaderLen.Appear(), l.PayloadLen.Appear(), l.PacketLen.Appear()
	switch {
	case !h && !p && !k:
		// shape 1: nothing declared at all -- admissible (fixed header).
	case h && !p && !k:
		// shape 2a: header_len alone.
	case !h && p && !k:
		// shape 2b: payload_len alone.
	case !h && !p && k:
		// shape 2c: packet_len alone.
	case h && p && !k:
		// shape 2d: header_len + payload_len.
	case h && !p && k:
		// shape 2e: header_len + packet_len.
	case h && p && k:
		// shape 3: header_len + both payload_len and packet_len.
	default:
		// p && k without h, or any other combination, is inadmissible.
		return nil, newErr(InvalidLengthShape, span, fmt.Sprintf(
			"invalid length declaration shape: must be exactly one of: a single "+
				"slot, header_len plus one of {payload_len, packet_len}, or "+
				"(optional header_len) plus both payload_len and packet_len "+
				"(got header_len=%v payload_len=%v packet_len=%v)", h, p, k))
	}

	return l, nil
}
