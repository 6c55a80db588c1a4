package check

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
)

// checkCond resolves a cond block against the header it constrains: every
// clause must name an existing integer-repr field, and every bound must fit
// that field's bit width (spec.md §4.3.3). ast.NewCond already rejected
// syntactically-empty ranges and duplicate field clauses at parse time; this
// pass catches the width-dependent case a bare bound can't: an open-ended
// bound (`..b` or `a..`) that only becomes empty once resolved against the
// field's own min/max.
func checkCond(h *Header, cond *ast.Cond) (*Cond, error) {
	clauses := make([]CondClause, 0, len(cond.Clauses))

	for _, c := range cond.Clauses {
		nf, ok := h.Field(c.FieldName)
		if !ok {
			return nil, checkErr(ast.UnknownField, c.Span,
				"cond references unknown field %q", c.FieldName)
		}
		if nf.Field.Repr == ast.ByteSlice {
			return nil, checkErr(ast.CondOnNonIntField, c.Span,
				"cond field %q has a non-integer (&[u8]) repr", c.FieldName)
		}

		max := fieldMaxUnsigned(nf.Field.Bit)
		for _, b := range c.Bounds {
			lo := uint64(0)
			if b.HasLo {
				lo = b.Lo
			}
			hi := max
			if b.HasHi {
				hi = b.Hi
				if b.Exclusive {
					if hi == 0 {
						return nil, checkErr(ast.EmptyRange, b.Span, "empty range: upper bound is 0")
					}
					hi--
				}
			}
			if lo > max || hi > max {
				return nil, checkErr(ast.EmptyRange, b.Span,
					"cond bound on field %q (%d bits) exceeds its representable range", c.FieldName, nf.Field.Bit)
			}
			if lo > hi {
				return nil, checkErr(ast.EmptyRange, b.Span,
					"empty range on field %q once resolved against its bit width", c.FieldName)
			}
		}

		clauses = append(clauses, CondClause{Field: nf, Bounds: c.Bounds})
	}

	return &Cond{Clauses: clauses}, nil
}

func fieldMaxUnsigned(bit uint64) uint64 {
	if bit >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bit) - 1
}
