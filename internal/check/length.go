package check

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
)

// checkLength resolves header_len/payload_len/packet_len against the
// already-laid-out header: every field name an expression references must
// exist and must carry an integer repr (not &[u8]; a bool-arg field has a u8
// repr and is accepted) (spec.md §4.3.2, §9 Open Question (a)). The grammar
// only lets length expressions reference plain header fields --
// header_len/payload_len/packet_len are keywords, not identifiers, so a
// length slot can never reference another length slot. The remaining check
// reported as LengthCycle rejects an expression that references the same
// field more than once.
func checkLength(h *Header, length *ast.Length) (*Length, error) {
	slots := []struct {
		name string
		lf   ast.LengthField
	}{
		{"header_len", length.HeaderLen},
		{"payload_len", length.PayloadLen},
		{"packet_len", length.PacketLen},
	}

	for _, s := range slots {
		if s.lf.Kind != ast.LenExpr && s.lf.Kind != ast.LenFieldRef {
			continue
		}
		if err := checkLengthRefs(h, s.name, s.lf); err != nil {
			return nil, err
		}
	}

	return &Length{
		HeaderLen:  length.HeaderLen,
		PayloadLen: length.PayloadLen,
		PacketLen:  length.PacketLen,
	}, nil
}

func checkLengthRefs(h *Header, slotName string, lf ast.LengthField) error {
	visiting := map[string]bool{}
	for _, name := range lf.Expr.FieldRefs() {
		nf, ok := h.Field(name)
		if !ok {
			return checkErr(ast.UnknownField, lf.Span,
				"%s references unknown field %q", slotName, name)
		}
		if nf.Field.Repr == ast.ByteSlice {
			return checkErr(ast.CondOnNonIntField, lf.Span,
				"%s references field %q, which has a non-integer (&[u8]) repr", slotName, name)
		}
		if visiting[name] {
			return checkErr(ast.LengthCycle, lf.Span,
				"%s length expression cycles through field %q", slotName, name)
		}
		visiting[name] = true
	}
	return nil
}
