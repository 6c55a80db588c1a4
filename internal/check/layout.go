package check

import (
	"fmt"

	"github.com/duanjp8617/pktfmt/internal/ast"
)

func checkErr(kind ast.ErrorKind, span ast.Span, format string, args ...interface{}) *ast.Error {
	return &ast.Error{ErrKind: kind, Span: span, Msg: fmt.Sprintf(format, args...)}
}

// checkHeader walks a Header's fields in declaration order, assigning each
// one a bit offset, validating byte-array alignment, and classifying the
// header fixed or variable (spec.md §4.3.1, §4.3.2).
func checkHeader(h *ast.Header, length *ast.Length) (*Header, error) {
	var fields []NamedField
	var offset uint64

	for _, nf := range h.Fields {
		start := BitPos{Off: offset}

		if nf.Field.Repr == ast.ByteSlice && start.BitOffsetInByte() != 0 {
			return nil, checkErr(ast.BitWidthMismatch, nf.Span,
				"field %q (repr &[u8]) does not start on a byte boundary", nf.Name)
		}

		fields = append(fields, NamedField{Name: nf.Name, Field: nf.Field, Start: start})
		offset += nf.Field.Bit
	}

	lengthRefs := map[string]bool{}
	for _, lf := range []ast.LengthField{length.HeaderLen, length.PayloadLen, length.PacketLen} {
		if lf.Kind == ast.LenExpr || lf.Kind == ast.LenFieldRef {
			for _, name := range lf.Expr.FieldRefs() {
				lengthRefs[name] = true
			}
		}
	}

	fixed := length.HeaderLen.Kind == ast.LenNone && len(lengthRefs) == 0
	if offset%8 != 0 {
		return nil, checkErr(ast.BitWidthMismatch, h.Span,
			"header total bit length %d is not a multiple of 8", offset)
	}

	return &Header{Fields: fields, TotalBits: offset, Fixed: fixed, LengthRefs: lengthRefs}, nil
}
