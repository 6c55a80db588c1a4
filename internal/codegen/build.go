package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// buildGen emits the `build`-from-header-struct constructor, ported from the
// original compiler's Build::code_gen_for_pktbuf. It is only emitted when
// both payload_len and packet_len are well-defined (not LenUndefined):
// otherwise there is no way to know how many bytes of the supplied buffer
// belong to this packet, so no safe constructor can be generated.
type buildGen struct {
	pkt *check.Packet
}

func newBuildGen(p *check.Packet) *buildGen { return &buildGen{pkt: p} }

func (g *buildGen) codeGen(methodName, traitType, bufName, bufType, headerName, headerType string, output io.Writer) bool {
	l := g.pkt.Length
	if l.PayloadLen.Kind == ast.LenUndefined || l.PacketLen.Kind == ast.LenUndefined {
		return false
	}

	h := g.pkt.Header
	fmt.Fprintf(output, "#[inline]\npub fn %s<%s>(mut %s: %s, %s: %s) -> Self {\n",
		methodName, traitType, bufName, bufType, headerName, headerType)

	var guards []string
	headerLenVar := fmt.Sprintf("%d", h.HeaderLenInBytes())

	switch l.HeaderLen.Kind {
	case ast.LenNone:
		guards = append(guards, fmt.Sprintf("%s.chunk_headroom()>=%d", bufName, h.HeaderLenInBytes()))
	case ast.LenUndefined:
		fmt.Fprint(output, "let header_len = header.header_len() as usize;\n")
		guards = append(guards, fmt.Sprintf("header_len>=%d", h.HeaderLenInBytes()))
		guards = append(guards, fmt.Sprintf("header_len<=%s.chunk_headroom()", bufName))
		headerLenVar = "header_len"
	case ast.LenExpr, ast.LenFieldRef:
		fmt.Fprint(output, "let header_len = header.header_len() as usize;\n")
		nf, _ := h.Field(l.HeaderLen.Expr.FieldRefs()[0])
		if nf.Field.DefaultFixed {
			fixed := l.HeaderLen.Expr.Eval(func(string) uint64 { return nf.Field.Default.Num })
			guards = append(guards, fmt.Sprintf("header_len==%d", fixed))
		} else {
			guards = append(guards, fmt.Sprintf("header_len>=%d", h.HeaderLenInBytes()))
		}
		guards = append(guards, fmt.Sprintf("header_len<=%s.chunk_headroom()", bufName))
		headerLenVar = "header_len"
	}
	fmt.Fprintf(output, "assert!(%s);\n", guardAssertStr(guards, "&&"))

	switch {
	case l.PayloadLen.Kind == ast.LenNone && l.PacketLen.Kind == ast.LenNone:
		fmt.Fprintf(output, "%s.move_back(%s);\n", bufName, headerLenVar)
		fmt.Fprintf(output, "(&mut %s.chunk_mut()[0..%d]).copy_from_slice(header.header_slice());\n",
			bufName, h.HeaderLenInBytes())
		fmt.Fprintf(output, "Self { %s }\n", bufName)

	case l.PayloadLen.Kind != ast.LenNone && l.PacketLen.Kind == ast.LenNone:
		fmt.Fprintf(output, "let payload_len = %s.remaining();\n", bufName)
		nf, _ := h.Field(l.PayloadLen.Expr.FieldRefs()[0])
		set := newLengthSetMethod(nf.Field, nf.Start, l.PayloadLen.Expr)
		fmt.Fprintf(output, "assert!(payload_len<=%d);\n", maxLengthOf(set))
		fmt.Fprintf(output, "%s.move_back(%s);\n", bufName, headerLenVar)
		fmt.Fprintf(output, "(&mut %s.chunk_mut()[0..%d]).copy_from_slice(header.header_slice());\n",
			bufName, h.HeaderLenInBytes())
		fmt.Fprintf(output, "let mut container = Self { %s };\n", bufName)
		fmt.Fprintf(output, "container.set_payload_len(payload_len as %s);\n",
			lengthAccessIOType(l.PayloadLen.Expr, nf.Field).String())
		fmt.Fprint(output, "container\n")

	case l.PayloadLen.Kind == ast.LenNone && l.PacketLen.Kind != ast.LenNone:
		fmt.Fprintf(output, "%s.move_back(%s);\n", bufName, headerLenVar)
		fmt.Fprintf(output, "let packet_len = %s.remaining();\n", bufName)
		nf, _ := h.Field(l.PacketLen.Expr.FieldRefs()[0])
		set := newLengthSetMethod(nf.Field, nf.Start, l.PacketLen.Expr)
		fmt.Fprintf(output, "assert!(packet_len<=%d);\n", maxLengthOf(set))
		fmt.Fprintf(output, "(&mut %s.chunk_mut()[0..%d]).copy_from_slice(header.header_slice());\n",
			bufName, h.HeaderLenInBytes())
		fmt.Fprintf(output, "let mut container = Self { %s };\n", bufName)
		fmt.Fprintf(output, "container.set_packet_len(packet_len as %s);\n",
			lengthAccessIOType(l.PacketLen.Expr, nf.Field).String())
		fmt.Fprint(output, "container\n")

	default:
		// Both payload_len and packet_len present on the same header is
		// rejected during checking (spec.md §4.2's three length slots are
		// mutually exclusive beyond header_len), so this shape is unreachable.
		panic("build: payload_len and packet_len both present")
	}

	fmt.Fprint(output, "}\n")
	return true
}

// maxLengthOf mirrors the original's LengthSetMethod::max_length: the
// largest value the field's repr can hold once the expression's inverse is
// applied, used to bound-check a raw byte count before it's written back
// through the (possibly narrower) length field.
func maxLengthOf(m *lengthSetMethod) uint64 {
	return m.expr.Eval(func(string) uint64 { return maxFieldValue(m.field.Bit) })
}
