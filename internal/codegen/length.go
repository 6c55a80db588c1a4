package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

var lengthFieldNames = [3]string{"header_len", "payload_len", "packet_len"}

// lengthGenerator emits accessors for whichever of header_len/payload_len/
// packet_len were given as an expression over a header field, ported from
// the original compiler's LengthGenerator. A LenUndefined slot (blank
// `header_len =` with no expression, SPEC_FULL.md item 6) defers entirely to a user-supplied
// raw-code function and needs no generated accessor.
type lengthGenerator struct {
	header *check.Header
	length *check.Length
}

func newLengthGenerator(h *check.Header, l *check.Length) *lengthGenerator {
	return &lengthGenerator{header: h, length: l}
}

func (g *lengthGenerator) codeGen(targetSlice string, writeValue string, output io.Writer) {
	slots := [3]ast.LengthField{g.length.HeaderLen, g.length.PayloadLen, g.length.PacketLen}
	for i, lf := range slots {
		if lf.Kind != ast.LenExpr && lf.Kind != ast.LenFieldRef {
			continue
		}
		nf, _ := g.header.Field(lf.Expr.FieldRefs()[0])
		if writeValue != "" {
			newLengthSetMethod(nf.Field, nf.Start, lf.Expr).codeGen(lengthFieldNames[i], targetSlice, writeValue, output)
		} else {
			newLengthGetMethod(nf.Field, nf.Start, lf.Expr).codeGen(lengthFieldNames[i], targetSlice, output)
		}
	}
}

type lengthGetMethod struct {
	field *ast.Field
	start check.BitPos
	expr  *ast.AlgExpr
}

func newLengthGetMethod(field *ast.Field, start check.BitPos, expr *ast.AlgExpr) *lengthGetMethod {
	return &lengthGetMethod{field: field, start: start, expr: expr}
}

func (m *lengthGetMethod) codeGen(lengthFieldName, targetSlice string, output io.Writer) {
	retType := lengthAccessIOType(m.expr, m.field)
	funcDef := fmt.Sprintf("#[inline]\npub fn %s(&self)->%s{\n", lengthFieldName, retType.String())
	w := newHeadTailWriter(output, funcDef, "\n}\n")
	defer w.Close()

	var buf []byte
	bw := newHeadTailWriterBytes(&buf, "(", castSuffix(retType, m.field.Repr))
	newFieldGetMethod(m.field, m.start).readRepr(targetSlice, bw.Writer())
	bw.Close()

	fmt.Fprint(w.Writer(), genForward(m.expr, string(buf)))
}

type lengthSetMethod struct {
	field *ast.Field
	start check.BitPos
	expr  *ast.AlgExpr
}

func newLengthSetMethod(field *ast.Field, start check.BitPos, expr *ast.AlgExpr) *lengthSetMethod {
	return &lengthSetMethod{field: field, start: start, expr: expr}
}

func (m *lengthSetMethod) codeGen(lengthFieldName, targetSlice, writeValue string, output io.Writer) {
	argType := lengthAccessIOType(m.expr, m.field)
	funcDef := fmt.Sprintf("#[inline]\npub fn set_%s(&mut self, %s:%s){\n", lengthFieldName, writeValue, argType.String())
	w := newHeadTailWriter(output, funcDef, "\n}\n")
	defer w.Close()

	var guards []string
	if m.field.DefaultFixed {
		fixedLength := m.expr.Eval(func(string) uint64 { return m.field.Default.Num })
		guards = append(guards, fmt.Sprintf("%s==%d", writeValue, fixedLength))
	} else {
		maxLength := m.expr.Eval(func(string) uint64 { return maxFieldValue(m.field.Bit) })
		if needMaxLengthGuard(argType, maxLength) {
			guards = append(guards, fmt.Sprintf("%s<=%d", writeValue, maxLength))
		}
	}

	if len(guards) > 0 {
		fmt.Fprintf(w.Writer(), "assert!(%s);\n", guardAssertStr(guards, "&&"))
	}

	var buf []byte
	prefix, suffix := "(", ")"
	if argType != m.field.Repr {
		prefix, suffix = "((", ") as "+m.field.Repr.String()+")"
	}
	bw := newHeadTailWriterBytes(&buf, prefix, suffix)
	fmt.Fprint(bw.Writer(), genReverse(m.expr, writeValue))
	bw.Close()

	newFieldSetMethod(m.field, m.start).writeRepr(targetSlice, string(buf), w.Writer())
}

func castSuffix(want, have ast.BuiltinType) string {
	if want == have {
		return ")"
	}
	return ") as " + want.String()
}

func needMaxLengthGuard(argType ast.BuiltinType, maxLength uint64) bool {
	switch argType {
	case ast.U8:
		return maxLength < 0xff
	case ast.U16:
		return maxLength < 0xffff
	case ast.U32:
		return maxLength < 0xffffffff
	default: // U64
		return false
	}
}

func maxFieldValue(bit uint64) uint64 {
	if bit >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bit) - 1
}

// lengthAccessIOType picks the narrowest unsigned integer type that can
// hold every value the expression can produce for a field of this width.
func lengthAccessIOType(expr *ast.AlgExpr, field *ast.Field) ast.BuiltinType {
	maxLength := expr.Eval(func(string) uint64 { return maxFieldValue(field.Bit) })
	switch {
	case maxLength <= 0xff:
		return ast.U8
	case maxLength <= 0xffff:
		return ast.U16
	case maxLength <= 0xffffffff:
		return ast.U32
	default:
		return ast.U64
	}
}

// genForward renders expr as a Rust arithmetic expression with its single
// field-ref leaf replaced by leaf, e.g. (field + 4) with leaf "x" becomes
// "(x)+4". Length expressions reference exactly one field (spec.md §3
// "AlgExpr"), so this walk never needs to substitute more than one leaf.
func genForward(expr *ast.AlgExpr, leaf string) string {
	switch expr.Kind {
	case ast.AlgConst:
		return fmt.Sprintf("%d", expr.Const)
	case ast.AlgFieldRef:
		return leaf
	case ast.AlgBinOp:
		return fmt.Sprintf("(%s)%s%s", genForward(expr.Left, leaf), expr.Op.String(), genForward(expr.Right, leaf))
	}
	return leaf
}

// genReverse renders the inverse of expr -- given the result value result,
// produces a Rust expression for the field's own repr-typed value. It
// assumes the field reference appears on the left of every binary node and
// the right operand is a field-independent constant, which is the shape
// every admissible length expression takes (spec.md §4.2): the length is a
// simple affine function of the field, so each step is invertible by
// applying the opposite operator with the same constant.
func genReverse(expr *ast.AlgExpr, result string) string {
	switch expr.Kind {
	case ast.AlgFieldRef:
		return result
	case ast.AlgBinOp:
		constStr := genForward(expr.Right, "")
		var inner string
		switch expr.Op {
		case ast.OpAdd:
			inner = fmt.Sprintf("(%s)-%s", result, constStr)
		case ast.OpSub:
			inner = fmt.Sprintf("(%s)+%s", result, constStr)
		case ast.OpMul:
			inner = fmt.Sprintf("(%s)/%s", result, constStr)
		case ast.OpDiv:
			inner = fmt.Sprintf("(%s)*%s", result, constStr)
		}
		return genReverse(expr.Left, inner)
	}
	return result
}

// newHeadTailWriterBytes is newHeadTailWriter specialized for a *[]byte
// sink, used where the generated fragment must be captured as a string
// before being embedded in a larger expression.
func newHeadTailWriterBytes(buf *[]byte, head, tail string) *headTailWriter {
	return newHeadTailWriter((*byteSliceWriter)(buf), head, tail)
}

type byteSliceWriter []byte

func (b *byteSliceWriter) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}
