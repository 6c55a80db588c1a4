package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// fieldGenerator emits every field's getter (or, with a write value, setter)
// for one Header, ported from the original compiler's FieldGenerator.
type fieldGenerator struct {
	header *check.Header
}

func newFieldGenerator(h *check.Header) *fieldGenerator { return &fieldGenerator{header: h} }

func (g *fieldGenerator) codeGen(targetSlice string, writeValue string, output io.Writer) {
	for _, nf := range g.header.Fields {
		if writeValue != "" {
			newFieldSetMethod(nf.Field, nf.Start).codeGen(nf.Name, targetSlice, writeValue, output)
		} else {
			newFieldGetMethod(nf.Field, nf.Start).codeGen(nf.Name, targetSlice, output)
		}
	}
}

// fieldGetMethod generates the getter for one header field.
type fieldGetMethod struct {
	field *ast.Field
	start check.BitPos
}

func newFieldGetMethod(field *ast.Field, start check.BitPos) *fieldGetMethod {
	return &fieldGetMethod{field: field, start: start}
}

// codeGen writes `pub fn field_name(&self) -> ArgType { ... }`, skipping the
// method entirely when the field's gen flag is false.
func (m *fieldGetMethod) codeGen(fieldName, targetSlice string, output io.Writer) {
	if !m.field.Gen {
		return
	}
	funcDef := fmt.Sprintf("#[inline]\npub fn %s(&self)->%s{\n", fieldName, argString(m.field.Arg))
	w := newHeadTailWriter(output, funcDef, "\n}\n")
	defer w.Close()
	m.readAsArg(targetSlice, w.Writer())
}

// readAsArg reads the field's repr-typed value and, if needed, converts it
// to the field's public arg type.
func (m *fieldGetMethod) readAsArg(targetSlice string, output io.Writer) {
	switch m.field.Arg.Kind {
	case ast.ArgCode:
		w := newHeadTailWriter(output, toRustType(m.field.Repr, m.field.Arg.Code.Text)+"(", ")")
		defer w.Close()
		m.readRepr(targetSlice, w.Writer())
	case ast.ArgBuiltin:
		if m.field.Arg.Builtin == m.field.Repr {
			m.readRepr(targetSlice, output)
			return
		}
		// arg is bool and field.bit == 1: fast-path single-bit read.
		bitPos := uint64(m.start.BitOffsetInByte())
		fmt.Fprintf(output, "%s[%d]&%s != 0", targetSlice, m.start.BytePos(),
			onesMask(7-bitPos, 7-bitPos))
	}
}

// readMultiBytes reads a field spanning one or more bytes into a string
// expression, applying the endian-aware conversion and any shift/mask
// needed because the field doesn't start or end on a byte boundary.
func (m *fieldGetMethod) readMultiBytes(targetSlice string) string {
	end := m.start.NextPos(m.field.Bit)

	var buf strings.Builder
	r := endianRead(&buf, end.BytePos()-m.start.BytePos()+1, m.field.Endian == ast.BigEndian)
	fmt.Fprintf(r.Writer(), "&%s[%d..%d]", targetSlice, m.start.BytePos(), end.BytePos()+1)
	r.Close()
	readValue := buf.String()

	if end.BitOffsetInByte() < 7 {
		readValue = fmt.Sprintf("%s>>%d", readValue, 7-end.BitOffsetInByte())
	}

	if m.start.BitOffsetInByte() > 0 {
		mask := onesMask(0, m.field.Bit-1)
		if end.BitOffsetInByte() < 7 {
			readValue = fmt.Sprintf("(%s)&%s", readValue, mask)
		} else {
			readValue = fmt.Sprintf("%s&%s", readValue, mask)
		}
	}

	return readValue
}

// readRepr reads the field's repr-typed value from targetSlice.
func (m *fieldGetMethod) readRepr(targetSlice string, output io.Writer) {
	end := m.start.NextPos(m.field.Bit)

	switch {
	case m.field.Repr == ast.ByteSlice:
		fmt.Fprintf(output, "&%s[%d..%d]", targetSlice, m.start.BytePos(), end.BytePos()+1)

	case m.field.Repr == ast.U8 && m.start.BytePos() == end.BytePos():
		byteValue := fmt.Sprintf("%s[%d]", targetSlice, m.start.BytePos())
		if end.BitOffsetInByte() < 7 {
			byteValue = fmt.Sprintf("%s>>%d", byteValue, 7-end.BitOffsetInByte())
		}
		if m.start.BitOffsetInByte() > 0 {
			mask := onesMask(0, m.field.Bit-1)
			if end.BitOffsetInByte() < 7 {
				byteValue = fmt.Sprintf("(%s)&%s", byteValue, mask)
			} else {
				byteValue = fmt.Sprintf("%s&%s", byteValue, mask)
			}
		}
		fmt.Fprint(output, byteValue)

	case m.field.Repr == ast.U8 || m.field.Repr == ast.U16 || m.field.Repr == ast.U32 || m.field.Repr == ast.U64:
		rwType := endianRWType(end.BytePos() - m.start.BytePos() + 1)
		if rwType != m.field.Repr {
			w := newHeadTailWriter(output, "(", ") as "+m.field.Repr.String())
			defer w.Close()
			fmt.Fprint(w.Writer(), m.readMultiBytes(targetSlice))
		} else {
			fmt.Fprint(output, m.readMultiBytes(targetSlice))
		}
	}
}

// fieldSetMethod generates the setter for one header field.
type fieldSetMethod struct {
	field *ast.Field
	start check.BitPos
}

func newFieldSetMethod(field *ast.Field, start check.BitPos) *fieldSetMethod {
	return &fieldSetMethod{field: field, start: start}
}

func (m *fieldSetMethod) codeGen(fieldName, targetSlice, writeValue string, output io.Writer) {
	if !m.field.Gen {
		return
	}
	funcDef := fmt.Sprintf("#[inline]\npub fn set_%s(&mut self, %s:%s){\n", fieldName, writeValue, argString(m.field.Arg))
	w := newHeadTailWriter(output, funcDef, "\n}\n")
	defer w.Close()
	m.writeAsArg(targetSlice, writeValue, w.Writer())
}

// writeAsArg converts writeValue (of the field's arg type) to its repr type
// (inserting a range guard where needed) and writes it into targetSlice.
func (m *fieldSetMethod) writeAsArg(targetSlice, writeValue string, output io.Writer) {
	if m.field.Arg.Kind == ast.ArgBuiltin && m.field.Arg.Builtin != m.field.Repr {
		// Fast path: bit == 1, repr == U8, arg == bool.
		startByte := m.start.BytePos()
		bitPos := uint64(m.start.BitOffsetInByte())
		fmt.Fprintf(output, "if %s {\n%s[%d]=%s[%d]|%s\n} else {\n%s[%d]=%s[%d]&%s\n}",
			writeValue,
			targetSlice, startByte, targetSlice, startByte, onesMask(7-bitPos, 7-bitPos),
			targetSlice, startByte, targetSlice, startByte, zerosMask(7-bitPos, 7-bitPos))
		return
	}

	value := writeValue
	if m.field.NeedWriteGuard() {
		if m.field.Arg.Kind == ast.ArgCode {
			fmt.Fprintf(output, "let %s = %s;\n", writeValue, rustVarAsRepr(writeValue, m.field.Repr))
		}
		if m.field.DefaultFixed && m.field.Repr == ast.ByteSlice {
			fmt.Fprintf(output, "assert!(%s == &%s[..]);\n", writeValue, rustByteSliceLit(m.field.Default.Bytes))
		} else if m.field.DefaultFixed {
			fmt.Fprintf(output, "assert!(%s == %d);\n", writeValue, m.field.Default.Num)
		} else {
			fmt.Fprintf(output, "assert!(%s <= %s);\n", writeValue, onesMask(0, m.field.Bit-1))
		}
	} else if m.field.Arg.Kind == ast.ArgCode {
		value = rustVarAsRepr(writeValue, m.field.Repr)
	}
	m.writeRepr(targetSlice, value, output)
}

// writeRepr writes a repr-typed expression writeValue into targetSlice.
func (m *fieldSetMethod) writeRepr(targetSlice, writeValue string, output io.Writer) {
	end := m.start.NextPos(m.field.Bit)

	switch {
	case m.field.Repr == ast.ByteSlice:
		w := newHeadTailWriter(output,
			fmt.Sprintf("(&mut %s[%d..%d]).copy_from_slice(", targetSlice, m.start.BytePos(), end.BytePos()+1), ");")
		defer w.Close()
		fmt.Fprint(w.Writer(), writeValue)

	case m.field.Repr == ast.U8 && m.start.BytePos() == end.BytePos():
		writeTarget := fmt.Sprintf("%s[%d]", targetSlice, m.start.BytePos())
		v := writeValue
		if end.BitOffsetInByte() < 7 {
			v = fmt.Sprintf("%s<<%d", v, 7-end.BitOffsetInByte())
		}
		if m.start.BitOffsetInByte() != 0 || end.BitOffsetInByte() != 7 {
			restOfBits := fmt.Sprintf("(%s[%d]&%s)", targetSlice, m.start.BytePos(),
				zerosMask(7-uint64(end.BitOffsetInByte()), 7-uint64(m.start.BitOffsetInByte())))
			if end.BitOffsetInByte() < 7 {
				fmt.Fprintf(output, "%s=%s|(%s);", writeTarget, restOfBits, v)
			} else {
				fmt.Fprintf(output, "%s=%s|%s;", writeTarget, restOfBits, v)
			}
		} else {
			fmt.Fprintf(output, "%s=%s;", writeTarget, v)
		}

	case m.field.Repr == ast.U8 || m.field.Repr == ast.U16 || m.field.Repr == ast.U32 || m.field.Repr == ast.U64:
		rwType := endianRWType(end.BytePos() - m.start.BytePos() + 1)

		v := writeValue
		if end.BitOffsetInByte() < 7 {
			v = fmt.Sprintf("(%s<<%d)", v, 7-end.BitOffsetInByte())
		}
		if rwType != m.field.Repr {
			v = fmt.Sprintf("(%s as %s)", v, rwType.String())
		}

		if m.start.BitOffsetInByte() != 0 || end.BitOffsetInByte() != 7 {
			if m.start.BitOffsetInByte() > 0 {
				v = fmt.Sprintf("%s|(((%s[%d]&%s) as %s) << %d)", v, targetSlice, m.start.BytePos(),
					onesMask(8-uint64(m.start.BitOffsetInByte()), 7), rwType.String(),
					8*(end.BytePos()-m.start.BytePos()))
			}
			if end.BitOffsetInByte() < 7 {
				v = fmt.Sprintf("%s|((%s[%d]&%s) as %s)", v, targetSlice, end.BytePos(),
					onesMask(0, 6-uint64(end.BitOffsetInByte())), rwType.String())
			}
			fmt.Fprintf(output, "let write_value=%s;\n", v)
			v = "write_value"
		}

		w := endianWrite(output, fmt.Sprintf("&mut %s[%d..%d]", targetSlice, m.start.BytePos(), end.BytePos()+1),
			end.BytePos()-m.start.BytePos()+1, m.field.Endian == ast.BigEndian)
		defer w.Close()
		fmt.Fprint(w.Writer(), v)
	}
}

func endianRWType(byteLen uint64) ast.BuiltinType {
	switch byteLen {
	case 2:
		return ast.U16
	case 4:
		return ast.U32
	default: // 3, 5, 6, 7, 8
		return ast.U64
	}
}

func endianRead(w io.Writer, byteLen uint64, bigEndian bool) *headTailWriter {
	rustMethod := "from_le_bytes"
	rpktMethod := "read_uint_from_le_bytes"
	if bigEndian {
		rustMethod = "from_be_bytes"
		rpktMethod = "read_uint_from_be_bytes"
	}
	switch byteLen {
	case 2:
		return newHeadTailWriter(w, "u16::"+rustMethod+"((", ").try_into().unwrap())")
	case 4:
		return newHeadTailWriter(w, "u32::"+rustMethod+"((", ").try_into().unwrap())")
	case 8:
		return newHeadTailWriter(w, "u64::"+rustMethod+"((", ").try_into().unwrap())")
	default: // 3, 5, 6, 7
		return newHeadTailWriter(w, rpktMethod+"(", ")")
	}
}

func endianWrite(w io.Writer, writeTo string, byteLen uint64, bigEndian bool) *headTailWriter {
	rustMethod := "to_le_bytes"
	rpktMethod := "write_uint_as_le_bytes"
	if bigEndian {
		rustMethod = "to_be_bytes"
		rpktMethod = "write_uint_as_be_bytes"
	}
	switch byteLen {
	case 2, 4, 8:
		return newHeadTailWriter(w, "("+writeTo+").copy_from_slice(&", "."+rustMethod+"());")
	default: // 3, 5, 6, 7
		return newHeadTailWriter(w, rpktMethod+"("+writeTo+",", ");")
	}
}

// onesMask renders a hex literal with every bit from low to high (inclusive,
// numbered from the least significant bit, which is bit 0) set, and every
// other bit clear, ported bit-for-bit from the original compiler's ones_mask.
func onesMask(low, high uint64) string {
	var s strings.Builder
	for i := uint64(0); i < low/4; i++ {
		s.WriteByte('0')
	}
	tail := s.String()
	for low/4 < high/4 {
		var c byte
		switch low % 4 {
		case 0:
			c = 'f'
		case 1:
			c = 'e'
		case 2:
			c = 'c'
		case 3:
			c = '8'
		}
		tail = string(c) + tail
		low += 4 - low%4
	}
	res := 0
	for offset := low % 4; offset <= high%4; offset++ {
		res += 1 << offset
	}
	return fmt.Sprintf("0x%x", res) + tail
}

// zerosMask renders a hex literal with every bit from low to high clear and
// every other bit set, zero-padded out to the representation width implied
// by high, ported bit-for-bit from the original compiler's zeros_mask.
func zerosMask(low, high uint64) string {
	var s strings.Builder
	for i := uint64(0); i < low/4; i++ {
		s.WriteByte('f')
	}
	tail := s.String()
	for low/4 < high/4 {
		var c byte
		switch low % 4 {
		case 0:
			c = '0'
		case 1:
			c = '1'
		case 2:
			c = '3'
		case 3:
			c = '7'
		}
		tail = string(c) + tail
		low += 4 - low%4
	}
	res := 0
	for offset := low % 4; offset <= high%4; offset++ {
		res += 1 << offset
	}
	full := fmt.Sprintf("0x%x", 15-res) + tail

	var reprLen uint64
	switch check.ByteLen(high + 1) {
	case 1:
		reprLen = 1
	case 2:
		reprLen = 2
	case 3, 4:
		reprLen = 4
	default: // 5, 6, 7, 8
		reprLen = 8
	}
	need := int(reprLen*2) - (len(full) - 2)
	if need > 0 {
		full = full[:2] + strings.Repeat("f", need) + full[2:]
	}
	return full
}

// argString renders a Field's arg type as Rust source: the user-supplied
// code for ArgCode, or the built-in type name for ArgBuiltin.
func argString(a ast.Arg) string {
	if a.Kind == ast.ArgCode {
		return a.Code.Text
	}
	return a.Builtin.String()
}

func toRustType(repr ast.BuiltinType, rustTypeCode string) string {
	if repr == ast.ByteSlice {
		return rustTypeCode + "::from_bytes"
	}
	return rustTypeCode + "::from"
}

func rustVarAsRepr(varName string, repr ast.BuiltinType) string {
	if repr == ast.ByteSlice {
		return varName + ".as_bytes()"
	}
	return repr.String() + "::from(" + varName + ")"
}
