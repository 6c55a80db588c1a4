package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// headerGen emits the plain `<Name>Header<T>` struct backing a Packet's
// `prepend_header` argument: a fixed-length, AsRef/AsMut-backed view with
// its own field getters/setters, independent of the PktBuf-based Packet
// struct (ported from the original compiler's HeaderGen).
type headerGen struct {
	pkt *check.Packet
}

func newHeaderGen(p *check.Packet) *headerGen { return &headerGen{pkt: p} }

func (g *headerGen) structName() string { return g.pkt.Name + "Header" }

func (g *headerGen) templateConstName() string { return upperSnake(g.pkt.Name) + "_HEADER_TEMPLATE" }

func (g *headerGen) codeGen(output io.Writer) {
	h := g.pkt.Header

	g.codeGenTemplate(output)

	con := container{structName: g.structName(), derives: []string{"Debug", "Clone", "Copy"}}
	con.codeGen(output)

	fields := newFieldGenerator(h)
	length := newLengthGenerator(h, g.pkt.Length)
	headerLen := fmt.Sprintf("%d", h.HeaderLenInBytes())

	{
		w := implBlock(output, "T:AsRef<[u8]>", g.structName(), "T")
		codeGenParseUnchecked("buf", "T", w.Writer())
		codeGenBuf("buf", "T", w.Writer())
		codeGenRelease("buf", "T", w.Writer())
		fmt.Fprintf(w.Writer(), "#[inline]\npub fn parse(buf: T) -> Result<Self, T> {\n")
		fmt.Fprintf(w.Writer(), "if buf.as_ref().len() < %s {\nreturn Err(buf);\n}\n", headerLen)
		fmt.Fprint(w.Writer(), "Ok(Self { buf })\n}\n")
		codeGenHeaderSlice("header_slice", "&", ".buf.as_ref()", headerLen, w.Writer())
		fields.codeGen("self.buf.as_ref()", "", w.Writer())
		length.codeGen("self.buf.as_ref()", "", w.Writer())
		w.Close()
	}

	{
		w := implBlock(output, "T:AsMut<[u8]>", g.structName(), "T")
		codeGenHeaderSlice("header_slice_mut", "&mut ", ".buf.as_mut()", headerLen, w.Writer())
		fields.codeGen("self.buf.as_mut()", "value", w.Writer())
		length.codeGen("self.buf.as_mut()", "value", w.Writer())
		w.Close()
	}
}

func (g *headerGen) codeGenTemplate(output io.Writer) {
	h := g.pkt.Header
	fmt.Fprintf(output, "/// A fixed %s header template, every field set to its default value.\n", g.pkt.Name)
	fmt.Fprintf(output, "pub const %s: %s<[u8;%d]> = %s { buf: [",
		g.templateConstName(), g.structName(), h.HeaderLenInBytes(), g.structName())

	tmpl := headerTemplate(h)
	for i, b := range tmpl {
		if i > 0 {
			fmt.Fprint(output, ",")
		}
		fmt.Fprintf(output, "0x%02x", b)
	}
	fmt.Fprint(output, "] };\n")
}

// headerTemplate renders the default byte image of a fixed-layout header:
// every field written with its default value (zero unless declared
// otherwise), ported from the original compiler's Header::header_template.
// Rather than the original's per-repr byte-boundary arithmetic, this walks
// the field's own bits one at a time against the header's MSB-first global
// bit numbering -- equivalent, and simpler because it never special-cases
// repr width or byte alignment. A little-endian field that starts and ends on
// byte boundaries is written least significant byte first instead.
func headerTemplate(h *check.Header) []byte {
	buf := make([]byte, h.HeaderLenInBytes())
	for _, nf := range h.Fields {
		writeDefaultIntoTemplate(buf, nf)
	}
	return buf
}

func writeDefaultIntoTemplate(buf []byte, nf check.NamedField) {
	if nf.Field.Repr == ast.ByteSlice {
		copy(buf[nf.Start.BytePos():], nf.Field.Default.Bytes)
		return
	}

	var val uint64
	switch nf.Field.Default.Kind {
	case ast.DefaultBool:
		if nf.Field.Default.Bool {
			val = 1
		}
	case ast.DefaultNum:
		val = nf.Field.Default.Num
	}

	if nf.Field.Endian == ast.LittleEndian && nf.Start.BitOffsetInByte() == 0 && nf.Field.Bit%8 == 0 {
		for i := uint64(0); i < nf.Field.Bit/8; i++ {
			buf[nf.Start.BytePos()+i] = byte(val >> (8 * i))
		}
		return
	}

	for k := uint64(0); k < nf.Field.Bit; k++ {
		bit := (val >> (nf.Field.Bit - 1 - k)) & 1
		globalOff := nf.Start.Off + k
		bytePos := globalOff / 8
		bitInByte := globalOff % 8
		if bit == 1 {
			buf[bytePos] |= 1 << (7 - bitInByte)
		}
	}
}
