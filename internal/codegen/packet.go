package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// packetGen ties field/length/container/parse/build/payload generation
// together for one Packet, mirroring the original compiler's PacketGen:
// a header-length constant, a generic `<Name>Packet<T>` struct, two impl
// blocks keyed on what the buffer type supports (PktBuf for read+parse,
// BufMut for writing), and the iterator when enable_iter is set. The header
// template constant is emitted by headerGen.
type packetGen struct {
	pkt *check.Packet
}

func newPacketGen(p *check.Packet) *packetGen { return &packetGen{pkt: p} }

func (g *packetGen) structName() string { return g.pkt.Name + "Packet" }

func (g *packetGen) headerLenConstName() string { return upperSnake(g.pkt.Name) + "_HEADER_LEN" }

func (g *packetGen) codeGen(output io.Writer) {
	h := g.pkt.Header

	fmt.Fprintf(output, "/// The fixed byte length of the %s header.\npub const %s: usize = %d;\n",
		g.pkt.Name, g.headerLenConstName(), h.HeaderLenInBytes())

	con := container{structName: g.structName(), derives: []string{"Debug", "Clone", "Copy"}}
	con.codeGen(output)

	fields := newFieldGenerator(h)
	length := newLengthGenerator(h, g.pkt.Length)
	parse := newParseGen(g.pkt)
	payload := newPayloadGen(g.pkt)
	build := newBuildGen(g.pkt)

	{
		w := implBlock(output, "T:PktBuf", g.structName(), "T")
		codeGenParseUnchecked("buf", "T", w.Writer())
		codeGenBuf("buf", "T", w.Writer())
		codeGenRelease("buf", "T", w.Writer())
		parse.codeGenParse("buf", "T", w.Writer())
		payload.codeGen("payload", "buf", "T", w.Writer())
		codeGenHeaderSlice("header_slice", "&", ".buf.chunk()", fmt.Sprintf("%d", h.HeaderLenInBytes()), w.Writer())
		if g.wantsOptionSlice() {
			codeGenOptionSlice("option_slice", "&", ".buf.chunk()", fmt.Sprintf("%d", h.HeaderLenInBytes()), w.Writer())
		}
		fields.codeGen("self.buf.chunk()", "", w.Writer())
		length.codeGen("self.buf.chunk()", "", w.Writer())
		w.Close()
	}

	{
		w := implBlock(output, "T:BufMut", g.structName(), "T")
		build.codeGen("prepend_header", "HT:AsRef<[u8]>", "buf", "T", "header",
			fmt.Sprintf("&%sHeader<HT>", g.pkt.Name), w.Writer())
		if g.wantsOptionSlice() {
			codeGenOptionSlice("option_slice_mut", "&mut ", ".buf.chunk_mut()", fmt.Sprintf("%d", h.HeaderLenInBytes()), w.Writer())
		}
		fields.codeGen("self.buf.chunk_mut()", "value", w.Writer())
		length.codeGen("self.buf.chunk_mut()", "value", w.Writer())
		w.Close()
	}

	if g.pkt.EnableIter {
		newIterGen(g.pkt).codeGen(output)
	}
}

// wantsOptionSlice reports whether a variable-length header leaves a
// nonempty "options" region worth a dedicated accessor -- i.e. header_len is
// declared, and isn't a fixed expression that always evaluates back to the
// minimum header size (ported from the original compiler's repeated
// do_generation check in mod.rs).
func (g *packetGen) wantsOptionSlice() bool {
	hl := g.pkt.Length.HeaderLen
	if !hl.Appear() {
		return false
	}
	if hl.Kind == ast.LenExpr || hl.Kind == ast.LenFieldRef {
		nf, _ := g.pkt.Header.Field(hl.Expr.FieldRefs()[0])
		if nf.Field.DefaultFixed {
			fixed := hl.Expr.Eval(func(string) uint64 { return nf.Field.Default.Num })
			if fixed == g.pkt.Header.HeaderLenInBytes() {
				return false
			}
		}
	}
	return true
}

func upperSnake(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}
