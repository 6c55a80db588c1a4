package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/check"
)

// payloadGen emits the `payload` accessor that releases the
// buffer beyond the header, trimming any trailing bytes the buffer holds
// past this packet's declared length (ported from the original compiler's
// Payload::code_gen_for_pktbuf).
type payloadGen struct {
	pkt *check.Packet
}

func newPayloadGen(p *check.Packet) *payloadGen { return &payloadGen{pkt: p} }

func (g *payloadGen) codeGen(methodName, bufName, bufType string, output io.Writer) {
	h := g.pkt.Header
	l := g.pkt.Length
	headerLenName := fmt.Sprintf("%d", h.HeaderLenInBytes())

	fmt.Fprintf(output, "#[inline]\npub fn %s(self)->%s{\n", methodName, bufType)

	switch {
	case l.PayloadLen.Appear():
		headerLenVar := headerLenName
		if l.HeaderLen.Appear() {
			headerLenVar = "(self.header_len() as usize)"
		}
		fmt.Fprintf(output, "assert!(%s+self.payload_len() as usize<=self.buf.remaining());\n", headerLenVar)
		fmt.Fprintf(output, "let trim_size = self.buf.remaining()-(%s+self.payload_len() as usize);\n", headerLenVar)
	case l.PacketLen.Appear():
		fmt.Fprint(output, "assert!((self.packet_len() as usize)<=self.buf.remaining());\n")
		fmt.Fprint(output, "let trim_size = self.buf.remaining()-self.packet_len() as usize;\n")
	}

	headerLenVar := headerLenName
	if l.HeaderLen.Appear() {
		fmt.Fprint(output, "let header_len = self.header_len() as usize;\n")
		headerLenVar = "header_len"
	}

	fmt.Fprintf(output, "let mut %s = self.%s;\n", bufName, bufName)
	if l.PayloadLen.Appear() || l.PacketLen.Appear() {
		fmt.Fprintf(output, "if trim_size > 0 {\n%s.trim_off(trim_size);\n}\n", bufName)
	}

	fmt.Fprintf(output, "%s.advance(%s);\n%s\n}\n", bufName, headerLenVar, bufName)
}

// codeGenPrependHeader emits a `prepend_header` helper for the contiguous
// slice-backed accessors in container.go, ported from Payload's contiguous-
// buffer variant: it returns the slice that starts right after the header
// and ends at header_len+payload_len or at packet_len when one of those is
// declared, or at the end of the buffer otherwise.
func codeGenPrependHeader(pkt *check.Packet, methodName, mutableOp, bufName, bufType, bufAccess string, output io.Writer) {
	h := pkt.Header
	l := pkt.Length

	fmt.Fprintf(output, "#[inline]\npub fn %s(%sself)->%s{\n", methodName, mutableOp, bufType)

	startIndex := fmt.Sprintf("%d", h.HeaderLenInBytes())
	if l.HeaderLen.Appear() {
		fmt.Fprint(output, "let header_len = self.header_len() as usize;\n")
		startIndex = "header_len"
	}

	endIndex := ""
	switch {
	case l.PayloadLen.Appear():
		fmt.Fprint(output, "let payload_len = self.payload_len() as usize;\n")
		endIndex = fmt.Sprintf("(%s+payload_len)", startIndex)
	case l.PacketLen.Appear():
		fmt.Fprint(output, "let packet_len = self.packet_len() as usize;\n")
		endIndex = "packet_len"
	}

	fmt.Fprintf(output, "&%sself.%s.%s[%s..%s]\n", mutableOp, bufName, bufAccess, startIndex, endIndex)
	fmt.Fprint(output, "}\n")
}
