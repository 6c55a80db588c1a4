package codegen

import (
	"fmt"
	"io"
	"strings"
)

// container generates the generic buffer-wrapping struct every Packet and
// Group is emitted as: `pub struct Name<T> { buf: T }` (ported from the
// original compiler's codegen/container.rs Container).
type container struct {
	structName string
	derives    []string
}

func (c container) codeGen(output io.Writer) {
	w := newHeadTailWriter(output, "#[derive(", ")]\n")
	fmt.Fprint(w.Writer(), strings.Join(c.derives, ","))
	w.Close()

	fmt.Fprintf(output, "pub struct %s<T> {\nbuf: T\n}\n", c.structName)
}

func codeGenParseUnchecked(bufName, bufType string, output io.Writer) {
	fmt.Fprintf(output, "#[inline]\npub fn parse_unchecked(%s: %s) -> Self{\nSelf{ %s }\n}\n",
		bufName, bufType, bufName)
}

func codeGenBuf(bufName, bufType string, output io.Writer) {
	fmt.Fprintf(output, "#[inline]\npub fn buf(&self) -> &%s{\n&self.%s\n}\n", bufType, bufName)
}

func codeGenRelease(bufName, bufType string, output io.Writer) {
	fmt.Fprintf(output, "#[inline]\npub fn release(self) -> %s{\nself.%s\n}\n", bufType, bufName)
}

func codeGenHeaderSlice(methodName, mutableOp, bufAccess, headerLen string, output io.Writer) {
	fmt.Fprintf(output, "#[inline]\npub fn %s(%sself) -> %s[u8]{\n%sself%s[0..%s]\n}\n",
		methodName, mutableOp, mutableOp, mutableOp, bufAccess, headerLen)
}

func codeGenOptionSlice(methodName, mutableOp, bufAccess, headerLen string, output io.Writer) {
	fmt.Fprintf(output, "#[inline]\npub fn %s(%sself)->%s[u8]{\nlet header_len = (self.header_len() as usize);\n%sself%s[%s..header_len]\n}\n",
		methodName, mutableOp, mutableOp, mutableOp, bufAccess, headerLen)
}
