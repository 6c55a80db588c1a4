// Package codegen turns a checked check.Unit into Rust source text: getters
// and setters computed from each field's bit offset, repr, and endianness,
// plus the container-level parse/build/release/payload/iter/group
// operations (spec.md §5, ported from the original compiler's codegen/*.rs).
package codegen

import (
	"fmt"
	"io"
)

// headTailWriter writes a head string immediately, then a tail string when
// Close is called, bracketing whatever was written to Writer() in between.
// It is the Go analogue of the original compiler's HeadTailWriter, which
// relied on Rust's Drop to emit its tail; Go has no destructors, so callers
// must defer Close explicitly.
type headTailWriter struct {
	w    io.Writer
	tail string
}

func newHeadTailWriter(w io.Writer, head, tail string) *headTailWriter {
	io.WriteString(w, head)
	return &headTailWriter{w: w, tail: tail}
}

func (h *headTailWriter) Writer() io.Writer { return h.w }

func (h *headTailWriter) Close() { io.WriteString(h.w, h.tail) }

// implBlock opens `impl<traitName> typeName<typeParam>{` and returns a
// writer whose Close emits the matching `}`.
func implBlock(w io.Writer, traitName, typeName, typeParam string) *headTailWriter {
	return newHeadTailWriter(w, fmt.Sprintf("impl<%s> %s<%s>{\n", traitName, typeName, typeParam), "}\n")
}

// guardAssertStr joins a set of boolean guard expressions with comp ("&&" or
// "||"), parenthesizing each once there is more than one.
func guardAssertStr(guards []string, comp string) string {
	if len(guards) == 1 {
		return guards[0]
	}
	s := ""
	for i, g := range guards {
		s += "(" + g + ")"
		if i < len(guards)-1 {
			s += comp
		}
	}
	return s
}
