package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// iterGen emits an Iter/IterMut pair over consecutive records of one fixed-
// shape Packet packed back to back in a slice, gated on enable_iter
// (spec.md §4.3.4) and ported from the original compiler's iter.rs
// boilerplate_codegen/iter_parse_for_msg, generalized from "iterate group
// members" to "iterate repeats of a single packet type".
type iterGen struct {
	pkt *check.Packet
}

func newIterGen(p *check.Packet) *iterGen { return &iterGen{pkt: p} }

func (g *iterGen) codeGen(output io.Writer) {
	name := g.pkt.Name
	headerLenExpr := g.headerLenExpr("self.buf")
	headerLenExprMut := g.headerLenExpr("self.buf")

	fmt.Fprintf(output, `#[derive(Debug, Clone, Copy)]
pub struct %[1]sIter<'a> {
buf: &'a [u8],
}
impl<'a> %[1]sIter<'a> {
pub fn from_slice(buf: &'a [u8]) -> Self {
Self { buf }
}
}
impl<'a> Iterator for %[1]sIter<'a> {
type Item = %[1]sPacket<&'a [u8]>;
fn next(&mut self) -> Option<Self::Item> {
if self.buf.len() < %[2]d {
return None;
}
let header_len = %[3]s;
if header_len > self.buf.len() {
return None;
}
let (fst, snd) = self.buf.split_at(header_len);
self.buf = snd;
%[1]sPacket::parse(fst).ok()
}
}
#[derive(Debug)]
pub struct %[1]sIterMut<'a> {
buf: &'a mut [u8],
}
impl<'a> %[1]sIterMut<'a> {
pub fn from_slice_mut(buf: &'a mut [u8]) -> Self {
Self { buf }
}
}
impl<'a> Iterator for %[1]sIterMut<'a> {
type Item = %[1]sPacket<&'a mut [u8]>;
fn next(&mut self) -> Option<Self::Item> {
if self.buf.len() < %[2]d {
return None;
}
let header_len = %[4]s;
if header_len > self.buf.len() {
return None;
}
let (fst, snd) = std::mem::replace(&mut self.buf, &mut []).split_at_mut(header_len);
self.buf = snd;
%[1]sPacket::parse(fst).ok()
}
}
`, name, g.pkt.Header.HeaderLenInBytes(), headerLenExpr, headerLenExprMut)
}

// headerLenExpr renders the expression this packet uses to learn its own
// header length from a just-split slice: the fixed constant when header_len
// isn't declared, or a throwaway unchecked-parse read of the length field
// otherwise.
func (g *iterGen) headerLenExpr(bufName string) string {
	if g.pkt.Length.HeaderLen.Kind == ast.LenNone {
		return fmt.Sprintf("%d", g.pkt.Header.HeaderLenInBytes())
	}
	return fmt.Sprintf("(%sPacket::parse_unchecked(%s).header_len() as usize)", g.pkt.Name, bufName)
}
