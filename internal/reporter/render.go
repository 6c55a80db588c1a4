package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
)

// lineIndex records the [start,end) byte range of every line in src, the
// way the original compiler's file_text.rs does, so a byte offset can be
// mapped to a 1-based (line, column).
type lineIndex struct {
	src   []byte
	lines [][2]int
}

func newLineIndex(src []byte) *lineIndex {
	li := &lineIndex{src: src}
	start := 0
	for i, b := range src {
		if b == '\n' {
			li.lines = append(li.lines, [2]int{start, i})
			start = i + 1
		}
	}
	li.lines = append(li.lines, [2]int{start, len(src)})
	return li
}

func (li *lineIndex) lineOf(offset int) int {
	for i, l := range li.lines {
		if offset >= l[0] && offset <= l[1] {
			return i
		}
	}
	return len(li.lines) - 1
}

func (li *lineIndex) text(lineIdx int) string {
	l := li.lines[lineIdx]
	return string(li.src[l[0]:l[1]])
}

// caretWidth returns the display width (in grapheme clusters) of
// src[start:end], or 1 for an empty span. pktfmt source is otherwise restricted to single-byte runes (see
// token.New), so this only matters while rendering the very diagnostic
// that reports a rejected multi-byte character -- the offending rune must
// still line up a caret underneath it.
func caretWidth(s string) int {
	if s == "" {
		return 1
	}
	return uniseg.GraphemeClusterCount(s)
}

// Render writes a single diagnostic in pktfmt's stable stderr format (spec.md §6):
//
//	error: <kind>: <message>
//	 --> <file>:<line>:<col>
//	  |
//	<src excerpt>
//	  | <caret>
func Render(w io.Writer, filename string, src []byte, err PosError) {
	start, end := err.Pos()
	if end <= start {
		end = start + 1
	}
	if end > len(src) {
		end = len(src)
	}

	li := newLineIndex(src)
	startLine := li.lineOf(start)
	endLine := li.lineOf(end - 1)

	startCol := start - li.lines[startLine][0] + 1

	fmt.Fprintf(w, "error: %s: %s\n", err.Kind(), err.Error())
	fmt.Fprintf(w, " --> %s:%d:%d\n", filename, startLine+1, startCol)
	fmt.Fprintln(w, "  |")

	if startLine == endLine {
		renderSingleLine(w, li, startLine, start, end)
	} else {
		renderMultiLine(w, li, startLine, endLine, start, end)
	}
}

func renderSingleLine(w io.Writer, li *lineIndex, lineIdx, start, end int) {
	lineStart := li.lines[lineIdx][0]
	text := li.text(lineIdx)
	fmt.Fprintf(w, "%s\n", text)

	leftPad := caretWidth(text[:start-lineStart])
	caretLen := caretWidth(text[start-lineStart : end-lineStart])
	if caretLen < 1 {
		caretLen = 1
	}
	fmt.Fprintf(w, "  | %s%s\n", strings.Repeat(" ", leftPad), strings.Repeat("^", caretLen))
}

// renderMultiLine renders a span crossing line boundaries, truncating spans
// longer than 6 lines to the first and last 3 with a "......" elision
// marker (ported from the original compiler's highlight_block, SPEC_FULL.md
// item 2).
func renderMultiLine(w io.Writer, li *lineIndex, startLine, endLine, start, end int) {
	printLine := func(idx int) {
		fmt.Fprintf(w, "%d | %s\n", idx+1, li.text(idx))
	}

	if endLine-startLine > 5 {
		for i := startLine; i < startLine+3; i++ {
			printLine(i)
		}
		fmt.Fprintln(w, "......")
		for i := endLine - 2; i <= endLine; i++ {
			printLine(i)
		}
	} else {
		for i := startLine; i <= endLine; i++ {
			printLine(i)
		}
	}

	endLineStart := li.lines[endLine][0]
	endText := li.text(endLine)
	caretLen := caretWidth(endText[:end-endLineStart])
	if caretLen < 1 {
		caretLen = 1
	}
	fmt.Fprintf(w, "  | %s\n", strings.Repeat("^", caretLen))
}
