// Package compiler wires the lexer, parser, semantic analyzer, and code
// generator into a single Compile entry point, mirroring bin/pktfmt.rs's
// driver function in the original compiler.
package compiler

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/check"
	"github.com/duanjp8617/pktfmt/internal/codegen"
	"github.com/duanjp8617/pktfmt/internal/parser"
	"github.com/duanjp8617/pktfmt/internal/reporter"
)

// Compile parses, checks, and generates Rust source for one .pktfmt file.
// On any error from the parse or check stage, it renders a single
// diagnostic to stderr and returns reporter.ErrInvalidSource: per spec.md
// §7, a compilation unit yields at most one diagnostic, and no partial
// output is ever produced.
func Compile(filename string, src []byte, stderr io.Writer) (string, error) {
	top, err := parser.Parse(src)
	if err != nil {
		return "", reportAndFail(stderr, filename, src, err)
	}

	unit, err := check.Check(top)
	if err != nil {
		return "", reportAndFail(stderr, filename, src, err)
	}

	return codegen.Generate(unit), nil
}

func reportAndFail(stderr io.Writer, filename string, src []byte, err error) error {
	posErr, ok := err.(reporter.PosError)
	if !ok {
		fmt.Fprintf(stderr, "error: %s\n", err)
		return reporter.ErrInvalidSource
	}
	reporter.Render(stderr, filename, src, posErr)
	return reporter.ErrInvalidSource
}
