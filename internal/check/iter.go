package check

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
)

// checkPacketIter enforces spec.md §4.3.4's Packet gating rule: enable_iter
// may only be set on a Packet whose header is variable-length, since a
// fixed-length record can't tell an iterator how far to advance without
// this check -- successive records are skipped by header_len(), which a
// fixed header has no reason to compute at runtime.
func checkPacketIter(name string, h *Header, enableIter bool, span ast.Span) error {
	if enableIter && h.Fixed {
		return checkErr(ast.IterNotPermitted, span,
			"packet %q: enable_iter requires a variable-length header", name)
	}
	return nil
}

// checkGroupIter enforces spec.md §4.3.4's Group gating rule: enable_iter
// may only be set on a Group if every member either has a fixed-length
// header, or is itself individually iter-eligible (its own header is
// variable-length, so it advances on its own terms within the group scan).
func checkGroupIter(name string, members []*Packet, enableIter bool, span ast.Span) error {
	if !enableIter {
		return nil
	}
	for _, m := range members {
		if !m.Header.Fixed && !m.EnableIter {
			return checkErr(ast.IterNotPermitted, span,
				"group %q: member %q has a variable-length header but is not itself iter-eligible", name, m.Name)
		}
	}
	return nil
}
