package codegen

import (
	"bytes"
	"fmt"

	"github.com/duanjp8617/pktfmt/internal/check"
)

// Generate renders a checked Unit as Rust source text: the leading raw-code
// block, then each Packet's header/packet struct pair or Group's dispatch
// enum in declaration order, each followed by its trailing raw-code block
// (spec.md §5, ported from the original compiler's bin/pktfmt.rs driver
// loop).
func Generate(u *check.Unit) string {
	var buf bytes.Buffer

	if u.LeadCode != nil {
		fmt.Fprint(&buf, u.LeadCode.Text)
		fmt.Fprintln(&buf)
	}

	for _, item := range u.Items {
		switch {
		case item.Packet != nil:
			newHeaderGen(item.Packet).codeGen(&buf)
			fmt.Fprintln(&buf)
			newPacketGen(item.Packet).codeGen(&buf)
		case item.Group != nil:
			newGroupGen(item.Group).codeGen(&buf)
		}
		fmt.Fprintln(&buf)

		if item.TrailCode != nil {
			fmt.Fprintln(&buf, item.TrailCode.Text)
			fmt.Fprintln(&buf)
		}
	}

	return buf.String()
}
