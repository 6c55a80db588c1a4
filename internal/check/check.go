package check

import (
	"github.com/tidwall/btree"

	"github.com/duanjp8617/pktfmt/internal/ast"
)

// Check walks a parsed TopLevel in declaration order and produces the
// checked Unit the code generator consumes, enforcing every invariant in
// spec.md §4.3: bit layout, length/cond resolution, message/cond pairing,
// iter gating, and group member/discriminator validation.
func Check(top *ast.TopLevel) (*Unit, error) {
	u := &Unit{
		LeadCode: top.LeadCode,
		byName:   btree.NewMap[string, *Packet](0),
	}

	for _, item := range top.Items {
		ui := UnitItem{TrailCode: item.TrailCode}

		switch item.Item.Kind {
		case ast.ItemPacket:
			p, err := checkPacket(item.Item.Packet)
			if err != nil {
				return nil, err
			}
			u.byName.Set(p.Name, p)
			ui.Packet = p

		case ast.ItemGroup:
			g, err := checkGroup(item.Item.Group, func(name string) (*Packet, bool) {
				return u.byName.Get(name)
			})
			if err != nil {
				return nil, err
			}
			ui.Group = g
		}

		u.Items = append(u.Items, ui)
	}

	return u, nil
}

// checkPacket runs the full per-Packet checking pipeline: layout, length,
// cond, the message/cond pairing rule, and iter gating (spec.md §3, §4.3).
func checkPacket(p *ast.Packet) (*Packet, error) {
	if p.IsMessage && p.Cond == nil {
		return nil, checkErr(ast.MessageMissingCond, p.Span,
			"message %q must declare a cond", p.Name)
	}

	header, err := checkHeader(p.Header, p.Length)
	if err != nil {
		return nil, err
	}

	length, err := checkLength(header, p.Length)
	if err != nil {
		return nil, err
	}

	var cond *Cond
	if p.Cond != nil {
		cond, err = checkCond(header, p.Cond)
		if err != nil {
			return nil, err
		}
	}

	if err := checkPacketIter(p.Name, header, p.EnableIter, p.Span); err != nil {
		return nil, err
	}

	return &Packet{
		Name:       p.Name,
		Header:     header,
		Length:     length,
		Cond:       cond,
		EnableIter: p.EnableIter,
		IsMessage:  p.IsMessage,
	}, nil
}
