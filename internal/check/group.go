package check

import (
	"golang.org/x/exp/slices"

	"github.com/duanjp8617/pktfmt/internal/ast"
)

// checkGroup resolves a PacketGroup's member names against previously
// checked Packets, validates that every member is message-like (carries a
// cond, per spec.md §3's Packet/PacketGroup relationship), computes the
// shared discriminator, and rejects members whose cond ranges overlap on
// it (spec.md §3 "Members must be previously declared Packets with
// compatible Cond over a common discriminator prefix").
func checkGroup(g *ast.PacketGroup, lookup func(string) (*Packet, bool)) (*Group, error) {
	members := make([]*Packet, 0, len(g.Members))
	for _, name := range g.Members {
		p, ok := lookup(name)
		if !ok {
			return nil, checkErr(ast.UnknownGroupMember, g.Span,
				"group %q: unknown member %q", g.Name, name)
		}
		if p.Cond == nil {
			return nil, checkErr(ast.MessageMissingCond, g.Span,
				"group %q: member %q has no cond to dispatch on", g.Name, name)
		}
		members = append(members, p)
	}

	disc, err := groupDiscriminator(g, members)
	if err != nil {
		return nil, err
	}

	if err := groupCheckOverlap(g, members, disc); err != nil {
		return nil, err
	}

	if err := checkGroupIter(g.Name, members, g.EnableIter, g.Span); err != nil {
		return nil, err
	}

	return &Group{Name: g.Name, Members: members, EnableIter: g.EnableIter, Discriminator: disc}, nil
}

// groupDiscriminator is every field name that appears in every member's cond
// at the same bit offset and width -- the common prefix a dispatcher can
// read before knowing which variant it has.
func groupDiscriminator(g *ast.PacketGroup, members []*Packet) ([]string, error) {
	if len(members) == 0 {
		return nil, nil
	}

	counts := map[string]int{}
	widths := map[string]uint64{}
	offsets := map[string]uint64{}
	consistent := map[string]bool{}

	for _, m := range members {
		for _, cl := range m.Cond.Clauses {
			counts[cl.Field.Name]++
			if _, seen := widths[cl.Field.Name]; !seen {
				widths[cl.Field.Name] = cl.Field.Field.Bit
				offsets[cl.Field.Name] = cl.Field.Start.Off
				consistent[cl.Field.Name] = true
			} else if widths[cl.Field.Name] != cl.Field.Field.Bit || offsets[cl.Field.Name] != cl.Field.Start.Off {
				consistent[cl.Field.Name] = false
			}
		}
	}

	var disc []string
	for name, n := range counts {
		if n == len(members) && consistent[name] {
			disc = append(disc, name)
		}
	}
	if len(disc) == 0 {
		return nil, checkErr(ast.GroupOverlap, g.Span,
			"group %q: members share no discriminator field at a common bit offset", g.Name)
	}
	// Sort for deterministic dispatch-guard emission order: map iteration
	// above is unordered, but codegen must produce the same output on
	// every run for a given source file.
	slices.Sort(disc)
	return disc, nil
}

// groupCheckOverlap rejects any pair of members whose cond bounds, on every
// shared discriminator field, are not disjoint: such a buffer would
// legally match more than one variant, which defeats dispatch.
func groupCheckOverlap(g *ast.PacketGroup, members []*Packet, disc []string) error {
	for i := 0; i < len(members); i++ {
		for j := i + 1; j < len(members); j++ {
			if membersOverlap(members[i], members[j], disc) {
				return checkErr(ast.GroupOverlap, g.Span,
					"group %q: members %q and %q have overlapping cond ranges",
					g.Name, members[i].Name, members[j].Name)
			}
		}
	}
	return nil
}

func membersOverlap(a, b *Packet, disc []string) bool {
	for _, name := range disc {
		ab, aok := clauseBounds(a, name)
		bb, bok := clauseBounds(b, name)
		if !aok || !bok {
			continue
		}
		if boundsDisjoint(ab, bb) {
			return false
		}
	}
	return true
}

func clauseBounds(p *Packet, name string) ([]ast.CondBound, bool) {
	for _, cl := range p.Cond.Clauses {
		if cl.Field.Name == name {
			return cl.Bounds, true
		}
	}
	return nil, false
}

// boundsDisjoint reports whether every bound in a is disjoint from every
// bound in b (all pairwise ranges fail to intersect).
func boundsDisjoint(a, b []ast.CondBound) bool {
	for _, x := range a {
		for _, y := range b {
			if boundsIntersect(x, y) {
				return false
			}
		}
	}
	return true
}

func boundsIntersect(a, b ast.CondBound) bool {
	aLo, aHi := resolvedBound(a)
	bLo, bHi := resolvedBound(b)
	return aLo <= bHi && bLo <= aHi
}

func resolvedBound(b ast.CondBound) (lo, hi uint64) {
	if b.HasLo {
		lo = b.Lo
	}
	hi = ^uint64(0)
	if b.HasHi {
		hi = b.Hi
		if b.Exclusive && hi > 0 {
			hi--
		}
	}
	return lo, hi
}
