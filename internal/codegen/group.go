package codegen

import (
	"fmt"
	"io"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
)

// groupGen emits the dispatch enum and group_parse for a checked Group,
// ported from the original compiler's GroupMessageGen: an enum with one
// variant per member, and a parse that reads the shared discriminator
// field once and routes to whichever member's own cond bounds match.
type groupGen struct {
	grp *check.Group
}

func newGroupGen(g *check.Group) *groupGen { return &groupGen{grp: g} }

func (g *groupGen) structName() string { return g.grp.Name + "Group" }

func (g *groupGen) codeGen(output io.Writer) {
	if len(g.grp.Members) == 0 || len(g.grp.Discriminator) == 0 {
		// An empty group declares no variants to dispatch on; nothing to
		// generate.
		return
	}

	g.codeGenEnum(output)

	w := implBlock(output, "T:AsRef<[u8]>", g.structName(), "T")
	g.codeGenGroupedParse("group_parse", "buf", "T", output)
	w.Close()
}

func (g *groupGen) codeGenEnum(output io.Writer) {
	fmt.Fprintf(output, "pub enum %s<T> {\n", g.structName())
	for _, m := range g.grp.Members {
		fmt.Fprintf(output, "%s_(%sPacket<T>),\n", m.Name, m.Name)
	}
	fmt.Fprint(output, "}\n")
}

func (g *groupGen) codeGenGroupedParse(methodName, bufName, bufType string, output io.Writer) {
	first := g.grp.Members[0]
	discName := g.grp.Discriminator[0]
	nf, _ := first.Header.Field(discName)

	fmt.Fprintf(output, "pub fn %s(%s: %s) -> Result<Self, %s> {\n", methodName, bufName, bufType, bufType)

	minLen := nf.Start.NextPos(nf.Field.Bit).BytePos() + 1
	fmt.Fprintf(output, "if %s.chunk().len() < %d {\nreturn Err(%s);\n}\n", bufName, minLen, bufName)

	fmt.Fprint(output, "let cond_value = ")
	newFieldGetMethod(nf.Field, nf.Start).readRepr(fmt.Sprintf("%s.chunk()", bufName), output)
	fmt.Fprint(output, ";\n")

	for _, m := range g.grp.Members {
		bounds, _ := clauseBounds(m, discName)
		fmt.Fprintf(output, "if %s {\n", condGuard("cond_value", bounds))
		fmt.Fprintf(output, "return %sPacket::parse(%s).map(|p| Self::%s_(p));\n", m.Name, bufName, m.Name)
		fmt.Fprint(output, "}\n")
	}
	fmt.Fprintf(output, "Err(%s)\n}\n", bufName)
}

// condGuard renders a member's disjunction of cond bounds as a Rust boolean
// expression over the named variable.
func condGuard(varName string, bounds []ast.CondBound) string {
	var parts []string
	for _, b := range bounds {
		switch {
		case b.HasLo && b.HasHi:
			cmp := "<="
			if b.Exclusive {
				cmp = "<"
			}
			parts = append(parts, fmt.Sprintf("(%s>=%d&&%s%s%d)", varName, b.Lo, varName, cmp, b.Hi))
		case b.HasLo:
			parts = append(parts, fmt.Sprintf("(%s>=%d)", varName, b.Lo))
		case b.HasHi:
			cmp := "<="
			if b.Exclusive {
				cmp = "<"
			}
			parts = append(parts, fmt.Sprintf("(%s%s%d)", varName, cmp, b.Hi))
		default:
			// A bare `..` bound is open on both sides and admits every value.
			parts = append(parts, "true")
		}
	}
	return guardAssertStr(parts, "||")
}

// clauseBounds re-exposes check's unexported lookup for group dispatch.
func clauseBounds(p *check.Packet, name string) ([]ast.CondBound, bool) {
	if p.Cond == nil {
		return nil, false
	}
	for _, cl := range p.Cond.Clauses {
		if cl.Field.Name == name {
			return cl.Bounds, true
		}
	}
	return nil, false
}
