package check

import (
	"github.com/tidwall/btree"

	"github.com/duanjp8617/pktfmt/internal/ast"
)

// NamedField is a Header field together with the bit offset the layout
// pass assigned it.
type NamedField struct {
	Name  string
	Field *ast.Field
	Start BitPos
}

// Header is the checked form of ast.Header: every field has a bit offset,
// and the header is classified fixed or variable (spec.md §4.3.2,
// glossary "Header (fixed / variable)").
type Header struct {
	Fields     []NamedField
	TotalBits  uint64 // sum of the declared fields' bit widths
	Fixed      bool
	LengthRefs map[string]bool // names of fields referenced by a length expr
}

// HeaderLenInBytes returns the byte length of the declared fields: the whole
// header when Fixed is true, and the minimum header length otherwise.
func (h *Header) HeaderLenInBytes() uint64 {
	return ByteLen(h.TotalBits)
}

// Field looks up a checked field by name.
func (h *Header) Field(name string) (NamedField, bool) {
	for _, f := range h.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return NamedField{}, false
}

// Length is the checked form of ast.Length.
type Length struct {
	HeaderLen  ast.LengthField
	PayloadLen ast.LengthField
	PacketLen  ast.LengthField
}

// Cond is the checked form of ast.Cond: each clause additionally knows the
// checked field it constrains.
type Cond struct {
	Clauses []CondClause
}

// CondClause is one checked (field, bounds) conjunct.
type CondClause struct {
	Field  NamedField
	Bounds []ast.CondBound
}

// Packet is the checked IR for a `packet`/`message` declaration.
type Packet struct {
	Name       string
	Header     *Header
	Length     *Length
	Cond       *Cond
	EnableIter bool
	IsMessage  bool
}

// Group is the checked IR for a `group` declaration.
type Group struct {
	Name       string
	Members    []*Packet
	EnableIter bool
	// Discriminator is the set of header field names every member's cond
	// constrains at the same bit offset (spec.md §4.3.5).
	Discriminator []string
}

// Unit is the checked form of an entire TopLevel: every declared Packet and
// Group, plus an ordered-by-name registry used to resolve group members
// (spec.md §4.3.5 "Group members must be previously-declared Packets").
type Unit struct {
	LeadCode  *ast.Code
	Items     []UnitItem
	byName    *btree.Map[string, *Packet]
}

// UnitItem pairs one checked item with its trailing raw-code block.
type UnitItem struct {
	Packet    *Packet // nil if this item is a Group
	Group     *Group  // nil if this item is a Packet
	TrailCode *ast.Code
}
