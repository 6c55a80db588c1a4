package ast

import "fmt"

// NamedField pairs a declared field name with its Field and the span of its
// declaration (`name = Field{...}`).
type NamedField struct {
	Name  string
	Field *Field
	Span  Span
}

// Header is the ordered `header = [...]` field list. Bit offsets are
// assigned later, during semantic analysis (check's checkHeader), since they
// require walking the whole declaration in order; the AST only records
// declaration order and enforces name uniqueness.
type Header struct {
	Fields []NamedField
	Span   Span
}

// NewHeader builds a Header from its parsed field list, rejecting duplicate
// field names (spec.md §3 "invariant: field names unique").
func NewHeader(fields []NamedField, span Span) (*Header, error) {
	seen := make(map[string]Span, len(fields))
	for _, f := range fields {
		if prior, ok := seen[f.Name]; ok {
			_ = prior
			return nil, newErr(DuplicateField, f.Span, fmt.Sprintf(
				"duplicate field name %q", f.Name))
		}
		seen[f.Name] = f.Span
	}
	return &Header{Fields: fields, Span: span}, nil
}

// Field looks up a declared field by name.
func (h *Header) Field(name string) (*Field, bool) {
	for _, f := range h.Fields {
		if f.Name == name {
			return f.Field, true
		}
	}
	return nil, false
}
