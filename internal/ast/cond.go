package ast

import "fmt"

// CondBound is an integer range produced by the range syntax: a
// bare N is [N, N]; `a..b` is exclusive of b; `a..=b` is inclusive of b;
// `..b`/`a..` leave one side open (represented with the field's natural
// min/max once the checker resolves the field's bit width).
type CondBound struct {
	HasLo bool
	Lo    uint64
	HasHi bool
	Hi    uint64
	// Exclusive marks a `..` (as opposed to `..=`) upper bound.
	Exclusive bool
	Span      Span
}

// CondClause is one `field_name == range (|| range)*` conjunct.
type CondClause struct {
	FieldName string
	Bounds    []CondBound
	Span      Span
}

// Cond is the conjunction of every CondClause (each clause internally
// disjoins its Bounds).
type Cond struct {
	Clauses []CondClause
	Span    Span
}

// NewCond builds a Cond, rejecting a clause that names the same field
// twice (ambiguous, and not expressible in the grammar's conjunctive form
// without a redundant merge) and any clause whose bound is syntactically
// empty regardless of field width (e.g. Lo > Hi once both sides are
// concrete numbers).
func NewCond(clauses []CondClause, span Span) (*Cond, error) {
	seen := make(map[string]bool, len(clauses))
	for _, c := range clauses {
		if seen[c.FieldName] {
			return nil, newErr(CondOnNonIntField, c.Span, fmt.Sprintf(
				"field %q appears more than once in cond", c.FieldName))
		}
		seen[c.FieldName] = true
		for _, b := range c.Bounds {
			if b.HasLo && b.HasHi {
				hi := b.Hi
				if b.Exclusive {
					if hi == 0 {
						return nil, newErr(EmptyRange, b.Span, "empty range: upper bound is 0")
					}
					hi--
				}
				if b.Lo > hi {
					return nil, newErr(EmptyRange, b.Span, fmt.Sprintf(
						"empty range: %d..%s%d", b.Lo, exclMarker(b.Exclusive), b.Hi))
				}
			}
		}
	}
	return &Cond{Clauses: clauses, Span: span}, nil
}

func exclMarker(excl bool) string {
	if excl {
		return ""
	}
	return "="
}
