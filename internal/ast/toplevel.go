package ast

// UnitItem pairs one declared ParsedItem with the raw-code block (if any)
// that trails it in the source.
type UnitItem struct {
	Item      ParsedItem
	TrailCode *Code // nil if no trailing %%...%% block follows
}

// TopLevel is the complete compilation unit: a leading raw-code block,
// then one or more (ParsedItem, trailing code?) pairs.
type TopLevel struct {
	LeadCode *Code
	Items    []UnitItem
}
