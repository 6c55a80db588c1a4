package ast

// ErrorKind enumerates the AST/check-phase failures named in spec.md §4.3,
// plus the parse-site structural failure raised while assembling a Length
// (spec.md §4.2: "InvalidLengthShape").
type ErrorKind int

const (
	InvalidBitWidth ErrorKind = iota
	InvalidRepr
	InvalidArg
	DefaultOutOfRange
	DefaultFixedNotAllowed
	DuplicateField
	BitWidthMismatch
	UnknownField
	LengthCycle
	InvalidLengthShape
	EmptyRange
	CondOnNonIntField
	IterNotPermitted
	GroupOverlap
	UnknownGroupMember
	MessageMissingCond
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidBitWidth:
		return "InvalidBitWidth"
	case InvalidRepr:
		return "InvalidRepr"
	case InvalidArg:
		return "InvalidArg"
	case DefaultOutOfRange:
		return "DefaultOutOfRange"
	case DefaultFixedNotAllowed:
		return "DefaultFixedNotAllowed"
	case DuplicateField:
		return "DuplicateField"
	case BitWidthMismatch:
		return "BitWidthMismatch"
	case UnknownField:
		return "UnknownField"
	case LengthCycle:
		return "LengthCycle"
	case InvalidLengthShape:
		return "InvalidLengthShape"
	case EmptyRange:
		return "EmptyRange"
	case CondOnNonIntField:
		return "CondOnNonIntField"
	case IterNotPermitted:
		return "IterNotPermitted"
	case GroupOverlap:
		return "GroupOverlap"
	case UnknownGroupMember:
		return "UnknownGroupMember"
	case MessageMissingCond:
		return "MessageMissingCond"
	default:
		return "AstError"
	}
}

// Error is an AST or semantic-check failure, carrying the span that
// pinpoints the offender (spec.md §4.3, §7).
type Error struct {
	ErrKind ErrorKind
	Span    Span
	Msg     string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Pos() (int, int) { return e.Span.Start, e.Span.End }
func (e *Error) Kind() string    { return e.ErrKind.String() }

func newErr(kind ErrorKind, span Span, msg string) *Error {
	return &Error{ErrKind: kind, Span: span, Msg: msg}
}
