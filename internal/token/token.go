// Package token defines the lexical tokens of the pktfmt grammar.
package token

import "fmt"

// Kind identifies the lexical class of a Token.
type Kind int

const (
	EOF Kind = iota
	Ident
	BuiltinType
	BooleanValue
	Num
	HexNum
	Code // a %%...%% raw-code escape, interior text verbatim

	// keywords
	KwPacket
	KwMessage
	KwGroup
	KwHeader
	KwField
	KwBit
	KwRepr
	KwArg
	KwDefault
	KwGen
	KwLength
	KwHeaderLen
	KwPayloadLen
	KwPacketLen
	KwCond
	KwMembers
	KwEnableIter
	KwEndian

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	At
	Assign

	// arithmetic
	Plus
	Minus
	Star
	Slash

	// comparison / logical
	EqEq
	Neq
	Gt
	Ge
	Lt
	Le
	Not
	AndAnd
	OrOr

	// ranges
	DotDot
	DotDotEq
)

var names = map[Kind]string{
	EOF:          "EOF",
	Ident:        "identifier",
	BuiltinType:  "builtin type",
	BooleanValue: "boolean literal",
	Num:          "number",
	HexNum:       "hex number",
	Code:         "code block",
	KwPacket:     "'packet'",
	KwMessage:    "'message'",
	KwGroup:      "'group'",
	KwHeader:     "'header'",
	KwField:      "'Field'",
	KwBit:        "'bit'",
	KwRepr:       "'repr'",
	KwArg:        "'arg'",
	KwDefault:    "'default'",
	KwGen:        "'gen'",
	KwLength:     "'length'",
	KwHeaderLen:  "'header_len'",
	KwPayloadLen: "'payload_len'",
	KwPacketLen:  "'packet_len'",
	KwCond:       "'cond'",
	KwMembers:    "'members'",
	KwEnableIter: "'enable_iter'",
	KwEndian:     "'endian'",
	LParen:       "'('",
	RParen:       "')'",
	LBrace:       "'{'",
	RBrace:       "'}'",
	LBracket:     "'['",
	RBracket:     "']'",
	Comma:        "','",
	At:           "'@'",
	Assign:       "'='",
	Plus:         "'+'",
	Minus:        "'-'",
	Star:         "'*'",
	Slash:        "'/'",
	EqEq:         "'=='",
	Neq:          "'!='",
	Gt:           "'>'",
	Ge:           "'>='",
	Lt:           "'<'",
	Le:           "'<='",
	Not:          "'!'",
	AndAnd:       "'&&'",
	OrOr:         "'||'",
	DotDot:       "'..'",
	DotDotEq:     "'..='",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Keywords maps the reserved identifier spellings to their keyword Kind.
var Keywords = map[string]Kind{
	"packet":       KwPacket,
	"message":      KwMessage,
	"group":        KwGroup,
	"header":       KwHeader,
	"Field":        KwField,
	"bit":          KwBit,
	"repr":         KwRepr,
	"arg":          KwArg,
	"default":      KwDefault,
	"gen":          KwGen,
	"length":       KwLength,
	"header_len":   KwHeaderLen,
	"payload_len":  KwPayloadLen,
	"packet_len":   KwPacketLen,
	"cond":         KwCond,
	"members":      KwMembers,
	"enable_iter":  KwEnableIter,
	"endian":       KwEndian,
}

// BuiltinTypes is the set of reserved type words recognized as scalar reprs
// or the byte-slice repr.
var BuiltinTypes = map[string]bool{
	"u8":    true,
	"u16":   true,
	"u32":   true,
	"u64":   true,
	"&[u8]": true,
	"bool":  true,
}

// Token is a single lexeme together with its byte-offset span in the source.
type Token struct {
	Kind  Kind
	Text  string
	Start int
	End   int // exclusive
}

func (t Token) String() string {
	if t.Text != "" {
		return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
	}
	return t.Kind.String()
}
