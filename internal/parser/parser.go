// Package parser implements pktfmt's hand-written recursive-descent parser:
// tokens (from internal/token) to the AST defined in internal/ast.
package parser

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/token"
)

// Parser turns a pktfmt token stream into an ast.TopLevel.
type Parser struct {
	lx   *token.Lexer
	cur  token.Token
	peek *token.Token // one token of lookahead, lazily filled
}

// Parse lexes and parses src (the .pktfmt source text) into a TopLevel.
func Parse(src []byte) (*ast.TopLevel, error) {
	lx, err := token.New(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{lx: lx}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseTopLevel()
}

func (p *Parser) advance() error {
	if p.peek != nil {
		p.cur = *p.peek
		p.peek = nil
		return nil
	}
	tok, err := p.lx.Next()
	if err != nil {
		return err
	}
	p.cur = tok
	return nil
}

func (p *Parser) peekTok() (token.Token, error) {
	if p.peek == nil {
		tok, err := p.lx.Next()
		if err != nil {
			return token.Token{}, err
		}
		p.peek = &tok
	}
	return *p.peek, nil
}

func (p *Parser) errUnexpected(want string) error {
	if p.cur.Kind == token.EOF {
		return fmtErr(UnexpectedEOF, p.cur.Start, p.cur.End,
			"unexpected end of file, expected %s", want)
	}
	return fmtErr(UnexpectedToken, p.cur.Start, p.cur.End,
		"unexpected token %s, expected %s", p.cur.Kind, want)
}

func (p *Parser) expect(k token.Kind, want string) (token.Token, error) {
	if p.cur.Kind != k {
		return token.Token{}, p.errUnexpected(want)
	}
	tok := p.cur
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) at(k token.Kind) bool { return p.cur.Kind == k }

// optionalComma consumes a trailing comma if present; many productions
// permit one before the closing delimiter.
func (p *Parser) optionalComma() error {
	if p.at(token.Comma) {
		return p.advance()
	}
	return nil
}

func (p *Parser) parseTopLevel() (*ast.TopLevel, error) {
	tl := &ast.TopLevel{}

	if p.at(token.Code) {
		c := p.codeNode()
		tl.LeadCode = &c
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	for !p.at(token.EOF) {
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		ui := ast.UnitItem{Item: item}
		if p.at(token.Code) {
			c := p.codeNode()
			ui.TrailCode = &c
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		tl.Items = append(tl.Items, ui)
	}

	return tl, nil
}

func (p *Parser) codeNode() ast.Code {
	return ast.Code{Text: p.cur.Text, Span: ast.Span{Start: p.cur.Start, End: p.cur.End}}
}

func (p *Parser) parseItem() (ast.ParsedItem, error) {
	switch p.cur.Kind {
	case token.KwPacket:
		pkt, err := p.parsePacket(false)
		if err != nil {
			return ast.ParsedItem{}, err
		}
		return ast.ParsedItem{Kind: ast.ItemPacket, Packet: pkt}, nil
	case token.KwMessage:
		pkt, err := p.parsePacket(true)
		if err != nil {
			return ast.ParsedItem{}, err
		}
		return ast.ParsedItem{Kind: ast.ItemPacket, Packet: pkt}, nil
	case token.KwGroup:
		grp, err := p.parseGroup()
		if err != nil {
			return ast.ParsedItem{}, err
		}
		return ast.ParsedItem{Kind: ast.ItemGroup, Group: grp}, nil
	default:
		return ast.ParsedItem{}, p.errUnexpected("'packet', 'message' or 'group'")
	}
}

func (p *Parser) parsePacket(isMessage bool) (*ast.Packet, error) {
	start := p.cur.Start
	if err := p.advance(); err != nil { // consume 'packet'/'message'
		return nil, err
	}
	name, err := p.expect(token.Ident, "packet name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	var header *ast.Header
	var length *ast.Length
	var cond *ast.Cond
	enableIter := false

	for {
		switch p.cur.Kind {
		case token.KwHeader:
			if header != nil {
				return nil, p.errUnexpected("at most one 'header'")
			}
			header, err = p.parseHeader()
			if err != nil {
				return nil, err
			}
		case token.KwLength:
			if length != nil {
				return nil, p.errUnexpected("at most one 'length'")
			}
			length, err = p.parseLength(header)
			if err != nil {
				return nil, err
			}
		case token.KwCond:
			if cond != nil {
				return nil, p.errUnexpected("at most one 'cond'")
			}
			cond, err = p.parseCond()
			if err != nil {
				return nil, err
			}
		case token.KwEnableIter:
			enableIter, err = p.parseEnableIter()
			if err != nil {
				return nil, err
			}
		case token.RBrace:
		default:
			return nil, p.errUnexpected("'header', 'length', 'cond', 'enable_iter' or '}'")
		}
		if p.at(token.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	end, err := p.expect(token.RBrace, "'}'")
	if err != nil {
		return nil, err
	}

	if header == nil {
		return nil, fmtErr(UnexpectedToken, start, end.End, "packet %q is missing a header", name.Text)
	}
	if length == nil {
		length = &ast.Length{}
	}

	return &ast.Packet{
		Name: name.Text, Header: header, Length: length, Cond: cond,
		EnableIter: enableIter, IsMessage: isMessage,
		Span: ast.Span{Start: start, End: end.End},
	}, nil
}

func (p *Parser) parseEnableIter() (bool, error) {
	if err := p.advance(); err != nil { // consume 'enable_iter'
		return false, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return false, err
	}
	b, err := p.expect(token.BooleanValue, "boolean literal")
	if err != nil {
		return false, err
	}
	return b.Text == "true", nil
}

func (p *Parser) parseHeader() (*ast.Header, error) {
	start := p.cur.Start
	if err := p.advance(); err != nil { // consume 'header'
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBracket, "'['"); err != nil {
		return nil, err
	}

	var fields []ast.NamedField
	for !p.at(token.RBracket) {
		nf, err := p.parseNamedField()
		if err != nil {
			return nil, err
		}
		fields = append(fields, nf)
		if err := p.optionalComma(); err != nil {
			return nil, err
		}
	}
	end, err := p.expect(token.RBracket, "']'")
	if err != nil {
		return nil, err
	}

	return ast.NewHeader(fields, ast.Span{Start: start, End: end.End})
}

func (p *Parser) parseNamedField() (ast.NamedField, error) {
	nameStart := p.cur.Start
	name, err := p.expect(token.Ident, "field name")
	if err != nil {
		return ast.NamedField{}, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return ast.NamedField{}, err
	}
	field, end, err := p.parseFieldLiteral()
	if err != nil {
		return ast.NamedField{}, err
	}
	return ast.NamedField{Name: name.Text, Field: field, Span: ast.Span{Start: nameStart, End: end}}, nil
}

func (p *Parser) parseFieldLiteral() (*ast.Field, int, error) {
	start := p.cur.Start
	if _, err := p.expect(token.KwField, "'Field'"); err != nil {
		return nil, 0, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, 0, err
	}

	var bit uint64
	haveBit := false
	var opts ast.FieldOpts

	for {
		if p.at(token.RBrace) {
			break
		}
		switch p.cur.Kind {
		case token.KwBit:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			n, err := p.parseUintLiteral()
			if err != nil {
				return nil, 0, err
			}
			bit = n
			haveBit = true
		case token.KwRepr:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			bt, err := p.parseBuiltinTypeWord()
			if err != nil {
				return nil, 0, err
			}
			opts.Repr = &bt
		case token.KwArg:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			a, err := p.parseArg()
			if err != nil {
				return nil, 0, err
			}
			opts.Arg = &a
		case token.KwDefault:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			fixed := false
			if p.at(token.At) {
				fixed = true
				if err := p.advance(); err != nil {
					return nil, 0, err
				}
			}
			dv, err := p.parseDefaultVal()
			if err != nil {
				return nil, 0, err
			}
			opts.Default = &dv
			opts.DefaultFixed = fixed
		case token.KwGen:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			b, err := p.expect(token.BooleanValue, "boolean literal")
			if err != nil {
				return nil, 0, err
			}
			v := b.Text == "true"
			opts.Gen = &v
		case token.KwEndian:
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, 0, err
			}
			id, err := p.expect(token.Ident, "'big' or 'little'")
			if err != nil {
				return nil, 0, err
			}
			var e ast.Endian
			switch id.Text {
			case "big":
				e = ast.BigEndian
			case "little":
				e = ast.LittleEndian
			default:
				return nil, 0, fmtErr(UnexpectedToken, id.Start, id.End,
					"invalid endian %q, expected 'big' or 'little'", id.Text)
			}
			opts.Endian = &e
		default:
			return nil, 0, p.errUnexpected("'bit', 'repr', 'arg', 'default', 'gen', 'endian' or '}'")
		}
		if p.at(token.Comma) {
			if err := p.advance(); err != nil {
				return nil, 0, err
			}
			continue
		}
		break
	}

	end, err := p.expect(token.RBrace, "'}'")
	if err != nil {
		return nil, 0, err
	}
	if !haveBit {
		return nil, 0, fmtErr(UnexpectedToken, start, end.End, "Field literal is missing 'bit'")
	}

	span := ast.Span{Start: start, End: end.End}
	f, err := ast.NewField(bit, opts, span)
	if err != nil {
		return nil, 0, err
	}
	return f, end.End, nil
}

func (p *Parser) parseBuiltinTypeWord() (ast.BuiltinType, error) {
	tok, err := p.expect(token.BuiltinType, "builtin type")
	if err != nil {
		return 0, err
	}
	switch tok.Text {
	case "u8":
		return ast.U8, nil
	case "u16":
		return ast.U16, nil
	case "u32":
		return ast.U32, nil
	case "u64":
		return ast.U64, nil
	case "&[u8]":
		return ast.ByteSlice, nil
	case "bool":
		return ast.Bool, nil
	}
	return 0, fmtErr(UnexpectedToken, tok.Start, tok.End, "unknown builtin type %q", tok.Text)
}

func (p *Parser) parseArg() (ast.Arg, error) {
	if p.at(token.Code) {
		c := p.codeNode()
		if err := p.advance(); err != nil {
			return ast.Arg{}, err
		}
		return ast.Arg{Kind: ast.ArgCode, Code: &c}, nil
	}
	if p.at(token.BuiltinType) {
		bt, err := p.parseBuiltinTypeWord()
		if err != nil {
			return ast.Arg{}, err
		}
		return ast.Arg{Kind: ast.ArgBuiltin, Builtin: bt}, nil
	}
	return ast.Arg{}, p.errUnexpected("a builtin type or a %%...%% code escape")
}

func (p *Parser) parseUintLiteral() (uint64, error) {
	switch p.cur.Kind {
	case token.Num:
		n, err := parseDecimal(p.cur.Text)
		if err != nil {
			return 0, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End, "%s", err)
		}
		return n, p.advance()
	case token.HexNum:
		n, err := parseHex(p.cur.Text)
		if err != nil {
			return 0, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End, "%s", err)
		}
		return n, p.advance()
	}
	return 0, p.errUnexpected("a number")
}

func (p *Parser) parseDefaultVal() (ast.DefaultVal, error) {
	switch {
	case p.at(token.BooleanValue):
		v := p.cur.Text == "true"
		return ast.DefaultVal{Kind: ast.DefaultBool, Bool: v}, p.advance()
	case p.at(token.LBracket):
		if err := p.advance(); err != nil {
			return ast.DefaultVal{}, err
		}
		var bytes []byte
		for !p.at(token.RBracket) {
			n, err := p.parseUintLiteral()
			if err != nil {
				return ast.DefaultVal{}, err
			}
			if n > 0xff {
				return ast.DefaultVal{}, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End,
					"byte literal %d does not fit in a byte", n)
			}
			bytes = append(bytes, byte(n))
			if err := p.optionalComma(); err != nil {
				return ast.DefaultVal{}, err
			}
		}
		if _, err := p.expect(token.RBracket, "']'"); err != nil {
			return ast.DefaultVal{}, err
		}
		return ast.DefaultVal{Kind: ast.DefaultBytes, Bytes: bytes}, nil
	case p.at(token.Num) || p.at(token.HexNum):
		n, err := p.parseUintLiteral()
		if err != nil {
			return ast.DefaultVal{}, err
		}
		return ast.DefaultVal{Kind: ast.DefaultNum, Num: n}, nil
	}
	return ast.DefaultVal{}, p.errUnexpected("a default value literal")
}

func (p *Parser) parseGroup() (*ast.PacketGroup, error) {
	start := p.cur.Start
	if err := p.advance(); err != nil { // consume 'group'
		return nil, err
	}
	name, err := p.expect(token.Ident, "group name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBrace, "'{'"); err != nil {
		return nil, err
	}

	var members []string
	enableIter := false
	haveMembers := false

	for {
		switch p.cur.Kind {
		case token.KwMembers:
			if err := p.advance(); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.Assign, "'='"); err != nil {
				return nil, err
			}
			if _, err := p.expect(token.LBracket, "'['"); err != nil {
				return nil, err
			}
			for !p.at(token.RBracket) {
				id, err := p.expect(token.Ident, "member packet name")
				if err != nil {
					return nil, err
				}
				members = append(members, id.Text)
				if err := p.optionalComma(); err != nil {
					return nil, err
				}
			}
			if _, err := p.expect(token.RBracket, "']'"); err != nil {
				return nil, err
			}
			haveMembers = true
		case token.KwEnableIter:
			enableIter, err = p.parseEnableIter()
			if err != nil {
				return nil, err
			}
		case token.RBrace:
		default:
			return nil, p.errUnexpected("'members', 'enable_iter' or '}'")
		}
		if p.at(token.Comma) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	end, err := p.expect(token.RBrace, "'}'")
	if err != nil {
		return nil, err
	}
	if !haveMembers {
		return nil, fmtErr(UnexpectedToken, start, end.End, "group %q is missing 'members'", name.Text)
	}

	return &ast.PacketGroup{
		Name: name.Text, Members: members, EnableIter: enableIter,
		Span: ast.Span{Start: start, End: end.End},
	}, nil
}
