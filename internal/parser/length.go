package parser

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/token"
)

var lengthSlotNames = map[token.Kind]string{
	token.KwHeaderLen:  "header_len",
	token.KwPayloadLen: "payload_len",
	token.KwPacketLen:  "packet_len",
}

func (p *Parser) parseLength(header *ast.Header) (*ast.Length, error) {
	start := p.cur.Start
	if err := p.advance(); err != nil { // consume 'length'
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBracket, "'['"); err != nil {
		return nil, err
	}

	slots := make(map[string]ast.LengthField)
	for !p.at(token.RBracket) {
		name, ok := lengthSlotNames[p.cur.Kind]
		if !ok {
			return nil, p.errUnexpected("'header_len', 'payload_len' or 'packet_len'")
		}
		if _, dup := slots[name]; dup {
			return nil, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End, "duplicate length slot %q", name)
		}
		slotStart := p.cur.Start
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Assign, "'='"); err != nil {
			return nil, err
		}

		if p.at(token.Comma) || p.at(token.RBracket) {
			// A blank slot: "header_len =," or "header_len =]" -- defers to
			// a user-supplied raw-code function (SPEC_FULL.md item 6).
			slots[name] = ast.LengthField{Kind: ast.LenUndefined, Span: ast.Span{Start: slotStart, End: p.cur.End}}
		} else {
			expr, end, err := p.parseAlgExpr()
			if err != nil {
				return nil, err
			}
			kind := ast.LenExpr
			if expr.Kind == ast.AlgFieldRef {
				kind = ast.LenFieldRef
			}
			slots[name] = ast.LengthField{Kind: kind, Expr: expr, Span: ast.Span{Start: slotStart, End: end}}
		}

		if err := p.optionalComma(); err != nil {
			return nil, err
		}
	}
	end, err := p.expect(token.RBracket, "']'")
	if err != nil {
		return nil, err
	}

	return ast.NewLength(slots, ast.Span{Start: start, End: end.End})
}

// parseAlgExpr parses `term (('+' | '-') term)*`.
func (p *Parser) parseAlgExpr() (*ast.AlgExpr, int, error) {
	left, end, err := p.parseAlgTerm()
	if err != nil {
		return nil, 0, err
	}
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.OpAdd
		if p.at(token.Minus) {
			op = ast.OpSub
		}
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		right, rEnd, err := p.parseAlgTerm()
		if err != nil {
			return nil, 0, err
		}
		left = &ast.AlgExpr{Kind: ast.AlgBinOp, Op: op, Left: left, Right: right,
			Span: ast.Span{Start: left.Span.Start, End: rEnd}}
		end = rEnd
	}
	return left, end, nil
}

// parseAlgTerm parses `factor (('*' | '/') factor)*`.
func (p *Parser) parseAlgTerm() (*ast.AlgExpr, int, error) {
	left, end, err := p.parseAlgFactor()
	if err != nil {
		return nil, 0, err
	}
	for p.at(token.Star) || p.at(token.Slash) {
		op := ast.OpMul
		if p.at(token.Slash) {
			op = ast.OpDiv
		}
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		right, rEnd, err := p.parseAlgFactor()
		if err != nil {
			return nil, 0, err
		}
		left = &ast.AlgExpr{Kind: ast.AlgBinOp, Op: op, Left: left, Right: right,
			Span: ast.Span{Start: left.Span.Start, End: rEnd}}
		end = rEnd
	}
	return left, end, nil
}

func (p *Parser) parseAlgFactor() (*ast.AlgExpr, int, error) {
	switch p.cur.Kind {
	case token.LParen:
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		e, _, err := p.parseAlgExpr()
		if err != nil {
			return nil, 0, err
		}
		end, err := p.expect(token.RParen, "')'")
		if err != nil {
			return nil, 0, err
		}
		return e, end.End, nil
	case token.Num:
		n, err := parseDecimal(p.cur.Text)
		if err != nil {
			return nil, 0, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End, "%s", err)
		}
		span := ast.Span{Start: p.cur.Start, End: p.cur.End}
		end := p.cur.End
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return &ast.AlgExpr{Kind: ast.AlgConst, Const: n, Span: span}, end, nil
	case token.HexNum:
		n, err := parseHex(p.cur.Text)
		if err != nil {
			return nil, 0, fmtErr(UnexpectedToken, p.cur.Start, p.cur.End, "%s", err)
		}
		span := ast.Span{Start: p.cur.Start, End: p.cur.End}
		end := p.cur.End
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return &ast.AlgExpr{Kind: ast.AlgConst, Const: n, Span: span}, end, nil
	case token.Ident:
		span := ast.Span{Start: p.cur.Start, End: p.cur.End}
		name := p.cur.Text
		end := p.cur.End
		if err := p.advance(); err != nil {
			return nil, 0, err
		}
		return &ast.AlgExpr{Kind: ast.AlgFieldRef, Field: name, Span: span}, end, nil
	}
	return nil, 0, p.errUnexpected("a number, field name, or '('")
}
