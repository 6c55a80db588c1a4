package parser

import (
	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/token"
)

// parseCond parses `cond = ( ident == range (|| range)* ) (&& ( ident == range (|| range)* ))*`.
func (p *Parser) parseCond() (*ast.Cond, error) {
	start := p.cur.Start
	if err := p.advance(); err != nil { // consume 'cond'
		return nil, err
	}
	if _, err := p.expect(token.Assign, "'='"); err != nil {
		return nil, err
	}

	var clauses []ast.CondClause
	for {
		clause, err := p.parseCondClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		if p.at(token.AndAnd) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}

	end := clauses[len(clauses)-1].Span.End
	return ast.NewCond(clauses, ast.Span{Start: start, End: end})
}

func (p *Parser) parseCondClause() (ast.CondClause, error) {
	start, err := p.expect(token.LParen, "'('")
	if err != nil {
		return ast.CondClause{}, err
	}
	name, err := p.expect(token.Ident, "field name")
	if err != nil {
		return ast.CondClause{}, err
	}
	if _, err := p.expect(token.EqEq, "'=='"); err != nil {
		return ast.CondClause{}, err
	}

	var bounds []ast.CondBound
	for {
		b, err := p.parseCondBound()
		if err != nil {
			return ast.CondClause{}, err
		}
		bounds = append(bounds, b)
		if p.at(token.OrOr) {
			if err := p.advance(); err != nil {
				return ast.CondClause{}, err
			}
			continue
		}
		break
	}

	end, err := p.expect(token.RParen, "')'")
	if err != nil {
		return ast.CondClause{}, err
	}

	return ast.CondClause{
		FieldName: name.Text, Bounds: bounds,
		Span: ast.Span{Start: start.Start, End: end.End},
	}, nil
}

// parseCondBound parses one range: "..", "..=N", "N..", "N..=M", or bare N.
func (p *Parser) parseCondBound() (ast.CondBound, error) {
	start := p.cur.Start

	if p.at(token.DotDot) || p.at(token.DotDotEq) {
		excl := p.at(token.DotDot)
		if err := p.advance(); err != nil {
			return ast.CondBound{}, err
		}
		if n, ok, err := p.maybeUintLiteral(); err != nil {
			return ast.CondBound{}, err
		} else if ok {
			return ast.CondBound{HasHi: true, Hi: n, Exclusive: excl,
				Span: ast.Span{Start: start, End: p.cur.Start}}, nil
		}
		return ast.CondBound{Span: ast.Span{Start: start, End: p.cur.Start}}, nil
	}

	lo, err := p.parseUintLiteral()
	if err != nil {
		return ast.CondBound{}, err
	}

	if p.at(token.DotDot) || p.at(token.DotDotEq) {
		excl := p.at(token.DotDot)
		if err := p.advance(); err != nil {
			return ast.CondBound{}, err
		}
		if n, ok, err := p.maybeUintLiteral(); err != nil {
			return ast.CondBound{}, err
		} else if ok {
			return ast.CondBound{HasLo: true, Lo: lo, HasHi: true, Hi: n, Exclusive: excl,
				Span: ast.Span{Start: start, End: p.cur.Start}}, nil
		}
		return ast.CondBound{HasLo: true, Lo: lo, Span: ast.Span{Start: start, End: p.cur.Start}}, nil
	}

	// bare N == [N, N]
	return ast.CondBound{HasLo: true, Lo: lo, HasHi: true, Hi: lo,
		Span: ast.Span{Start: start, End: p.cur.Start}}, nil
}

func (p *Parser) maybeUintLiteral() (uint64, bool, error) {
	if p.at(token.Num) || p.at(token.HexNum) {
		n, err := p.parseUintLiteral()
		return n, true, err
	}
	return 0, false, nil
}
