package token_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duanjp8617/pktfmt/internal/token"
)

func lexAll(t *testing.T, src string) []token.Token {
	t.Helper()
	lx, err := token.New([]byte(src))
	require.NoError(t, err)

	var toks []token.Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestLexerKeywordsAndPunctuation(t *testing.T) {
	toks := lexAll(t, `packet Udp { header = [src_port = Field{bit=16}], }`)
	kinds := make([]token.Kind, len(toks))
	for i, tk := range toks {
		kinds[i] = tk.Kind
	}
	require.Equal(t, []token.Kind{
		token.KwPacket, token.Ident, token.LBrace,
		token.KwHeader, token.Assign, token.LBracket,
		token.Ident, token.Assign, token.KwField, token.LBrace,
		token.KwBit, token.Assign, token.Num, token.RBrace,
		token.RBracket, token.Comma, token.RBrace, token.EOF,
	}, kinds)
}

func TestLexerCodeBlockVerbatim(t *testing.T) {
	toks := lexAll(t, "%%  use std::fmt;\n  %%")
	require.Len(t, toks, 2)
	require.Equal(t, token.Code, toks[0].Kind)
	require.Equal(t, "  use std::fmt;\n  ", toks[0].Text)
}

func TestLexerUnterminatedCodeBlock(t *testing.T) {
	lx, err := token.New([]byte("%% oops"))
	require.NoError(t, err)
	_, err = lx.Next()
	require.Error(t, err)
	lexErr, ok := err.(*token.Error)
	require.True(t, ok)
	require.Equal(t, token.UnterminatedCodeBlock, lexErr.Code)
}

func TestLexerHexAndDecimal(t *testing.T) {
	toks := lexAll(t, "0x1F 123 ..= ..")
	require.Equal(t, token.HexNum, toks[0].Kind)
	require.Equal(t, "0x1F", toks[0].Text)
	require.Equal(t, token.Num, toks[1].Kind)
	require.Equal(t, token.DotDotEq, toks[2].Kind)
	require.Equal(t, token.DotDot, toks[3].Kind)
}

func TestLexerInvalidNumber(t *testing.T) {
	lx, err := token.New([]byte("123abc"))
	require.NoError(t, err)
	_, err = lx.Next()
	require.Error(t, err)
	lexErr, ok := err.(*token.Error)
	require.True(t, ok)
	require.Equal(t, token.InvalidNumber, lexErr.Code)
}

func TestLexerRejectsMultiByteSource(t *testing.T) {
	_, err := token.New([]byte("// 你好\npacket P {}"))
	require.Error(t, err)
}

func TestLexerByteArrayType(t *testing.T) {
	toks := lexAll(t, "&[u8] bool true false")
	require.Equal(t, "&[u8]", toks[0].Text)
	require.Equal(t, token.BuiltinType, toks[0].Kind)
	require.Equal(t, token.BuiltinType, toks[1].Kind)
	require.Equal(t, token.BooleanValue, toks[2].Kind)
	require.Equal(t, token.BooleanValue, toks[3].Kind)
}
