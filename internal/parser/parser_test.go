package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/parser"
)

const udpSrc = `
packet Udp {
    header = [
        src_port = Field{bit=16},
        dst_port = Field{bit=16},
        length_ = Field{bit=16},
        checksum = Field{bit=16},
    ],
    length = [packet_len = length_],
}
`

func TestParsePacketWithLength(t *testing.T) {
	tl, err := parser.Parse([]byte(udpSrc))
	require.NoError(t, err)
	require.Len(t, tl.Items, 1)

	pkt := tl.Items[0].Item.Packet
	require.NotNil(t, pkt)
	require.Equal(t, "Udp", pkt.Name)
	require.Len(t, pkt.Header.Fields, 4)
	require.Equal(t, ast.LenFieldRef, pkt.Length.PacketLen.Kind)
	require.Equal(t, "length_", pkt.Length.PacketLen.Expr.Field)
}

const groupSrc = `
packet A {
    header = [code = Field{bit=8}],
    cond = (code == 1..),
}
packet B {
    header = [code = Field{bit=8}],
    cond = (code == 0),
}
group G = {
    members = [A, B],
}
`

func TestParseGroup(t *testing.T) {
	tl, err := parser.Parse([]byte(groupSrc))
	require.NoError(t, err)
	require.Len(t, tl.Items, 3)
	grp := tl.Items[2].Item.Group
	require.NotNil(t, grp)
	require.Equal(t, []string{"A", "B"}, grp.Members)
}

func TestParseMessageRequiresCondAtCheckTime(t *testing.T) {
	src := `message M { header = [x = Field{bit=8}] }`
	tl, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.True(t, tl.Items[0].Item.Packet.IsMessage)
	require.Nil(t, tl.Items[0].Item.Packet.Cond)
}

func TestParseInvalidLengthShapeIsRejected(t *testing.T) {
	src := `
packet P {
    header = [a = Field{bit=8}],
    length = [payload_len = a, packet_len = a],
}
`
	_, err := parser.Parse([]byte(src))
	require.Error(t, err)
}

func TestParseRawCodeBlocksAreVerbatim(t *testing.T) {
	src := "%% use crate::foo; %%\npacket P { header = [a = Field{bit=8}] }\n%% // trailer %%"
	tl, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	require.NotNil(t, tl.LeadCode)
	require.Equal(t, " use crate::foo; ", tl.LeadCode.Text)
	require.NotNil(t, tl.Items[0].TrailCode)
	require.Equal(t, " // trailer ", tl.Items[0].TrailCode.Text)
}

func TestParseUnknownTopLevelTokenErrors(t *testing.T) {
	_, err := parser.Parse([]byte(`nonsense`))
	require.Error(t, err)
	perr, ok := err.(*parser.Error)
	require.True(t, ok)
	require.Equal(t, parser.UnexpectedToken, perr.Code)
}
