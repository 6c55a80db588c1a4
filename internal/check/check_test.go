package check_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/duanjp8617/pktfmt/internal/ast"
	"github.com/duanjp8617/pktfmt/internal/check"
	"github.com/duanjp8617/pktfmt/internal/parser"
)

func mustParse(t *testing.T, src string) *ast.TopLevel {
	t.Helper()
	tl, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	return tl
}

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

func TestCheckUdpHeaderWithPacketLenIsVariable(t *testing.T) {
	u, err := check.Check(mustParse(t, udpSrc))
	require.NoError(t, err)
	require.Len(t, u.Items, 1)

	pkt := u.Items[0].Packet
	require.NotNil(t, pkt)
	// length_ is referenced by packet_len, so the header is not fixed, even
	// though its declared fields always span 8 bytes.
	require.False(t, pkt.Header.Fixed)
	require.Equal(t, uint64(64), pkt.Header.TotalBits)
	require.Equal(t, uint64(8), pkt.Header.HeaderLenInBytes())
}

func TestCheckUdpHeaderFieldLayoutMatchesExpected(t *testing.T) {
	u, err := check.Check(mustParse(t, udpSrc))
	require.NoError(t, err)
	pkt := u.Items[0].Packet

	// Structural comparison of the checked bit-offset layout: every field's
	// Start must follow directly on the previous field's end, regardless of
	// how the layout pass computed it internally.
	wantStarts := []check.BitPos{{Off: 0}, {Off: 16}, {Off: 32}, {Off: 48}}
	gotStarts := make([]check.BitPos, len(pkt.Header.Fields))
	for i, f := range pkt.Header.Fields {
		gotStarts[i] = f.Start
	}
	if diff := cmp.Diff(wantStarts, gotStarts); diff != "" {
		t.Fatalf("header field bit-offset layout mismatch (-want +got):\n%s", diff)
	}
}

const variableHeaderSrc = `
packet Mstp {
    header = [
        version = Field{bit=8},
        bpdu_type = Field{bit=8},
        msti_len = Field{bit=8},
    ],
    length = [header_len = msti_len],
}
`

func TestCheckVariableHeaderClassifiesCorrectly(t *testing.T) {
	u, err := check.Check(mustParse(t, variableHeaderSrc))
	require.NoError(t, err)
	pkt := u.Items[0].Packet
	require.False(t, pkt.Header.Fixed)
	require.True(t, pkt.Header.LengthRefs["msti_len"])
}

func TestCheckLengthRefToUnknownFieldFails(t *testing.T) {
	src := `
packet P {
    header = [a = Field{bit=8}],
    length = [header_len = missing],
}
`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.UnknownField, aerr.ErrKind)
}

func TestCheckLengthRefToByteSliceFieldFails(t *testing.T) {
	src := `
packet P {
    header = [
        a = Field{bit=64, repr=&[u8]},
    ],
    length = [header_len = a],
}
`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.CondOnNonIntField, aerr.ErrKind)
}

func TestCheckCondBoundOutOfRangeFails(t *testing.T) {
	src := `
packet P {
    header = [code = Field{bit=8}],
    cond = (code == 1000),
}
`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.EmptyRange, aerr.ErrKind)
}

func TestCheckMessageWithoutCondFails(t *testing.T) {
	src := `message M { header = [a = Field{bit=8}] }`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.MessageMissingCond, aerr.ErrKind)
}

func TestCheckIterRequiresVariableHeaderOnPacket(t *testing.T) {
	src := `
packet P {
    header = [a = Field{bit=8}],
    enable_iter = true,
}
`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.IterNotPermitted, aerr.ErrKind)
}

const groupSrc = `
message A {
    header = [code = Field{bit=8}, val = Field{bit=8}],
    cond = (code == 1),
}
message B {
    header = [code = Field{bit=8}, val = Field{bit=8}],
    cond = (code == 2),
}
group G = {
    members = [A, B],
}
`

func TestCheckGroupResolvesMembersAndDiscriminator(t *testing.T) {
	u, err := check.Check(mustParse(t, groupSrc))
	require.NoError(t, err)
	require.Len(t, u.Items, 3)

	grp := u.Items[2].Group
	require.NotNil(t, grp)
	require.Len(t, grp.Members, 2)
	require.Equal(t, []string{"code"}, grp.Discriminator)
}

const overlappingGroupSrc = `
message A {
    header = [code = Field{bit=8}],
    cond = (code == 0..10),
}
message B {
    header = [code = Field{bit=8}],
    cond = (code == 5..15),
}
group G = {
    members = [A, B],
}
`

func TestCheckGroupOverlappingCondFails(t *testing.T) {
	_, err := check.Check(mustParse(t, overlappingGroupSrc))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.GroupOverlap, aerr.ErrKind)
}

func TestCheckGroupUnknownMemberFails(t *testing.T) {
	src := `
group G = {
    members = [Ghost],
}
`
	_, err := check.Check(mustParse(t, src))
	require.Error(t, err)
	aerr, ok := err.(*ast.Error)
	require.True(t, ok)
	require.Equal(t, ast.UnknownGroupMember, aerr.ErrKind)
}
