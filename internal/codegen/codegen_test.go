package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duanjp8617/pktfmt/internal/check"
	"github.com/duanjp8617/pktfmt/internal/codegen"
	"github.com/duanjp8617/pktfmt/internal/parser"
)

func mustGenerate(t *testing.T, src string) string {
	t.Helper()
	top, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	unit, err := check.Check(top)
	require.NoError(t, err)
	return codegen.Generate(unit)
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

func TestGenerateFixedHeaderPacket(t *testing.T) {
	out := mustGenerate(t, udpSrc)

	require.Contains(t, out, "pub const UDP_HEADER_LEN: usize = 8;")
	require.Contains(t, out, "pub struct UdpHeader<T>")
	require.Contains(t, out, "pub struct UdpPacket<T>")
	require.Contains(t, out, "pub fn src_port(&self)")
	require.Contains(t, out, "pub fn set_src_port(&mut self")
	require.Contains(t, out, "pub fn packet_len(&self)")
	require.Contains(t, out, "impl<T:PktBuf> UdpPacket<T>")
	require.Contains(t, out, "impl<T:BufMut> UdpPacket<T>")
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

func TestGenerateVariableHeaderEmitsOptionSlice(t *testing.T) {
	out := mustGenerate(t, variableHeaderSrc)
	require.Contains(t, out, "pub fn option_slice(")
	require.Contains(t, out, "pub fn option_slice_mut(")
}

const fixedByteArraySrc = `
packet Magic {
    header = [
        tag = Field{bit=32, repr=&[u8], default=@[0xde,0xad,0xbe,0xef]},
        kind = Field{bit=8},
    ],
}
`

func TestGenerateFixedByteArrayDefaultGuardsParse(t *testing.T) {
	out := mustGenerate(t, fixedByteArraySrc)
	require.Contains(t, out, "container.tag() != &[0xde,0xad,0xbe,0xef][..]")
}

const groupSrc = `
message Icmp {
    header = [
        msg_type = Field{bit=8},
        code = Field{bit=8},
        checksum = Field{bit=16},
    ],
    cond = (msg_type == 0),
}
message Icmp2 {
    header = [
        msg_type = Field{bit=8},
        code = Field{bit=8},
        checksum = Field{bit=16},
    ],
    cond = (msg_type == 8),
}
group IcmpGroup = {
    members = [Icmp, Icmp2],
}
`

func TestGenerateGroupDispatch(t *testing.T) {
	out := mustGenerate(t, groupSrc)
	require.True(t, strings.Contains(out, "pub enum IcmpGroupGroup<T>"))
	require.Contains(t, out, "Icmp_(IcmpPacket<T>)")
	require.Contains(t, out, "Icmp2_(Icmp2Packet<T>)")
	require.Contains(t, out, "pub fn group_parse(")
}
