package compiler_test

import (
	"bytes"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/stretchr/testify/require"

	"github.com/duanjp8617/pktfmt/internal/compiler"
	"github.com/duanjp8617/pktfmt/internal/reporter"
)

// requireGoldenEqual compares got against a recorded golden diagnostic and,
// on mismatch, prints a unified diff -- spec.md §4.3's "golden-output oracle
// (validated by diffing against recorded expected messages)" literally.
func requireGoldenEqual(t *testing.T, golden, got string) {
	t.Helper()
	if golden == got {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(golden),
		B:        difflib.SplitLines(got),
		FromFile: "golden",
		ToFile:   "got",
		Context:  2,
	})
	require.NoError(t, err)
	t.Fatalf("diagnostic mismatch:\n%s", diff)
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

func TestCompileProducesOutput(t *testing.T) {
	var stderr bytes.Buffer
	out, err := compiler.Compile("udp.pktfmt", []byte(udpSrc), &stderr)
	require.NoError(t, err)
	require.Empty(t, stderr.String())
	require.Contains(t, out, "UDP_HEADER_LEN")
}

func TestCompileReportsSingleDiagnosticOnBadSource(t *testing.T) {
	var stderr bytes.Buffer
	_, err := compiler.Compile("bad.pktfmt", []byte(`packet P { header = [a = Field{bit=8}], length = [header_len = missing] }`), &stderr)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	require.NotEmpty(t, stderr.String())
	require.Equal(t, 1, bytes.Count(stderr.Bytes(), []byte("error")))
}

// TestCompileDiagnosticIsDeterministic recompiles the same bad source twice
// and requires byte-identical rendered diagnostics -- spec.md §6's "stable
// diagnostic format" promises the same input always renders the same way,
// which a unified diff (rather than a bare equality assert) makes easy to
// diagnose if it ever regresses.
func TestCompileDiagnosticIsDeterministic(t *testing.T) {
	const src = `packet P { header = [a = Field{bit=8}], length = [header_len = missing] }`

	var first, second bytes.Buffer
	_, err := compiler.Compile("bad.pktfmt", []byte(src), &first)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)
	_, err = compiler.Compile("bad.pktfmt", []byte(src), &second)
	require.ErrorIs(t, err, reporter.ErrInvalidSource)

	requireGoldenEqual(t, first.String(), second.String())
}
