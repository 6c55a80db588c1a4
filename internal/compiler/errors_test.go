package compiler_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/duanjp8617/pktfmt/internal/compiler"
)

// expectation is the metadata sitting next to each testdata/errors/*.pktfmt
// fixture, giving the malformed-input corpus (spec.md §8 property 7) a
// structured home instead of encoding the expected diagnostic in the
// filename.
type expectation struct {
	Kind string `yaml:"kind"`
}

func TestErrorCorpus(t *testing.T) {
	fixtures, err := doublestar.Glob(os.DirFS("../../testdata/errors"), "*.pktfmt")
	require.NoError(t, err)
	require.NotEmpty(t, fixtures)

	for _, name := range fixtures {
		name := name
		t.Run(strings.TrimSuffix(name, ".pktfmt"), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join("../../testdata/errors", name))
			require.NoError(t, err)

			yamlPath := filepath.Join("../../testdata/errors", strings.TrimSuffix(name, ".pktfmt")+".yaml")
			rawExp, err := os.ReadFile(yamlPath)
			require.NoError(t, err)
			var exp expectation
			require.NoError(t, yaml.Unmarshal(rawExp, &exp))

			var stderr bytes.Buffer
			_, compileErr := compiler.Compile(name, src, &stderr)
			require.Error(t, compileErr)
			require.Contains(t, stderr.String(), "error: "+exp.Kind+":")
		})
	}
}
