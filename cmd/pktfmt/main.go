// Command pktfmt compiles a .pktfmt protocol description into Rust
// accessor code, mirroring the original compiler's bin/pktfmt.rs.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/duanjp8617/pktfmt/internal/compiler"
)

const usage = `Usage: pktfmt *.pktfmt [options]
Options:
  -o <file>   Generate the output in <file>.
  -h          Display help information.`

func handleArgs(args []string) (inputPath, outputPath string, err error) {
	i := 0
	for i < len(args) {
		switch {
		case strings.HasSuffix(args[i], ".pktfmt") && len(args[i]) > len(".pktfmt"):
			if inputPath != "" {
				return "", "", fmt.Errorf("found another input file %s\n%s", args[i], usage)
			}
			inputPath = args[i]
			i++
		case args[i] == "-o" && i+1 < len(args):
			if outputPath != "" {
				return "", "", fmt.Errorf("found another output file %s\n%s", args[i+1], usage)
			}
			outputPath = args[i+1]
			i += 2
		case args[i] == "-h":
			fmt.Println(usage)
			os.Exit(0)
		default:
			return "", "", fmt.Errorf("invalid argument %s\n%s", args[i], usage)
		}
	}

	if inputPath == "" {
		return "", "", fmt.Errorf("missing input arguments\n%s", usage)
	}
	if outputPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), ".pktfmt")
		cwd, cerr := os.Getwd()
		if cerr != nil {
			return "", "", cerr
		}
		outputPath = filepath.Join(cwd, base+".rs")
		fmt.Fprintf(os.Stderr, "warning: using %s as the output file\n", outputPath)
	}
	return inputPath, outputPath, nil
}

func main() {
	inputPath, outputPath, err := handleArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	src, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}

	out, err := compiler.Compile(inputPath, src, os.Stderr)
	if err != nil {
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, []byte(out), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
