package parser

import (
	"fmt"
	"strconv"
	"strings"
)

func parseDecimal(text string) (uint64, error) {
	n, err := strconv.ParseUint(text, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid decimal literal %q: %w", text, err)
	}
	return n, nil
}

func parseHex(text string) (uint64, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
	n, err := strconv.ParseUint(digits, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid hex literal %q: %w", text, err)
	}
	return n, nil
}
