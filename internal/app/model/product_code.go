package model

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

const ProductCodePrefix = "KA-"

var codeSequencePattern = regexp.MustCompile(`(\d{3,})$`)

// FormatProductCode builds "KA-<category><seq>" with seq zero-padded to at
// least three digits.
func FormatProductCode(category CategoryCode, seq int64) string {
	return fmt.Sprintf("%s%s%03d", ProductCodePrefix, category, seq)
}

// ParseCodeSequence extracts the trailing run of three or more digits.
// Runs too long for int64 clamp to math.MaxInt64.
func ParseCodeSequence(code string) (int64, bool) {
	match := codeSequencePattern.FindStringSubmatch(code)
	if match == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(match[1], 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, true
	}
	if err != nil {
		return 0, false
	}
	return n, true
}

// HighestCodeSequence compares sequences numerically, so KA-RG1000 outranks
// KA-RG999 even though it sorts lower as a string.
func HighestCodeSequence(codes []string) int64 {
	var highest int64
	for _, code := range codes {
		if n, ok := ParseCodeSequence(code); ok && n > highest {
			highest = n
		}
	}
	return highest
}
