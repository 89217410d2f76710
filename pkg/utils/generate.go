package utils

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

const ResetCodeLength = 6

var (
	resetCodeSpace   = big.NewInt(1_000_000)
	resetCodePattern = regexp.MustCompile(`^[0-9]{6}$`)
)

// GenerateResetCode draws a uniformly random zero-padded 6-digit code from
// src. A nil src means crypto/rand.Reader.
func GenerateResetCode(src io.Reader) (string, error) {
	if src == nil {
		src = rand.Reader
	}

	n, err := rand.Int(src, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("generate reset code: %w", err)
	}

	return fmt.Sprintf("%0*d", ResetCodeLength, n.Int64()), nil
}

// IsResetCodeFormat reports whether code is exactly six ASCII digits.
func IsResetCodeFormat(code string) bool {
	return resetCodePattern.MatchString(code)
}
