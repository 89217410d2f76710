package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateResetCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateResetCode(nil)
		require.NoError(t, err)
		assert.True(t, IsResetCodeFormat(code), "unexpected code %q", code)
	}
}

func TestGenerateResetCodeZeroPads(t *testing.T) {
	// an all-zero source makes rand.Int return 0
	code, err := GenerateResetCode(bytes.NewReader(make([]byte, 64)))
	require.NoError(t, err)
	assert.Equal(t, "000000", code)
}

func TestGenerateResetCodeSourceFailure(t *testing.T) {
	_, err := GenerateResetCode(bytes.NewReader(nil))
	assert.Error(t, err)
}

func TestIsResetCodeFormat(t *testing.T) {
	valid := []string{"000000", "000123", "999999", "482913"}
	invalid := []string{"", "12345", "1234567", "12a456", " 123456", "123456 ", "١٢٣٤٥٦", "-12345", "12 456"}

	for _, code := range valid {
		assert.True(t, IsResetCodeFormat(code), code)
	}
	for _, code := range invalid {
		assert.False(t, IsResetCodeFormat(code), code)
	}
}
