package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNormalizeRecognized(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	in := "No.  Boleta:   41-123456   \n\n\n\nFecha: 12/05/2024\t\tok"
	out := tp.NormalizeRecognized(in)

	assert.Equal(t, "No. Boleta: 41-123456\nFecha: 12/05/2024 ok", out)
}

// TestNormalizeRecognized_KeepsLineBreaks tests that normalization never
// joins lines, since field patterns anchor on them
func TestNormalizeRecognized_KeepsLineBreaks(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.NormalizeRecognized("linea uno\nlinea dos")
	assert.Equal(t, "linea uno\nlinea dos", out)
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "boleta", tp.SanitizeUTF8("boleta"))

	broken := "bole" + string([]byte{0xff, 0xfe}) + "ta"
	assert.Equal(t, "boleta", tp.SanitizeUTF8(broken))
}

func TestTruncate(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	assert.Equal(t, "abc", tp.Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", tp.Truncate("abcdef", 0), "Zero means unbounded")
	assert.Equal(t, "abcdef", tp.Truncate("abcdef", 100))
}

// TestTruncate_UTF8Boundary tests that truncation never splits a
// multi-byte rune
func TestTruncate_UTF8Boundary(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "garantía" has a two-byte í; cutting inside it must back off
	out := tp.Truncate("garantía", 7)
	assert.True(t, strings.HasPrefix("garantía", out))
	assert.Equal(t, "garant", out)
}

func TestProcess(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	out := tp.Process("  CABLE   USB  \n\n\nTIPO C ", 0)
	assert.Equal(t, "CABLE USB\nTIPO C", out)
}
