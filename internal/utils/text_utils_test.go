package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	// "é" is two bytes; cutting after 3 bytes lands inside the second one
	out := tp.TruncateText("aéé", 4)
	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasPrefix(out, "aé"))
	assert.True(t, strings.HasSuffix(out, truncationMarker))

	assert.Equal(t, "short", tp.TruncateText("short", 100))
	assert.Equal(t, "unbounded", tp.TruncateText("unbounded", 0))
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	assert.Equal(t, "ab", tp.SanitizeUTF8("a\xffb"))
	assert.Equal(t, "ab", tp.SanitizeUTF8("a\x00b"))
	assert.Equal(t, "héllo", tp.SanitizeUTF8("héllo"))
}

func TestProcessTextNormalizes(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	decomposed := "e\u0301te\u0301\r\n"
	assert.Equal(t, "\u00e9t\u00e9\n", tp.ProcessText(decomposed, 0))
}

func TestSnippet(t *testing.T) {
	tp := NewTextProcessor(zaptest.NewLogger(t))

	assert.Equal(t, "hello world", tp.Snippet("  hello \n\t world ", 200))
	assert.Equal(t, "héll", tp.Snippet("héllo", 4))
}
