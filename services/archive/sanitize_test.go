package archive

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Ali/Veli", "Ali_Veli"},
		{"Ali_Veli", "Ali_Veli"},
		{`C:\temp\x`, "C__temp_x"},
		{"  ..gizli.  ", "gizli"},
		{"a\x00b\nc", "a_b_c"},
		{`"soru?" <yıldız*> |boru|`, "_soru__ _yıldız__ _boru_"},
		{"", "_"},
		{" . ", "_"},
		{"Şükrü Öztürk", "Şükrü Öztürk"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestSanitizeNameTruncates(t *testing.T) {
	long := strings.Repeat("ğ", MaxNameLength+50)
	got := SanitizeName(long)
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(got))

	padded := strings.Repeat("a", MaxNameLength-1) + " b"
	assert.Equal(t, strings.Repeat("a", MaxNameLength-1), SanitizeName(padded))
}

func TestSanitizeIsIdempotent(t *testing.T) {
	for _, in := range []string{"Ali/Veli", "x:y", strings.Repeat("z", 300), "  a  "} {
		once := SanitizeName(in)
		assert.Equal(t, once, SanitizeName(once))
	}
}

func TestNameSetClaim(t *testing.T) {
	ns := nameSet{}
	assert.Equal(t, "a.pdf", ns.claim("", "a.pdf"))
	assert.Equal(t, "A (2).pdf", ns.claim("", "A.pdf"))
	assert.Equal(t, "a (3).pdf", ns.claim("", "a.pdf"))
	assert.Equal(t, "f/a.pdf", ns.claim("f", "a.pdf"))
	assert.Equal(t, "f/noext", ns.claim("f", "noext"))
	assert.Equal(t, "f/noext (2)", ns.claim("f", "noext"))
}

func TestNameSetClaimKeepsLengthLimit(t *testing.T) {
	ns := nameSet{}
	long := SanitizeName(strings.Repeat("ş", MaxNameLength-4) + ".pdf")
	require.Equal(t, MaxNameLength, utf8.RuneCountInString(long))

	assert.Equal(t, long, ns.claim("Dosya", long))
	second := ns.claim("Dosya", long)
	name := strings.TrimPrefix(second, "Dosya/")
	assert.Equal(t, MaxNameLength, utf8.RuneCountInString(name))
	assert.True(t, strings.HasSuffix(name, " (2).pdf"))

	third := strings.TrimPrefix(ns.claim("Dosya", long), "Dosya/")
	assert.LessOrEqual(t, utf8.RuneCountInString(third), MaxNameLength)
	assert.True(t, strings.HasSuffix(third, " (3).pdf"))

	t.Run("oversized extension is shortened with the base", func(t *testing.T) {
		odd := "a." + strings.Repeat("x", MaxNameLength-2)
		ns.claim("", odd)
		got := ns.claim("", odd)
		assert.Equal(t, MaxNameLength, utf8.RuneCountInString(got))
		assert.True(t, strings.HasSuffix(got, " (2)"))
	})
}
