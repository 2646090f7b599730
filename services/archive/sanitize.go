package archive

import (
	"fmt"
	"path"
	"strings"
	"unicode"
)

const (
	// MaxNameLength is the rune limit of a folder or file name in an archive.
	MaxNameLength = 100
	placeholder   = '_'
	unsafeChars   = `/\:*?"<>|`
)

// SanitizeName makes s safe as a single path element on common filesystems.
func SanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) || strings.ContainsRune(unsafeChars, r) {
			b.WriteRune(placeholder)
			continue
		}
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), " .")
	if runes := []rune(name); len(runes) > MaxNameLength {
		name = strings.TrimRight(string(runes[:MaxNameLength]), " .")
	}
	if name == "" {
		return string(placeholder)
	}
	return name
}

// nameSet hands out unique entry names within the archive.
type nameSet map[string]struct{}

func (ns nameSet) claim(folder, name string) string {
	full := name
	if folder != "" {
		full = folder + "/" + name
	}
	if _, taken := ns[strings.ToLower(full)]; !taken {
		ns[strings.ToLower(full)] = struct{}{}
		return full
	}

	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for n := 2; ; n++ {
		candidate := numbered(base, ext, n)
		if folder != "" {
			candidate = folder + "/" + candidate
		}
		if _, taken := ns[strings.ToLower(candidate)]; !taken {
			ns[strings.ToLower(candidate)] = struct{}{}
			return candidate
		}
	}
}

// numbered appends " (n)" before ext, shortening base so the result stays
// within MaxNameLength.
func numbered(base, ext string, n int) string {
	suffix := fmt.Sprintf(" (%d)", n)
	extRunes := []rune(ext)
	if len([]rune(suffix))+len(extRunes) >= MaxNameLength {
		base, ext, extRunes = base+ext, "", nil
	}
	room := MaxNameLength - len([]rune(suffix)) - len(extRunes)
	if runes := []rune(base); len(runes) > room {
		base = strings.TrimRight(string(runes[:room]), " .")
	}
	if base == "" {
		base = string(placeholder)
	}
	return base + suffix + ext
}
