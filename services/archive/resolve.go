package archive

import (
	"path"
	"strings"
)

// LegacyPrefixes are stripped, in this order, from stored paths written by
// older releases that saved public URLs instead of storage keys.
var LegacyPrefixes = []string{"uploads/", "static/uploads/", "public/uploads/"}

// LegacyFlatDir held every upload by file name before per-case folders existed.
const LegacyFlatDir = "legacy"

// Resolution is the outcome of a path search: Found with Path set, or not
// found with every candidate that was tried.
type Resolution struct {
	Path  string
	Found bool
	Tried []string
}

// Candidates lists the storage keys a stored path may live under, current
// format first. Cleaning drops leading slashes and any ".." that would climb
// out of the store root.
func Candidates(stored string) []string {
	s := strings.ReplaceAll(strings.TrimSpace(stored), "\\", "/")
	if s == "" {
		return nil
	}
	clean := strings.TrimPrefix(path.Clean("/"+s), "/")
	if clean == "" {
		return nil
	}

	out := []string{clean}
	for _, prefix := range LegacyPrefixes {
		if strings.HasPrefix(clean, prefix) {
			if rest := strings.TrimPrefix(clean, prefix); rest != "" {
				out = append(out, rest)
			}
			break
		}
	}
	out = append(out, path.Join(LegacyFlatDir, path.Base(clean)))

	seen := make(map[string]struct{}, len(out))
	uniq := out[:0]
	for _, c := range out {
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		uniq = append(uniq, c)
	}
	return uniq
}

// Resolve returns the first candidate for which exists reports true.
func Resolve(stored string, exists func(key string) bool) Resolution {
	candidates := Candidates(stored)
	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		tried = append(tried, c)
		if exists(c) {
			return Resolution{Path: c, Found: true, Tried: tried}
		}
	}
	return Resolution{Tried: tried}
}
