package utils

import (
	"strings"
	"unicode"
)

// Sanitize maps a challenge or category name to a single safe path
// component. Distinct inputs may collide; callers must handle an empty result.
func Sanitize(name string) string {
	var (
		b         strings.Builder
		inSpace   bool
		trimmable = strings.TrimSpace(name)
	)
	for _, r := range trimmable {
		switch {
		case unicode.IsSpace(r):
			if !inSpace {
				b.WriteRune('_')
			}
			inSpace = true
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
		inSpace = false
	}
	return strings.Trim(b.String(), ".")
}

// FileName returns the last path segment of a server path, without its query.
func FileName(remotePath string) string {
	path := strings.SplitN(NormalizePath(remotePath), "?", 2)[0]
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return Sanitize(path)
}
