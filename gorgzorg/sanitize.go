package gorgzorg

import (
	"path"
	"strings"
)

// SanitizePath rewrites a logical path from the wire into a receiver-relative
// path that cannot escape the save root. It rewrites backslashes to slashes,
// strips a Windows drive prefix, resolves and removes every "." and ".."
// segment, and strips leading separators. The result is slash-separated and
// relative; the empty string means the path had no usable component.
//
// SanitizePath is idempotent: sanitizing an already sanitized path returns
// it unchanged.
func SanitizePath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")

	// Drive prefix, e.g. "C:/".
	if len(p) >= 2 && p[1] == ':' && isDriveLetter(p[0]) {
		p = p[2:]
	}

	p = path.Clean(p)
	for strings.HasPrefix(p, "../") {
		p = p[len("../"):]
	}
	p = strings.TrimPrefix(p, "/")

	if p == "." || p == ".." {
		return ""
	}
	return p
}

func isDriveLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
