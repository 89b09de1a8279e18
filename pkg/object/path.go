package object

import (
	"fmt"
	"strings"
)

// RelativePath is a normalized, slash-separated path relative to the
// checkout root. It never begins with a separator and never contains
// "." or ".." segments. The empty path names the root directory.
type RelativePath string

// ParseRelativePath validates s and returns it as a RelativePath.
func ParseRelativePath(s string) (RelativePath, error) {
	if s == "" {
		return "", nil
	}
	if strings.HasPrefix(s, "/") {
		return "", fmt.Errorf("path %q is absolute", s)
	}
	if strings.HasSuffix(s, "/") {
		return "", fmt.Errorf("path %q has a trailing separator", s)
	}
	for _, seg := range strings.Split(s, "/") {
		switch seg {
		case "":
			return "", fmt.Errorf("path %q has an empty segment", s)
		case ".", "..":
			return "", fmt.Errorf("path %q has a %q segment", s, seg)
		}
	}
	return RelativePath(s), nil
}

// String returns the path as a string.
func (p RelativePath) String() string {
	return string(p)
}

// Bytes returns the byte view of the path.
func (p RelativePath) Bytes() []byte {
	return []byte(p)
}

// IsEmpty reports whether p names the root directory.
func (p RelativePath) IsEmpty() bool {
	return p == ""
}

// Split returns the parent directory and the final path component.
// The root path splits into the root path and an empty base name.
func (p RelativePath) Split() (RelativePath, string) {
	idx := strings.LastIndexByte(string(p), '/')
	if idx < 0 {
		return "", string(p)
	}
	return RelativePath(p[:idx]), string(p[idx+1:])
}

// Dirname returns the parent directory of p.
func (p RelativePath) Dirname() RelativePath {
	dir, _ := p.Split()
	return dir
}

// Basename returns the final component of p.
func (p RelativePath) Basename() string {
	_, base := p.Split()
	return base
}

// Join appends a base name to p.
func (p RelativePath) Join(base string) RelativePath {
	if p.IsEmpty() {
		return RelativePath(base)
	}
	return RelativePath(string(p) + "/" + base)
}
