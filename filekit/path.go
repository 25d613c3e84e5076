package filekit

import (
	"strings"
	"unicode"
)

// PathInfo holds the components of a canonical path.
type PathInfo struct {
	Path      string
	Dirname   string
	Basename  string
	Extension string
	Filename  string
}

// NormalizePath returns the canonical form of p: forward slashes, no leading
// or trailing separator, no empty or "." segments, ".." resolved. The root is
// the empty string. A ".." that climbs above the root is an error.
func NormalizePath(p string) (string, error) {
	p = strings.Map(func(r rune) rune {
		if r == '\\' {
			return '/'
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, p)

	parts := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(parts) == 0 {
				return "", &PathError{Op: "normalize", Path: p, Err: ErrInvalidPath}
			}
			parts = parts[:len(parts)-1]
		default:
			parts = append(parts, seg)
		}
	}
	return strings.Join(parts, "/"), nil
}

// Dirname returns the parent of a canonical path, "" for root-level entries and root.
func Dirname(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// SplitPath decomposes a canonical path.
func SplitPath(p string) PathInfo {
	info := PathInfo{Path: p, Dirname: Dirname(p)}
	info.Basename = p[strings.LastIndexByte(p, '/')+1:]

	if i := strings.LastIndexByte(info.Basename, '.'); i >= 0 {
		info.Extension = info.Basename[i+1:]
		info.Filename = info.Basename[:i]
	} else {
		info.Filename = info.Basename
	}
	return info
}

// RootKey is the key of the root record when there is no prefix. No
// escaped path can produce it.
const RootKey = ":"

var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A", "/", ":")

// CacheKey maps a canonical path into a colon-separated key under prefix.
// Literal "%" and ":" inside segments are percent-escaped so distinct paths
// never share a key.
func CacheKey(prefix, p string) string {
	key := keyEscaper.Replace(p)
	switch {
	case prefix == "" && key == "":
		return RootKey
	case prefix == "":
		return key
	case key == "":
		return prefix
	default:
		return prefix + ":" + key
	}
}
