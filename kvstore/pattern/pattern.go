// Package pattern implements Redis-style glob matching for the key/value
// drivers that have no native SCAN MATCH.
package pattern

import (
	"strings"

	"github.com/gobwas/glob"
)

const special = `*?[]\`

// Escape quotes every glob metacharacter in s so it matches literally.
func Escape(s string) string {
	if !strings.ContainsAny(s, special) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// LiteralPrefix returns the leading part of a pattern that contains no
// metacharacters, unescaped. Drivers use it to narrow key iteration.
func LiteralPrefix(p string) string {
	var b strings.Builder
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch c {
		case '*', '?', '[':
			return b.String()
		case '\\':
			if i+1 < len(p) {
				i++
				b.WriteByte(p[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Compile translates a Redis glob into a gobwas matcher. Braces are literal
// in Redis and "[^...]" negates a class, so both are rewritten.
func Compile(p string) (glob.Glob, error) {
	var b strings.Builder
	b.Grow(len(p) + 4)
	inClass := false
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			b.WriteByte('\\')
			i++
			b.WriteByte(p[i])
		case c == '[' && !inClass:
			inClass = true
			b.WriteByte('[')
			if i+1 < len(p) && p[i+1] == '^' {
				b.WriteByte('!')
				i++
			}
		case c == ']' && inClass:
			inClass = false
			b.WriteByte(']')
		case (c == '{' || c == '}' || c == ',') && !inClass:
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return glob.Compile(b.String())
}
