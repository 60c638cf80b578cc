package cache

import "strings"

var globEscaper = strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)

// Key joins non-empty parts with ':'.
func Key(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ":")
}

// PrefixPattern is the SCAN pattern matching every key starting with prefix.
// Glob metacharacters in prefix are escaped.
func PrefixPattern(prefix string) string {
	return globEscaper.Replace(prefix) + "*"
}
