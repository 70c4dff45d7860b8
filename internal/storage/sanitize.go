package storage

import "strings"

// sanitizeName maps a sequence/config/lock key to a safe filename: keep
// alphanumerics, '-', and '_'; replace every other rune with '_'. Mirrors
// storage/file/sequence.rs::sanitize_name in the reference implementation.
func sanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
