// Package folders resolves human-readable folder paths to remote
// folder IDs, creating missing segments on the way down. Folder names
// come from user-entered titles, so they are sanitized before ever
// reaching the provider.
package folders

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// forbiddenChars are stripped from folder names. The set covers the
// characters Drive itself tolerates but that break path semantics or
// downstream filesystem mirrors.
const forbiddenChars = `"*:<>?|/\`

// SanitizeName strips forbidden characters from a folder name,
// collapses runs of whitespace to single spaces, and trims the result.
// Unicode input is normalized to NFC so visually identical titles
// resolve to the same folder. Returns "" when nothing survives.
func SanitizeName(name string) string {
	name = norm.NFC.String(name)

	var b strings.Builder
	b.Grow(len(name))

	for _, r := range name {
		if strings.ContainsRune(forbiddenChars, r) {
			continue
		}

		b.WriteRune(r)
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
