package validation

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify turns a tag name into a URL-safe key. Hangul and other letters are
// kept after NFC normalization so "커피 원두" becomes "커피-원두".
func Slugify(name string) string {
	name = norm.NFC.String(strings.TrimSpace(name))

	var b strings.Builder
	pendingHyphen := false
	for _, r := range name {
		lr := unicode.ToLower(r)
		if !unicode.Is(unicode.Ll, lr) && !unicode.Is(unicode.Lo, lr) && (r < '0' || r > '9') {
			pendingHyphen = true
			continue
		}
		if pendingHyphen && b.Len() > 0 {
			b.WriteByte('-')
		}
		pendingHyphen = false
		b.WriteRune(lr)
	}
	return b.String()
}
