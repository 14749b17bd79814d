/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package neardle

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var apostrophes = strings.NewReplacer("'", "", "’", "", "`", "")

func stripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}

	return out
}

// Normalize canonicalizes free text for comparison, so that "Café" and
// "cafe" compare equal.
func Normalize(text string) string {
	text = stripAccents(strings.ToLower(text))
	text = apostrophes.Replace(text)

	var b strings.Builder
	b.Grow(len(text))

	pending := false
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}

	return b.String()
}

// CoreTitle drops trailing qualifiers such as "(Live)", " - Remastered"
// or " [Remix]" from a track title.
func CoreTitle(name string) string {
	cut := len(name)
	for _, sep := range []string{"(", " -", " ["} {
		if i := strings.Index(name, sep); i >= 0 && i < cut {
			cut = i
		}
	}

	if cut == len(name) {
		return name
	}

	return strings.TrimRight(name[:cut], " ")
}
