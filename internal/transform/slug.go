package transform

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Slugify converts a title into a URL-friendly slug: accents folded to
// ASCII, lowercased, non-word characters stripped, runs of whitespace and
// hyphens collapsed to a single hyphen.
//
//	"25' Valencia"     -> "25-valencia"
//	"Lisbon – Portugal" -> "lisbon-portugal"
func Slugify(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	prevHyphen := true // swallow leading hyphens
	for _, r := range text {
		r = foldASCII(r)
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(unicode.ToLower(r))
			prevHyphen = false
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevHyphen = false
		case unicode.IsSpace(r) || r == '-' || r == '_':
			if !prevHyphen {
				b.WriteByte('-')
				prevHyphen = true
			}
		}
		// Everything else is dropped.
	}

	return strings.TrimRight(b.String(), "-")
}

var accentFold = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a',
	'ç': 'c',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ñ': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u',
	'ý': 'y', 'ÿ': 'y',
	'À': 'A', 'Á': 'A', 'Â': 'A', 'Ã': 'A', 'Ä': 'A', 'Å': 'A',
	'Ç': 'C',
	'È': 'E', 'É': 'E', 'Ê': 'E', 'Ë': 'E',
	'Ì': 'I', 'Í': 'I', 'Î': 'I', 'Ï': 'I',
	'Ñ': 'N',
	'Ò': 'O', 'Ó': 'O', 'Ô': 'O', 'Õ': 'O', 'Ö': 'O',
	'Ù': 'U', 'Ú': 'U', 'Û': 'U', 'Ü': 'U', 'Ý': 'Y',
}

// foldASCII maps common accented latin letters onto their ASCII base. Other
// non-ASCII runes pass through and get dropped by the caller.
func foldASCII(r rune) rune {
	if r < utf8.RuneSelf {
		return r
	}
	if folded, ok := accentFold[r]; ok {
		return folded
	}

	return r
}
