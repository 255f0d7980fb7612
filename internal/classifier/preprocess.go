package classifier

import (
	"strings"
	"unicode"
)

// preprocess normalizes raw text before scoring: letters are lowercased,
// anything that is not a word character, whitespace or a CJK ideograph
// (U+4E00..U+9FFF) becomes a space, and runs of whitespace collapse to a
// single space. Hyphenated forms like "real-time" therefore normalize to
// "real time", which is the form the keyword tables use. Total over all
// valid UTF-8 input; empty in, empty out.
func preprocess(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	for _, r := range raw {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case r >= 0x4E00 && r <= 0x9FFF:
			b.WriteRune(r)
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		default:
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// containsToken reports whether kw occurs as a whole space-delimited token
// in text. Used for the whole-token scoring bonus; substring matches score
// less.
func containsToken(text, kw string) bool {
	return strings.Contains(" "+text+" ", " "+kw+" ")
}
