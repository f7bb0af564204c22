package claims

import (
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const placeholder = '■'

var symbolRunes = runes.Map(func(r rune) rune {
	if r == placeholder {
		return r
	}
	if unicode.Is(unicode.So, r) || unicode.Is(unicode.Sk, r) || (r >= 0x1F000 && r <= 0x1FAFF) {
		return placeholder
	}
	return r
})

var dropJoiners = runes.Remove(runes.Predicate(func(r rune) bool {
	return r == 0x200D || (r >= 0xFE00 && r <= 0xFE0F)
}))

// Sanitize replaces emoji and other pictographic symbols with a black
// square so names line up in terminals without emoji fonts.
func Sanitize(text string) string {
	out, _, err := transform.String(transform.Chain(dropJoiners, symbolRunes), text)
	if err != nil {
		return text
	}
	return out
}
