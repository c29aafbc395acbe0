package transcript

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	pronounIContractionPattern = regexp.MustCompile(`\bi['’](?:m|d|ll|ve|re|s)\b`)
	pronounIWordPattern        = regexp.MustCompile(`\bi\b`)
)

// capitalizeSentences upper-cases sentence starts and the standalone pronoun
// "I" in whisper-style lowercase output. ASR text is messy; this stays
// deliberately simple and never touches mid-word characters.
func capitalizeSentences(text string) string {
	runes := []rune(text)

	var out strings.Builder
	out.Grow(len(text))

	capitalizeNext := true
	for _, r := range runes {
		if capitalizeNext && unicode.IsLetter(r) {
			r = unicode.ToUpper(r)
			capitalizeNext = false
		}
		out.WriteRune(r)

		switch r {
		case '.', '!', '?':
			capitalizeNext = true
		}
	}

	result := pronounIContractionPattern.ReplaceAllStringFunc(out.String(), func(match string) string {
		return "I" + match[1:]
	})
	return pronounIWordPattern.ReplaceAllString(result, "I")
}
