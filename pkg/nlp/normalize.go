package nlp

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)\bhttps?://\S+|\bwww\.\S+`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	punctPattern = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// Normalize lowercases text and strips action placeholders, HTML tags, URLs and
// punctuation, collapsing whitespace. The result feeds lemma and gazetteer
// matching only; surface tokens are taken from the original text.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, ActionPlaceholder, " ")
	text = tagPattern.ReplaceAllString(text, " ")
	text = urlPattern.ReplaceAllString(text, " ")
	text = cases.Lower(language.English).String(text)
	text = punctPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
