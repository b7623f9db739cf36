package nlp

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/bbalet/stopwords"
)

// Lemmatizer maps a lowercased word to its dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// NewEnglishLemmatizer loads the embedded English golem dictionary.
func NewEnglishLemmatizer() (Lemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}
	return lem, nil
}

// isStopword reports whether the English stopword list would remove word.
// Tokens carrying a digit are never stopwords; CleanString strips digits.
func isStopword(word string) bool {
	if strings.IndexFunc(word, unicode.IsDigit) >= 0 {
		return false
	}
	return strings.TrimSpace(stopwords.CleanString(word, "en", false)) == ""
}
