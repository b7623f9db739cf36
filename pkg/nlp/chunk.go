package nlp

import "strings"

// TaggedToken is a surface token with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// NounPhrases chunks tagged tokens into noun phrases of the shape
// (DT|PDT|PRP$)? (JJ*|CD)* NN+ and keeps those longer than one token.
func NounPhrases(tokens []TaggedToken) []string {
	phrases := make([]string, 0)
	var span []TaggedToken

	flush := func() {
		end := len(span)
		for end > 0 && !isNounTag(span[end-1].Tag) {
			end--
		}
		if end > 1 {
			words := make([]string, end)
			for i := range span[:end] {
				words[i] = span[i].Text
			}
			phrases = append(phrases, strings.Join(words, " "))
		}
		span = span[:0]
	}

	for _, tok := range tokens {
		switch {
		case isDeterminerTag(tok.Tag):
			flush()
			span = append(span, tok)
		case isModifierTag(tok.Tag):
			// a modifier after a noun starts the next phrase
			if len(span) > 0 && isNounTag(span[len(span)-1].Tag) {
				flush()
			}
			span = append(span, tok)
		case isNounTag(tok.Tag):
			span = append(span, tok)
		default:
			flush()
		}
	}
	flush()

	return phrases
}

func isNounTag(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isModifierTag(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD":
		return true
	}
	return false
}

func isDeterminerTag(tag string) bool {
	switch tag {
	case "DT", "PDT", "PRP$":
		return true
	}
	return false
}
