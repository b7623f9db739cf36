package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNounPhrases(t *testing.T) {
	tokens := []TaggedToken{
		{"the", "DT"}, {"big", "JJ"}, {"ghost", "NN"},
		{"laughs", "VBZ"},
		{"Zorak", "NNP"},
		{"at", "IN"},
		{"his", "PRP$"}, {"three", "CD"}, {"mantis", "NN"}, {"friends", "NNS"},
		{"!", "."},
	}
	assert.Equal(t, []string{"the big ghost", "his three mantis friends"}, NounPhrases(tokens))
}

func TestNounPhrases_TrailingModifierDropped(t *testing.T) {
	tokens := []TaggedToken{{"the", "DT"}, {"ghost", "NN"}, {"green", "JJ"}}
	assert.Equal(t, []string{"the ghost"}, NounPhrases(tokens))
}

func TestNounPhrases_Empty(t *testing.T) {
	assert.Empty(t, NounPhrases(nil))
	assert.NotNil(t, NounPhrases(nil))
}
