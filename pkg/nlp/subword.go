package nlp

import (
	"errors"
	"fmt"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// ErrNoSubwordModel is returned when the annotator is built without a subword model.
var ErrNoSubwordModel = errors.New("subword model is required")

// SubwordModel decomposes one word into vocabulary pieces. An empty result
// means the word has no useful decomposition and stays whole.
type SubwordModel interface {
	Split(word string) ([]string, error)
}

// unknownPieces are the unknown-token spellings of the common HuggingFace vocabularies.
var unknownPieces = map[string]bool{
	"[UNK]": true,
	"<unk>": true,
}

// HFSubwordModel splits words with a HuggingFace tokenizer definition
// (tokenizer.json), e.g. a WordPiece or BPE vocabulary.
type HFSubwordModel struct {
	tk *tokenizer.Tokenizer
}

// LoadHFSubwordModel reads a tokenizer.json file.
func LoadHFSubwordModel(path string) (*HFSubwordModel, error) {
	if path == "" {
		return nil, ErrNoSubwordModel
	}
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("load tokenizer %s: %w", path, err)
	}
	return &HFSubwordModel{tk: tk}, nil
}

// DefaultSubwordModel returns the BERT base uncased WordPiece vocabulary
// bundled with the tokenizer module.
func DefaultSubwordModel() *HFSubwordModel {
	return &HFSubwordModel{tk: pretrained.BertBaseUncased()}
}

// Split encodes word without special tokens and returns its pieces. Words the
// vocabulary cannot represent at all yield no pieces.
func (m *HFSubwordModel) Split(word string) ([]string, error) {
	en, err := m.tk.EncodeSingle(word, false)
	if err != nil {
		return nil, fmt.Errorf("encode %q: %w", word, err)
	}
	pieces := en.GetTokens()
	for _, p := range pieces {
		if !unknownPieces[p] {
			return pieces, nil
		}
	}
	return nil, nil
}
