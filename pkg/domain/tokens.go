package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TokenType tags a row in the tokens table.
type TokenType string

const (
	TokenTypeWord    TokenType = "word"
	TokenTypeSubword TokenType = "subword"
)

var errInvalidSubwordToken = errors.New("subword token must be a string or an array of strings")

// SubwordToken is either an atomic word kept as-is or a word decomposed into
// ordered sub-pieces by a vocabulary model.
//
// On the wire an atomic token is a bare JSON string and a composite token is an
// array of strings, which keeps the files compatible with the ragged layout
// downstream tools expect.
type SubwordToken struct {
	atomic string
	pieces []string
}

// Atomic wraps a word that was not decomposed.
func Atomic(word string) SubwordToken {
	return SubwordToken{atomic: word}
}

// Composite wraps the pieces of a decomposed word.
func Composite(pieces []string) SubwordToken {
	cp := make([]string, len(pieces))
	copy(cp, pieces)
	return SubwordToken{pieces: cp}
}

// IsComposite reports whether the token was decomposed.
func (t SubwordToken) IsComposite() bool {
	return t.pieces != nil
}

// Kind is the token_type stored for each of the token's pieces.
func (t SubwordToken) Kind() TokenType {
	if t.IsComposite() {
		return TokenTypeSubword
	}
	return TokenTypeWord
}

// Pieces returns the stored pieces; an atomic token has exactly one.
func (t SubwordToken) Pieces() []string {
	if t.IsComposite() {
		return t.pieces
	}
	return []string{t.atomic}
}

func (t SubwordToken) String() string {
	if t.IsComposite() {
		return fmt.Sprintf("%q", t.pieces)
	}
	return t.atomic
}

func (t SubwordToken) MarshalJSON() ([]byte, error) {
	if t.IsComposite() {
		return json.Marshal(t.pieces)
	}
	return json.Marshal(t.atomic)
}

func (t *SubwordToken) UnmarshalJSON(data []byte) error {
	var word string
	if err := json.Unmarshal(data, &word); err == nil {
		*t = Atomic(word)
		return nil
	}

	var pieces []string
	if err := json.Unmarshal(data, &pieces); err != nil {
		return errInvalidSubwordToken
	}
	if pieces == nil {
		pieces = []string{}
	}
	*t = SubwordToken{pieces: pieces}
	return nil
}

// TokenRow is one row of the tokens table.
type TokenRow struct {
	Token     string
	TokenType TokenType
}

// FlattenSubwords expands a ragged subword sequence into token rows:
// one "word" row per atomic token and one "subword" row per piece of a composite token.
func FlattenSubwords(tokens []SubwordToken) []TokenRow {
	rows := make([]TokenRow, 0, len(tokens))
	for _, tok := range tokens {
		kind := tok.Kind()
		for _, piece := range tok.Pieces() {
			rows = append(rows, TokenRow{Token: piece, TokenType: kind})
		}
	}
	return rows
}

// Entity is a named entity: surface text and category label (PERSON, GPE, ORG, ...).
type Entity struct {
	Text  string
	Label string
}

// MarshalJSON encodes the entity as a [text, label] pair.
func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Text, e.Label})
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("decode entity: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("decode entity: want 2 elements, got %d", len(pair))
	}
	e.Text, e.Label = pair[0], pair[1]
	return nil
}
