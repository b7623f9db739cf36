// Package nlp turns one cleaned dialogue line into the linguistic views stored
// with a processed transcript turn.
package nlp

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"

	"ghostal/pkg/domain"
)

// EntityPerson labels gazetteer matches.
const EntityPerson = "PERSON"

// DefaultSubwordThreshold is the word length (in runes) above which a word is
// decomposed by the subword model.
const DefaultSubwordThreshold = 5

// Annotation holds every view of one cleaned dialogue line.
type Annotation struct {
	Normalized  string
	Words       []string
	Sentences   []string
	NounPhrases []string
	Lemmas      []string
	Entities    []domain.Entity
	Subwords    []domain.SubwordToken
}

// Annotator is built once per run and reused for every turn.
type Annotator struct {
	subwords        SubwordModel
	lemmatizer      Lemmatizer
	threshold       int
	removeStopwords bool
	gazetteer       []gazetteerEntry
}

type gazetteerEntry struct {
	name    string
	pattern *regexp.Regexp
}

// Option configures an Annotator.
type Option func(*Annotator)

// WithLemmatizer replaces the default English lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(a *Annotator) { a.lemmatizer = l }
}

// WithSubwordThreshold sets the rune length above which words are split.
func WithSubwordThreshold(n int) Option {
	return func(a *Annotator) {
		if n > 0 {
			a.threshold = n
		}
	}
}

// WithStopwords toggles stopword removal from the lemma list.
func WithStopwords(remove bool) Option {
	return func(a *Annotator) { a.removeStopwords = remove }
}

// WithKnownEntities registers names that are always tagged as PERSON when they
// occur in a line, regardless of capitalization.
func WithKnownEntities(names ...string) Option {
	return func(a *Annotator) {
		for _, name := range names {
			norm := Normalize(name)
			if norm == "" {
				continue
			}
			a.gazetteer = append(a.gazetteer, gazetteerEntry{
				name:    name,
				pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(norm) + `\b`),
			})
		}
	}
}

// New builds an Annotator around a subword model.
func New(model SubwordModel, opts ...Option) (*Annotator, error) {
	if model == nil {
		return nil, ErrNoSubwordModel
	}
	a := &Annotator{
		subwords:        model,
		threshold:       DefaultSubwordThreshold,
		removeStopwords: true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.lemmatizer == nil {
		lem, err := NewEnglishLemmatizer()
		if err != nil {
			return nil, err
		}
		a.lemmatizer = lem
	}
	return a, nil
}

// Annotate computes all views of cleaned, a dialogue line whose stage directions
// have already been replaced by ActionPlaceholder.
func (a *Annotator) Annotate(cleaned string) (*Annotation, error) {
	ann := &Annotation{Normalized: Normalize(cleaned)}

	words, err := a.words(cleaned)
	if err != nil {
		return nil, err
	}
	ann.Words = words

	sentences, err := sentences(cleaned)
	if err != nil {
		return nil, err
	}
	ann.Sentences = sentences

	plain := strings.Join(strings.Fields(strings.ReplaceAll(cleaned, ActionPlaceholder, " ")), " ")
	tagged, entities, err := a.tagAndExtract(plain)
	if err != nil {
		return nil, err
	}
	ann.NounPhrases = NounPhrases(tagged)
	ann.Entities = a.mergeGazetteer(entities, ann.Normalized)
	ann.Lemmas = a.lemmas(ann.Normalized)

	subwords, err := a.splitWords(words)
	if err != nil {
		return nil, err
	}
	ann.Subwords = subwords

	return ann, nil
}

// words tokenizes the text between placeholders and keeps each placeholder as a
// single token in its original position.
func (a *Annotator) words(cleaned string) ([]string, error) {
	words := make([]string, 0)
	segments := strings.Split(cleaned, ActionPlaceholder)
	for i, seg := range segments {
		if i > 0 {
			words = append(words, ActionPlaceholder)
		}
		if strings.TrimSpace(seg) == "" {
			continue
		}
		doc, err := prose.NewDocument(seg,
			prose.WithSegmentation(false),
			prose.WithTagging(false),
			prose.WithExtraction(false))
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		for _, tok := range doc.Tokens() {
			words = append(words, tok.Text)
		}
	}
	return words, nil
}

func sentences(cleaned string) ([]string, error) {
	out := make([]string, 0)
	if strings.TrimSpace(cleaned) == "" {
		return out, nil
	}
	doc, err := prose.NewDocument(cleaned,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		return nil, fmt.Errorf("segment sentences: %w", err)
	}
	for _, s := range doc.Sentences() {
		if text := strings.TrimSpace(s.Text); text != "" {
			out = append(out, text)
		}
	}
	return out, nil
}

// tagAndExtract runs the tagger and the entity recognizer over placeholder-free
// text. Capitalization is kept because the recognizer depends on it.
func (a *Annotator) tagAndExtract(plain string) ([]TaggedToken, []domain.Entity, error) {
	if plain == "" {
		return nil, nil, nil
	}
	doc, err := prose.NewDocument(plain, prose.WithSegmentation(false))
	if err != nil {
		return nil, nil, fmt.Errorf("tag: %w", err)
	}
	tokens := doc.Tokens()
	tagged := make([]TaggedToken, len(tokens))
	for i, tok := range tokens {
		tagged[i] = TaggedToken{Text: tok.Text, Tag: tok.Tag}
	}
	ents := doc.Entities()
	entities := make([]domain.Entity, 0, len(ents))
	for _, e := range ents {
		entities = append(entities, domain.Entity{Text: e.Text, Label: e.Label})
	}
	return tagged, entities, nil
}

// mergeGazetteer drops recognizer entities that name a known speaker and adds
// the known speakers found in normalized, in order of first appearance.
func (a *Annotator) mergeGazetteer(found []domain.Entity, normalized string) []domain.Entity {
	entities := make([]domain.Entity, 0, len(found))
	seen := make(map[string]bool)
	for _, e := range found {
		key := strings.ToLower(e.Text)
		if a.isKnown(e.Text) || seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, e)
	}

	type hit struct {
		name string
		pos  int
	}
	var hits []hit
	for _, g := range a.gazetteer {
		if loc := g.pattern.FindStringIndex(normalized); loc != nil {
			hits = append(hits, hit{name: g.name, pos: loc[0]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	for _, h := range hits {
		key := strings.ToLower(h.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entities = append(entities, domain.Entity{Text: h.name, Label: EntityPerson})
	}
	return entities
}

func (a *Annotator) isKnown(text string) bool {
	norm := Normalize(text)
	for _, g := range a.gazetteer {
		if Normalize(g.name) == norm {
			return true
		}
	}
	return false
}

func (a *Annotator) lemmas(normalized string) []string {
	lemmas := make([]string, 0)
	for _, tok := range strings.Fields(normalized) {
		if !isASCII(tok) {
			continue
		}
		if a.removeStopwords && isStopword(tok) {
			continue
		}
		lemmas = append(lemmas, a.lemmatizer.Lemma(tok))
	}
	return lemmas
}

func (a *Annotator) splitWords(words []string) ([]domain.SubwordToken, error) {
	out := make([]domain.SubwordToken, 0, len(words))
	for _, w := range words {
		if w == ActionPlaceholder || utf8.RuneCountInString(w) <= a.threshold {
			out = append(out, domain.Atomic(w))
			continue
		}
		pieces, err := a.subwords.Split(w)
		if err != nil {
			return nil, fmt.Errorf("split %q: %w", w, err)
		}
		if len(pieces) == 0 {
			out = append(out, domain.Atomic(w))
			continue
		}
		out = append(out, domain.Composite(pieces))
	}
	return out, nil
}
