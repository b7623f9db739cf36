package domain

import "strings"

// EpisodeMeta holds the scalar fields scraped from an episode page.
// Nil pointers mean the field was absent on the page and serialize as JSON null.
type EpisodeMeta struct {
	// Title is the text of the page <title> element.
	Title *string `json:"title" bson:"title"`

	// URL is the episode link as it appeared on the listing page (e.g. "?ep=42").
	URL string `json:"url" bson:"url"`

	GuestStars *string `json:"guest_stars" bson:"guest_stars"`
	Synopsis   *string `json:"synopsis" bson:"synopsis"`
}

// Episode is an episode as produced by the scraper: metadata plus the raw transcript.
type Episode struct {
	EpisodeMeta `bson:",inline"`

	Transcript []DialogueTurn `json:"transcript" bson:"transcript"`
}

// DialogueTurn is one raw speaker/dialogue pair.
// Speaker is nil on continuation lines and is inherited from the previous turn during preprocessing.
type DialogueTurn struct {
	Speaker  *string `json:"speaker" bson:"speaker"`
	Dialogue *string `json:"dialogue" bson:"dialogue"`
}

// ProcessedEpisode is an Episode whose transcript has been replaced by annotated turns.
type ProcessedEpisode struct {
	EpisodeMeta

	Transcript []ProcessedTurn `json:"transcript"`
}

// ProcessedTurn is the linguistic record produced for one DialogueTurn.
type ProcessedTurn struct {
	Speaker   string   `json:"speaker"`
	Text      string   `json:"text"`
	Actions   []string `json:"actions"`
	Sentences []string `json:"sentences"`

	// Words are surface tokens of Text in order, punctuation included.
	Words []string `json:"words"`

	// Lemmas collapse morphology and drop stopwords; they are not aligned with Words.
	Lemmas []string `json:"lemmas"`

	Phrases       []string       `json:"phrases"`
	SubwordTokens []SubwordToken `json:"subword_tokens"`
	Entities      []Entity       `json:"entities"`
}

// Str returns a pointer to s, or nil when s is blank.
func Str(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
