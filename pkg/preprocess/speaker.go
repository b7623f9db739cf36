package preprocess

import (
	"errors"
	"fmt"
	"strings"

	"ghostal/pkg/domain"
)

// ErrNoSpeaker is returned when a turn has no speaker and none was seen before it.
var ErrNoSpeaker = errors.New("turn has no speaker and no previous speaker")

// SpeakerTracker carries the last named speaker forward onto continuation lines.
// The zero value is ready to use; use one tracker per episode.
type SpeakerTracker struct {
	last string
}

// Resolve returns the turn's own speaker when it is present and non-blank,
// otherwise the most recent speaker seen.
func (t *SpeakerTracker) Resolve(turn domain.DialogueTurn) (string, error) {
	if turn.Speaker != nil {
		if s := strings.TrimSpace(*turn.Speaker); s != "" {
			t.last = s
			return s, nil
		}
	}
	if t.last == "" {
		return "", ErrNoSpeaker
	}
	return t.last, nil
}

// ResolveSpeakers resolves every turn of a transcript in order.
func ResolveSpeakers(turns []domain.DialogueTurn) ([]string, error) {
	var tracker SpeakerTracker
	speakers := make([]string, len(turns))
	for i, turn := range turns {
		s, err := tracker.Resolve(turn)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		speakers[i] = s
	}
	return speakers, nil
}
