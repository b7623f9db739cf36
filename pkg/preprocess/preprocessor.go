// Package preprocess converts raw scraped episodes into annotated episodes.
package preprocess

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/nlp"
)

// ErrMissingDialogue is returned for a turn whose dialogue was absent on the page.
var ErrMissingDialogue = errors.New("turn has no dialogue")

// Result is the outcome of processing one file.
type Result int

const (
	ResultProcessed Result = iota
	ResultSkipped
)

func (r Result) String() string {
	switch r {
	case ResultProcessed:
		return "processed"
	case ResultSkipped:
		return "skipped"
	default:
		return fmt.Sprintf("Result(%d)", int(r))
	}
}

// Annotator computes the linguistic views of a cleaned dialogue line.
type Annotator interface {
	Annotate(cleaned string) (*nlp.Annotation, error)
}

// Archiver mirrors processed episodes to a secondary store.
type Archiver interface {
	SaveProcessedEpisode(ctx context.Context, ep *domain.ProcessedEpisode) error
}

// Preprocessor turns raw episodes into processed ones.
type Preprocessor struct {
	annotator Annotator
	archive   Archiver
	log       logrus.FieldLogger
}

// New creates a Preprocessor. archive may be nil.
func New(annotator Annotator, archive Archiver, log logrus.FieldLogger) *Preprocessor {
	return &Preprocessor{annotator: annotator, archive: archive, log: log}
}

// ProcessEpisode produces one processed turn per raw turn, in order. Any turn that
// cannot be processed fails the whole episode.
func (p *Preprocessor) ProcessEpisode(ep *domain.Episode) (*domain.ProcessedEpisode, error) {
	out := &domain.ProcessedEpisode{
		EpisodeMeta: ep.EpisodeMeta,
		Transcript:  make([]domain.ProcessedTurn, 0, len(ep.Transcript)),
	}

	var speakers SpeakerTracker
	for i, turn := range ep.Transcript {
		speaker, err := speakers.Resolve(turn)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		if turn.Dialogue == nil {
			return nil, fmt.Errorf("turn %d: %w", i, ErrMissingDialogue)
		}

		pt, err := p.processTurn(speaker, *turn.Dialogue)
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		out.Transcript = append(out.Transcript, pt)
	}
	return out, nil
}

func (p *Preprocessor) processTurn(speaker, dialogue string) (domain.ProcessedTurn, error) {
	cleaned := nlp.CleanActions(dialogue)
	ann, err := p.annotator.Annotate(cleaned)
	if err != nil {
		return domain.ProcessedTurn{}, err
	}
	return domain.ProcessedTurn{
		Speaker:       speaker,
		Text:          cleaned,
		Actions:       nlp.ExtractActions(dialogue),
		Sentences:     ann.Sentences,
		Words:         ann.Words,
		Lemmas:        ann.Lemmas,
		Phrases:       ann.NounPhrases,
		SubwordTokens: ann.Subwords,
		Entities:      ann.Entities,
	}, nil
}

// ProcessFile processes the raw episode at path into out under the same file
// name. An existing output file is left alone and reported as ResultSkipped.
func (p *Preprocessor) ProcessFile(ctx context.Context, path string, out *episodefile.Dir) (Result, error) {
	name := filepath.Base(path)
	if out.Exists(name) {
		return ResultSkipped, nil
	}

	ep, err := episodefile.ReadEpisode(path)
	if err != nil {
		return ResultProcessed, err
	}

	processed, err := p.ProcessEpisode(ep)
	if err != nil {
		return ResultProcessed, err
	}

	if err := out.Save(name, processed); err != nil {
		if errors.Is(err, episodefile.ErrEpisodeExists) {
			return ResultSkipped, nil
		}
		return ResultProcessed, err
	}

	if p.archive != nil {
		if err := p.archive.SaveProcessedEpisode(ctx, processed); err != nil {
			p.log.WithField("file", name).WithError(err).Warn("archive mirror failed")
		}
	}
	return ResultProcessed, nil
}

// ProcessDir processes every raw file in in, in name order, writing to out.
// limit > 0 caps the number of files processed in this run; skipped files do
// not count. Per-file failures are logged and counted.
func (p *Preprocessor) ProcessDir(ctx context.Context, in, out *episodefile.Dir, limit int) (domain.Summary, error) {
	var sum domain.Summary

	names, err := in.List()
	if err != nil {
		return sum, err
	}

	unlock, err := out.Lock()
	if err != nil {
		return sum, err
	}
	defer func() { _ = unlock() }()

	p.log.WithFields(logrus.Fields{
		"input":  in.Root(),
		"output": out.Root(),
		"files":  len(names),
	}).Info("preprocessing episodes")

	for _, name := range names {
		if limit > 0 && sum.Processed >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		log := p.log.WithField("file", name)
		res, err := p.ProcessFile(ctx, in.Path(name), out)
		switch {
		case err != nil:
			sum.Failed++
			log.WithError(err).Warn("episode not preprocessed")
		case res == ResultSkipped:
			sum.Skipped++
			log.Debug("already preprocessed, skipping")
		default:
			sum.Processed++
			log.Info("episode preprocessed")
		}
	}
	return sum, nil
}
