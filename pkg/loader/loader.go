// Package loader writes processed episodes into the relational schema.
package loader

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"ghostal/pkg/db"
	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
)

// Outcome is what LoadEpisode did with an episode.
type Outcome int

const (
	OutcomeInserted Outcome = iota
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeInserted:
		return "inserted"
	case OutcomeUpdated:
		return "updated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Options tune upsert behavior.
type Options struct {
	// ReplaceTranscript deletes and reinserts the dialogue, token and action
	// rows of an episode that already exists. By default only the episode's
	// scalar fields are overwritten.
	ReplaceTranscript bool
}

// Loader maps processed episodes onto the episodes, dialogue, tokens and
// actions tables.
type Loader struct {
	db   *sql.DB
	opts Options
	log  logrus.FieldLogger
}

// New creates a Loader writing through p.
func New(p db.DBProvider, opts Options, log logrus.FieldLogger) *Loader {
	return &Loader{db: p.DB(), opts: opts, log: log}
}

// LoadEpisode upserts ep by title inside one transaction. Any failure rolls
// the whole episode back.
func (l *Loader) LoadEpisode(ctx context.Context, ep *domain.ProcessedEpisode) (outcome Outcome, err error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return OutcomeInserted, fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	episodeID, found, err := findByTitle(ctx, tx, ep.Title)
	if err != nil {
		return OutcomeInserted, err
	}

	outcome = OutcomeInserted
	if found {
		outcome = OutcomeUpdated
		if err = updateEpisode(ctx, tx, episodeID, ep.EpisodeMeta); err != nil {
			return outcome, err
		}
		if l.opts.ReplaceTranscript {
			if err = deleteTranscript(ctx, tx, episodeID); err != nil {
				return outcome, err
			}
			if err = insertTranscript(ctx, tx, episodeID, ep.Transcript); err != nil {
				return outcome, err
			}
		}
	} else {
		if episodeID, err = insertEpisode(ctx, tx, ep.EpisodeMeta); err != nil {
			return outcome, err
		}
		if err = insertTranscript(ctx, tx, episodeID, ep.Transcript); err != nil {
			return outcome, err
		}
	}

	if err = tx.Commit(); err != nil {
		return outcome, fmt.Errorf("commit: %w", err)
	}
	return outcome, nil
}

// LoadFile reads one processed episode file and loads it.
func (l *Loader) LoadFile(ctx context.Context, path string) (Outcome, error) {
	ep, err := episodefile.ReadProcessed(path)
	if err != nil {
		return OutcomeInserted, err
	}
	return l.LoadEpisode(ctx, ep)
}

// LoadDir loads every processed file in dir in name order. limit > 0 caps the
// number of files. Per-file failures are logged and counted.
func (l *Loader) LoadDir(ctx context.Context, dir *episodefile.Dir, limit int) (domain.Summary, error) {
	var sum domain.Summary

	names, err := dir.List()
	if err != nil {
		return sum, err
	}
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	l.log.WithFields(logrus.Fields{
		"dir":   dir.Root(),
		"files": len(names),
	}).Info("loading episodes")

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		log := l.log.WithField("file", name)
		outcome, err := l.LoadFile(ctx, dir.Path(name))
		switch {
		case err != nil:
			sum.Failed++
			log.WithError(err).Warn("episode not loaded")
		case outcome == OutcomeUpdated:
			sum.Updated++
			log.Info("episode updated")
		default:
			sum.Processed++
			log.Info("episode inserted")
		}
	}
	return sum, nil
}

func findByTitle(ctx context.Context, tx *sql.Tx, title *string) (int64, bool, error) {
	if title == nil {
		return 0, false, nil
	}
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT episode_id FROM episodes WHERE title = $1 ORDER BY episode_id LIMIT 1`, *title).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find episode: %w", err)
	}
	return id, true, nil
}

func insertEpisode(ctx context.Context, tx *sql.Tx, meta domain.EpisodeMeta) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`INSERT INTO episodes (title, url, guest_stars, synopsis) VALUES ($1, $2, $3, $4) RETURNING episode_id`,
		nullable(meta.Title), meta.URL, nullable(meta.GuestStars), nullable(meta.Synopsis)).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert episode: %w", err)
	}
	return id, nil
}

func updateEpisode(ctx context.Context, tx *sql.Tx, id int64, meta domain.EpisodeMeta) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE episodes SET title = $1, url = $2, guest_stars = $3, synopsis = $4 WHERE episode_id = $5`,
		nullable(meta.Title), meta.URL, nullable(meta.GuestStars), nullable(meta.Synopsis), id)
	if err != nil {
		return fmt.Errorf("update episode %d: %w", id, err)
	}
	return nil
}

// deleteTranscript relies on ON DELETE CASCADE for tokens and actions.
func deleteTranscript(ctx context.Context, tx *sql.Tx, episodeID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM dialogue WHERE episode_id = $1`, episodeID); err != nil {
		return fmt.Errorf("delete dialogue of episode %d: %w", episodeID, err)
	}
	return nil
}

func insertTranscript(ctx context.Context, tx *sql.Tx, episodeID int64, turns []domain.ProcessedTurn) error {
	for i, turn := range turns {
		var dialogueID int64
		err := tx.QueryRowContext(ctx,
			`INSERT INTO dialogue (episode_id, speaker, text, actions) VALUES ($1, $2, $3, $4) RETURNING dialogue_id`,
			episodeID, turn.Speaker, DialogueText(turn), strings.Join(turn.Actions, "; ")).Scan(&dialogueID)
		if err != nil {
			return fmt.Errorf("insert dialogue %d: %w", i, err)
		}

		for _, action := range turn.Actions {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO actions (dialogue_id, action_type, action_description) VALUES ($1, $2, $3)`,
				dialogueID, ActionType(action), action); err != nil {
				return fmt.Errorf("insert action of dialogue %d: %w", i, err)
			}
		}

		for _, row := range domain.FlattenSubwords(turn.SubwordTokens) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO tokens (dialogue_id, token, token_type) VALUES ($1, $2, $3)`,
				dialogueID, row.Token, string(row.TokenType)); err != nil {
				return fmt.Errorf("insert token of dialogue %d: %w", i, err)
			}
		}
	}
	return nil
}

// DialogueText is the stored text of a turn: its sentences joined by a space.
func DialogueText(turn domain.ProcessedTurn) string {
	return strings.Join(turn.Sentences, " ")
}

// ActionType is the lowercased first word of a stage direction, e.g. "laughs"
// for "Laughs maniacally".
func ActionType(action string) string {
	fields := strings.Fields(action)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(strings.Trim(fields[0], ".,;:!?\"'"))
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
