package db

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS episodes (
		episode_id  SERIAL PRIMARY KEY,
		title       TEXT,
		url         TEXT NOT NULL,
		guest_stars TEXT,
		synopsis    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS dialogue (
		dialogue_id SERIAL PRIMARY KEY,
		episode_id  INTEGER NOT NULL REFERENCES episodes(episode_id) ON DELETE CASCADE,
		speaker     TEXT NOT NULL,
		text        TEXT NOT NULL,
		actions     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		token_id    SERIAL PRIMARY KEY,
		dialogue_id INTEGER NOT NULL REFERENCES dialogue(dialogue_id) ON DELETE CASCADE,
		token       TEXT NOT NULL,
		token_type  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		action_id          SERIAL PRIMARY KEY,
		dialogue_id        INTEGER NOT NULL REFERENCES dialogue(dialogue_id) ON DELETE CASCADE,
		action_type        TEXT NOT NULL,
		action_description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS episodes_title_idx ON episodes(title)`,
	`CREATE INDEX IF NOT EXISTS dialogue_episode_idx ON dialogue(episode_id)`,
	`CREATE INDEX IF NOT EXISTS tokens_dialogue_idx ON tokens(dialogue_id)`,
	`CREATE INDEX IF NOT EXISTS actions_dialogue_idx ON actions(dialogue_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS episodes (
		episode_id  INTEGER PRIMARY KEY AUTOINCREMENT,
		title       TEXT,
		url         TEXT NOT NULL,
		guest_stars TEXT,
		synopsis    TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS dialogue (
		dialogue_id INTEGER PRIMARY KEY AUTOINCREMENT,
		episode_id  INTEGER NOT NULL REFERENCES episodes(episode_id) ON DELETE CASCADE,
		speaker     TEXT NOT NULL,
		text        TEXT NOT NULL,
		actions     TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tokens (
		token_id    INTEGER PRIMARY KEY AUTOINCREMENT,
		dialogue_id INTEGER NOT NULL REFERENCES dialogue(dialogue_id) ON DELETE CASCADE,
		token       TEXT NOT NULL,
		token_type  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		action_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		dialogue_id        INTEGER NOT NULL REFERENCES dialogue(dialogue_id) ON DELETE CASCADE,
		action_type        TEXT NOT NULL,
		action_description TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS episodes_title_idx ON episodes(title)`,
	`CREATE INDEX IF NOT EXISTS dialogue_episode_idx ON dialogue(episode_id)`,
	`CREATE INDEX IF NOT EXISTS tokens_dialogue_idx ON tokens(dialogue_id)`,
	`CREATE INDEX IF NOT EXISTS actions_dialogue_idx ON actions(dialogue_id)`,
}

// Schema returns the CREATE statements for dialect, in dependency order.
func Schema(d Dialect) ([]string, error) {
	switch d {
	case DialectPostgres:
		return postgresSchema, nil
	case DialectSQLite:
		return sqliteSchema, nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", d)
	}
}

// EnsureSchema creates any missing tables and indexes. Existing tables are left
// as they are.
func EnsureSchema(ctx context.Context, p DBProvider) error {
	stmts, err := Schema(p.Dialect())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := p.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
