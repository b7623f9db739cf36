package loader

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostal/pkg/db"
	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/logging"
)

func newTestDB(t *testing.T) db.DBProvider {
	t.Helper()
	c := db.NewSQLiteClient(db.MemoryPath)
	require.NoError(t, c.Connect(context.Background()))
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, db.EnsureSchema(context.Background(), c))
	return c
}

func count(t *testing.T, p db.DBProvider, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, p.DB().QueryRow(query, args...).Scan(&n))
	return n
}

func episode(title, synopsis string, turns ...domain.ProcessedTurn) *domain.ProcessedEpisode {
	return &domain.ProcessedEpisode{
		EpisodeMeta: domain.EpisodeMeta{
			Title:    domain.Str(title),
			URL:      "?ep=" + title,
			Synopsis: domain.Str(synopsis),
		},
		Transcript: turns,
	}
}

func sampleTurn() domain.ProcessedTurn {
	return domain.ProcessedTurn{
		Speaker:   "Space Ghost",
		Text:      "[Action] You fools! [Action]",
		Actions:   []string{"Laughs maniacally", "explosion sound"},
		Sentences: []string{"[Action] You fools!", "[Action]"},
		Words:     []string{"[Action]", "You", "fools", "!", "[Action]"},
		SubwordTokens: []domain.SubwordToken{
			domain.Atomic("[Action]"),
			domain.Atomic("You"),
			domain.Composite([]string{"fo", "##ols"}),
			domain.Atomic("!"),
			domain.Atomic("[Action]"),
		},
	}
}

func TestLoadEpisode_Insert(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{}, logging.Discard())

	outcome, err := l.LoadEpisode(ctx, episode("Elevator", "Going up", sampleTurn()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM episodes`))
	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM dialogue`))
	assert.Equal(t, 2, count(t, p, `SELECT COUNT(*) FROM actions`))
	assert.Equal(t, 6, count(t, p, `SELECT COUNT(*) FROM tokens`))
	assert.Equal(t, 4, count(t, p, `SELECT COUNT(*) FROM tokens WHERE token_type = 'word'`))
	assert.Equal(t, 2, count(t, p, `SELECT COUNT(*) FROM tokens WHERE token_type = 'subword'`))

	var text, actions, speaker string
	require.NoError(t, p.DB().QueryRow(`SELECT speaker, text, actions FROM dialogue`).Scan(&speaker, &text, &actions))
	assert.Equal(t, "Space Ghost", speaker)
	assert.Equal(t, "[Action] You fools! [Action]", text)
	assert.Equal(t, "Laughs maniacally; explosion sound", actions)

	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM actions WHERE action_type = 'laughs' AND action_description = 'Laughs maniacally'`))
}

func TestLoadEpisode_UpsertByTitle(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{}, logging.Discard())

	outcome, err := l.LoadEpisode(ctx, episode("Pilot", "first", sampleTurn()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInserted, outcome)

	outcome, err = l.LoadEpisode(ctx, episode("Pilot", "second", sampleTurn()))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM episodes`))
	var synopsis string
	require.NoError(t, p.DB().QueryRow(`SELECT synopsis FROM episodes WHERE title = $1`, "Pilot").Scan(&synopsis))
	assert.Equal(t, "second", synopsis)

	// dependents are left alone without ReplaceTranscript
	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM dialogue`))
}

func TestLoadEpisode_ReplaceTranscript(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{ReplaceTranscript: true}, logging.Discard())

	_, err := l.LoadEpisode(ctx, episode("Pilot", "first", sampleTurn(), sampleTurn()))
	require.NoError(t, err)
	assert.Equal(t, 2, count(t, p, `SELECT COUNT(*) FROM dialogue`))

	short := sampleTurn()
	short.Actions = nil
	short.SubwordTokens = []domain.SubwordToken{domain.Atomic("Hi")}
	outcome, err := l.LoadEpisode(ctx, episode("Pilot", "second", short))
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, outcome)

	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM dialogue`))
	assert.Equal(t, 0, count(t, p, `SELECT COUNT(*) FROM actions`))
	assert.Equal(t, 1, count(t, p, `SELECT COUNT(*) FROM tokens`))
}

func TestLoadEpisode_NullTitleNeverMatches(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{}, logging.Discard())

	untitled := &domain.ProcessedEpisode{EpisodeMeta: domain.EpisodeMeta{URL: "?ep=9"}}
	for i := 0; i < 2; i++ {
		outcome, err := l.LoadEpisode(ctx, untitled)
		require.NoError(t, err)
		assert.Equal(t, OutcomeInserted, outcome)
	}
	assert.Equal(t, 2, count(t, p, `SELECT COUNT(*) FROM episodes WHERE title IS NULL`))
}

func TestLoadEpisode_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{}, logging.Discard())

	_, err := p.DB().Exec(`CREATE TRIGGER reject_bad_tokens BEFORE INSERT ON tokens
		WHEN NEW.token = 'bad' BEGIN SELECT RAISE(ABORT, 'bad token'); END`)
	require.NoError(t, err)

	turn := sampleTurn()
	turn.SubwordTokens = append(turn.SubwordTokens, domain.Atomic("bad"))
	_, err = l.LoadEpisode(ctx, episode("Broken", "x", sampleTurn(), turn))
	require.Error(t, err)

	for _, table := range []string{"episodes", "dialogue", "tokens", "actions"} {
		assert.Equal(t, 0, count(t, p, `SELECT COUNT(*) FROM `+table), table)
	}
}

func TestLoadDir(t *testing.T) {
	ctx := context.Background()
	p := newTestDB(t)
	l := New(p, Options{}, logging.Discard())

	dir := episodefile.NewDir(t.TempDir())
	require.NoError(t, dir.Save("A.json", episode("A", "a", sampleTurn())))
	require.NoError(t, dir.Save("B.json", episode("B", "b")))
	require.NoError(t, os.WriteFile(dir.Path("C.json"), []byte("not json"), 0o644))

	sum, err := l.LoadDir(ctx, dir, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Processed: 2, Failed: 1}, sum)

	sum, err = l.LoadDir(ctx, dir, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Updated: 1}, sum)

	assert.Equal(t, 2, count(t, p, `SELECT COUNT(*) FROM episodes`))
}

func TestActionType(t *testing.T) {
	assert.Equal(t, "laughs", ActionType("Laughs maniacally"))
	assert.Equal(t, "sighs", ActionType("sighs."))
	assert.Equal(t, "", ActionType("   "))
}
