package preprocess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/logging"
	"ghostal/pkg/nlp"
)

// fieldsAnnotator splits on whitespace; it keeps these tests independent of the
// statistical models.
type fieldsAnnotator struct {
	fail string
}

func (f fieldsAnnotator) Annotate(cleaned string) (*nlp.Annotation, error) {
	if f.fail != "" && strings.Contains(cleaned, f.fail) {
		return nil, errors.New("annotate failed")
	}
	words := strings.Fields(cleaned)
	subwords := make([]domain.SubwordToken, len(words))
	for i, w := range words {
		subwords[i] = domain.Atomic(w)
	}
	return &nlp.Annotation{
		Normalized: nlp.Normalize(cleaned),
		Words:      words,
		Sentences:  []string{cleaned},
		Subwords:   subwords,
	}, nil
}

type recordingArchive struct {
	saved []string
	err   error
}

func (r *recordingArchive) SaveProcessedEpisode(_ context.Context, ep *domain.ProcessedEpisode) error {
	r.saved = append(r.saved, ep.URL)
	return r.err
}

func rawEpisode(title, url string, turns ...domain.DialogueTurn) *domain.Episode {
	return &domain.Episode{
		EpisodeMeta: domain.EpisodeMeta{Title: domain.Str(title), URL: url},
		Transcript:  turns,
	}
}

func TestProcessEpisode_PreservesOrderAndLength(t *testing.T) {
	p := New(fieldsAnnotator{}, nil, logging.Discard())
	ep := rawEpisode("Elevator", "?ep=1",
		turn(domain.Str("Space Ghost"), "(laughs) You fools! (explosion sound)"),
		turn(nil, "And another thing."),
		turn(domain.Str("Zorak"), "No."),
	)

	got, err := p.ProcessEpisode(ep)
	require.NoError(t, err)

	assert.Equal(t, ep.EpisodeMeta, got.EpisodeMeta)
	require.Len(t, got.Transcript, 3)

	first := got.Transcript[0]
	assert.Equal(t, "Space Ghost", first.Speaker)
	assert.Equal(t, "[Action] You fools! [Action]", first.Text)
	assert.Equal(t, []string{"laughs", "explosion sound"}, first.Actions)
	assert.Equal(t, []string{"[Action]", "You", "fools!", "[Action]"}, first.Words)

	assert.Equal(t, "Space Ghost", got.Transcript[1].Speaker)
	assert.Equal(t, "And another thing.", got.Transcript[1].Text)
	assert.Empty(t, got.Transcript[1].Actions)
	assert.Equal(t, "Zorak", got.Transcript[2].Speaker)
}

func TestProcessEpisode_MissingDialogue(t *testing.T) {
	p := New(fieldsAnnotator{}, nil, logging.Discard())
	ep := rawEpisode("T", "?ep=1",
		turn(domain.Str("A"), "fine"),
		domain.DialogueTurn{Speaker: domain.Str("B")},
	)

	_, err := p.ProcessEpisode(ep)
	assert.ErrorIs(t, err, ErrMissingDialogue)
	assert.Contains(t, err.Error(), "turn 1")
}

func TestProcessEpisode_NoFirstSpeaker(t *testing.T) {
	p := New(fieldsAnnotator{}, nil, logging.Discard())
	_, err := p.ProcessEpisode(rawEpisode("T", "?ep=1", turn(nil, "who said this")))
	assert.ErrorIs(t, err, ErrNoSpeaker)
}

func TestProcessEpisode_EmptyTranscript(t *testing.T) {
	p := New(fieldsAnnotator{}, nil, logging.Discard())
	got, err := p.ProcessEpisode(rawEpisode("T", "?ep=1"))
	require.NoError(t, err)
	assert.NotNil(t, got.Transcript)
	assert.Empty(t, got.Transcript)
}

func TestProcessEpisode_RealAnnotator(t *testing.T) {
	ann, err := nlp.New(splitModel{})
	require.NoError(t, err)
	p := New(ann, nil, logging.Discard())

	got, err := p.ProcessEpisode(rawEpisode("Elevator", "?ep=1",
		turn(domain.Str("Space Ghost"), "(laughs) You fools! (explosion sound)")))
	require.NoError(t, err)

	pt := got.Transcript[0]
	assert.Equal(t, []string{"[Action]", "You", "fools", "!", "[Action]"}, pt.Words)
	assert.Len(t, pt.SubwordTokens, len(pt.Words))
}

type splitModel struct{}

func (splitModel) Split(word string) ([]string, error) { return []string{word}, nil }

func writeRaw(t *testing.T, dir *episodefile.Dir, name string, ep *domain.Episode) {
	t.Helper()
	require.NoError(t, dir.Save(name, ep))
}

func TestProcessDir(t *testing.T) {
	ctx := context.Background()
	in := episodefile.NewDir(filepath.Join(t.TempDir(), "raw"))
	out := episodefile.NewDir(filepath.Join(t.TempDir(), "processed"))

	writeRaw(t, in, "A.json", rawEpisode("A", "?ep=1", turn(domain.Str("Zorak"), "Hi.")))
	writeRaw(t, in, "B.json", rawEpisode("B", "?ep=2", turn(nil, "orphan line")))
	writeRaw(t, in, "C.json", rawEpisode("C", "?ep=3", turn(domain.Str("Moltar"), "Hey.")))
	require.NoError(t, os.WriteFile(in.Path("broken.json"), []byte("{"), 0o644))

	archive := &recordingArchive{}
	p := New(fieldsAnnotator{}, archive, logging.Discard())

	sum, err := p.ProcessDir(ctx, in, out, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Processed: 2, Failed: 2}, sum)
	assert.Equal(t, []string{"?ep=1", "?ep=3"}, archive.saved)

	names, err := out.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"A.json", "C.json"}, names)

	got, err := episodefile.ReadProcessed(out.Path("A.json"))
	require.NoError(t, err)
	assert.Equal(t, "Zorak", got.Transcript[0].Speaker)

	sum, err = p.ProcessDir(ctx, in, out, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Skipped: 2, Failed: 2}, sum)
}

func TestProcessDir_Limit(t *testing.T) {
	ctx := context.Background()
	in := episodefile.NewDir(filepath.Join(t.TempDir(), "raw"))
	out := episodefile.NewDir(filepath.Join(t.TempDir(), "processed"))
	for _, n := range []string{"A", "B", "C"} {
		writeRaw(t, in, n+".json", rawEpisode(n, "?ep="+n, turn(domain.Str("Zorak"), "Hi.")))
	}

	p := New(fieldsAnnotator{}, nil, logging.Discard())

	sum, err := p.ProcessDir(ctx, in, out, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)

	sum, err = p.ProcessDir(ctx, in, out, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Processed: 1, Skipped: 1}, sum)
}

func TestProcessFile_ArchiveErrorIsNotFatal(t *testing.T) {
	in := episodefile.NewDir(t.TempDir())
	out := episodefile.NewDir(t.TempDir())
	writeRaw(t, in, "A.json", rawEpisode("A", "?ep=1", turn(domain.Str("Zorak"), "Hi.")))

	p := New(fieldsAnnotator{}, &recordingArchive{err: errors.New("down")}, logging.Discard())
	res, err := p.ProcessFile(context.Background(), in.Path("A.json"), out)
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, res)
	assert.True(t, out.Exists("A.json"))
}

func TestProcessFile_AnnotatorError(t *testing.T) {
	in := episodefile.NewDir(t.TempDir())
	out := episodefile.NewDir(t.TempDir())
	writeRaw(t, in, "A.json", rawEpisode("A", "?ep=1", turn(domain.Str("Zorak"), "Hi boom.")))

	p := New(fieldsAnnotator{fail: "boom"}, nil, logging.Discard())
	_, err := p.ProcessFile(context.Background(), in.Path("A.json"), out)
	assert.Error(t, err)
	assert.False(t, out.Exists("A.json"))
}
