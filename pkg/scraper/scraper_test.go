package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/httpclient"
	"ghostal/pkg/logging"
)

type recordingArchive struct {
	mu   sync.Mutex
	urls []string
}

func (a *recordingArchive) SaveRawEpisode(ctx context.Context, ep *domain.Episode) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.urls = append(a.urls, ep.URL)
	return nil
}

// newGuideServer serves a listing page with three episodes; ep=2 is broken.
func newGuideServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/sg/guide/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("ep") {
		case "":
			_, _ = w.Write([]byte(`<a href="?ep=1">1</a><a href="?ep=2">2</a><a href="?ep=3">3</a>`))
		case "1":
			_, _ = w.Write([]byte(episodeHTML))
		case "2":
			http.Error(w, "boom", http.StatusInternalServerError)
		case "3":
			_, _ = w.Write([]byte(`<html><body><p>Brak: Hi!</p></body></html>`))
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestStage_Run_LogsAndContinues(t *testing.T) {
	server := newGuideServer(t)
	dir := episodefile.NewDir(filepath.Join(t.TempDir(), "raw"))
	archive := &recordingArchive{}

	s := New(httpclient.NewClient(httpclient.DefaultClient, httpclient.Options{}), server.URL+"/sg/guide/", "?ep")
	stage := NewStage(s, dir, archive, logging.Discard())

	sum, err := stage.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Processed: 2, Failed: 1}, sum)

	names, err := dir.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"Elevator.json", "episode_3.json"}, names)
	assert.Equal(t, []string{"?ep=1", "?ep=3"}, archive.urls)

	// second run does not fetch what is already on disk
	sum, err = stage.Run(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Skipped: 2, Failed: 1}, sum)
}

func TestStage_Run_Limit(t *testing.T) {
	server := newGuideServer(t)
	dir := episodefile.NewDir(t.TempDir())

	s := New(httpclient.NewClient(httpclient.DefaultClient, httpclient.Options{}), server.URL+"/sg/guide/", "?ep")
	sum, err := NewStage(s, dir, nil, logging.Discard()).Run(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Processed)
}

func TestStage_Run_ListingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	s := New(httpclient.NewClient(httpclient.DefaultClient, httpclient.Options{}), server.URL, "?ep")
	_, err := NewStage(s, episodefile.NewDir(t.TempDir()), nil, logging.Discard()).Run(context.Background(), 0)
	assert.ErrorIs(t, err, httpclient.ErrUnexpectedStatus)
}

func TestEpisodeLinks_EmptyBaseURL(t *testing.T) {
	s := New(httpclient.NewClient(httpclient.DefaultClient, httpclient.Options{}), "", "?ep")
	_, err := s.EpisodeLinks(context.Background())
	assert.ErrorIs(t, err, ErrEmptyBaseURL)
}
