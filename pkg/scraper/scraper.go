package scraper

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/filter"
	"ghostal/pkg/httpclient"
)

// ErrEmptyBaseURL is returned when no listing page URL is configured.
var ErrEmptyBaseURL = errors.New("base URL is empty")

// Archiver mirrors scraped episodes to a secondary store.
type Archiver interface {
	SaveRawEpisode(ctx context.Context, ep *domain.Episode) error
}

// Scraper fetches the listing page and episode pages of the guide site.
type Scraper struct {
	client     *httpclient.HTTPClient
	baseURL    string
	linkPrefix string
}

// New creates a scraper for the guide at baseURL.
func New(client *httpclient.HTTPClient, baseURL, linkPrefix string) *Scraper {
	return &Scraper{
		client:     client,
		baseURL:    baseURL,
		linkPrefix: linkPrefix,
	}
}

// EpisodeLinks fetches the listing page and returns the episode hrefs on it.
func (s *Scraper) EpisodeLinks(ctx context.Context) ([]string, error) {
	if s.baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	body, err := s.client.GetBody(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch episode links: %w", err)
	}
	return ExtractEpisodeLinks(string(body), s.linkPrefix)
}

// FetchEpisode downloads one episode page and extracts it.
func (s *Scraper) FetchEpisode(ctx context.Context, href string) (*domain.Episode, error) {
	pageURL, err := resolveAgainst(s.baseURL, href)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", href, err)
	}

	body, err := s.client.GetBody(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch episode %s: %w", href, err)
	}
	return ExtractEpisode(string(body), href)
}

// Stage runs the scrape stage: every episode on the listing page becomes one
// JSON file in the raw directory.
type Stage struct {
	scraper *Scraper
	dir     *episodefile.Dir
	archive Archiver
	log     logrus.FieldLogger
}

// NewStage wires a scrape stage. archive may be nil.
func NewStage(s *Scraper, dir *episodefile.Dir, archive Archiver, log logrus.FieldLogger) *Stage {
	return &Stage{scraper: s, dir: dir, archive: archive, log: log}
}

// Run scrapes up to limit new episodes (limit <= 0 means all). Episodes whose url
// already has a file are not fetched again. Per-episode failures are logged and
// counted; only a failure to read the listing page is returned.
func (st *Stage) Run(ctx context.Context, limit int) (domain.Summary, error) {
	var sum domain.Summary

	unlock, err := st.dir.Lock()
	if err != nil {
		return sum, err
	}
	defer func() { _ = unlock() }()

	links, err := st.scraper.EpisodeLinks(ctx)
	if err != nil {
		return sum, err
	}

	known, err := st.dir.KnownURLs()
	if err != nil {
		return sum, err
	}
	fresh, err := filter.FilterURLs(ctx, links, filter.NewAlreadyFetchedFilter(known))
	if err != nil {
		return sum, err
	}
	sum.Skipped = len(links) - len(fresh)

	if limit > 0 && len(fresh) > limit {
		fresh = fresh[:limit]
	}

	st.log.WithFields(logrus.Fields{
		"links": len(links),
		"new":   len(fresh),
	}).Info("scraping episodes")

	for _, href := range fresh {
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		switch err := st.scrapeOne(ctx, href); {
		case err == nil:
			sum.Processed++
		case errors.Is(err, episodefile.ErrEpisodeExists):
			sum.Skipped++
			st.log.WithField("url", href).Info("episode file already exists, skipping")
		default:
			sum.Failed++
			st.log.WithField("url", href).WithError(err).Warn("episode skipped")
		}
	}

	return sum, nil
}

func (st *Stage) scrapeOne(ctx context.Context, href string) error {
	ep, err := st.scraper.FetchEpisode(ctx, href)
	if err != nil {
		return err
	}

	name, err := episodefile.FileName(ep.EpisodeMeta)
	if err != nil {
		return err
	}
	if err := st.dir.Save(name, ep); err != nil {
		return err
	}

	st.log.WithFields(logrus.Fields{
		"url":   href,
		"file":  name,
		"turns": len(ep.Transcript),
	}).Info("episode saved")

	if st.archive != nil {
		if err := st.archive.SaveRawEpisode(ctx, ep); err != nil {
			st.log.WithField("url", href).WithError(err).Warn("archive mirror failed")
		}
	}
	return nil
}
