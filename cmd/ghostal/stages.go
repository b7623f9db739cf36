package main

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"ghostal/pkg/config"
	"ghostal/pkg/db"
	"ghostal/pkg/domain"
	"ghostal/pkg/episodefile"
	"ghostal/pkg/httpclient"
	"ghostal/pkg/loader"
	"ghostal/pkg/preprocess"
	"ghostal/pkg/scraper"
)

func runScrape(ctx context.Context, cfg *config.Config, archive *db.ArchiveClient, log logrus.FieldLogger, limit int) (domain.Summary, error) {
	client := httpclient.NewClient(httpclient.ClientType(cfg.Scrape.ClientType), httpclient.Options{
		Timeout:           cfg.Scrape.Timeout(),
		RequestsPerSecond: cfg.Scrape.RequestsPerSecond,
	})
	s := scraper.New(client, cfg.Scrape.BaseURL, cfg.Scrape.LinkPrefix)

	var mirror scraper.Archiver
	if archive != nil {
		mirror = archive
	}
	stage := scraper.NewStage(s, episodefile.NewDir(cfg.Scrape.RawDir), mirror, log.WithField("stage", "scrape"))
	return stage.Run(ctx, limit)
}

func newPreprocessor(annotator preprocess.Annotator, archive *db.ArchiveClient, log logrus.FieldLogger) *preprocess.Preprocessor {
	var mirror preprocess.Archiver
	if archive != nil {
		mirror = archive
	}
	return preprocess.New(annotator, mirror, log.WithField("stage", "preprocess"))
}

func runPreprocess(ctx context.Context, cfg *config.Config, p *preprocess.Preprocessor, limit int) (domain.Summary, error) {
	return p.ProcessDir(ctx,
		episodefile.NewDir(cfg.Scrape.RawDir),
		episodefile.NewDir(cfg.Preprocess.ProcessedDir),
		limit)
}

func newLoader(cfg *config.Config, p db.DBProvider, log logrus.FieldLogger) *loader.Loader {
	return loader.New(p, loader.Options{ReplaceTranscript: cfg.Database.ReplaceTranscript}, log.WithField("stage", "load"))
}

func printSummary(out io.Writer, stage string, sum domain.Summary) {
	fmt.Fprintf(out, "%s: %s\n", stage, sum)
}

func closeArchive(ctx context.Context, archive *db.ArchiveClient, log logrus.FieldLogger) {
	if archive == nil {
		return
	}
	if err := archive.Close(ctx); err != nil {
		log.WithError(err).Warn("close archive")
	}
}
