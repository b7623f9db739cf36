package main

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"ghostal/pkg/config"
	"ghostal/pkg/db"
	"ghostal/pkg/logging"
	"ghostal/pkg/nlp"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Log.Level = strings.TrimSpace(*c.logLevelFlag)
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger returns a run-scoped entry writing to the command's stderr.
func (c *commandContext) logger(cmd *cobra.Command) *logrus.Entry {
	cfg, _ := c.ensureConfig()
	var logCfg config.Log
	if cfg != nil {
		logCfg = cfg.Log
	}
	return logging.WithRun(logging.New(logCfg, cmd.ErrOrStderr()), cmd.Name())
}

// openArchive connects to the Mongo mirror, or returns nil when none is configured.
func (c *commandContext) openArchive(ctx context.Context, log logrus.FieldLogger) (*db.ArchiveClient, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Archive.MongoURI == "" {
		return nil, nil
	}
	archive, err := db.NewArchiveClient(ctx, cfg.Archive.MongoURI, cfg.Archive.Database)
	if err != nil {
		return nil, err
	}
	log.WithField("database", cfg.Archive.Database).Info("archive mirror enabled")
	return archive, nil
}

func (c *commandContext) openDatabase(ctx context.Context) (db.DBProvider, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return db.Open(ctx, cfg.Database)
}

func (c *commandContext) newAnnotator() (*nlp.Annotator, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var model nlp.SubwordModel
	if cfg.Preprocess.TokenizerFile == "" {
		model = nlp.DefaultSubwordModel()
	} else {
		hf, err := nlp.LoadHFSubwordModel(cfg.Preprocess.TokenizerFile)
		if err != nil {
			return nil, err
		}
		model = hf
	}
	return nlp.New(model,
		nlp.WithSubwordThreshold(cfg.Preprocess.SubwordThreshold),
		nlp.WithStopwords(cfg.Preprocess.RemoveStopwords),
		nlp.WithKnownEntities(cfg.Preprocess.KnownSpeakers...))
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
