// Package config loads ghostal settings from a TOML or YAML file, a .env file and
// GHOSTAL_* environment variables, in that order of increasing precedence.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// DefaultPath is used when no --config flag is given.
const DefaultPath = "ghostal.toml"

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverSupabase = "supabase"
)

// Scrape configures the fetcher and extractor.
type Scrape struct {
	BaseURL           string  `toml:"base_url" yaml:"base_url" validate:"required,url"`
	LinkPrefix        string  `toml:"link_prefix" yaml:"link_prefix" validate:"required"`
	RawDir            string  `toml:"raw_dir" yaml:"raw_dir" validate:"required"`
	RequestsPerSecond float64 `toml:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
	ClientType        string  `toml:"client_type" yaml:"client_type" validate:"oneof=browser cloudflare default"`
	TimeoutSeconds    int     `toml:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=0"`
}

// Preprocess configures the annotator and the preprocessing stage.
type Preprocess struct {
	ProcessedDir     string   `toml:"processed_dir" yaml:"processed_dir" validate:"required"`
	TokenizerFile    string   `toml:"tokenizer_file" yaml:"tokenizer_file"`
	SubwordThreshold int      `toml:"subword_threshold" yaml:"subword_threshold" validate:"gte=1"`
	RemoveStopwords  bool     `toml:"remove_stopwords" yaml:"remove_stopwords"`
	KnownSpeakers    []string `toml:"known_speakers" yaml:"known_speakers"`
}

// Database holds connection parameters for the relational store.
type Database struct {
	Driver   string `toml:"driver" yaml:"driver" validate:"oneof=postgres sqlite supabase"`
	User     string `toml:"user" yaml:"user" validate:"required_if=Driver postgres"`
	Password string `toml:"password" yaml:"password"`
	Host     string `toml:"host" yaml:"host" validate:"required_if=Driver postgres"`
	Port     int    `toml:"port" yaml:"port" validate:"gte=0,lte=65535"`
	Name     string `toml:"name" yaml:"name" validate:"required_if=Driver postgres"`
	SSLMode  string `toml:"sslmode" yaml:"sslmode"`

	// Path is the database file for the sqlite driver.
	Path string `toml:"path" yaml:"path" validate:"required_if=Driver sqlite"`

	SupabaseURL string `toml:"supabase_url" yaml:"supabase_url" validate:"required_if=Driver supabase"`
	SupabaseKey string `toml:"supabase_key" yaml:"supabase_key"`

	// ReplaceTranscript makes a re-load of a known title rewrite its dialogue and token rows.
	ReplaceTranscript bool `toml:"replace_transcript" yaml:"replace_transcript"`
}

// Archive configures the optional MongoDB mirror of episode documents.
type Archive struct {
	MongoURI string `toml:"mongo_uri" yaml:"mongo_uri"`
	Database string `toml:"database" yaml:"database" validate:"required_with=MongoURI"`
}

// Log configures the logrus logger.
type Log struct {
	Level  string `toml:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
	Format string `toml:"format" yaml:"format" validate:"oneof=json text"`
}

// Config is the complete ghostal configuration.
type Config struct {
	Scrape     Scrape     `toml:"scrape" yaml:"scrape"`
	Preprocess Preprocess `toml:"preprocess" yaml:"preprocess"`
	Database   Database   `toml:"database" yaml:"database"`
	Archive    Archive    `toml:"archive" yaml:"archive"`
	Log        Log        `toml:"log" yaml:"log"`
}

// Sample returns the annotated sample configuration.
func Sample() string {
	return sampleConfig
}

// Load reads configuration from path. A missing file at the default path is not
// an error; a missing file that was asked for explicitly is.
// It returns the resolved path and whether a file was read.
func Load(path string) (*Config, string, bool, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}

	// .env is optional; it only seeds the process environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	exists := false

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		exists = true
		if err := decode(path, data, cfg); err != nil {
			return nil, path, exists, err
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, path, exists, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg, os.Getenv)
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, path, exists, err
	}
	return cfg, path, exists, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse toml config %s: %w", path, err)
		}
	}
	return nil
}

// applyEnv overrides file values with GHOSTAL_* variables.
func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	set(&cfg.Database.Driver, "GHOSTAL_DB_DRIVER")
	set(&cfg.Database.User, "GHOSTAL_DB_USER")
	set(&cfg.Database.Password, "GHOSTAL_DB_PASSWORD")
	set(&cfg.Database.Host, "GHOSTAL_DB_HOST")
	set(&cfg.Database.Name, "GHOSTAL_DB_NAME")
	set(&cfg.Database.Path, "GHOSTAL_DB_PATH")
	set(&cfg.Database.SupabaseURL, "GHOSTAL_SUPABASE_URL")
	set(&cfg.Database.SupabaseKey, "GHOSTAL_SUPABASE_KEY")
	set(&cfg.Archive.MongoURI, "GHOSTAL_MONGO_URI")
	set(&cfg.Preprocess.TokenizerFile, "GHOSTAL_TOKENIZER_FILE")
	set(&cfg.Log.Level, "GHOSTAL_LOG_LEVEL")

	if v := strings.TrimSpace(getenv("GHOSTAL_DB_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
}

// PostgresDSN builds a pgx connection URL from the discrete connection parameters.
func (d Database) PostgresDSN() string {
	host := d.Host
	if d.Port > 0 {
		host = fmt.Sprintf("%s:%d", d.Host, d.Port)
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password != "" {
		u.User = url.UserPassword(d.User, d.Password)
	} else {
		u.User = url.User(d.User)
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

// Timeout returns the HTTP client timeout, zero meaning none.
func (s Scrape) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}
