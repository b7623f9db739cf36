package config

import "strings"

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		Scrape: Scrape{
			BaseURL:           "https://www.snard.com/sg/guide/",
			LinkPrefix:        "?ep",
			RawDir:            "data/space_ghost_data",
			RequestsPerSecond: 1,
			ClientType:        "browser",
			TimeoutSeconds:    30,
		},
		Preprocess: Preprocess{
			ProcessedDir:     "data/preprocessed_episodes",
			SubwordThreshold: 5,
			RemoveStopwords:  true,
			KnownSpeakers:    []string{"Space Ghost", "Zorak", "Moltar"},
		},
		Database: Database{
			Driver:  DriverPostgres,
			User:    "postgres",
			Host:    "localhost",
			Port:    5432,
			Name:    "ghostbase",
			SSLMode: "disable",
		},
		Archive: Archive{
			Database: "ghostal",
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
	}
}

func (c *Config) normalize() {
	c.Scrape.BaseURL = strings.TrimSpace(c.Scrape.BaseURL)
	c.Scrape.ClientType = strings.ToLower(strings.TrimSpace(c.Scrape.ClientType))
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	speakers := c.Preprocess.KnownSpeakers[:0]
	for _, s := range c.Preprocess.KnownSpeakers {
		if s = strings.TrimSpace(s); s != "" {
			speakers = append(speakers, s)
		}
	}
	c.Preprocess.KnownSpeakers = speakers
}
