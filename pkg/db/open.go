package db

import (
	"context"
	"fmt"

	"ghostal/pkg/config"
)

type connector interface {
	DBProvider
	Connect(ctx context.Context) error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.Database) (DBProvider, error) {
	var c connector
	switch cfg.Driver {
	case config.DriverPostgres:
		c = NewPostgresClient(PostgresConfig{DSN: cfg.PostgresDSN(), MaxOpenConns: 4})
	case config.DriverSupabase:
		c = NewSupabaseClient(SupabaseConfig{
			SupabaseURL: cfg.SupabaseURL,
			SupabaseKey: cfg.SupabaseKey,
			Password:    cfg.Password,
		})
	case config.DriverSQLite:
		c = NewSQLiteClient(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
