package db

import "database/sql"

// Dialect selects the SQL variant a provider speaks.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// DBProvider is implemented by every relational backend the loader can write to.
// PostgresClient, SupabaseClient and SQLiteClient are interchangeable behind it.
type DBProvider interface {
	DB() *sql.DB
	Dialect() Dialect
	Close() error
}
