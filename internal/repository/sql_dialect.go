package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/skipperbent/pecee-legacy-models/internal/config"
)

// placeholder returns the correct bind variable for the given index based on DB type.
// Postgres uses $1, $2... while MySQL and SQLite use ?
func placeholder(i int) string {
	db := config.GetSystemSettingString(config.DATABASE_TYPE)
	if db == config.DATABASE_TYPE_POSTGRES {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

func supportsReturning() bool {
	return config.GetSystemSettingString(config.DATABASE_TYPE) == config.DATABASE_TYPE_POSTGRES
}

// quoteIdent quotes an identifier that collides with a SQL keyword, such as
// the key column of the data tables. MySQL wants backticks, the rest take
// double quotes.
func quoteIdent(name string) string {
	if config.GetSystemSettingString(config.DATABASE_TYPE) == config.DATABASE_TYPE_MYSQL {
		return "`" + name + "`"
	}
	return `"` + name + `"`
}

func formatDateInDatabase(ts time.Time) string {
	if config.GetSystemSettingString(config.DATABASE_TYPE) == config.DATABASE_TYPE_SQLLITE {
		return ts.UTC().Format("2006-01-02 15:04:05.000")
	}
	if config.GetSystemSettingString(config.DATABASE_TYPE) == config.DATABASE_TYPE_MYSQL {
		return ts.UTC().Format("2006-01-02 15:04:05.000000")
	}
	// PostgreSQL supports RFC3339
	return ts.UTC().Format(time.RFC3339Nano)
}

func formatDateInDatabaseNull(ts sql.NullTime) interface{} {
	if !ts.Valid {
		return nil
	}
	return formatDateInDatabase(ts.Time)
}
