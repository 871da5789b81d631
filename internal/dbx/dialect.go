package dbx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures the differences between the supported backends that the
// repositories care about. Queries are written with '?' placeholders and
// rebound per dialect.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	// Rebind rewrites '?' placeholders into the backend's native form.
	Rebind(query string) string
	// IsUniqueViolation reports whether err was caused by a UNIQUE or
	// PRIMARY KEY constraint.
	IsUniqueViolation(err error) bool
}

// SQLite is the dialect of the embedded modernc.org/sqlite driver.
var SQLite Dialect = sqliteDialect{}

// Postgres is the dialect of the pgx stdlib driver.
var Postgres Dialect = postgresDialect{}

// DialectFor returns the dialect registered for a driver name.
func DialectFor(driver string) (Dialect, bool) {
	switch driver {
	case "sqlite", "sqlite3":
		return SQLite, true
	case "pgx", "postgres":
		return Postgres, true
	}
	return nil, false
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

func (sqliteDialect) IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "pgx" }

// Rebind turns each '?' outside of quoted literals into $1, $2, ...
func (postgresDialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (postgresDialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
