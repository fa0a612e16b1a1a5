package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type dialect struct {
	name   string
	driver string
	// numbered placeholders ($1, $2, ...) instead of '?'
	numbered bool
	// single connection; SQLite serializes writers anyway and ":memory:" is per connection
	singleConn bool
	schema     []string
}

var dialects = map[string]dialect{
	"sqlite": {
		name:       "sqlite",
		driver:     "sqlite",
		singleConn: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT UNIQUE NOT NULL,
				token TEXT UNIQUE NOT NULL,
				created_at INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				name TEXT UNIQUE NOT NULL,
				passhash TEXT,
				created_at INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS messages (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				room TEXT NOT NULL,
				username TEXT NOT NULL,
				type TEXT NOT NULL DEFAULT 'text',
				msg TEXT,
				media TEXT,
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages(room, id)`,
		},
	},
	"postgres": {
		name:     "postgres",
		driver:   "pgx",
		numbered: true,
		schema: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id BIGSERIAL PRIMARY KEY,
				username VARCHAR(64) UNIQUE NOT NULL,
				token VARCHAR(64) UNIQUE NOT NULL,
				created_at BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id BIGSERIAL PRIMARY KEY,
				name VARCHAR(128) UNIQUE NOT NULL,
				passhash TEXT,
				created_at BIGINT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS messages (
				id BIGSERIAL PRIMARY KEY,
				room VARCHAR(128) NOT NULL,
				username VARCHAR(128) NOT NULL,
				type VARCHAR(10) NOT NULL DEFAULT 'text' CHECK (type IN ('text', 'image', 'video')),
				msg TEXT,
				media TEXT,
				created_at BIGINT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_messages_room_id ON messages(room, id)`,
		},
	},
}

func lookupDialect(name string) (dialect, error) {
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("unsupported sql dialect %q", name)
	}
	return d, nil
}

// rebind rewrites '?' placeholders for drivers that need numbered ones.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
