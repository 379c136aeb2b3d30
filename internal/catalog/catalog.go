package catalog

import (
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Catalog is a SQLite file of interned texts and the registration tables they
// came from. It holds text only: addresses are meaningless outside the process
// that produced them.
type Catalog struct {
	db *sql.DB
}

// setting is a connection pragma and the value SQLite reports back once it
// has taken effect.
type setting struct {
	pragma string
	value  string
	want   string
}

var settings = []setting{
	{"journal_mode", "WAL", "wal"},
	{"synchronous", "NORMAL", "1"},
	{"busy_timeout", "5000", "5000"},
	{"foreign_keys", "ON", "1"},
}

// migration brings the schema to version. Versions are stored in user_version
// and applied in order, one transaction each.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `CREATE INDEX IF NOT EXISTS idx_table_sites_text ON table_sites(text)`},
}

// SchemaVersion is the schema version this build writes.
var SchemaVersion = migrations[len(migrations)-1].version

// Open opens the catalog at path, creating it if needed, and brings its schema
// up to date. Opening an existing catalog again is safe.
func Open(path string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// Pragmas are per connection, and SQLite has a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	c := &Catalog{db: db}
	if err := c.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) init() error {
	if err := c.db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := c.configure(); err != nil {
		return err
	}
	if _, err := c.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return c.migrate()
}

// configure applies every setting and reads it back. SQLite ignores some
// requests silently, e.g. WAL on a file system without shared memory.
func (c *Catalog) configure() error {
	for _, s := range settings {
		if _, err := c.db.Exec(fmt.Sprintf("PRAGMA %s = %s", s.pragma, s.value)); err != nil {
			return fmt.Errorf("set %s: %w", s.pragma, err)
		}
		got, err := c.pragma(s.pragma)
		if err != nil {
			return err
		}
		if got != s.want {
			return fmt.Errorf("%s is %q after setting %s", s.pragma, got, s.value)
		}
	}
	return nil
}

func (c *Catalog) pragma(name string) (string, error) {
	var value string
	if err := c.db.QueryRow("PRAGMA " + name).Scan(&value); err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return value, nil
}

// Version returns the schema version recorded in the catalog file.
func (c *Catalog) Version() (int, error) {
	var v int
	if err := c.db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (c *Catalog) migrate() error {
	current, err := c.Version()
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := c.db.Begin()
		if err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migrate to v%d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migrate to v%d: %w", m.version, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}
