package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write violates a uniqueness constraint.
	ErrConflict = errors.New("record already exists")
)

// New opens a SQLite database connection at the given path.
// Foreign keys are enabled on every pooled connection.
func New(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate runs database migrations to create the required tables.
// It is idempotent and can be run multiple times safely.
func Migrate(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			date_joined DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS profiles (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner_id INTEGER NOT NULL UNIQUE,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			avatar_url TEXT NOT NULL DEFAULT '/images/default_avatar.jpeg',
			avatar_name TEXT NOT NULL DEFAULT 'None',
			bio TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
		);`,
	}
	for _, kind := range []Kind{KindEpisode, KindCharacter} {
		t := tables[kind]
		schema = append(schema, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			%s INTEGER NOT NULL,
			rating INTEGER,
			is_collected BOOLEAN NOT NULL DEFAULT 0,
			owner_id INTEGER NOT NULL,
			FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE,
			UNIQUE (%s, owner_id)
		);`, t.name, t.itemColumn, t.itemColumn))
		schema = append(schema, fmt.Sprintf(
			`CREATE INDEX IF NOT EXISTS idx_%s_owner_collected ON %s (owner_id, is_collected);`,
			t.name, t.name,
		))
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
