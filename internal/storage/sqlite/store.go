// Package sqlite provides a SQLite-backed meeting storage implementation.
package sqlite

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/huddle.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/huddle.space/internal/storage"
	"github.com/louisbranch/huddle.space/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists meeting state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

func toMillisPtr(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

func fromMillisPtr(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

// Open opens a SQLite meeting store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Stores returns the store bundled behind every persistence interface.
func (s *Store) Stores() storage.Stores {
	return storage.Stores{
		Meetings:     s,
		Participants: s,
		Invites:      s,
		Messages:     s,
		Transcripts:  s,
	}
}

var (
	_ storage.MeetingStore     = (*Store)(nil)
	_ storage.ParticipantStore = (*Store)(nil)
	_ storage.InviteStore      = (*Store)(nil)
	_ storage.MessageStore     = (*Store)(nil)
	_ storage.TranscriptStore  = (*Store)(nil)
)
