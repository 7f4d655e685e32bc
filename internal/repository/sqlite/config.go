package sqlite

import (
	"fmt"
	"strings"
	"time"
)

const memoryPath = ":memory:"

// Config captures SQLite store settings derived from application config.
type Config struct {
	// Path is the database file or ":memory:".
	Path string

	// MaxOpenConns bounds the database/sql pool. In-memory databases always
	// use a single connection so every query sees the same database.
	MaxOpenConns int

	// BusyTimeout is applied through PRAGMA busy_timeout.
	BusyTimeout time.Duration
}

func (c Config) inMemory() bool {
	return c.Path == memoryPath || strings.HasPrefix(c.Path, "file::memory:")
}

// buildDSN returns a modernc.org/sqlite DSN with connection pragmas.
func buildDSN(cfg Config) string {
	if cfg.inMemory() {
		return cfg.Path
	}
	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	path := strings.TrimPrefix(cfg.Path, "file:")
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)",
		path, busy.Milliseconds(),
	)
}
