package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS triage_cache (
		cache_key TEXT PRIMARY KEY,
		sender TEXT NOT NULL,
		result TEXT NOT NULL,
		last_seen INTEGER NOT NULL,
		expires_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_expires_at ON triage_cache(expires_at);
`

const sqliteUpsertSQL = `INSERT OR REPLACE INTO triage_cache (cache_key, sender, result, last_seen, expires_at)
	VALUES (?, ?, ?, ?, ?)`

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	*sqlCache
}

// NewSQLiteCache opens (or creates) the cache database at dbPath
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)

	// Create table if it doesn't exist
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &SQLiteCache{sqlCache: newSQLCache(db, "sqlite", sqliteUpsertSQL, logger)}

	// Start background cleanup
	cache.startCleanup(cleanupFreq)

	return cache, nil
}
