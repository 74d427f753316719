package cache

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS triage_cache (
		cache_key CHAR(64) PRIMARY KEY,
		sender VARCHAR(320) NOT NULL,
		result TEXT NOT NULL,
		last_seen BIGINT NOT NULL,
		expires_at BIGINT NOT NULL,
		INDEX idx_expires_at (expires_at)
	)
`

const mysqlUpsertSQL = `INSERT INTO triage_cache (cache_key, sender, result, last_seen, expires_at)
	VALUES (?, ?, ?, ?, ?)
	ON DUPLICATE KEY UPDATE sender = VALUES(sender), result = VALUES(result),
		last_seen = VALUES(last_seen), expires_at = VALUES(expires_at)`

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	*sqlCache
}

// NewMySQLCache connects to MySQL and ensures the cache table exists
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	cache, err := newMySQLCacheFromDB(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	// Start background cleanup
	cache.startCleanup(cleanupFreq)

	return cache, nil
}

func newMySQLCacheFromDB(db *sql.DB, logger *zap.Logger) (*MySQLCache, error) {
	// Create table if it doesn't exist
	if _, err := db.Exec(mysqlSchema); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &MySQLCache{sqlCache: newSQLCache(db, "mysql", mysqlUpsertSQL, logger)}, nil
}
