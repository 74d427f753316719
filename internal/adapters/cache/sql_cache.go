package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mikey/inbox-triage/internal/core"
	"go.uber.org/zap"
)

// Timestamps are stored as unix seconds so both SQL dialects compare them the same way
const (
	selectEntrySQL = `SELECT cache_key, sender, result, last_seen, expires_at
		FROM triage_cache
		WHERE cache_key = ? AND expires_at > ?`
	deleteEntrySQL   = `DELETE FROM triage_cache WHERE cache_key = ?`
	deleteExpiredSQL = `DELETE FROM triage_cache WHERE expires_at <= ?`
)

// sqlCache holds what the SQLite and MySQL caches share
type sqlCache struct {
	db        *sql.DB
	upsertSQL string
	dialect   string
	logger    *zap.Logger
	stopCh    chan struct{}
	stopOnce  sync.Once
}

func newSQLCache(db *sql.DB, dialect, upsertSQL string, logger *zap.Logger) *sqlCache {
	return &sqlCache{
		db:        db,
		upsertSQL: upsertSQL,
		dialect:   dialect,
		logger:    logger,
		stopCh:    make(chan struct{}),
	}
}

// Get retrieves a cached entry by fingerprint
func (c *sqlCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	var (
		entry     core.CacheEntry
		result    string
		lastSeen  int64
		expiresAt int64
	)

	err := c.db.QueryRowContext(ctx, selectEntrySQL, key, time.Now().Unix()).
		Scan(&entry.Key, &entry.Sender, &result, &lastSeen, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	entry.Result, err = decodeResult(result)
	if err != nil {
		return nil, err
	}
	entry.LastSeen = time.Unix(lastSeen, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)

	return &entry, nil
}

// Set stores a cache entry
func (c *sqlCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	if entry == nil || entry.Result == nil {
		return fmt.Errorf("cannot cache an empty entry")
	}

	result, err := encodeResult(entry.Result)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, c.upsertSQL,
		entry.Key,
		entry.Sender,
		result,
		entry.LastSeen.Unix(),
		entry.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *sqlCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *sqlCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, deleteExpiredSQL, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries",
			zap.String("dialect", c.dialect),
			zap.Int64("expired_count", rowsAffected))
	}

	return nil
}

// startCleanup runs Cleanup periodically; a non-positive freq disables it
func (c *sqlCache) startCleanup(freq time.Duration) {
	if freq > 0 {
		go runCleanup(c, freq, c.stopCh, c.logger)
	}
}

// Close stops the background cleanup task and closes the database connection
func (c *sqlCache) Close() error {
	c.stopOnce.Do(func() { close(c.stopCh) })
	if err := c.db.Close(); err != nil {
		return fmt.Errorf("failed to close %s database: %w", c.dialect, err)
	}
	return nil
}

func encodeResult(result *core.ClassificationResult) (string, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode cached result: %w", err)
	}
	return string(data), nil
}

func decodeResult(data string) (*core.ClassificationResult, error) {
	var result core.ClassificationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}
