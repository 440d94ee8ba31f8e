package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/corpusgraph/corpusgraph/pkg/types"
)

var (
	// ErrKeyNotFound is returned when a key is not found in the cache.
	ErrKeyNotFound = errors.New("key not found in cache")
)

// ExtractionCache caches extraction results so re-ingesting unchanged text
// skips the LLM round trip.
type ExtractionCache interface {
	// GetResult retrieves a cached extraction result.
	GetResult(key string) (*types.ExtractionResult, error)
	// SetResult stores an extraction result with a TTL.
	SetResult(key string, result *types.ExtractionResult, ttl time.Duration) error
	// Close closes the cache.
	Close() error
}

// Key derives a cache key from the group, prompt version, and chunk content.
func Key(groupID, promptVersion, chunk string) string {
	h := sha256.New()
	h.Write([]byte(groupID))
	h.Write([]byte{0})
	h.Write([]byte(promptVersion))
	h.Write([]byte{0})
	h.Write([]byte(chunk))
	return "extraction:" + hex.EncodeToString(h.Sum(nil))
}

// BadgerCache implements ExtractionCache using BadgerDB.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache creates a new BadgerDB-backed cache at path.
func NewBadgerCache(path string) (*BadgerCache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable default logger to reduce noise

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	return &BadgerCache{db: db}, nil
}

// GetResult retrieves a cached extraction result.
func (c *BadgerCache) GetResult(key string) (*types.ExtractionResult, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}

	var result types.ExtractionResult
	if err := json.Unmarshal(val, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached extraction: %w", err)
	}
	return &result, nil
}

// SetResult stores an extraction result with a TTL.
func (c *BadgerCache) SetResult(key string, result *types.ExtractionResult, ttl time.Duration) error {
	val, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode extraction for cache: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), val).WithTTL(ttl)
		return txn.SetEntry(e)
	})
}

// Close closes the cache.
func (c *BadgerCache) Close() error {
	return c.db.Close()
}
