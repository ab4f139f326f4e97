package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/relsearch/core"
	"github.com/poiesic/relsearch/storage"
)

// SuggestionCache implements storage.SuggestionCache for BadgerDB.
// Expiry is delegated to badger entry TTLs.
type SuggestionCache struct {
	backend *Backend
}

var _ storage.SuggestionCache = (*SuggestionCache)(nil)

// NewSuggestionCache creates a suggestion cache on top of an open backend.
// The backend is owned by the caller and must outlive the cache.
func NewSuggestionCache(backend *Backend) (storage.SuggestionCache, error) {
	if backend == nil || backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	return &SuggestionCache{backend: backend}, nil
}

// GetSuggestions returns the cached response for a locale and query.
func (c *SuggestionCache) GetSuggestions(ctx context.Context, locale, query string) (*core.CachedSuggestions, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.CachedSuggestions
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSuggestionKey(locale, query))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalCachedSuggestions(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys are hashes; reject a colliding entry
	if entry.Locale != locale || entry.Query != core.NormalizeQuery(query) {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// PutSuggestions stores a response with an optional TTL.
func (c *SuggestionCache) PutSuggestions(ctx context.Context, entry *core.CachedSuggestions, ttl time.Duration) error {
	if err := core.ValidateCachedSuggestions(entry); err != nil {
		return err
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	stored := *entry
	stored.Query = core.NormalizeQuery(entry.Query)
	if stored.FetchedAt.IsZero() {
		stored.FetchedAt = time.Now().UTC()
	}
	if stored.Suggestions == nil {
		stored.Suggestions = []string{}
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		e := badger.NewEntry(makeSuggestionKey(stored.Locale, stored.Query), storage.MarshalCachedSuggestions(&stored))
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		if err := tx.SetEntry(e); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Purge removes every cached response.
func (c *SuggestionCache) Purge(ctx context.Context) (int, error) {
	if c.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}
	prefix := []byte(suggestionPrefix + ":")
	count, err := c.backend.CountPrefix(prefix)
	if err != nil {
		return 0, err
	}
	if err := c.backend.DropPrefix(prefix); err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the backend is closed by its owner.
func (c *SuggestionCache) Close() error {
	return nil
}
