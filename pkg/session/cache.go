package session

import (
	"context"
	"errors"

	"github.com/dmitrymomot/speakerhub/pkg/cache"
)

// CacheStore keeps the record under a single key of a cache.Cache.
// Backed by cache.Redis it lets several console processes share one login.
type CacheStore struct {
	cache cache.Cache[Record]
	key   string
}

// NewCacheStore creates a store that reads and writes key in c.
//
// Example:
//
//	client, err := redis.Open(ctx, os.Getenv("REDIS_URL"))
//	store := session.NewCacheStore(
//	    cache.NewRedis[session.Record](client, cache.WithPrefix("speakerctl")),
//	    "state:"+username,
//	)
func NewCacheStore(c cache.Cache[Record], key string) *CacheStore {
	if key == "" {
		key = "session"
	}
	return &CacheStore{cache: c, key: key}
}

// Load returns the cached record.
func (s *CacheStore) Load(ctx context.Context) (Record, error) {
	rec, err := s.cache.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, cache.ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

// Save stores the record without expiry.
func (s *CacheStore) Save(ctx context.Context, rec Record) error {
	return s.cache.Set(ctx, s.key, rec, -1)
}

// Delete removes the cached record.
func (s *CacheStore) Delete(ctx context.Context) error {
	return s.cache.Delete(ctx, s.key)
}

var _ Store = (*CacheStore)(nil)
