// Package cache provides a generic Cache interface with in-memory and Redis implementations.
//
// The gateway uses it to keep the vendor device list for a short TTL, and the
// console can use it as a shared credential store (see pkg/session.CacheStore).
//
// # Interface
//
// [Cache] is generic over the value type V:
//
//   - Get(ctx, key) (V, error)
//   - Set(ctx, key, value, ttl) error
//   - Delete(ctx, key) error
//   - Has(ctx, key) (bool, error)
//   - Clear(ctx) error
//   - Close() error
//
// TTL semantics for Set:
//   - Positive duration: item expires after this duration
//   - Zero: use the cache's configured default TTL (1 hour by default)
//   - Negative: item never expires
//
// # In-Memory Cache
//
//	c := cache.NewMemory[[]vendor.Device](
//	    cache.WithDefaultTTL(30 * time.Second),
//	    cache.WithCleanupInterval(time.Minute),
//	)
//	defer c.Close()
//
// # Redis Cache
//
// [NewRedis] stores JSON-encoded values in Redis. The client comes from
// [github.com/dmitrymomot/speakerhub/pkg/redis]:
//
//	client, err := redis.Open(ctx, cfg.Redis.URL)
//	c := cache.NewRedis[[]vendor.Device](client, cache.WithPrefix("speakerhub"))
//
// # Stampede Prevention
//
// [GetOrSet] collapses concurrent misses for one key into a single call:
//
//	list, err := cache.GetOrSet(ctx, c, "devices", func(ctx context.Context) ([]vendor.Device, time.Duration, error) {
//	    list, err := sess.DeviceList(ctx)
//	    return list, 30 * time.Second, err
//	})
//
// # Errors
//
//   - [ErrNotFound]: key does not exist or has expired
//   - [ErrClosed]: operation on a closed cache
//   - [ErrMarshal], [ErrUnmarshal]: JSON encoding failed (Redis only)
package cache
