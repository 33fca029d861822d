// Package redis opens go-redis clients for the gateway.
//
// The gateway uses Redis for the shared device list cache
// (pkg/cache.NewRedis) and the console can keep its credentials there
// (pkg/session.NewCacheStore). Redis is optional: without a URL the gateway
// falls back to the in-memory cache.
//
// # Configuration
//
//   - WithPoolSize(maxConns, minIdle int): pool limits (default: 10, 2)
//   - WithRetry(attempts int, interval time.Duration): ping attempts and base interval (default: 3, 2s)
//   - WithTimeouts(io, dial time.Duration): read/write and dial timeouts (default: 3s, 5s)
//   - WithLogger(l *slog.Logger): logs failed attempts
//
// # Usage
//
//	client, err := redis.Open(ctx, cfg.Redis.URL, redis.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	devices := cache.NewRedis[[]vendor.Device](client, cache.WithPrefix(cfg.Redis.Prefix))
//
//	app := speakerhub.New(
//		speakerhub.WithHealthChecks(
//			speakerhub.WithReadinessCheck("redis", redis.Healthcheck(client)),
//		),
//	)
//	err = app.Run(addr, speakerhub.ShutdownHook(redis.Shutdown(client)))
//
// # Errors
//
//   - [ErrEmptyConnectionURL] - Empty connection URL provided
//   - [ErrFailedToParseURL] - Invalid connection URL format or scheme
//   - [ErrConnectionFailed] - Connection failed after all retry attempts
//   - [ErrHealthcheckFailed] - Redis ping failed
//
// Errors are wrapped using [errors.Join] to preserve the original error context.
package redis
