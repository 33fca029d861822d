package redis

import (
	"context"
	"io"
)

// Shutdown returns a shutdown hook that closes the Redis client.
//
// Example:
//
//	err := app.Run(addr, speakerhub.ShutdownHook(redis.Shutdown(client)))
func Shutdown(client io.Closer) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Close()
	}
}
