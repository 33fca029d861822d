package tokenrefresh

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
)

// DefaultThreshold is how close to expiry EnsureFresh refreshes proactively.
const DefaultThreshold = 10 * time.Minute

// RefreshFunc exchanges a refresh token for a new credential.
// The returned credential may omit RefreshToken when the backend does not rotate it.
type RefreshFunc func(ctx context.Context, refreshToken string) (session.Credential, error)

// ExpiredHook is called after the session has been torn down.
type ExpiredHook func(ctx context.Context, cause error)

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithThreshold sets the proactive refresh window used by EnsureFresh.
func WithThreshold(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.threshold = d
		}
	}
}

// WithExpiredHook registers a hook at construction time.
func WithExpiredHook(h ExpiredHook) Option {
	return func(c *Coordinator) {
		if h != nil {
			c.hooks = append(c.hooks, h)
		}
	}
}

// Coordinator de-duplicates refresh attempts against one session.
type Coordinator struct {
	sess      *session.Session
	refresh   RefreshFunc
	logger    *slog.Logger
	group     singleflight.Group
	hooks     []ExpiredHook
	threshold time.Duration
	mu        sync.Mutex
}

// New creates a coordinator for sess.
func New(sess *session.Session, refresh RefreshFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		sess:      sess,
		refresh:   refresh,
		logger:    logger.NewNope(),
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnExpired registers a hook that runs whenever the session expires.
func (c *Coordinator) OnExpired(h ExpiredHook) {
	if h == nil {
		return
	}
	c.mu.Lock()
	c.hooks = append(c.hooks, h)
	c.mu.Unlock()
}

// Refresh returns a credential newer than stale.
// Pass an empty stale token to force a refresh of whatever is current.
func (c *Coordinator) Refresh(ctx context.Context, stale string) (session.Credential, error) {
	ch := c.group.DoChan("refresh", func() (any, error) {
		return c.run(context.WithoutCancel(ctx), stale)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return session.Credential{}, res.Err
		}
		return res.Val.(session.Credential), nil
	case <-ctx.Done():
		return session.Credential{}, ctx.Err()
	}
}

// EnsureFresh returns the current credential, refreshing it first when the
// access token expires within the configured threshold.
func (c *Coordinator) EnsureFresh(ctx context.Context) (session.Credential, error) {
	cred, ok := c.sess.Credential()
	if !ok {
		return session.Credential{}, ErrNoCredential
	}
	if !cred.AccessExpiresWithin(c.sess.Now(), c.threshold) {
		return cred, nil
	}
	return c.Refresh(ctx, cred.AccessToken)
}

// Expire tears the session down and notifies hooks. The returned error
// always matches ErrSessionExpired.
func (c *Coordinator) Expire(ctx context.Context, cause error) error {
	if err := c.sess.Teardown(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to persist session teardown", slog.Any("error", err))
	}

	c.mu.Lock()
	hooks := append([]ExpiredHook(nil), c.hooks...)
	c.mu.Unlock()

	for _, h := range hooks {
		h(ctx, cause)
	}

	if cause == nil {
		return ErrSessionExpired
	}
	return errors.Join(ErrSessionExpired, cause)
}

func (c *Coordinator) run(ctx context.Context, stale string) (session.Credential, error) {
	cur, ok := c.sess.Credential()
	if !ok {
		return session.Credential{}, c.Expire(ctx, ErrNoCredential)
	}
	// Someone else already finished a refresh for this expiry event.
	if stale != "" && cur.AccessToken != stale {
		return cur, nil
	}

	next, err := c.refresh(ctx, cur.RefreshToken)
	if err != nil {
		c.logger.WarnContext(ctx, "token refresh failed", slog.Any("error", err))
		return session.Credential{}, c.Expire(ctx, err)
	}

	if next.RefreshToken == "" {
		next.RefreshToken = cur.RefreshToken
		next.RefreshTTL = cur.RefreshTTL
	}

	if err := c.sess.ReplaceCredential(ctx, cur.AccessToken, next); err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidCredential):
			return session.Credential{}, c.Expire(ctx, err)
		case errors.Is(err, session.ErrCredentialChanged):
			// Logged out or re-logged in while the request was in flight.
			c.logger.DebugContext(ctx, "discarding refreshed token pair", slog.Any("error", err))
			return session.Credential{}, errors.Join(ErrSessionExpired, err)
		}
		return session.Credential{}, err
	}

	fresh, _ := c.sess.Credential()
	c.logger.DebugContext(ctx, "token refreshed", slog.Time("expires_at", fresh.AccessExpiresAt()))
	return fresh, nil
}
