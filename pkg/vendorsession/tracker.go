package vendorsession

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
	"github.com/dmitrymomot/speakerhub/pkg/tokenrefresh"
)

// State is the vendor account indicator.
type State struct {
	UserID      string
	DeviceCount int
	LoggedIn    bool
}

// StatusFunc performs an explicit vendor status query.
type StatusFunc func(ctx context.Context) (State, error)

// Ticket orders an inferred write against explicit writes.
// Take one with Begin before the device fetch whose result will be inferred from.
type Ticket uint64

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tracker keeps the vendor indicator in the session.
// Explicit results (status query, login, logout) always beat an inference
// whose device fetch started before them.
type Tracker struct {
	sess       *session.Session
	status     StatusFunc
	logger     *slog.Logger
	mu         sync.Mutex
	seq        uint64
	explicitAt uint64
}

// New creates a tracker over sess.
func New(sess *session.Session, status StatusFunc, opts ...Option) *Tracker {
	t := &Tracker{
		sess:   sess,
		status: status,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the cached indicator.
func (t *Tracker) State() State {
	v, ok := t.sess.Vendor()
	if !ok {
		return State{}
	}
	return State{UserID: v.UserID, DeviceCount: v.DeviceCount, LoggedIn: v.LoggedIn}
}

// Begin returns a ticket for an inference that is about to start.
func (t *Tracker) Begin() Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	return Ticket(t.seq)
}

// Refresh queries the vendor status explicitly and stores the result.
// A failed query is not fatal: the indicator degrades to logged out and the
// cause is logged and returned. When the system session itself has expired
// nothing is written.
func (t *Tracker) Refresh(ctx context.Context) (State, error) {
	st, err := t.status(ctx)
	if err != nil {
		if errors.Is(err, tokenrefresh.ErrSessionExpired) {
			return State{}, err
		}
		t.logger.WarnContext(ctx, "vendor status query failed", slog.Any("error", err))
		st = State{}
	}
	if !st.LoggedIn {
		st = State{}
	}
	if werr := t.explicit(ctx, st); werr != nil && err == nil {
		err = werr
	}
	return st, err
}

// MarkLoggedIn records a successful vendor login.
func (t *Tracker) MarkLoggedIn(ctx context.Context, deviceCount int, userID string) error {
	return t.explicit(ctx, State{LoggedIn: true, DeviceCount: deviceCount, UserID: userID})
}

// MarkLoggedOut records an explicit vendor logout.
func (t *Tracker) MarkLoggedOut(ctx context.Context) error {
	return t.explicit(ctx, State{})
}

// Clear forgets the indicator without recording a logout, as after the
// system session expired.
func (t *Tracker) Clear(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.explicitAt = t.seq
	return t.sess.ClearVendor(ctx)
}

// InferFromDeviceCount derives the indicator from a device list length.
// The write is skipped when an explicit write landed after ticket was taken
// or when nothing changed. It reports whether anything was written.
func (t *Tracker) InferFromDeviceCount(ctx context.Context, ticket Ticket, n int) (State, bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur := t.State()
	if uint64(ticket) < t.explicitAt {
		t.logger.DebugContext(ctx, "dropping stale vendor inference",
			slog.Int("devices", n), slog.Bool("logged_in", cur.LoggedIn))
		return cur, false, nil
	}

	next := State{LoggedIn: n > 0, DeviceCount: max(n, 0)}
	if next.LoggedIn == cur.LoggedIn && next.DeviceCount == cur.DeviceCount {
		return cur, false, nil
	}
	if next.LoggedIn {
		next.UserID = cur.UserID
	}

	if err := t.write(ctx, next); err != nil {
		return cur, false, err
	}
	return next, true, nil
}

func (t *Tracker) explicit(ctx context.Context, st State) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.explicitAt = t.seq
	return t.write(ctx, st)
}

func (t *Tracker) write(ctx context.Context, st State) error {
	return t.sess.SetVendor(ctx, session.Vendor{
		UserID:      st.UserID,
		DeviceCount: st.DeviceCount,
		LoggedIn:    st.LoggedIn,
	})
}
