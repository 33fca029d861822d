package console

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/speakerhub/pkg/apiclient"
	"github.com/dmitrymomot/speakerhub/pkg/devices"
	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
	"github.com/dmitrymomot/speakerhub/pkg/tokenrefresh"
	"github.com/dmitrymomot/speakerhub/pkg/vendorsession"
)

// Backend is the part of the gateway client the console drives.
// *apiclient.Client implements it.
type Backend interface {
	Coordinator() *tokenrefresh.Coordinator
	Login(ctx context.Context, username, password string) (apiclient.TokenResponse, error)
	VendorLogin(ctx context.Context, username, password string) (apiclient.VendorLogin, error)
	VendorLogout(ctx context.Context) error
	VendorStatus(ctx context.Context) (apiclient.VendorStatus, error)
	Devices(ctx context.Context) ([]apiclient.DeviceInfo, error)
	PlayURL(ctx context.Context, selector, rawURL string, kind int) (apiclient.CommandResult, error)
	Play(ctx context.Context, selector string) (apiclient.CommandResult, error)
	Pause(ctx context.Context, selector string) (apiclient.CommandResult, error)
	Stop(ctx context.Context, selector string) (apiclient.CommandResult, error)
	PlaybackStatus(ctx context.Context, selector string) (apiclient.PlaybackStatus, error)
	Volume(ctx context.Context, selector string) (apiclient.Volume, error)
	SetVolume(ctx context.Context, selector string, level int) (apiclient.CommandResult, error)
	Speak(ctx context.Context, selector, text string) (apiclient.CommandResult, error)
}

// Option configures a Console.
type Option func(*Console)

// WithLogger sets the logger for the console and the components it creates.
func WithLogger(l *slog.Logger) Option {
	return func(c *Console) {
		if l != nil {
			c.logger = l
		}
	}
}

// Console composes the session, the vendor tracker and the device directory
// into the two-stage login flow.
type Console struct {
	sess    *session.Session
	api     Backend
	tracker *vendorsession.Tracker
	dir     *devices.Directory
	logger  *slog.Logger
}

// New wires a console over sess and api.
func New(sess *session.Session, api Backend, opts ...Option) *Console {
	c := &Console{
		sess:   sess,
		api:    api,
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.tracker = vendorsession.New(sess, c.vendorStatus, vendorsession.WithLogger(c.logger))
	c.dir = devices.New(c.listDevices, sess, c.tracker, devices.WithLogger(c.logger))
	api.Coordinator().OnExpired(c.expired)
	return c
}

// Session returns the state container.
func (c *Console) Session() *session.Session { return c.sess }

// Directory returns the device directory.
func (c *Console) Directory() *devices.Directory { return c.dir }

// Vendor returns the cached vendor indicator.
func (c *Console) Vendor() vendorsession.State { return c.tracker.State() }

// IsAuthenticated reports whether a system token pair is stored.
func (c *Console) IsAuthenticated() bool {
	_, ok := c.sess.Credential()
	return ok
}

// VendorLoggedIn reports whether the vendor account is believed connected.
func (c *Console) VendorLoggedIn() bool {
	return c.IsAuthenticated() && c.tracker.State().LoggedIn
}

// Status returns the current login stage.
func (c *Console) Status() Status {
	switch {
	case !c.IsAuthenticated():
		return Unauthenticated
	case c.tracker.State().LoggedIn:
		return FullyConnected
	default:
		return SystemOnly
	}
}

// Login starts a system session and then looks for an existing vendor
// session. Failures of that second step are logged only.
func (c *Console) Login(ctx context.Context, username, password string) (Status, error) {
	resp, err := c.api.Login(ctx, username, password)
	if err != nil {
		return c.Status(), err
	}
	if err := c.sess.SetCredential(ctx, resp.Credential()); err != nil {
		return c.Status(), err
	}
	c.logger.InfoContext(ctx, "system login succeeded", slog.String("user", username))

	if err := c.Sync(ctx); err != nil {
		c.logger.WarnContext(ctx, "post-login sync failed", slog.Any("error", err))
	}
	return c.Status(), nil
}

// VendorLogin connects the gateway to the vendor account and loads its devices.
func (c *Console) VendorLogin(ctx context.Context, username, password string) (Status, error) {
	if !c.IsAuthenticated() {
		return Unauthenticated, ErrNotAuthenticated
	}

	res, err := c.api.VendorLogin(ctx, username, password)
	if err != nil {
		return c.Status(), err
	}
	if err := c.tracker.MarkLoggedIn(ctx, res.DevicesCount, ""); err != nil {
		return c.Status(), err
	}

	if _, err := c.dir.Fetch(ctx); err != nil {
		c.logger.WarnContext(ctx, "device fetch after vendor login failed", slog.Any("error", err))
	}
	return c.Status(), nil
}

// VendorLogout disconnects the vendor account. The system session stays.
func (c *Console) VendorLogout(ctx context.Context) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	if err := c.api.VendorLogout(ctx); err != nil {
		return err
	}
	c.dir.Reset()
	return c.tracker.MarkLoggedOut(ctx)
}

// Logout ends both sessions. The vendor logout is best effort; the system
// session is always torn down.
func (c *Console) Logout(ctx context.Context) error {
	if c.VendorLoggedIn() {
		if err := c.api.VendorLogout(ctx); err != nil {
			c.logger.WarnContext(ctx, "vendor logout failed", slog.Any("error", err))
		}
	}

	c.dir.Reset()
	if err := c.tracker.Clear(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to clear vendor state", slog.Any("error", err))
	}
	return c.sess.Teardown(ctx)
}

// Sync refreshes the vendor status and the device list concurrently.
// Only a system session expiry is returned as fatal; vendor failures are
// logged by the components and a fetch failure is returned as is.
func (c *Console) Sync(ctx context.Context) error {
	if !c.IsAuthenticated() {
		return ErrNotAuthenticated
	}

	var statusErr, fetchErr error
	var g errgroup.Group
	g.Go(func() error {
		_, statusErr = c.tracker.Refresh(ctx)
		return nil
	})
	g.Go(func() error {
		_, fetchErr = c.dir.Fetch(ctx)
		return nil
	})
	_ = g.Wait()

	switch {
	case errors.Is(statusErr, tokenrefresh.ErrSessionExpired):
		return statusErr
	case errors.Is(fetchErr, tokenrefresh.ErrSessionExpired):
		return fetchErr
	case errors.Is(fetchErr, ErrVendorNotConnected):
		return nil
	default:
		return fetchErr
	}
}

// expired runs after the refresh coordinator tore the session down.
func (c *Console) expired(ctx context.Context, cause error) {
	c.dir.Reset()
	if err := c.tracker.Clear(ctx); err != nil {
		c.logger.WarnContext(ctx, "failed to clear vendor state", slog.Any("error", err))
	}
	c.logger.InfoContext(ctx, "system session expired", slog.Any("cause", cause))
}

func (c *Console) vendorStatus(ctx context.Context) (vendorsession.State, error) {
	st, err := c.api.VendorStatus(ctx)
	if err != nil {
		return vendorsession.State{}, err
	}
	return vendorsession.State{LoggedIn: st.LoggedIn, DeviceCount: st.DevicesCount, UserID: st.UserID}, nil
}

func (c *Console) listDevices(ctx context.Context) ([]devices.Device, error) {
	infos, err := c.api.Devices(ctx)
	if err != nil {
		return nil, err
	}
	list := make([]devices.Device, 0, len(infos))
	for _, in := range infos {
		list = append(list, devices.Device{
			Capabilities: in.Capabilities,
			ID:           in.DeviceID,
			Name:         in.Name,
			Alias:        in.Alias,
			MiotDID:      in.MiotDID,
			Hardware:     in.Hardware,
		})
	}
	return list, nil
}
