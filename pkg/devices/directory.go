package devices

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/speakerhub/pkg/logger"
	"github.com/dmitrymomot/speakerhub/pkg/session"
	"github.com/dmitrymomot/speakerhub/pkg/vendorsession"
)

// Lister fetches the device list from the backend.
type Lister func(ctx context.Context) ([]Device, error)

// Indicator receives the device count after every successful fetch.
// *vendorsession.Tracker implements it.
type Indicator interface {
	Begin() vendorsession.Ticket
	InferFromDeviceCount(ctx context.Context, ticket vendorsession.Ticket, n int) (vendorsession.State, bool, error)
}

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Directory) {
		if l != nil {
			d.logger = l
		}
	}
}

// Directory holds the last fetched device list and keeps the persisted
// selection pointing at a device from it.
type Directory struct {
	list        Lister
	sess        *session.Session
	indicator   Indicator
	logger      *slog.Logger
	inflight    *fetchCall
	fingerprint string
	devices     []Device
	mu          sync.Mutex
	fetched     bool
}

type fetchCall struct {
	done    chan struct{}
	err     error
	devices []Device
}

// New creates a directory. indicator may be nil.
func New(list Lister, sess *session.Session, indicator Indicator, opts ...Option) *Directory {
	d := &Directory{
		list:      list,
		sess:      sess,
		indicator: indicator,
		logger:    logger.NewNope(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch loads the device list. A call made while another fetch is running
// waits for that fetch and returns its result instead of issuing a second
// request. The request itself runs to completion even if ctx is canceled.
func (d *Directory) Fetch(ctx context.Context) ([]Device, error) {
	d.mu.Lock()
	if c := d.inflight; c != nil {
		d.mu.Unlock()
		select {
		case <-c.done:
			return clone(c.devices), c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &fetchCall{done: make(chan struct{})}
	d.inflight = c
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.inflight = nil
		d.mu.Unlock()
		close(c.done)
	}()

	ctx = context.WithoutCancel(ctx)

	var ticket vendorsession.Ticket
	if d.indicator != nil {
		ticket = d.indicator.Begin()
	}

	list, err := d.list(ctx)
	if err != nil {
		c.err = err
		return nil, err
	}

	c.devices = d.apply(ctx, list)

	if d.indicator != nil {
		if _, _, err := d.indicator.InferFromDeviceCount(ctx, ticket, len(list)); err != nil {
			d.logger.WarnContext(ctx, "failed to store inferred vendor state", slog.Any("error", err))
		}
	}
	return clone(c.devices), nil
}

// apply replaces the list when its fingerprint changed and repairs the selection.
func (d *Directory) apply(ctx context.Context, list []Device) []Device {
	fp := fingerprint(list)

	d.mu.Lock()
	if !d.fetched || fp != d.fingerprint {
		d.devices = clone(list)
		d.fingerprint = fp
		d.fetched = true
		d.logger.DebugContext(ctx, "device list changed", slog.Int("devices", len(list)))
	}
	current := clone(d.devices)
	d.mu.Unlock()

	d.repair(ctx, current)
	return current
}

// repair makes the selection reference a device of list, or clears it when
// list is empty.
func (d *Directory) repair(ctx context.Context, list []Device) {
	sel, ok := d.sess.Selection()

	if len(list) == 0 {
		if ok {
			if err := d.sess.ClearSelection(ctx); err != nil {
				d.logger.WarnContext(ctx, "failed to clear device selection", slog.Any("error", err))
			}
		}
		return
	}

	if ok {
		dev, found := find(list, sel.DeviceID)
		if found {
			if dev.Alias == sel.Alias && dev.Name == sel.Name && dev.Hardware == sel.Hardware {
				return
			}
			d.store(ctx, dev)
			return
		}
		d.logger.InfoContext(ctx, "selected device is gone, selecting first device",
			slog.String("previous", sel.DeviceID), slog.String("device", list[0].ID))
	}
	d.store(ctx, list[0])
}

func (d *Directory) store(ctx context.Context, dev Device) {
	if err := d.sess.SetSelection(ctx, dev.selection()); err != nil {
		d.logger.WarnContext(ctx, "failed to store device selection", slog.Any("error", err))
	}
}

// Devices returns the last fetched list.
func (d *Directory) Devices() []Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	return clone(d.devices)
}

// Lookup finds a device of the current list by id, alias, name or numeric did.
func (d *Directory) Lookup(selector string) (Device, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, dev := range d.devices {
		if dev.Matches(selector) {
			return dev, true
		}
	}
	return Device{}, false
}

// Select makes the device with id the selection.
func (d *Directory) Select(ctx context.Context, id string) (Device, error) {
	d.mu.Lock()
	dev, ok := find(d.devices, id)
	d.mu.Unlock()
	if !ok {
		return Device{}, ErrUnknownDevice
	}
	if err := d.sess.SetSelection(ctx, dev.selection()); err != nil {
		return Device{}, err
	}
	return dev, nil
}

// Selected returns the selected device. Before the first fetch it falls back
// to the snapshot persisted with the selection.
func (d *Directory) Selected() (Device, bool) {
	sel, ok := d.sess.Selection()
	if !ok {
		return Device{}, false
	}

	d.mu.Lock()
	dev, found := find(d.devices, sel.DeviceID)
	d.mu.Unlock()
	if found {
		return dev, true
	}
	return fromSelection(sel), true
}

// ResolveSelector returns the string used to address a device in a command:
// the alias, then the name, then the id of dev, or of the selection when dev
// is nil. A selection that is not in the fetched list resolves to its id,
// since a persisted alias may have been renamed since. An empty result means
// there is no valid target.
func (d *Directory) ResolveSelector(dev *Device) string {
	if dev != nil {
		return dev.DisplayName()
	}
	sel, ok := d.sess.Selection()
	if !ok {
		return ""
	}

	d.mu.Lock()
	cur, found := find(d.devices, sel.DeviceID)
	d.mu.Unlock()
	if found {
		return cur.DisplayName()
	}
	return sel.DeviceID
}

// Reset forgets the fetched list. The persisted selection is kept.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices = nil
	d.fingerprint = ""
	d.fetched = false
}
