package devices_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/pkg/devices"
	"github.com/dmitrymomot/speakerhub/pkg/session"
	"github.com/dmitrymomot/speakerhub/pkg/vendorsession"
)

var (
	devA = devices.Device{ID: "dev-a", Name: "Speaker-A", Hardware: "LX06"}
	devB = devices.Device{ID: "dev-b", Alias: "Kitchen", Name: "Speaker-B", Hardware: "L05B", MiotDID: "1234"}
	devC = devices.Device{ID: "dev-c", Name: "Speaker-C", Hardware: "LX01"}
)

type fakeLister struct {
	err   error
	list  []devices.Device
	gate  chan struct{}
	calls atomic.Int32
	mu    sync.Mutex
}

func (f *fakeLister) set(list ...devices.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = list
}

func (f *fakeLister) fetch(context.Context) ([]devices.Device, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make([]devices.Device, len(f.list))
	copy(out, f.list)
	return out, nil
}

type fixture struct {
	lister  *fakeLister
	sess    *session.Session
	store   *session.MemoryStore
	tracker *vendorsession.Tracker
	dir     *devices.Directory
}

func newFixture(t *testing.T, seed session.Record) *fixture {
	t.Helper()

	store := session.NewMemoryStore()
	if !seed.IsEmpty() {
		require.NoError(t, store.Save(context.Background(), seed))
	}
	sess, err := session.Open(context.Background(), store)
	require.NoError(t, err)

	f := &fixture{lister: &fakeLister{}, sess: sess, store: store}
	f.tracker = vendorsession.New(sess, nil)
	f.dir = devices.New(f.lister.fetch, sess, f.tracker)
	return f
}

func TestFetch_ConcurrentCallsShareOneRequest(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA, devB)
	f.lister.gate = make(chan struct{})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			list, err := f.dir.Fetch(context.Background())
			assert.NoError(t, err)
			assert.Len(t, list, 2)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(f.lister.gate)
	wg.Wait()

	assert.Equal(t, int32(1), f.lister.calls.Load())
}

func TestFetch_RepairsMissingSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{Selection: &session.Selection{DeviceID: "X", Alias: "Old"}})
	f.lister.set(devA, devB)

	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	sel, ok := f.sess.Selection()
	require.True(t, ok)
	assert.Equal(t, "dev-a", sel.DeviceID)
	assert.Equal(t, "Speaker-A", sel.Name)
}

func TestFetch_KeepsValidSelection(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{Selection: &session.Selection{DeviceID: "dev-b", Alias: "Kitchen", Name: "Speaker-B", Hardware: "L05B"}})
	f.lister.set(devA, devB)

	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	sel, ok := f.sess.Selection()
	require.True(t, ok)
	assert.Equal(t, "dev-b", sel.DeviceID)
}

func TestFetch_EmptyListClearsSelectionAndInfersLoggedOut(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{
		Selection: &session.Selection{DeviceID: "dev-a"},
		Vendor:    &session.Vendor{LoggedIn: true, DeviceCount: 1},
	})

	list, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)

	_, ok := f.sess.Selection()
	assert.False(t, ok)
	assert.False(t, f.tracker.State().LoggedIn)
	assert.Empty(t, f.dir.ResolveSelector(nil))
}

func TestFetch_DevicesInferLoggedIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{Vendor: &session.Vendor{LoggedIn: false}})
	f.lister.set(devA, devB, devC)

	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, vendorsession.State{LoggedIn: true, DeviceCount: 3}, f.tracker.State())
}

func TestFetch_UnchangedListIsNotRewritten(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA, devB)

	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)
	writes := f.store.Writes()
	selected, _ := f.sess.Selection()

	// Same devices with different capabilities keep the same fingerprint.
	changedCaps := devA
	changedCaps.Capabilities = map[string]any{"tts": true}
	f.lister.set(changedCaps, devB)

	_, err = f.dir.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, writes, f.store.Writes())
	assert.Nil(t, f.dir.Devices()[0].Capabilities)
	after, _ := f.sess.Selection()
	assert.Equal(t, selected, after)
}

func TestFetch_IndicatorRecomputedWhenListUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA)

	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)
	require.True(t, f.tracker.State().LoggedIn)

	require.NoError(t, f.tracker.MarkLoggedOut(context.Background()))

	_, err = f.dir.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, f.tracker.State().LoggedIn)
}

func TestFetch_ErrorLeavesStateAlone(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{Selection: &session.Selection{DeviceID: "dev-a"}})
	f.lister.err = errors.New("network down")
	writes := f.store.Writes()

	_, err := f.dir.Fetch(context.Background())
	require.Error(t, err)

	sel, ok := f.sess.Selection()
	require.True(t, ok)
	assert.Equal(t, "dev-a", sel.DeviceID)
	assert.Equal(t, writes, f.store.Writes())
}

func TestSelect(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA, devB)
	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	dev, err := f.dir.Select(context.Background(), "dev-b")
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", dev.DisplayName())

	sel, _ := f.sess.Selection()
	assert.Equal(t, "dev-b", sel.DeviceID)

	_, err = f.dir.Select(context.Background(), "dev-z")
	require.ErrorIs(t, err, devices.ErrUnknownDevice)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA, devB)
	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	for _, selector := range []string{"dev-b", "Kitchen", "Speaker-B", "1234"} {
		dev, ok := f.dir.Lookup(selector)
		require.True(t, ok, selector)
		assert.Equal(t, "dev-b", dev.ID)
	}

	_, ok := f.dir.Lookup("Garage")
	assert.False(t, ok)
}

func TestSelected_BeforeFetchUsesSnapshot(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{Selection: &session.Selection{DeviceID: "dev-b", Alias: "Kitchen"}})

	dev, ok := f.dir.Selected()
	require.True(t, ok)
	assert.Equal(t, "dev-b", dev.ID)
	assert.Equal(t, "Kitchen", dev.DisplayName())
}

func TestResolveSelector_Selection(t *testing.T) {
	t.Parallel()

	renamed := devB
	renamed.Alias = "Pantry"

	tests := []struct {
		name  string
		fetch []devices.Device
		want  string
	}{
		{name: "before fetch uses the id", want: "dev-b"},
		{name: "after fetch uses the current alias", fetch: []devices.Device{devA, renamed}, want: "Pantry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, session.Record{Selection: &session.Selection{DeviceID: "dev-b", Alias: "Kitchen"}})
			if tt.fetch != nil {
				f.lister.set(tt.fetch...)
				_, err := f.dir.Fetch(context.Background())
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, f.dir.ResolveSelector(nil))
		})
	}
}

func TestResolveSelector(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})

	tests := []struct {
		name string
		dev  devices.Device
		want string
	}{
		{name: "alias first", dev: devices.Device{ID: "dev-123", Name: "Speaker-07", Alias: "Living Room"}, want: "Living Room"},
		{name: "name second", dev: devices.Device{ID: "dev-123", Name: "Speaker-07"}, want: "Speaker-07"},
		{name: "id last", dev: devices.Device{ID: "dev-123"}, want: "dev-123"},
		{name: "blank alias ignored", dev: devices.Device{ID: "dev-123", Alias: "  "}, want: "dev-123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.dir.ResolveSelector(&tt.dev))
		})
	}

	assert.Empty(t, f.dir.ResolveSelector(nil))
}

func TestReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, session.Record{})
	f.lister.set(devA)
	_, err := f.dir.Fetch(context.Background())
	require.NoError(t, err)

	f.dir.Reset()
	assert.Empty(t, f.dir.Devices())

	_, ok := f.sess.Selection()
	assert.True(t, ok)
}
