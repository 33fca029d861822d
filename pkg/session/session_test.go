package session_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/speakerhub/pkg/cache"
	"github.com/dmitrymomot/speakerhub/pkg/session"
)

var errStoreDown = errors.New("store down")

// brokenStore accepts loads but rejects every write.
type brokenStore struct {
	rec session.Record
}

func (b *brokenStore) Load(context.Context) (session.Record, error) { return b.rec, nil }
func (b *brokenStore) Save(context.Context, session.Record) error   { return errStoreDown }
func (b *brokenStore) Delete(context.Context) error                 { return errStoreDown }

func testCredential() session.Credential {
	return session.Credential{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		IssuedAt:     time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		AccessTTL:    time.Hour,
		RefreshTTL:   7 * 24 * time.Hour,
	}
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("empty store yields empty session", func(t *testing.T) {
		t.Parallel()

		sess, err := session.Open(context.Background(), session.NewMemoryStore())
		require.NoError(t, err)

		_, ok := sess.Credential()
		assert.False(t, ok)
		_, ok = sess.Selection()
		assert.False(t, ok)
		_, ok = sess.Vendor()
		assert.False(t, ok)
	})

	t.Run("restores persisted state", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := session.NewMemoryStore()

		first, err := session.Open(ctx, store)
		require.NoError(t, err)
		require.NoError(t, first.SetCredential(ctx, testCredential()))
		require.NoError(t, first.SetSelection(ctx, session.Selection{DeviceID: "dev-1", Alias: "Kitchen"}))

		second, err := session.Open(ctx, store)
		require.NoError(t, err)

		cred, ok := second.Credential()
		require.True(t, ok)
		assert.Equal(t, "access-1", cred.AccessToken)
		assert.Equal(t, "refresh-1", cred.RefreshToken)

		sel, ok := second.Selection()
		require.True(t, ok)
		assert.Equal(t, "dev-1", sel.DeviceID)
		assert.Equal(t, "Kitchen", sel.Alias)
	})

	t.Run("drops half-written credential", func(t *testing.T) {
		t.Parallel()

		store := &brokenStore{rec: session.Record{
			Credential: &session.Credential{AccessToken: "only-access"},
		}}
		sess, err := session.Open(context.Background(), store)
		require.NoError(t, err)

		_, ok := sess.Credential()
		assert.False(t, ok)
	})
}

func TestSession_SetCredential(t *testing.T) {
	t.Parallel()

	t.Run("rejects credential without refresh token", func(t *testing.T) {
		t.Parallel()

		sess, err := session.Open(context.Background(), session.NewMemoryStore())
		require.NoError(t, err)

		err = sess.SetCredential(context.Background(), session.Credential{AccessToken: "a"})
		require.ErrorIs(t, err, session.ErrInvalidCredential)
	})

	t.Run("stamps issue time from clock", func(t *testing.T) {
		t.Parallel()

		now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		sess, err := session.Open(context.Background(), session.NewMemoryStore(),
			session.WithClock(func() time.Time { return now }),
		)
		require.NoError(t, err)

		require.NoError(t, sess.SetCredential(context.Background(), session.Credential{
			AccessToken:  "a",
			RefreshToken: "r",
			AccessTTL:    time.Minute,
		}))

		cred, ok := sess.Credential()
		require.True(t, ok)
		assert.Equal(t, now, cred.IssuedAt)
		assert.Equal(t, now.Add(time.Minute), cred.AccessExpiresAt())
	})

	t.Run("failed write keeps previous pair", func(t *testing.T) {
		t.Parallel()

		prev := testCredential()
		store := &brokenStore{rec: session.Record{Credential: &prev}}
		sess, err := session.Open(context.Background(), store)
		require.NoError(t, err)

		next := testCredential()
		next.AccessToken = "access-2"
		next.RefreshToken = "refresh-2"

		err = sess.SetCredential(context.Background(), next)
		require.ErrorIs(t, err, session.ErrPersist)
		require.ErrorIs(t, err, errStoreDown)

		cred, ok := sess.Credential()
		require.True(t, ok)
		assert.Equal(t, "access-1", cred.AccessToken)
		assert.Equal(t, "refresh-1", cred.RefreshToken)
	})
}

func TestSession_ClearCredential(t *testing.T) {
	t.Parallel()

	t.Run("removes from memory even when store fails", func(t *testing.T) {
		t.Parallel()

		prev := testCredential()
		store := &brokenStore{rec: session.Record{Credential: &prev}}
		sess, err := session.Open(context.Background(), store)
		require.NoError(t, err)

		err = sess.ClearCredential(context.Background())
		require.ErrorIs(t, err, session.ErrPersist)

		_, ok := sess.Credential()
		assert.False(t, ok)
	})

	t.Run("deletes store when record becomes empty", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		store := session.NewMemoryStore()
		sess, err := session.Open(ctx, store)
		require.NoError(t, err)

		require.NoError(t, sess.SetCredential(ctx, testCredential()))
		require.NoError(t, sess.ClearCredential(ctx))

		_, err = store.Load(ctx)
		require.ErrorIs(t, err, session.ErrNotFound)
	})
}

func TestSession_ReplaceCredential(t *testing.T) {
	t.Parallel()

	next := session.Credential{AccessToken: "access-2", RefreshToken: "refresh-2", AccessTTL: time.Hour}

	tests := []struct {
		name       string
		prepare    func(ctx context.Context, sess *session.Session) error
		expected   string
		wantErr    error
		wantAccess string
	}{
		{
			name:       "replaces matching pair",
			prepare:    func(context.Context, *session.Session) error { return nil },
			expected:   "access-1",
			wantAccess: "access-2",
		},
		{
			name:     "refuses after teardown",
			prepare:  func(ctx context.Context, sess *session.Session) error { return sess.Teardown(ctx) },
			expected: "access-1",
			wantErr:  session.ErrCredentialChanged,
		},
		{
			name: "refuses after a new login",
			prepare: func(ctx context.Context, sess *session.Session) error {
				cred := testCredential()
				cred.AccessToken = "access-login"
				return sess.SetCredential(ctx, cred)
			},
			expected:   "access-1",
			wantErr:    session.ErrCredentialChanged,
			wantAccess: "access-login",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			store := session.NewMemoryStore()
			sess, err := session.Open(ctx, store)
			require.NoError(t, err)
			require.NoError(t, sess.SetCredential(ctx, testCredential()))
			require.NoError(t, tt.prepare(ctx, sess))

			err = sess.ReplaceCredential(ctx, tt.expected, next)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			cred, ok := sess.Credential()
			if tt.wantAccess == "" {
				assert.False(t, ok)
				persisted, err := store.Load(ctx)
				if err == nil {
					assert.Nil(t, persisted.Credential)
				}
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.wantAccess, cred.AccessToken)
		})
	}
}

func TestSession_Teardown(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := session.NewMemoryStore()
	sess, err := session.Open(ctx, store)
	require.NoError(t, err)

	require.NoError(t, sess.SetCredential(ctx, testCredential()))
	require.NoError(t, sess.SetSelection(ctx, session.Selection{DeviceID: "dev-1"}))
	require.NoError(t, sess.SetVendor(ctx, session.Vendor{LoggedIn: true, DeviceCount: 2}))

	require.NoError(t, sess.Teardown(ctx))

	_, ok := sess.Credential()
	assert.False(t, ok)
	_, ok = sess.Vendor()
	assert.False(t, ok)

	sel, ok := sess.Selection()
	require.True(t, ok)
	assert.Equal(t, "dev-1", sel.DeviceID)

	persisted, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, persisted.Credential)
	assert.Nil(t, persisted.Vendor)
	require.NotNil(t, persisted.Selection)
}

func TestSession_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess, err := session.Open(ctx, session.NewMemoryStore())
	require.NoError(t, err)
	require.NoError(t, sess.SetCredential(ctx, testCredential()))

	snap := sess.Snapshot()
	snap.Credential.AccessToken = "tampered"

	cred, ok := sess.Credential()
	require.True(t, ok)
	assert.Equal(t, "access-1", cred.AccessToken)
}

func TestSession_SetSelection(t *testing.T) {
	t.Parallel()

	sess, err := session.Open(context.Background(), session.NewMemoryStore())
	require.NoError(t, err)

	err = sess.SetSelection(context.Background(), session.Selection{})
	require.ErrorIs(t, err, session.ErrInvalidSelection)
}

func TestCredential_AccessExpiresWithin(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	cred := session.Credential{AccessToken: "a", RefreshToken: "r", IssuedAt: issued, AccessTTL: time.Hour}

	tests := []struct {
		name   string
		now    time.Time
		within time.Duration
		want   bool
	}{
		{name: "fresh", now: issued.Add(10 * time.Minute), within: 10 * time.Minute, want: false},
		{name: "inside threshold", now: issued.Add(55 * time.Minute), within: 10 * time.Minute, want: true},
		{name: "already expired", now: issued.Add(2 * time.Hour), within: 0, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cred.AccessExpiresWithin(tt.now, tt.within))
		})
	}

	t.Run("unknown lifetime never expires", func(t *testing.T) {
		t.Parallel()
		c := session.Credential{AccessToken: "a", RefreshToken: "r"}
		assert.False(t, c.AccessExpiresWithin(time.Now().Add(1000*time.Hour), 0))
	})
}

func TestFileStore(t *testing.T) {
	t.Parallel()

	t.Run("missing file is not found", func(t *testing.T) {
		t.Parallel()

		store := session.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
		_, err := store.Load(context.Background())
		require.ErrorIs(t, err, session.ErrNotFound)
	})

	t.Run("survives reopen", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "nested", "state.json")

		sess, err := session.Open(ctx, session.NewFileStore(path))
		require.NoError(t, err)
		require.NoError(t, sess.SetCredential(ctx, testCredential()))
		require.NoError(t, sess.SetVendor(ctx, session.Vendor{LoggedIn: true, DeviceCount: 3, UserID: "42"}))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

		reopened, err := session.Open(ctx, session.NewFileStore(path))
		require.NoError(t, err)

		cred, ok := reopened.Credential()
		require.True(t, ok)
		assert.Equal(t, testCredential().AccessTTL, cred.AccessTTL)

		v, ok := reopened.Vendor()
		require.True(t, ok)
		assert.Equal(t, 3, v.DeviceCount)
		assert.Equal(t, "42", v.UserID)
	})

	t.Run("corrupted file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "state.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

		_, err := session.Open(context.Background(), session.NewFileStore(path))
		require.ErrorIs(t, err, session.ErrCorrupted)
	})

	t.Run("delete missing file", func(t *testing.T) {
		t.Parallel()

		store := session.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, store.Delete(context.Background()))
	})
}

func TestCacheStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := cache.NewMemory[session.Record]()
	defer c.Close()

	store := session.NewCacheStore(c, "console")

	_, err := store.Load(ctx)
	require.ErrorIs(t, err, session.ErrNotFound)

	sess, err := session.Open(ctx, store)
	require.NoError(t, err)
	require.NoError(t, sess.SetCredential(ctx, testCredential()))

	has, err := c.Has(ctx, "console")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, sess.Teardown(ctx))

	has, err = c.Has(ctx, "console")
	require.NoError(t, err)
	assert.False(t, has)
}
