package users_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/speakerhub/pkg/users"
)

func TestNew(t *testing.T) {
	t.Parallel()

	_, err := users.New(nil)
	require.ErrorIs(t, err, users.ErrNoUsers)

	_, err = users.New([]users.Account{{Username: "a", Password: "x"}, {Username: "a", Password: "y"}})
	require.ErrorIs(t, err, users.ErrDuplicateUser)

	_, err = users.New([]users.Account{{Username: " ", Password: "x"}})
	require.ErrorIs(t, err, users.ErrInvalidAccount)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	dir, err := users.New([]users.Account{
		{Username: "admin", Password: "admin123"},
		{Username: "ops", Password: string(hash)},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		want     string
		wantErr  bool
	}{
		{name: "plain match", username: "admin", password: "admin123", want: "admin"},
		{name: "plain mismatch", username: "admin", password: "admin124", wantErr: true},
		{name: "hash match", username: "ops", password: "s3cret", want: "ops"},
		{name: "hash mismatch", username: "ops", password: "secret", wantErr: true},
		{name: "surrounding spaces in username", username: " admin ", password: "admin123", want: "admin"},
		{name: "unknown user", username: "root", password: "admin123", wantErr: true},
		{name: "empty password", username: "admin", password: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := dir.Authenticate(tt.username, tt.password)
			if tt.wantErr {
				require.ErrorIs(t, err, users.ErrInvalidCredentials)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHash(t *testing.T) {
	t.Parallel()

	h, err := users.Hash("pw")
	require.NoError(t, err)
	assert.True(t, users.IsHash(h))
	assert.True(t, users.Verify(h, "pw"))
	assert.False(t, users.Verify(h, "other"))
	assert.False(t, users.IsHash("pw"))
}
