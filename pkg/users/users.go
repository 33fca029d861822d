package users

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Account is a configured system user. Password holds either a bcrypt hash
// or a plain value.
type Account struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Directory authenticates system users against a fixed list.
type Directory struct {
	accounts map[string]string
	// dummy keeps the timing of unknown usernames close to known ones.
	dummy []byte
}

// New builds a directory from accounts.
func New(accounts []Account) (*Directory, error) {
	if len(accounts) == 0 {
		return nil, ErrNoUsers
	}

	d := &Directory{accounts: make(map[string]string, len(accounts))}
	for _, a := range accounts {
		name := strings.TrimSpace(a.Username)
		if name == "" || a.Password == "" {
			return nil, ErrInvalidAccount
		}
		if _, ok := d.accounts[name]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, name)
		}
		d.accounts[name] = a.Password
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("speakerhub"), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("users: prepare dummy hash: %w", err)
	}
	d.dummy = dummy
	return d, nil
}

// Authenticate checks username and password and returns the canonical username.
func (d *Directory) Authenticate(username, password string) (string, error) {
	name := strings.TrimSpace(username)
	stored, ok := d.accounts[name]
	if !ok {
		_ = bcrypt.CompareHashAndPassword(d.dummy, []byte(password))
		return "", ErrInvalidCredentials
	}
	if !Verify(stored, password) {
		return "", ErrInvalidCredentials
	}
	return name, nil
}

// Exists reports whether username is configured.
func (d *Directory) Exists(username string) bool {
	_, ok := d.accounts[username]
	return ok
}

// Verify compares password with stored, which is a bcrypt hash or a plain value.
func Verify(stored, password string) bool {
	if IsHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// IsHash reports whether s looks like a bcrypt hash.
func IsHash(s string) bool {
	for _, p := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Hash returns a bcrypt hash of password at the default cost.
func Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
