package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dmitrymomot/speakerhub/pkg/logger"
)

// Session is the single owned state container of the console.
// It keeps the current Record in memory and writes every change through to
// the Store. Writes replace the whole record, so readers never observe a
// half-applied update.
type Session struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
	rec    Record
	mu     sync.RWMutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used to report persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the persisted record from store and returns a ready Session.
// A store with nothing persisted yields an empty session.
func Open(ctx context.Context, store Store, opts ...Option) (*Session, error) {
	s := &Session{
		store:  store,
		logger: logger.NewNope(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	rec, err := store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		rec = Record{}
	case err != nil:
		return nil, err
	}

	// A half-written credential from an older client is useless.
	if rec.Credential != nil && !rec.Credential.Valid() {
		rec.Credential = nil
	}

	s.rec = rec.clone()
	return s, nil
}

// Now returns the current time from the session clock.
func (s *Session) Now() time.Time {
	return s.now()
}

// Snapshot returns a copy of the whole record.
func (s *Session) Snapshot() Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rec.clone()
}

// Credential returns the current token pair.
func (s *Session) Credential() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec.Credential == nil {
		return Credential{}, false
	}
	return *s.rec.Credential, true
}

// SetCredential stores a new token pair. Both tokens are written together or
// not at all: if the store rejects the write, the previous pair stays current.
func (s *Session) SetCredential(ctx context.Context, c Credential) error {
	if !c.Valid() {
		return ErrInvalidCredential
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = s.now()
	}
	return s.commit(ctx, func(r *Record) {
		r.Credential = &c
	})
}

// ReplaceCredential stores c only while the current access token still equals
// expectedAccess. It returns ErrCredentialChanged when the credential was
// cleared or replaced in the meantime, and the current state is left alone.
func (s *Session) ReplaceCredential(ctx context.Context, expectedAccess string, c Credential) error {
	if !c.Valid() {
		return ErrInvalidCredential
	}
	if c.IssuedAt.IsZero() {
		c.IssuedAt = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.rec.Credential == nil || s.rec.Credential.AccessToken != expectedAccess {
		return ErrCredentialChanged
	}

	next := s.rec.clone()
	next.Credential = &c
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.rec = next
	return nil
}

// ClearCredential forgets the token pair. The in-memory value is dropped
// before the store is touched, so no caller can read the old token once this
// call starts, even when persisting the deletion fails.
func (s *Session) ClearCredential(ctx context.Context) error {
	return s.drop(ctx, func(r *Record) {
		r.Credential = nil
	})
}

// Selection returns the persisted device selection.
func (s *Session) Selection() (Selection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec.Selection == nil {
		return Selection{}, false
	}
	return *s.rec.Selection, true
}

// SetSelection persists the selected device.
func (s *Session) SetSelection(ctx context.Context, sel Selection) error {
	if sel.DeviceID == "" {
		return ErrInvalidSelection
	}
	if sel.SelectedAt.IsZero() {
		sel.SelectedAt = s.now()
	}
	return s.commit(ctx, func(r *Record) {
		r.Selection = &sel
	})
}

// ClearSelection forgets the selected device.
func (s *Session) ClearSelection(ctx context.Context) error {
	return s.drop(ctx, func(r *Record) {
		r.Selection = nil
	})
}

// Vendor returns the last-known vendor snapshot.
func (s *Session) Vendor() (Vendor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rec.Vendor == nil {
		return Vendor{}, false
	}
	return *s.rec.Vendor, true
}

// SetVendor persists a vendor snapshot.
func (s *Session) SetVendor(ctx context.Context, v Vendor) error {
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = s.now()
	}
	return s.commit(ctx, func(r *Record) {
		r.Vendor = &v
	})
}

// ClearVendor forgets the vendor snapshot.
func (s *Session) ClearVendor(ctx context.Context) error {
	return s.drop(ctx, func(r *Record) {
		r.Vendor = nil
	})
}

// Teardown ends the system session: the token pair and the vendor snapshot
// are removed. The device selection survives so the next login lands on the
// same speaker.
func (s *Session) Teardown(ctx context.Context) error {
	return s.drop(ctx, func(r *Record) {
		r.Credential = nil
		r.Vendor = nil
	})
}

// commit applies fn to a copy of the record, persists the copy and only then
// makes it current.
func (s *Session) commit(ctx context.Context, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.rec.clone()
	fn(&next)

	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.rec = next
	return nil
}

// drop applies fn to the current record immediately and persists afterwards.
func (s *Session) drop(ctx context.Context, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.rec.clone()
	fn(&next)
	s.rec = next

	if err := s.persist(ctx, next); err != nil {
		s.logger.WarnContext(ctx, "session state cleared in memory but not in store", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *Session) persist(ctx context.Context, rec Record) error {
	var err error
	if rec.IsEmpty() {
		err = s.store.Delete(ctx)
	} else {
		err = s.store.Save(ctx, rec.clone())
	}
	if err != nil {
		return errors.Join(ErrPersist, err)
	}
	return nil
}
