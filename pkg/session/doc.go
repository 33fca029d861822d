// Package session is the console's credential store.
//
// It holds three pieces of state that must survive a restart of the client:
// the system token pair ([Credential]), the selected device ([Selection]) and
// the last-known vendor account snapshot ([Vendor]). The package contains no
// refresh or device logic; it only guarantees that reads see the latest
// completed write and that every write replaces a whole value.
//
// # Lifecycle
//
// A [Session] is opened once from a [Store] and injected into every component
// that needs it:
//
//	sess, err := session.Open(ctx, session.NewFileStore(path))
//	if err != nil {
//	    return err
//	}
//
//	cred, ok := sess.Credential()
//	...
//	_ = sess.Teardown(ctx) // logout: tokens and vendor snapshot gone, selection kept
//
// # Stores
//
//   - [MemoryStore]: process memory, for tests
//   - [FileStore]: JSON file written with temp-file-and-rename
//   - [CacheStore]: one key of a [github.com/dmitrymomot/speakerhub/pkg/cache.Cache],
//     typically Redis, for consoles that share a login
//
// # Write semantics
//
// Setters persist first and update memory second, so a rejected write leaves
// the previous value in place. Clearing works the other way around: the value
// disappears from memory immediately and the store is updated afterwards.
package session
