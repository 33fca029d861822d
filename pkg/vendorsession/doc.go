// Package vendorsession tracks whether the gateway's vendor account is
// logged in and how many devices it sees.
//
// The indicator is derived, not authoritative. It is set either by an
// explicit status query ([Tracker.Refresh], [Tracker.MarkLoggedIn],
// [Tracker.MarkLoggedOut]) or inferred from a device list length
// ([Tracker.InferFromDeviceCount]): any devices mean logged in, none mean
// logged out.
//
// Explicit results win over an inference that was already in flight. The
// device fetch takes a [Ticket] with [Tracker.Begin] before it starts; if an
// explicit write lands before the fetch finishes, the inference is dropped.
// An inference whose fetch starts after the explicit write is applied
// normally and may downgrade the indicator.
package vendorsession
