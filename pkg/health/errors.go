package health

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrCheckFailed is returned by Response.Err when one or more checks fail.
	ErrCheckFailed = errors.New("health: check failed")

	// ErrCheckTimeout marks a check that exceeded the probe timeout.
	ErrCheckTimeout = errors.New("health: check timeout")
)

// Err returns nil for a healthy response, otherwise ErrCheckFailed joined
// with one error per failed check in name order.
func (r *Response) Err() error {
	if r.Status == StatusHealthy {
		return nil
	}

	names := make([]string, 0, len(r.Checks))
	for name, c := range r.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	errs := []error{ErrCheckFailed}
	for _, name := range names {
		errs = append(errs, fmt.Errorf("%s: %s", name, r.Checks[name].Error))
	}
	return errors.Join(errs...)
}
