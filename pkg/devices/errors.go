package devices

import "errors"

// ErrUnknownDevice is returned by Select for an id that is not in the current list.
var ErrUnknownDevice = errors.New("devices: unknown device")
