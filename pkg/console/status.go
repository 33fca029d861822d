package console

// Status is the two-stage login state.
type Status int

const (
	// Unauthenticated: no system session.
	Unauthenticated Status = iota
	// SystemOnly: logged into the gateway, vendor account not connected.
	SystemOnly
	// FullyConnected: both sessions are up.
	FullyConnected
)

func (s Status) String() string {
	switch s {
	case SystemOnly:
		return "system_only"
	case FullyConnected:
		return "fully_connected"
	default:
		return "unauthenticated"
	}
}
