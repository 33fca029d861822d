package devices

import (
	"strings"

	"github.com/dmitrymomot/speakerhub/pkg/session"
)

// Device is one speaker of the vendor account.
type Device struct {
	Capabilities map[string]any
	ID           string
	Name         string
	Alias        string
	MiotDID      string
	Hardware     string
}

// DisplayName returns the alias, then the name, then the id.
func (d Device) DisplayName() string {
	switch {
	case strings.TrimSpace(d.Alias) != "":
		return d.Alias
	case strings.TrimSpace(d.Name) != "":
		return d.Name
	default:
		return d.ID
	}
}

// Matches reports whether selector addresses d by id, alias, name or numeric did.
func (d Device) Matches(selector string) bool {
	if selector == "" {
		return false
	}
	return selector == d.ID || selector == d.Alias || selector == d.Name ||
		(d.MiotDID != "" && selector == d.MiotDID)
}

func (d Device) selection() session.Selection {
	return session.Selection{
		DeviceID: d.ID,
		Alias:    d.Alias,
		Name:     d.Name,
		Hardware: d.Hardware,
	}
}

func fromSelection(s session.Selection) Device {
	return Device{ID: s.DeviceID, Alias: s.Alias, Name: s.Name, Hardware: s.Hardware}
}

// fingerprint is the ordered id/alias/name/hardware tuple of the list.
func fingerprint(list []Device) string {
	var b strings.Builder
	for _, d := range list {
		for _, f := range [...]string{d.ID, d.Alias, d.Name, d.Hardware} {
			b.WriteString(f)
			b.WriteByte(0x1f)
		}
		b.WriteByte(0x1e)
	}
	return b.String()
}

func find(list []Device, id string) (Device, bool) {
	for _, d := range list {
		if d.ID == id {
			return d, true
		}
	}
	return Device{}, false
}

func clone(list []Device) []Device {
	if list == nil {
		return nil
	}
	out := make([]Device, len(list))
	copy(out, list)
	return out
}
