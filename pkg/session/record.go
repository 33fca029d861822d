package session

import "time"

// Credential is the system access/refresh token pair issued by the gateway.
type Credential struct {
	IssuedAt     time.Time     `json:"issued_at"`
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	AccessTTL    time.Duration `json:"access_ttl"`
	RefreshTTL   time.Duration `json:"refresh_ttl"`
}

// Valid reports whether both tokens are present.
func (c Credential) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// AccessExpiresAt returns the access token expiry.
// Returns the zero time when the lifetime is unknown.
func (c Credential) AccessExpiresAt() time.Time {
	if c.AccessTTL <= 0 || c.IssuedAt.IsZero() {
		return time.Time{}
	}
	return c.IssuedAt.Add(c.AccessTTL)
}

// RefreshExpiresAt returns the refresh token expiry.
// Returns the zero time when the lifetime is unknown.
func (c Credential) RefreshExpiresAt() time.Time {
	if c.RefreshTTL <= 0 || c.IssuedAt.IsZero() {
		return time.Time{}
	}
	return c.IssuedAt.Add(c.RefreshTTL)
}

// AccessExpiresWithin reports whether the access token expires before now+d.
// A credential with an unknown lifetime never reports expiry.
func (c Credential) AccessExpiresWithin(now time.Time, d time.Duration) bool {
	exp := c.AccessExpiresAt()
	if exp.IsZero() {
		return false
	}
	return !now.Add(d).Before(exp)
}

// Selection is the persisted device selection with a snapshot of the device
// as it looked when it was selected.
type Selection struct {
	SelectedAt time.Time `json:"selected_at"`
	DeviceID   string    `json:"device_id"`
	Alias      string    `json:"alias,omitempty"`
	Name       string    `json:"name,omitempty"`
	Hardware   string    `json:"hardware,omitempty"`
}

// Vendor is the last-known vendor account snapshot.
type Vendor struct {
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      string    `json:"user_id,omitempty"`
	DeviceCount int       `json:"device_count"`
	LoggedIn    bool      `json:"logged_in"`
}

// Record is everything the console keeps between runs.
// Nil fields are absent.
type Record struct {
	Credential *Credential `json:"credential,omitempty"`
	Selection  *Selection  `json:"selection,omitempty"`
	Vendor     *Vendor     `json:"vendor,omitempty"`
}

// IsEmpty reports whether the record holds nothing worth persisting.
func (r Record) IsEmpty() bool {
	return r.Credential == nil && r.Selection == nil && r.Vendor == nil
}

// clone returns a deep copy so that callers never share pointers with the
// state held by a Session or a Store.
func (r Record) clone() Record {
	var out Record
	if r.Credential != nil {
		c := *r.Credential
		out.Credential = &c
	}
	if r.Selection != nil {
		s := *r.Selection
		out.Selection = &s
	}
	if r.Vendor != nil {
		v := *r.Vendor
		out.Vendor = &v
	}
	return out
}
