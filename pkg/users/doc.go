// Package users authenticates the gateway's system users.
//
// Users come from configuration. A password may be stored as a bcrypt hash
// ($2a$, $2b$ or $2y$ prefix) or as a plain value; plain values are compared
// in constant time.
//
//	dir, err := users.New([]users.Account{{Username: "admin", Password: hash}})
//	name, err := dir.Authenticate("admin", "secret")
//	if errors.Is(err, users.ErrInvalidCredentials) {
//	    // 401
//	}
package users
