package domain

// Actor is the authenticated principal attached to every mutating
// operation. The engines treat it as an opaque capability token: the user
// id ends up on ledger and audit rows, Staff gates privileged operations.
type Actor struct {
	UserID string
	Name   string
	Staff  bool
}
