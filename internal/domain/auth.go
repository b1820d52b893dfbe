package domain

import "time"

// AccessToken is a signed, self-describing credential issued on login.
type AccessToken struct {
	Token     string
	TokenID   string
	SubjectID string
	Roles     []Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Identity is the authenticated caller attached to a request.
// Roles is the snapshot taken when the token was issued.
type Identity struct {
	SubjectID string
	Roles     []Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RevocationEntry marks a token as unusable until its natural expiry.
type RevocationEntry struct {
	TokenID   string
	ExpiresAt time.Time
}
