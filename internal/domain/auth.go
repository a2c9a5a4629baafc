package domain

import "time"

// Credential is a signed bearer token together with its validity window.
type Credential struct {
	Token     string
	SubjectID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
