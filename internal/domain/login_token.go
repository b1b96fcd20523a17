package domain

import "time"

// LoginToken is a one-time token emailed to an agent for console
// sign-in. Redeeming it issues a bearer token; a token is valid until
// its expiry and only until first use.
type LoginToken struct {
	ID        string
	AgentID   string
	Token     string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t *LoginToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
