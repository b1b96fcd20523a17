package dto

import "time"

// AgentLoginRequest is the password login payload.
type AgentLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginTokenRequest asks for a one-time login token.
type LoginTokenRequest struct {
	Email string `json:"email"`
}

// RedeemTokenRequest exchanges a one-time token for a bearer token.
type RedeemTokenRequest struct {
	Token string `json:"token"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	AgentID     string    `json:"agent_id"`
	AgentName   string    `json:"agent_name"`
}
