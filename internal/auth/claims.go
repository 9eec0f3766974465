package auth

import (
	"time"
)

// SessionClaims are carried inside an admin session token. The token is v4.local,
// so the remote access token is never visible to the browser.
type SessionClaims struct {
	FirstName    string `json:"first_name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	RemoteToken  string `json:"remote_token"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}
