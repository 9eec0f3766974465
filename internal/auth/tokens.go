package auth

import (
	"encoding/json/v2"
	"errors"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/gdgscriet/studyjam-server/internal/domain"
	"github.com/gdgscriet/studyjam-server/internal/id"
)

const (
	tokenIssuer   = "studyjam-server"
	tokenAudience = "studyjam-admin"
)

// ErrExpired is returned for a well-formed token past its expiry.
var ErrExpired = errors.New("session expired")

// TokenService handles PASETO session token generation and verification.
type TokenService struct {
	symmetricKey    paseto.V4SymmetricKey
	sessionDuration time.Duration
	now             func() time.Time
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, sessionDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:    symmetricKey,
		sessionDuration: sessionDuration,
		now:             time.Now,
	}, nil
}

// Issue creates a v4.local session token for a successful remote login.
func (s *TokenService) Issue(login domain.LoginResult) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.sessionDuration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(login.FirstName)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	tokenID, err := id.Generate("sess")
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("first_name", login.FirstName)
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("is_super_admin", login.IsSuperAdmin)
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("remote_token", login.AccessToken)

	return token.V4Encrypt(s.symmetricKey, nil), expires, nil
}

// Verify decrypts and validates a session token.
func (s *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, errors.New("missing token")
	}

	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	var claims SessionClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}

	if !s.now().Before(claims.Expiration) {
		return nil, ErrExpired
	}
	return &claims, nil
}

// SessionDuration returns the configured session lifetime.
func (s *TokenService) SessionDuration() time.Duration {
	return s.sessionDuration
}
