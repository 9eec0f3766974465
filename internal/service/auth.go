package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gdgscriet/studyjam-server/internal/auth"
	domainerrors "github.com/gdgscriet/studyjam-server/internal/errors"
	"github.com/gdgscriet/studyjam-server/internal/ratelimit"
	"github.com/gdgscriet/studyjam-server/internal/remote"
	"github.com/gdgscriet/studyjam-server/internal/validation"
)

// Operator messages for login.
const (
	MsgInvalidCredentials = "Invalid credentials. Please try again."
	MsgTooManyAttempts    = "Too many login attempts. Please wait a minute and try again."
	MsgSessionExpired     = "Session expired. Please log in again."
	MsgInvalidSession     = "Invalid session token"
)

// LoginRequest is the admin login form.
type LoginRequest struct {
	FirstName  string `json:"first_name" validate:"required,notblank,max=100"`
	AccessCode string `json:"access_code" validate:"required,notblank,max=200"`
}

// Session is a successful login.
type Session struct {
	Token        string    `json:"token"`
	ExpiresAt    time.Time `json:"expires_at"`
	FirstName    string    `json:"first_name"`
	IsSuperAdmin bool      `json:"is_super_admin"`
}

// AuthService exchanges remote credentials for local session tokens.
type AuthService struct {
	remote    Authenticator
	tokens    *auth.TokenService
	validator *validation.Validator
	limiter   *ratelimit.KeyedRateLimiter
	logger    *slog.Logger
}

// NewAuthService creates an auth service. loginRPM is the per-IP attempt budget
// per minute; zero disables limiting.
func NewAuthService(authenticator Authenticator, tokens *auth.TokenService, validator *validation.Validator, loginRPM int, logger *slog.Logger) *AuthService {
	s := &AuthService{
		remote:    authenticator,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
	if loginRPM > 0 {
		s.limiter = ratelimit.New(float64(loginRPM)/60, loginRPM)
	}
	return s
}

// Login checks credentials against the remote API and issues a session.
func (s *AuthService) Login(ctx context.Context, clientIP string, req LoginRequest) (*Session, error) {
	if s.limiter != nil && !s.limiter.Allow(clientIP) {
		s.logger.Warn("login rate limited", "ip", clientIP)
		return nil, domainerrors.RateLimited(MsgTooManyAttempts)
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	result, err := s.remote.Login(ctx, req.FirstName, req.AccessCode)
	if err != nil {
		var respErr *remote.ResponseError
		switch {
		case errors.As(err, &respErr) && (respErr.IsUnauthorized() || respErr.StatusCode < 500):
			s.logger.Info("login rejected", "ip", clientIP, "status", respErr.StatusCode)
			return nil, domainerrors.InvalidCredentials(remote.UserMessage(err, MsgInvalidCredentials))
		default:
			s.logger.Error("login failed", "ip", clientIP, "error", err)
			return nil, domainerrors.Upstream(remote.UserMessage(err, MsgInvalidCredentials), err)
		}
	}

	token, expires, err := s.tokens.Issue(result)
	if err != nil {
		s.logger.Error("failed to issue session token", "error", err)
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to create session")
	}

	s.logger.Info("admin logged in", "first_name", result.FirstName, "super_admin", result.IsSuperAdmin)
	return &Session{
		Token:        token,
		ExpiresAt:    expires,
		FirstName:    result.FirstName,
		IsSuperAdmin: result.IsSuperAdmin,
	}, nil
}

// Verify validates a session token.
func (s *AuthService) Verify(token string) (*auth.SessionClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrExpired) {
			return nil, domainerrors.TokenExpired(MsgSessionExpired)
		}
		return nil, domainerrors.Unauthorized(MsgInvalidSession)
	}
	return claims, nil
}

// Stop releases the login limiter.
func (s *AuthService) Stop() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}
