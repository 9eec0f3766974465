package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gdgscriet/studyjam-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Admin login",
		Description: "Checks credentials with the participant API and returns a session token",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/session",
		Summary:     "Current session",
		Description: "Returns the admin session the bearer token belongs to",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetSession)
}

// LoginInput contains the login form.
type LoginInput struct {
	Body service.LoginRequest
}

// LoginOutput wraps the session for Huma.
type LoginOutput struct {
	Body *service.Session
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	session, err := s.services.Auth.Login(ctx, clientIP(ctx), input.Body)
	if err != nil {
		return nil, err
	}
	return &LoginOutput{Body: session}, nil
}

// SessionResponse describes the caller's admin session.
type SessionResponse struct {
	FirstName    string `json:"first_name"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	ExpiresAt    string `json:"expires_at"`
}

// SessionOutput wraps the session response for Huma.
type SessionOutput struct {
	Body SessionResponse
}

func (s *Server) handleGetSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	claims, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	return &SessionOutput{Body: SessionResponse{
		FirstName:    claims.FirstName,
		IsSuperAdmin: claims.IsSuperAdmin,
		ExpiresAt:    claims.Expiration.UTC().Format(timeFormat),
	}}, nil
}
