package client

import (
	"context"
	"net/http"

	"github.com/example/storefront/internal/session"
)

// Identity is the identity service client. It satisfies
// session.IdentityService.
type Identity struct {
	c *Client
}

func NewIdentity(c *Client) *Identity {
	return &Identity{c: c}
}

func (s *Identity) Login(ctx context.Context, creds session.Credentials) (session.AuthResult, error) {
	var result session.AuthResult
	err := s.c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &result)
	return result, err
}

func (s *Identity) Register(ctx context.Context, reg session.Registration) (session.AuthResult, error) {
	var result session.AuthResult
	err := s.c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &result)
	return result, err
}

func (s *Identity) Logout(ctx context.Context) error {
	return s.c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Verify validates the current credential and returns its user
func (s *Identity) Verify(ctx context.Context) (session.User, error) {
	var user session.User
	err := s.c.do(ctx, http.MethodGet, "/auth/verify", nil, nil, &user)
	return user, err
}

func (s *Identity) Profile(ctx context.Context) (session.User, error) {
	var user session.User
	err := s.c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &user)
	return user, err
}

func (s *Identity) UpdateProfile(ctx context.Context, update session.ProfileUpdate) (session.User, error) {
	var user session.User
	err := s.c.do(ctx, http.MethodPut, "/auth/profile", nil, update, &user)
	return user, err
}
