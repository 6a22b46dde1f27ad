// Package session resolves the current user from a bearer token issued
// by the external auth service. Only parsing and role gating live here;
// issuing and refreshing tokens is the auth service's job.
package session

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Role constants as carried in the token claims.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// User is the authenticated identity attached to a request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the user may reach the back office.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

type claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HMAC-signed token and returns the user it
// identifies. Expired or tampered tokens are rejected.
func ParseToken(tokenString, secret string) (*User, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if c.Subject == "" {
		return nil, fmt.Errorf("token missing subject")
	}
	return &User{
		ID:    c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
	}, nil
}

type contextKey struct{}

// WithUser attaches the authenticated user to the context.
func WithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, contextKey{}, u)
}

// FromContext returns the authenticated user, or nil for anonymous
// requests.
func FromContext(ctx context.Context) *User {
	u, _ := ctx.Value(contextKey{}).(*User)
	return u
}
