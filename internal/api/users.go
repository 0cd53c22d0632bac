package api

import (
	"context"
	"net/http"

	"github.com/abenov/coursehub/internal/domain"
)

// AuthResult is the user+token pair returned by login and register.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type authEnvelope struct {
	Data AuthResult `json:"data"`
}

type profileEnvelope struct {
	User *domain.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var env authEnvelope
	err := c.Do(ctx, http.MethodPost, "/users/login", nil,
		map[string]string{"email": email, "password": password}, &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

type RegisterInput struct {
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	var env authEnvelope
	if err := c.Do(ctx, http.MethodPost, "/users/register", nil, input, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func (c *Client) Profile(ctx context.Context) (*domain.User, error) {
	var env profileEnvelope
	if err := c.Do(ctx, http.MethodGet, "/users/profile", nil, nil, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

type UpdateProfileInput struct {
	FullName string `json:"fullName,omitempty"`
	Bio      string `json:"bio,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

func (c *Client) UpdateProfile(ctx context.Context, input UpdateProfileInput) (*domain.User, error) {
	var env profileEnvelope
	if err := c.Do(ctx, http.MethodPut, "/users/profile", nil, input, &env); err != nil {
		return nil, err
	}
	return env.User, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, updated string) error {
	return c.Do(ctx, http.MethodPut, "/users/change-password", nil,
		map[string]string{"currentPassword": current, "newPassword": updated}, nil)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.Do(ctx, http.MethodPost, "/users/forgot-password", nil,
		map[string]string{"email": email}, nil)
}

func (c *Client) VerifyOTP(ctx context.Context, email, otp string) error {
	return c.Do(ctx, http.MethodPost, "/users/verify-otp", nil,
		map[string]string{"email": email, "otp": otp}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	return c.Do(ctx, http.MethodPost, "/users/reset-password", nil,
		map[string]string{"email": email, "otp": otp, "newPassword": newPassword}, nil)
}

func (c *Client) VerifyEmail(ctx context.Context, verifyToken string) error {
	return c.Do(ctx, http.MethodPost, "/users/verify-email", nil,
		map[string]string{"token": verifyToken}, nil)
}

func (c *Client) ResendVerification(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/users/resend-verification", nil, nil, nil)
}

// Logout notifies the server. Callers treat it as fire-and-forget: local
// state is already cleared by the time this runs, and its outcome is ignored.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, http.MethodPost, "/users/logout", nil, nil, nil)
}

func (c *Client) ToggleWishlist(ctx context.Context, courseID string) error {
	return c.Do(ctx, http.MethodPost, "/users/wishlist/"+courseID, nil, nil, nil)
}
