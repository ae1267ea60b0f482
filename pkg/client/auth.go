package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Auth API routes.
const (
	CheckUserRoute      = "/auth/check-user"
	RefreshRoute        = "/auth/refresh"
	SignInRoute         = "/auth/sign-in"
	SignUpRoute         = "/auth/sign-up"
	SignOutRoute        = "/auth/sign-out"
	ChangePasswordRoute = "/auth/change-password"
)

// CheckUserExists asks the server whether any account has been
// registered at all. A fresh installation answers false, which steers
// the operator to the first-run registration flow.
func (c *Client) CheckUserExists(ctx context.Context) (bool, error) {
	data, err := c.Call(ctx, CheckUserRoute, CallOptions{})
	if err != nil {
		return false, err
	}
	var result struct {
		Exists bool `json:"exists"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return false, fmt.Errorf("decoding check-user response: %w", err)
	}
	return result.Exists, nil
}

// RefreshToken exchanges the given still-valid token for a fresh one.
// The token is passed explicitly rather than read from the store, so a
// background refresh operates on the exact credential that triggered it.
func (c *Client) RefreshToken(ctx context.Context, current string) (string, error) {
	data, err := c.Call(ctx, RefreshRoute, CallOptions{
		Method: http.MethodPost,
		Headers: map[string]string{
			"Authorization": "Bearer " + current,
		},
	})
	if err != nil {
		return "", err
	}
	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("decoding refresh response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("refresh response carries no token")
	}
	return result.Token, nil
}

// SignInResult is the payload of a successful sign-in.
type SignInResult struct {
	Username  string `json:"username"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	data, err := c.Call(ctx, SignInRoute, CallOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	if err != nil {
		return nil, err
	}
	var result SignInResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decoding sign-in response: %w", err)
	}
	return &result, nil
}

func (c *Client) SignUp(ctx context.Context, username, password string) error {
	_, err := c.Call(ctx, SignUpRoute, CallOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"username": username,
			"password": password,
		},
	})
	return err
}

func (c *Client) SignOut(ctx context.Context) error {
	_, err := c.AuthenticatedCall(ctx, SignOutRoute, CallOptions{
		Method: http.MethodPost,
	})
	return err
}

func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	_, err := c.AuthenticatedCall(ctx, ChangePasswordRoute, CallOptions{
		Method: http.MethodPost,
		Body: map[string]string{
			"oldPassword": oldPassword,
			"newPassword": newPassword,
		},
	})
	return err
}
