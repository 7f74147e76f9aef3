package dummyjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"

	"doit/internal/service"
)

// SessionLifetime is the token lifetime requested at login.
const SessionLifetime = 60 * time.Minute

type loginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins"`
}

type loginResponse struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login exchanges credentials for a session token.
func Login(ctx context.Context, httpClient *http.Client, baseURL, username, password string) (*oauth2.Token, error) {
	c := NewWithHTTPClient(baseURL, httpClient)

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Username:      username,
		Password:      password,
		ExpiresInMins: int(SessionLifetime / time.Minute),
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, errors.New("login response has no access token")
	}

	return &oauth2.Token{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(SessionLifetime),
	}, nil
}

// LoadToken reads a stored token.
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, service.ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("invalid token.json: %w", service.ErrNotLoggedIn)
	}
	return &token, nil
}

// SaveToken saves a token to a file with mode 0600.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
