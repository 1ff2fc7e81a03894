// esports-arena/services/auth_service_client.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AuthServiceClient talks to the external identity provider. The provider owns
// credentials and tokens; this service only ever sees opaque bearer tokens and
// the user id they map to.
type AuthServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type verifyTokenResponse struct {
	UserID string `json:"user_id"`
}

type createAccountResponse struct {
	UserID string `json:"user_id"`
}

func NewAuthServiceClient(baseURL, token string) *AuthServiceClient {
	return &AuthServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// VerifyToken resolves an access token to its user id via /auth/verify.
func (c *AuthServiceClient) VerifyToken(ctx context.Context, accessToken string) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"access_token": accessToken,
	})
	out, err := c.post(ctx, "/auth/verify", body)
	if err != nil {
		return "", err
	}
	var resp verifyTokenResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("auth service returned empty user_id")
	}
	return resp.UserID, nil
}

// CreateAccount provisions an account with the identity provider and returns
// the new user id. Metadata is stored provider-side alongside the account.
func (c *AuthServiceClient) CreateAccount(ctx context.Context, email, password string, metadata map[string]interface{}) (string, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"email":    email,
		"password": password,
		"metadata": metadata,
	})
	out, err := c.post(ctx, "/auth/accounts", body)
	if err != nil {
		return "", err
	}
	var resp createAccountResponse
	if err := json.Unmarshal(out, &resp); err != nil {
		return "", err
	}
	if resp.UserID == "" {
		return "", fmt.Errorf("auth service returned empty user_id")
	}
	return resp.UserID, nil
}

func (c *AuthServiceClient) post(ctx context.Context, path string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("AuthService %s returned %d: %s", path, resp.StatusCode, string(out))
		return nil, fmt.Errorf("auth service %s failed: %d", path, resp.StatusCode)
	}
	return out, nil
}
