package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"gigstage/pkg/model"
)

// IdentityClient fetches user profiles from the external identity provider.
// The core only reads the fields it needs for trust scoring and role
// matching; the provider owns the rest.
type IdentityClient struct {
	httpClient *HttpClient
}

func NewIdentityClient(baseURL string) *IdentityClient {
	return &IdentityClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *IdentityClient) GetUser(ctx context.Context, userID string) (*model.User, error) {
	resp, err := c.httpClient.GET(ctx, "/api/v1/users/"+url.PathEscape(userID))
	if err != nil {
		return nil, fmt.Errorf("identity lookup failed: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity service returned %d: %s", resp.StatusCode, GetErrorMessage(resp))
	}

	var envelope struct {
		Data model.User `json:"data"`
	}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode user profile: %w", err)
	}

	return &envelope.Data, nil
}
