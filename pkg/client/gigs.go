package client

import (
	"context"
	"fmt"
	"net/url"
)

// GigsClient is the API client for the gigs service, used by integration
// tests and internal tooling. All caller-scoped requests carry the
// authenticated user id header the service trusts from its gateway.
type GigsClient struct {
	httpClient *HttpClient
	userID     string
}

func NewGigsClient(baseURL, userID string) *GigsClient {
	return &GigsClient{
		httpClient: NewHttpClient(baseURL),
		userID:     userID,
	}
}

func (c *GigsClient) headers() map[string]string {
	return map[string]string{"X-User-ID": c.userID}
}

func gigPath(id, suffix string) string {
	if suffix == "" {
		return "/api/v1/gigs/" + url.PathEscape(id)
	}
	return fmt.Sprintf("/api/v1/gigs/%s/%s", url.PathEscape(id), suffix)
}

func rolePath(id, role, action string) string {
	return fmt.Sprintf("/api/v1/gigs/%s/roles/%s/%s", url.PathEscape(id), url.PathEscape(role), action)
}

func (c *GigsClient) Create(ctx context.Context, body any) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/gigs", body, c.headers())
}

func (c *GigsClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, gigPath(id, ""))
}

func (c *GigsClient) Update(ctx context.Context, id string, body any) (*Response, error) {
	return c.httpClient.PATCHWithHeaders(ctx, gigPath(id, ""), body, c.headers())
}

func (c *GigsClient) ExpressInterest(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "interest"), nil, c.headers())
}

func (c *GigsClient) RemoveInterest(ctx context.Context, id, reason string) (*Response, error) {
	body := map[string]string{"reason": reason}
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "interest/remove"), body, c.headers())
}

func (c *GigsClient) ApplyToRole(ctx context.Context, id, role string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, rolePath(id, role, "apply"), nil, c.headers())
}

func (c *GigsClient) BookRole(ctx context.Context, id, role string, price float64) (*Response, error) {
	body := map[string]float64{"price": price}
	return c.httpClient.POSTWithHeaders(ctx, rolePath(id, role, "book"), body, c.headers())
}

func (c *GigsClient) BookRegular(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "book"), nil, c.headers())
}

func (c *GigsClient) Shortlist(ctx context.Context, id, userID string) (*Response, error) {
	body := map[string]string{"user_id": userID}
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "shortlist"), body, c.headers())
}

func (c *GigsClient) Cancel(ctx context.Context, id, cancelerType, reason string) (*Response, error) {
	body := map[string]string{"canceler_type": cancelerType, "reason": reason}
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "cancel"), body, c.headers())
}

func (c *GigsClient) Complete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "complete"), nil, c.headers())
}

func (c *GigsClient) ConfirmPayment(ctx context.Context, id, code, screenshotURL string) (*Response, error) {
	body := map[string]any{"code": code}
	if screenshotURL != "" {
		body["evidence"] = map[string]string{"screenshot_url": screenshotURL}
	}
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "payment/confirm"), body, c.headers())
}

func (c *GigsClient) FinalizePayment(ctx context.Context, id, note string) (*Response, error) {
	body := map[string]string{"note": note}
	return c.httpClient.POSTWithHeaders(ctx, gigPath(id, "payment/finalize"), body, c.headers())
}

func (c *GigsClient) CompareEvidence(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GETWithHeaders(ctx, gigPath(id, "payment/compare"), c.headers())
}

func (c *GigsClient) History(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, gigPath(id, "history"))
}

func (c *GigsClient) UserGigs(ctx context.Context, userID string) (*Response, error) {
	return c.httpClient.GETWithHeaders(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/gigs", c.headers())
}

func (c *GigsClient) UserApplications(ctx context.Context, userID string) (*Response, error) {
	return c.httpClient.GETWithHeaders(ctx, "/api/v1/users/"+url.PathEscape(userID)+"/applications", c.headers())
}
