package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// apiVersion is the wire version the state registries expect.
const apiVersion = "2024-01"

// HTTPClient talks to a single jurisdiction's registry over HTTPS with
// bearer-token auth. The timeout bounds the whole call; a timeout surfaces
// as an ordinary error and therefore as manual review upstream.
type HTTPClient struct {
	jurisdiction Jurisdiction
	endpoint     string
	apiKey       string
	httpc        *http.Client
}

// NewHTTPClient builds a registry client for one jurisdiction.
func NewHTTPClient(jurisdiction Jurisdiction, endpoint, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		jurisdiction: jurisdiction,
		endpoint:     endpoint,
		apiKey:       apiKey,
		httpc:        &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Verify(ctx context.Context, req VerifyRequest) (Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("marshal verify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("build verify request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("X-API-Version", apiVersion)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%s registry call: %w", c.jurisdiction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Response{}, fmt.Errorf("%s registry returned status %d", c.jurisdiction, resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Response{}, fmt.Errorf("decode %s registry response: %w", c.jurisdiction, err)
	}
	return out, nil
}
