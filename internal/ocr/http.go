package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// country is fixed: all supported documents are Australian.
const country = "AU"

// HTTPExtractor calls the extraction service over HTTPS with bearer auth.
type HTTPExtractor struct {
	endpoint string
	apiKey   string
	httpc    *http.Client
}

// NewHTTPExtractor builds an extraction client.
func NewHTTPExtractor(endpoint, apiKey string, timeout time.Duration) *HTTPExtractor {
	return &HTTPExtractor{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpc:    &http.Client{Timeout: timeout},
	}
}

type extractRequest struct {
	DocumentURL  string `json:"documentUrl"`
	DocumentType string `json:"documentType"`
	Country      string `json:"country"`
}

type extractResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Extraction
}

func (e *HTTPExtractor) Extract(ctx context.Context, documentURL string, documentType DocumentType) (Extraction, error) {
	body, err := json.Marshal(extractRequest{
		DocumentURL:  documentURL,
		DocumentType: string(documentType),
		Country:      country,
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("marshal extract request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return Extraction{}, fmt.Errorf("build extract request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpc.Do(httpReq)
	if err != nil {
		return Extraction{}, fmt.Errorf("extraction service call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Extraction{}, fmt.Errorf("extraction service returned status %d", resp.StatusCode)
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Extraction{}, fmt.Errorf("decode extraction response: %w", err)
	}
	if !out.Success {
		return Extraction{}, fmt.Errorf("extraction failed: %s", out.Error)
	}
	return out.Extraction, nil
}
