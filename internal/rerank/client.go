package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Client posts rerank payloads to an external HTTP endpoint. A nil or
// endpoint-less client is a no-op.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a rerank client. An empty endpoint disables reranking.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Rerank posts the payload and returns the raw JSON response. Network and
// decode failures degrade to nil so a flaky reranker never blocks a batch;
// the failure is logged at warn level.
func (c *Client) Rerank(ctx context.Context, payload map[string]any) json.RawMessage {
	if !c.Enabled() {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Msg("rerank payload marshal failed")
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		log.Warn().Err(err).Msg("rerank request build failed")
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("rerank request failed")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("rerank request rejected")
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn().Err(err).Msg("rerank response read failed")
		return nil
	}
	if len(data) == 0 {
		return json.RawMessage("{}")
	}
	if !json.Valid(data) {
		log.Warn().Int("bytes", len(data)).Msg("rerank response is not valid JSON")
		return nil
	}
	return json.RawMessage(data)
}
