package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/tsuri/internal/domain/types"
	"github.com/okian/tsuri/pkg/logger"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

// NewHTTPClient creates a new HTTP client with timeout
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

// errorBody is the service error shape.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// StatusError is a non-200 answer.
type StatusError struct {
	Status int
	Code   string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d %s: %s", e.Status, e.Code, e.Body)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// get performs a GET request and decodes a 200 JSON body into out.
func (c *HTTPClient) get(ctx context.Context, path string, query url.Values, requestID string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(ctx, "failed to close response body", logger.Error(err))
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != StatusOK {
		se := &StatusError{Status: resp.StatusCode, Body: string(body)}
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			se.Code, se.Body = eb.Code, eb.Message
		}
		return se
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Health checks /healthz.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil, "", nil)
}

// Rank calls /rank with the parameters of r.
func (c *HTTPClient) Rank(ctx context.Context, r Request) (types.RankResponse, error) {
	q := url.Values{}
	if r.Tab != "" {
		q.Set("tab", r.Tab)
	}
	if r.Region != "" {
		q.Set("region", r.Region)
	}
	if r.NearMe {
		q.Set("near", "1")
		q.Set("lat", strconv.FormatFloat(r.Lat, 'f', 6, 64))
		q.Set("lng", strconv.FormatFloat(r.Lng, 'f', 6, 64))
	}
	var res types.RankResponse
	err := c.get(ctx, "/rank", q, r.ID, &res)
	return res, err
}

// Search calls /search?q=.
func (c *HTTPClient) Search(ctx context.Context, query, requestID string) (types.SearchResponse, error) {
	var res types.SearchResponse
	err := c.get(ctx, "/search", url.Values{"q": {query}}, requestID, &res)
	return res, err
}

// Stats calls /stats.
func (c *HTTPClient) Stats(ctx context.Context) (types.Stats, error) {
	var st types.Stats
	err := c.get(ctx, "/stats", nil, "", &st)
	return st, err
}
