package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenFunc returns the current session token, or "" when there is none.
// It is called once per request so a re-login is picked up immediately.
type TokenFunc func() string

// Client is a thin HTTP client for the RDQ notification REST API.
// It handles Bearer token authentication and JSON (de)serialization.
// There are no retries and no timeout beyond the http.Client defaults.
type Client struct {
	baseURL    string
	token      TokenFunc
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new API client. The baseURL should be the root URL
// of the API host (e.g., http://localhost:8080). A nil httpClient uses
// http.DefaultClient.
func NewClient(
	baseURL string,
	token TokenFunc,
	httpClient *http.Client,
	logger *zap.Logger,
) *Client {
	if token == nil {
		token = func() string { return "" }
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Get performs an HTTP GET request and unmarshals the JSON response.
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Put performs an HTTP PUT request with an optional JSON body and
// unmarshals the JSON response.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Delete performs an HTTP DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do builds the request, attaches auth, and decodes the response.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	result any,
) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()

	// An absent token still sends the header, with an empty value.
	auth := ""
	if token := c.token(); token != "" {
		auth = "Bearer " + token
	}
	req.Header.Set("Authorization", auth)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("request failed", zap.Error(err))
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	log.Debug("response", zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    messageFromBody(resp.StatusCode, respBody),
			Method:     method,
			Path:       path,
		}
	}

	// No content to parse (e.g. 204).
	if result == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}

	return nil
}
