package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultBaseURL = "https://graph.facebook.com"

// UpstreamError carries the vendor's own message so operators can see
// exactly what the Graph API complained about.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("graph api error (status %d): %s", e.StatusCode, e.Message)
}

// Client issues versioned Graph API requests. It is constructed explicitly
// and passed around so tests can point it at a fake server.
type Client struct {
	BaseURL    string
	Version    string
	HTTPClient *http.Client
}

func NewClient(version string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		Version:    version,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.BaseURL, "/"), c.Version, strings.TrimLeft(path, "/"))
}

// PostForm sends a form-encoded POST and returns the id of the created
// object. Every publishing call in the Graph API answers with {"id": ...}.
func (c *Client) PostForm(ctx context.Context, path string, params url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), strings.NewReader(params.Encode()))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &result); err != nil {
		return "", err
	}

	if result.ID == "" {
		return "", &UpstreamError{StatusCode: http.StatusOK, Message: "no id returned"}
	}

	return result.ID, nil
}

// Get issues a GET with the given query parameters and decodes the
// response into out.
func (c *Client) Get(ctx context.Context, path string, params url.Values, out interface{}) error {
	reqURL := c.endpoint(path)
	if len(params) > 0 {
		reqURL = reqURL + "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}

	if upErr := decodeError(resp.StatusCode, body); upErr != nil {
		slog.Info(upErr.Error())
		return upErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error parsing response: %w", err)
	}
	return nil
}

// decodeError turns a non-2xx status or an embedded {"error": ...} object
// into an UpstreamError. The vendor sometimes returns 200 with an error
// payload, so both are checked.
func decodeError(status int, body []byte) *UpstreamError {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    int    `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		return &UpstreamError{StatusCode: status, Message: envelope.Error.Message}
	}

	if status < 200 || status > 299 {
		return &UpstreamError{StatusCode: status, Message: strings.TrimSpace(string(body))}
	}

	return nil
}
