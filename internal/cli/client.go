package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/haskel/aguacate/internal/classify"
	"github.com/haskel/aguacate/internal/server"
	"github.com/haskel/aguacate/internal/server/middleware"
)

// Client talks to a running aguacate server.
type Client struct {
	baseURL  string
	http     *http.Client
	user     string
	password string
}

// APIError is a non-200 reply from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned status %d: %s", e.Status, e.Message)
}

// NewClient builds a client from the global flags.
func NewClient() *Client {
	return newClient(serverURL(), user, password)
}

func newClient(baseURL, user, password string) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: 30 * time.Second},
		user:     user,
		password: password,
	}
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (*server.StatusResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return nil, err
	}

	var st server.StatusResponse
	if err := c.do(req, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// ClassifyImage uploads an image file as the raw body of
// POST /classify/image.
func (c *Client) ClassifyImage(ctx context.Context, task classify.Task, path string) (*server.ClassifyResponse, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}

	u := c.baseURL + "/classify/image?" + url.Values{"task": {task.String()}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", http.DetectContentType(data))
	req.Header.Set("X-Filename", filepath.Base(path))

	var resp server.ClassifyResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends req and decodes a 200 reply into out. Other replies become an
// *APIError carrying the server's error message when there is one.
func (c *Client) do(req *http.Request, out any) error {
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var e middleware.ErrorResponse
		msg := string(bytes.TrimSpace(body))
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// isStatus reports whether err is an APIError with the given status.
func isStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
