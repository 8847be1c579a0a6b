package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client talks to a running watch session's control API. The one-shot CLI
// commands are built on it.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API at baseURL, e.g.
// "http://127.0.0.1:5000".
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Status fetches the session summary.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.get(ctx, "/api/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StartTracking begins watching the source directory.
func (c *Client) StartTracking(ctx context.Context) (string, error) {
	var out MessageResponse
	if err := c.send(ctx, http.MethodPost, "/api/tracking/start", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// StopTracking stops the watcher; the tracked list survives.
func (c *Client) StopTracking(ctx context.Context) (string, error) {
	var out MessageResponse
	if err := c.send(ctx, http.MethodPost, "/api/tracking/stop", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Tracked lists the newest count tracked files with planned names and
// conflict states.
func (c *Client) Tracked(ctx context.Context, count int) (*TrackingResponse, error) {
	path := "/api/tracking"
	if count > 0 {
		path += "?count=" + strconv.Itoa(count)
	}
	var out TrackingResponse
	if err := c.get(ctx, path, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearTracked empties the tracked list without copying anything.
func (c *Client) ClearTracked(ctx context.Context) (string, error) {
	var out MessageResponse
	if err := c.send(ctx, http.MethodDelete, "/api/tracking", nil, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// CopyRename runs a copy pass. policy preselects the collision answer;
// empty means cancel on collisions.
func (c *Client) CopyRename(ctx context.Context, policy string, allowMissingTags bool) (*CopyResponse, error) {
	body := copyRenameRequest{Policy: policy, AllowMissingTags: allowMissingTags}
	var out CopyResponse
	if err := c.send(ctx, http.MethodPost, "/api/copy_rename", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SourcePath fetches the source directory.
func (c *Client) SourcePath(ctx context.Context) (string, error) {
	var out PathResponse
	if err := c.get(ctx, "/api/source_path", &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// SetSourcePath updates the source directory.
func (c *Client) SetSourcePath(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodPost, "/api/source_path", pathRequest{Path: &path}, nil)
}

// DestinationPath fetches the destination directory.
func (c *Client) DestinationPath(ctx context.Context) (string, error) {
	var out PathResponse
	if err := c.get(ctx, "/api/destination_path", &out); err != nil {
		return "", err
	}
	return out.Path, nil
}

// SetDestinationPath updates the destination directory.
func (c *Client) SetDestinationPath(ctx context.Context, path string) error {
	return c.send(ctx, http.MethodPost, "/api/destination_path", pathRequest{Path: &path}, nil)
}

// NamePattern fetches the naming pattern.
func (c *Client) NamePattern(ctx context.Context) (string, error) {
	var out PatternResponse
	if err := c.get(ctx, "/api/name_pattern", &out); err != nil {
		return "", err
	}
	return out.Pattern, nil
}

// SetNamePattern updates the naming pattern.
func (c *Client) SetNamePattern(ctx context.Context, pattern string) error {
	return c.send(ctx, http.MethodPost, "/api/name_pattern", patternRequest{Pattern: &pattern}, nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

// do sends the request and decodes the response, surfacing the API's error
// string on non-200 statuses.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("contact control API: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s", apiErr.Error)
		}
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
