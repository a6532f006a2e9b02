package assistant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"context"
)

// Client is a thin HTTP client for the remote assistant service. The service
// exposes threads, per-thread messages and asynchronous runs; the client
// depends only on that operation set, not on any vendor SDK.
type Client struct {
	baseURL    string
	apiKey     string
	agentID    string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, agentID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		agentID:    agentID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateThread creates a fresh remote thread and returns its id.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/threads", map[string]interface{}{}, &resp); err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create thread: empty thread id in response")
	}
	return resp.ID, nil
}

// GetThread checks that a thread still exists on the remote side.
func (c *Client) GetThread(ctx context.Context, threadID string) error {
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID, nil, nil); err != nil {
		return fmt.Errorf("get thread %s: %w", threadID, err)
	}
	return nil
}

// CreateMessage appends one role-tagged message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID, role, text string) error {
	body := map[string]interface{}{"role": role, "content": text}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/messages", body, nil); err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// CreateRun starts an asynchronous run of the configured agent against the
// thread's current messages.
func (c *Client) CreateRun(ctx context.Context, threadID string) (string, error) {
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]interface{}{"assistant_id": c.agentID}
	if err := c.do(ctx, http.MethodPost, "/threads/"+threadID+"/runs", body, &resp); err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create run: empty run id in response")
	}
	return resp.ID, nil
}

// GetRun fetches the current status of a run.
func (c *Client) GetRun(ctx context.Context, threadID, runID string) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/threads/"+threadID+"/runs/"+runID, nil, &resp); err != nil {
		return "", fmt.Errorf("get run: %w", err)
	}
	return resp.Status, nil
}

// ListMessages returns the thread's messages, newest first when order is
// "desc".
func (c *Client) ListMessages(ctx context.Context, threadID, order string) ([]ThreadMessage, error) {
	var resp struct {
		Data []ThreadMessage `json:"data"`
	}
	path := "/threads/" + threadID + "/messages"
	if order != "" {
		path += "?order=" + order
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return resp.Data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
