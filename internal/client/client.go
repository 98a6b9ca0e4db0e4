// Package client talks to a running chatdesk daemon over its HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harunnryd/chatdesk/internal/desk"
	chatdeskErrors "github.com/harunnryd/chatdesk/internal/errors"
	"github.com/harunnryd/chatdesk/internal/httpapi"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateChat requests a new session. A rejection is a normal answer and is
// not returned as an error.
func (c *Client) CreateChat(ctx context.Context) (*httpapi.CreateChatResponse, error) {
	var out httpapi.CreateChatResponse
	if err := c.do(ctx, http.MethodPost, "/chats", &out, http.StatusTooManyRequests); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}
	return &out, nil
}

func (c *Client) GetChat(ctx context.Context, id uuid.UUID) (*httpapi.ChatResponse, error) {
	var out httpapi.ChatResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+id.String(), &out); err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return &out, nil
}

func (c *Client) PollChat(ctx context.Context, id uuid.UUID) (*httpapi.PollResponse, error) {
	var out httpapi.PollResponse
	if err := c.do(ctx, http.MethodGet, "/chats/"+id.String()+"/poll", &out); err != nil {
		return nil, fmt.Errorf("poll chat: %w", err)
	}
	return &out, nil
}

func (c *Client) Agents(ctx context.Context) ([]httpapi.AgentResponse, error) {
	var out []httpapi.AgentResponse
	if err := c.do(ctx, http.MethodGet, "/agents", &out); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return out, nil
}

func (c *Client) Stats(ctx context.Context) (*desk.Stats, error) {
	var out desk.Stats
	if err := c.do(ctx, http.MethodGet, "/stats", &out); err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return &out, nil
}

// Health returns the daemon's report. An unhealthy daemon answers 503 with a
// body, which is still decoded.
func (c *Client) Health(ctx context.Context) (*httpapi.HealthReport, error) {
	var out httpapi.HealthReport
	if err := c.do(ctx, http.MethodGet, "/health", &out, http.StatusServiceUnavailable); err != nil {
		return nil, fmt.Errorf("health: %w", err)
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, out any, accept ...int) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest && !accepted(resp.StatusCode, accept) {
		return statusError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func accepted(code int, accept []int) bool {
	for _, a := range accept {
		if a == code {
			return true
		}
	}
	return false
}

// statusError maps an error response back into the taxonomy.
func statusError(code int, body []byte) error {
	var e struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &e) == nil && e.Error != "" {
		msg = e.Error
	}

	switch code {
	case http.StatusNotFound:
		return chatdeskErrors.NotFound(msg)
	case http.StatusBadRequest:
		return chatdeskErrors.InvalidInput(msg)
	case http.StatusConflict:
		return chatdeskErrors.Conflict(msg)
	case http.StatusServiceUnavailable:
		return fmt.Errorf("%s: %w", msg, chatdeskErrors.ErrStopped)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, msg)
	}
}
