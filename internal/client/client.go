// Package client calls a running reply server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"replyai/internal/domain"
)

// Client implements domain.ReplyGenerator over POST /api/generate-reply.
type Client struct {
	endpoint string
	http     *http.Client
	logger   *slog.Logger
}

type Config struct {
	Endpoint string        // base URL, e.g. http://127.0.0.1:5000
	Timeout  time.Duration // 0 = no client-side deadline
	Logger   *slog.Logger
}

var _ domain.ReplyGenerator = (*Client)(nil)

func New(cfg Config) *Client {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		http:     &http.Client{Timeout: cfg.Timeout},
		logger:   cfg.Logger,
	}
}

// GenerateReply posts req. Transport failures and unreadable responses wrap
// domain.ErrNetwork; non-2xx answers come back as *domain.RemoteError with the
// server's message.
func (c *Client) GenerateReply(ctx context.Context, req domain.GenerationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/generate-reply", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("reply endpoint unreachable", "request_id", requestID, "err", err)
		return "", fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	var out struct {
		Reply string `json:"reply"`
		Error string `json:"error"`
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", domain.ErrNetwork, err)
	}
	decodeErr := json.Unmarshal(data, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("reply endpoint error", "request_id", requestID, "status", resp.StatusCode, "error", out.Error)
		return "", &domain.RemoteError{StatusCode: resp.StatusCode, Message: out.Error}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode response: %w", domain.ErrNetwork, decodeErr)
	}
	return out.Reply, nil
}

// Status fetches GET /status.
func (c *Client) Status(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/status", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status endpoint returned %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return out, nil
}
