package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Failure classes. Callers map these onto stable candidate error states, so
// the distinctions matter more than the messages.
var (
	ErrTimeout           = errors.New("ai request timed out")
	ErrHTTP              = errors.New("ai request failed")
	ErrEmptyResponse     = errors.New("ai returned no content")
	ErrMalformedResponse = errors.New("ai returned malformed json")
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL, apiKey, model string, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		logger: logger,
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompleteJSON sends one system+user exchange and unmarshals the reply into
// dest. The request carries its own deadline; a slow model yields ErrTimeout
// rather than hanging the pipeline.
func (c *Client) CompleteJSON(ctx context.Context, system, user string, dest interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature:    0.2,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("ai request timed out",
				zap.Duration("timeout", c.timeout),
			)
			return ErrTimeout
		}
		return fmt.Errorf("%w: %v", ErrHTTP, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrHTTP, err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("ai request bad status",
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)),
		)
		return fmt.Errorf("%w: status %d", ErrHTTP, resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return ErrEmptyResponse
	}

	content := StripFences(parsed.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), dest); err != nil {
		c.logger.Warn("ai content not valid json",
			zap.String("head", head(content, 120)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	c.logger.Debug("ai request completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("content_bytes", len(content)),
	)

	return nil
}

// StripFences removes a markdown code fence wrapper some models insist on
// adding around JSON output.
func StripFences(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```json")
		t = strings.TrimPrefix(t, "```")
		t = strings.TrimSuffix(strings.TrimSpace(t), "```")
		t = strings.TrimSpace(t)
	}
	return t
}

func head(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
