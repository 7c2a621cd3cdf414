package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Veraticus/restaurant-ai/internal/model"
)

// DefaultTimeout applies when the configuration does not set one.
const DefaultTimeout = 60 * time.Second

// Config holds the transport settings for an OpenAI-compatible backend.
type Config struct {
	Endpoint       string // chat completions URL
	ModelsEndpoint string // model listing URL; derived from Endpoint when empty
	Timeout        time.Duration
}

// openAIClient implements Client for OpenAI-compatible servers.
type openAIClient struct {
	httpClient     *http.Client
	endpoint       string
	modelsEndpoint string
	timeout        time.Duration
}

// NewOpenAIClient creates a client for the configured endpoint.
func NewOpenAIClient(cfg Config) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("API endpoint is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	modelsEndpoint := cfg.ModelsEndpoint
	if modelsEndpoint == "" {
		modelsEndpoint = ModelsURL(cfg.Endpoint)
	}

	return &openAIClient{
		endpoint:       cfg.Endpoint,
		modelsEndpoint: modelsEndpoint,
		timeout:        timeout,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ModelsURL derives the model listing URL from a chat completions URL.
func ModelsURL(endpoint string) string {
	if trimmed, ok := strings.CutSuffix(endpoint, "/chat/completions"); ok {
		return trimmed + "/models"
	}

	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return strings.TrimRight(endpoint, "/") + "/v1/models"
	}
	u.Path = "/v1/models"
	u.RawQuery = ""
	return u.String()
}

// Complete sends one chat completion request. It never retries.
func (c *openAIClient) Complete(ctx context.Context, chatReq ChatRequest) (Completion, error) {
	jsonBody, err := json.Marshal(chatReq)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if chatReq.RequestID != "" {
		req.Header.Set("X-Request-ID", chatReq.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Completion{}, c.transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, c.transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return Completion{}, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return Completion{}, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return Completion{}, ErrNoChoices
	}

	return Completion{
		Content: response.Choices[0].Message.Content,
		Model:   response.Model,
		Usage:   response.Usage,
	}, nil
}

// ListModels returns the ids of the models the backend has loaded.
func (c *openAIClient) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelsEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportError(err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var listing modelsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("failed to parse models response: %w", err)
	}

	ids := make([]string, 0, len(listing.Data))
	for _, m := range listing.Data {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (c *openAIClient) transportError(err error) error {
	if isTimeout(err) {
		return &TimeoutError{Timeout: c.timeout, Err: err}
	}
	return fmt.Errorf("connection failed: %w", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// chatResponse represents the chat completions response structure.
type chatResponse struct {
	Usage   *model.Usage `json:"usage"`
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
		Index        int    `json:"index"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}
