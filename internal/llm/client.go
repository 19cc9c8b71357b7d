// Package llm talks to an OpenAI-compatible chat-completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

//go:generate mockgen -source=client.go -destination=client_mock.go -package=llm

const (
	DefaultEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel    = "llama-3.1-8b-instant"
)

// Message is one chat turn sent to the model. Role is system, user or assistant.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a single completion call.
type Request struct {
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

// Completion is the text produced by the model.
type Completion struct {
	Text  string
	Model string
}

// Completer produces a completion for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Config configures the HTTP client.
type Config struct {
	APIKey   string
	Endpoint string
	Model    string
	Timeout  time.Duration
	Retry    RetryConfig
}

// Client is the HTTP Completer.
type Client struct {
	apiKey     string
	endpoint   string
	model      string
	retry      RetryConfig
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a completion client. A missing API key is not an error
// here; Complete reports NOT_CONFIGURED so callers degrade per request.
func NewClient(cfg Config, log logrus.FieldLogger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		retry:    cfg.Retry,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log.WithField("component", "llm"),
	}
}

// IsConfigured reports whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the request, retrying transient failures.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if !c.IsConfigured() {
		return nil, &APIError{Code: ErrNotConfigured, Message: "completion API key is not configured"}
	}

	messages := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, req.Messages...)

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	attempt := 0
	return WithRetry(ctx, c.retry, func(ctx context.Context) (*Completion, error) {
		attempt++
		if attempt > 1 {
			c.log.WithField("attempt", attempt).Debug("retrying completion request")
		}
		return c.do(ctx, body)
	})
}

func (c *Client) do(ctx context.Context, body []byte) (*Completion, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, classifyHTTPError(resp.StatusCode, string(b))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &APIError{
			Code:       ErrBadResponse,
			StatusCode: resp.StatusCode,
			Message:    "decode completion response",
			Cause:      err,
		}
	}

	if len(parsed.Choices) == 0 {
		return nil, &APIError{Code: ErrEmptyResponse, StatusCode: resp.StatusCode, Message: "completion has no choices"}
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return nil, &APIError{Code: ErrEmptyResponse, StatusCode: resp.StatusCode, Message: "completion content is empty"}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return &Completion{Text: text, Model: model}, nil
}
