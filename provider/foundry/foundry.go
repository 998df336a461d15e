package foundry_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// client implements the backend interface against a Foundry Model Router /
// Azure OpenAI-style chat-completions endpoint.
type client struct {
	endpoint   string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role     string `json:"role"`
	Content  string `json:"content"`
	ImageURL string `json:"-"`
}

// Options control deployment selection and sampling for one call.
type Options struct {
	Deployment  string
	RoutingMode string // cost | balanced | quality; empty for direct deployments
	MaxTokens   int
	Temperature float64
}

// Usage reports token consumption as returned by the backend.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is a generated answer plus call telemetry.
type Completion struct {
	Text      string
	Usage     Usage
	Model     string
	LatencyMS float64
}

// request represents a request to the chat-completions API
type request struct {
	Model       string        `json:"model,omitempty"`
	Messages    []wireMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// wireMessage carries either a plain string content or a parts array when an
// image is attached.
type wireMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageRef `json:"image_url,omitempty"`
}

type imageRef struct {
	URL string `json:"url"`
}

// response represents a response from the chat-completions API
type response struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// NewClient creates a new Foundry Model Router client
func NewClient(endpoint, apiKey, apiVersion string, timeout time.Duration) *client {
	return &client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// routerModelAlias maps a routing mode onto the router's model hint.
func routerModelAlias(mode string) string {
	switch mode {
	case "cost":
		return "cost-optimized"
	case "quality":
		return "quality-optimized"
	default:
		return "balanced"
	}
}

// Chat sends the conversation to the configured deployment and returns the
// generated text with token usage and measured latency.
func (c *client) Chat(ctx context.Context, messages []Message, opts Options) (Completion, error) {
	if opts.Deployment == "" {
		return Completion{}, fmt.Errorf("deployment is required")
	}

	body := request{
		Messages:    toWire(messages),
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.RoutingMode != "" {
		body.Model = routerModelAlias(opts.RoutingMode)
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, url.PathEscape(opts.Deployment), url.QueryEscape(c.apiVersion))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return Completion{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return Completion{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Completion{}, fmt.Errorf("backend returned status: %d", resp.StatusCode)
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Completion{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(out.Choices) == 0 {
		return Completion{}, fmt.Errorf("backend returned no choices")
	}

	model := out.Model
	if model == "" {
		model = opts.Deployment
	}
	return Completion{
		Text:      out.Choices[0].Message.Content,
		Usage:     out.Usage,
		Model:     model,
		LatencyMS: latency,
	}, nil
}

func toWire(messages []Message) []wireMessage {
	out := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		if m.ImageURL == "" {
			out = append(out, wireMessage{Role: m.Role, Content: m.Content})
			continue
		}
		out = append(out, wireMessage{Role: m.Role, Content: []contentPart{
			{Type: "text", Text: m.Content},
			{Type: "image_url", ImageURL: &imageRef{URL: m.ImageURL}},
		}})
	}
	return out
}
