// Package vision extracts product label fields from a photo through an
// OpenAI-compatible chat-completions gateway.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://ai.gateway.lovable.dev/v1"
	defaultModel                = "google/gemini-2.5-flash"
	defaultMaxTokens            = 1000
	requestBodyReadLimit  int64 = 1024
	responseBodyReadLimit int64 = 1 << 20
)

var errAPIKeyRequired = errors.New("vision api key is required")

const systemPrompt = `You extract product information from photos of product packaging.
Return a single JSON object with exactly these keys:
{
  "productName": string or null,
  "brand": string or null,
  "gtin": string or null,
  "expiryDate": "YYYY-MM-DD" or null,
  "batchCode": string or null,
  "mrp": number or null,
  "quantity": number or null,
  "manufacturingDate": "YYYY-MM-DD" or null,
  "confidence": {"productName": 0-1, "expiryDate": 0-1, "overall": 0-1}
}
Set any field you cannot read to null.`

// Client talks to the chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the gateway base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithModel overrides the model name sent with each request.
func WithModel(model string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(model); trimmed != "" {
			c.model = trimmed
		}
	}
}

// WithTimeout sets the HTTP timeout on the default client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 && c.httpClient != nil {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a vision client given the gateway API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Confidence carries the model's self-reported certainty per field.
type Confidence struct {
	ProductName *float64 `json:"productName"`
	ExpiryDate  *float64 `json:"expiryDate"`
	Overall     *float64 `json:"overall"`
}

// Extraction is the raw, unvalidated label read-out.
type Extraction struct {
	ProductName       *string    `json:"productName"`
	Brand             *string    `json:"brand"`
	GTIN              *string    `json:"gtin"`
	ExpiryDate        *string    `json:"expiryDate"`
	BatchCode         *string    `json:"batchCode"`
	MRP               *Number    `json:"mrp"`
	Quantity          *Number    `json:"quantity"`
	ManufacturingDate *string    `json:"manufacturingDate"`
	Confidence        Confidence `json:"confidence"`
}

// Number accepts a JSON number or a numeric string; models emit both.
type Number string

func (n *Number) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("not a number: %q", raw)
	}
	*n = Number(raw)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n), nil
}

func (n Number) String() string { return string(n) }

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// Extract sends a base64 JPEG to the model and parses its JSON answer.
func (c *Client) Extract(ctx context.Context, imageBase64 string) (*Extraction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vision client not configured")
	}
	image := strings.TrimSpace(imageBase64)
	if image == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image is required")
	}
	if !strings.HasPrefix(image, "data:") {
		image = "data:image/jpeg;base64," + image
	}

	payload, err := json.Marshal(chatRequest{
		Model:     c.model,
		MaxTokens: defaultMaxTokens,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: []contentPart{
				{Type: "text", Text: "Extract product information from this image:"},
				{Type: "image_url", ImageURL: &imageURL{URL: image}},
			}},
		},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal vision request")
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build vision request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute vision request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, pkgerrors.Wrap(pkgerrors.CodeRateLimit, cause, "vision rate limit exceeded, try again later")
		case http.StatusPaymentRequired:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "vision credits exhausted")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "vision request failed")
		}
	}

	var apiResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, responseBodyReadLimit)).Decode(&apiResp); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode vision response")
	}
	if len(apiResp.Choices) == 0 || strings.TrimSpace(apiResp.Choices[0].Message.Content) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "vision response was empty")
	}

	return ParseContent(apiResp.Choices[0].Message.Content)
}

// ParseContent decodes the model's answer, unwrapping a markdown code fence
// when present.
func ParseContent(content string) (*Extraction, error) {
	body := unfence(content)
	var out Extraction
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "vision response is not valid json")
	}
	return &out, nil
}

func unfence(content string) string {
	s := strings.TrimSpace(content)
	if _, after, ok := strings.Cut(s, "```json"); ok {
		s = after
	} else if _, after, ok := strings.Cut(s, "```"); ok {
		s = after
	} else {
		return s
	}
	if before, _, ok := strings.Cut(s, "```"); ok {
		s = before
	}
	return strings.TrimSpace(s)
}
