package openrouter

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"autoinvoice/internal/domain"
	"autoinvoice/internal/extractor"
)

const (
	defaultEndpoint = "https://openrouter.ai/api/v1/chat/completions"
	defaultTimeout  = 120 * time.Second
)

// Client extracts invoice fields from page images via the OpenRouter
// chat-completions API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	endpoint   string
	model      string
}

// New creates an OpenRouter client using the default API endpoint.
func New(apiKey, model string, timeout time.Duration) *Client {
	return NewWithEndpoint(apiKey, model, defaultEndpoint, timeout)
}

// NewWithEndpoint creates a client against a custom endpoint. Tests use
// this to point the client at a local httptest server. A non-positive
// timeout falls back to the default.
func NewWithEndpoint(apiKey, model, endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     apiKey,
		endpoint:   endpoint,
		model:      model,
	}
}

// Model returns the model identifier requests are sent with.
func (c *Client) Model() string {
	return c.model
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ExtractPage sends one page image to the model and parses the reply into
// invoice fields. All failures are reported inside the returned value so a
// bad page never aborts the rest of the document.
func (c *Client) ExtractPage(ctx context.Context, page domain.Page) domain.PageExtraction {
	result := domain.PageExtraction{
		Model:       c.model,
		PageContext: page.Context,
	}
	if c.apiKey == "" {
		result.Err = "extractor not configured"
		result.ErrDetail = domain.ErrExtractorNotConfigured.Error()
		return result
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", page.MimeType, base64.StdEncoding.EncodeToString(page.Data))
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: extractor.BuildPrompt(page.Context)},
					{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		result.Err = "failed to encode extraction request"
		result.ErrDetail = err.Error()
		return result
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		result.Err = "failed to build extraction request"
		result.ErrDetail = err.Error()
		return result
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Err = "extraction request failed"
		result.ErrDetail = err.Error()
		return result
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		result.Err = "failed to read extraction response"
		result.ErrDetail = err.Error()
		return result
	}
	if resp.StatusCode != http.StatusOK {
		result.Err = fmt.Sprintf("extraction API returned status %d", resp.StatusCode)
		result.ErrDetail = string(body)
		return result
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		result.Err = "failed to decode extraction response"
		result.ErrDetail = err.Error()
		return result
	}
	if parsed.Error != nil {
		result.Err = "extraction API returned an error"
		result.ErrDetail = parsed.Error.Message
		return result
	}
	if len(parsed.Choices) == 0 {
		result.Err = "extraction response contained no choices"
		return result
	}

	reply := parsed.Choices[0].Message.Content
	result.RawReply = reply

	fields, err := extractor.ParseFields(reply)
	if err != nil {
		result.Err = "model reply was not valid JSON"
		result.ErrDetail = err.Error()
		return result
	}
	result.InvoiceFields = fields
	return result
}
