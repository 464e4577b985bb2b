package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"resume-generator/internal/llm"
	"resume-generator/internal/shared/telemetry"
)

const (
	defaultModel   = "gemini-2.0-flash"
	defaultTimeout = 2 * time.Minute
)

// contentGenerator is the subset of genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client talks to the Gemini API. One instance is built at startup and shared.
type Client struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// Options tune a Client.
type Options struct {
	Model   string
	Timeout time.Duration
}

// New creates a Client configured for the Gemini API backend.
func New(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, opts), nil
}

func newClient(models contentGenerator, opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{models: models, model: model, timeout: timeout}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends a text-only prompt.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}
	contents := []*genai.Content{{
		Role:  genai.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}
	return c.generate(ctx, "text", contents)
}

// ReadImage sends an instruction followed by one inline image.
func (c *Client) ReadImage(ctx context.Context, instruction string, img llm.Image) (string, error) {
	if len(img.Data) == 0 {
		return "", errors.New("image must not be empty")
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{Text: instruction},
			{InlineData: &genai.Blob{Data: img.Data, MIMEType: img.MIMEType}},
		},
	}}
	return c.generate(ctx, "vision", contents)
}

func (c *Client) generate(ctx context.Context, kind string, contents []*genai.Content) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
	fields := map[string]any{
		"model":       c.model,
		"kind":        kind,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err
		telemetry.Error("gemini.generate_failed", fields)
		return "", fmt.Errorf("generate content: %w", err)
	}

	output := responseText(resp)
	fields["output_chars"] = len(output)
	telemetry.Info("gemini.generate", fields)
	if output == "" {
		return "", llm.ErrEmptyResponse
	}
	return output, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			builder.WriteString(part.Text)
		}
		// first candidate with content wins
		if builder.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(builder.String())
}

var _ llm.Model = (*Client)(nil)
