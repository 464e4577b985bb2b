package llm

import (
	"context"
	"errors"
)

// Image is an inline image sent to a vision-capable model.
type Image struct {
	Data     []byte
	MIMEType string
}

// TextGenerator runs a single text-only prompt and returns the model reply.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// VisionReader sends an instruction plus one image and returns the model reply.
type VisionReader interface {
	ReadImage(ctx context.Context, instruction string, img Image) (string, error)
}

// Model is a provider that can do both.
type Model interface {
	TextGenerator
	VisionReader
}

var (
	// ErrNotConfigured is returned by the placeholder client.
	ErrNotConfigured = errors.New("model not configured")
	// ErrEmptyResponse is returned when the provider replies without text.
	ErrEmptyResponse = errors.New("model returned empty response")
)

// PlaceholderClient stands in when no API key is configured.
type PlaceholderClient struct{}

// GenerateText returns ErrNotConfigured.
func (PlaceholderClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	return "", ErrNotConfigured
}

// ReadImage returns ErrNotConfigured.
func (PlaceholderClient) ReadImage(ctx context.Context, instruction string, img Image) (string, error) {
	return "", ErrNotConfigured
}

var _ Model = PlaceholderClient{}
