package llm

import (
	"context"
	"encoding/base64"

	"github.com/Veraticus/restaurant-ai/internal/model"
)

// Client sends chat completion requests to an inference backend.
type Client interface {
	Complete(ctx context.Context, req ChatRequest) (Completion, error)
	ListModels(ctx context.Context) ([]string, error)
}

// ChatRequest is the body of a chat completion call.
type ChatRequest struct {
	RequestID   string    `json:"-"`
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stop        []string  `json:"stop,omitempty"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// Message is a single chat message. Content is either a string or a []ContentPart.
type Message struct {
	Content any    `json:"content"`
	Role    string `json:"role"`
}

// ContentPart is one element of a multi-part message.
type ContentPart struct {
	ImageURL *ImageURL `json:"image_url,omitempty"`
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
}

// ImageURL carries an image, typically as a data URI.
type ImageURL struct {
	URL string `json:"url"`
}

// Completion is the useful part of a successful response.
type Completion struct {
	Usage   *model.Usage
	Content string
	Model   string
}

// UserText builds a plain user message.
func UserText(prompt string) Message {
	return Message{Role: "user", Content: prompt}
}

// UserImage builds a user message carrying prompt and a base64 data URI of image.
func UserImage(prompt, mimeType string, image []byte) Message {
	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: prompt},
			{Type: "image_url", ImageURL: &ImageURL{URL: DataURI(mimeType, image)}},
		},
	}
}

// DataURI encodes data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
