// Package caption — vision-model captioner.
// The underlying model client is expensive to set up, so the process keeps
// a single shared instance behind a sync.Once guard; concurrent pipeline
// runs must never double-initialize it.
package caption

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	openai "github.com/sashabaranov/go-openai"
)

const captionPrompt = "Describe this image in one short phrase suitable as HTML alt text. " +
	"No leading articles, no quotes, under ten words."

// bannedPrefixes are filler openings the model tends to produce; they add
// nothing to alt text.
var bannedPrefixes = []string{
	"a picture of ",
	"an image of ",
	"a photo of ",
	"this is ",
	"there is ",
	"here is ",
}

// ModelCaptioner captions image URLs through a vision chat model.
type ModelCaptioner struct {
	client *openai.Client
	model  string
	logger hclog.Logger
}

var (
	sharedOnce sync.Once
	shared     *ModelCaptioner
	sharedErr  error
)

// Shared returns the process-wide captioner, initializing it on first use.
func Shared(logger hclog.Logger) (*ModelCaptioner, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = New(logger)
	})
	return shared, sharedErr
}

// New creates a ModelCaptioner from OPENAI_API_KEY / CAPTION_MODEL.
func New(logger hclog.Logger) (*ModelCaptioner, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	model := os.Getenv("CAPTION_MODEL")
	if model == "" {
		model = openai.GPT4oMini
	}
	logger.Info("initializing captioner", "model", model)
	return &ModelCaptioner{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Caption asks the model for a short caption of the image at the URL.
// Callers bound the call with a context deadline; failures are theirs to
// turn into a fallback.
func (c *ModelCaptioner) Caption(ctx context.Context, imageURL string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("caption request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("caption model returned no choices")
	}
	return Clean(resp.Choices[0].Message.Content), nil
}

// Clean normalizes model output for use as alt text: filler prefixes
// stripped, first letter capitalized, quotes removed.
func Clean(caption string) string {
	caption = strings.TrimSpace(caption)
	caption = strings.Trim(caption, `"'`)

	lower := strings.ToLower(caption)
	for _, prefix := range bannedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			caption = caption[len(prefix):]
			break
		}
	}

	if caption == "" {
		return caption
	}
	return strings.ToUpper(caption[:1]) + caption[1:]
}
