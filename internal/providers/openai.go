package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/models"
)

const optimizerModel = "gpt-4o-mini"

// OpenAIClient covers the two OpenAI surfaces the portal uses: chat
// completions for the prompt optimizer and gpt-image-1 for image generation.
type OpenAIClient struct {
	client     openai.Client
	configured bool
	logger     *logging.Logger
}

// NewOpenAIClient creates a client. Extra options are for tests pointing at
// a stub server.
func NewOpenAIClient(apiKey string, logger *logging.Logger, opts ...option.RequestOption) *OpenAIClient {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAIClient{
		client:     openai.NewClient(all...),
		configured: apiKey != "",
		logger:     logger,
	}
}

// Optimize runs one chat completion and returns the trimmed reply
func (c *OpenAIClient) Optimize(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.configured {
		return "", ErrNotConfigured
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: optimizerModel,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String(systemPrompt),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(userPrompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(1500),
	})
	if err != nil {
		return "", translateOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from openai")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response from openai")
	}
	return text, nil
}

// GenerateImage produces one PNG via gpt-image-1. Size and quality strings
// come straight from the request; unknown values fall back to the defaults.
func (c *OpenAIClient) GenerateImage(ctx context.Context, prompt, size, quality string) (*models.GeneratedImage, error) {
	if !c.configured {
		return nil, ErrNotConfigured
	}

	resp, err := c.client.Images.Generate(ctx, openai.ImageGenerateParams{
		Model:        openai.ImageModelGPTImage1,
		Prompt:       prompt,
		N:            openai.Int(1),
		Size:         imageSize(size),
		Quality:      imageQuality(quality),
		OutputFormat: openai.ImageGenerateParamsOutputFormatPNG,
	})
	if err != nil {
		return nil, translateOpenAIError(err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, errors.New("no image generated")
	}

	return &models.GeneratedImage{
		Data:     resp.Data[0].B64JSON,
		MimeType: "image/png",
	}, nil
}

func imageSize(size string) openai.ImageGenerateParamsSize {
	switch size {
	case "1536x1024":
		return openai.ImageGenerateParamsSize1536x1024
	case "1024x1536":
		return openai.ImageGenerateParamsSize1024x1536
	default:
		return openai.ImageGenerateParamsSize1024x1024
	}
}

func imageQuality(quality string) openai.ImageGenerateParamsQuality {
	switch quality {
	case "low":
		return openai.ImageGenerateParamsQualityLow
	case "high":
		return openai.ImageGenerateParamsQualityHigh
	default:
		return openai.ImageGenerateParamsQualityMedium
	}
}

// translateOpenAIError maps SDK errors onto the shared provider error types
func translateOpenAIError(err error) error {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case 429:
			return &RateLimitError{}
		case 400:
			return &InvalidRequestError{Message: apierr.Message}
		}
	}
	return fmt.Errorf("openai request failed: %w", err)
}
