package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/models"
)

const (
	geminiBaseURL    = "https://generativelanguage.googleapis.com"
	geminiImageModel = "gemini-3-pro-image-preview"
)

// retryHintPattern matches the retry hint Google embeds in 429 error
// messages, e.g. "retry in 23.5s".
var retryHintPattern = regexp.MustCompile(`retry in (\d+\.?\d*)s`)

// GeminiClient generates images through the generativelanguage API
type GeminiClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

func NewGeminiClient(apiKey string, logger *logging.Logger) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		baseURL: geminiBaseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
		logger:  logger,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// GenerateImage asks the model for an image and returns the first inline
// payload. A 429 becomes a RateLimitError carrying the upstream retry hint.
func (c *GeminiClient) GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE", "TEXT"},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, geminiImageModel, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &RateLimitError{RetryAfter: parseRetryHint(raw)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Gemini API error",
			logging.WithField("status", resp.StatusCode),
			logging.WithField("model", geminiImageModel))
		return nil, fmt.Errorf("gemini returned status %d", resp.StatusCode)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse gemini response: %w", err)
	}

	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil {
				return &models.GeneratedImage{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MimeType,
				}, nil
			}
		}
	}
	return nil, errors.New("no image in gemini response")
}

// parseRetryHint extracts the suggested wait from a 429 body, rounded up to
// whole seconds. Returns 0 when no hint is present.
func parseRetryHint(raw []byte) int {
	var parsed struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return 0
	}
	m := retryHintPattern.FindStringSubmatch(parsed.Error.Message)
	if m == nil {
		return 0
	}
	seconds, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return int(math.Ceil(seconds))
}
