// Package support submits contact-form requests to the hosted support
// tracker (a Notion database, one page per request).
package support

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/logging"
)

const notionVersion = "2022-06-28"

// ErrNotConfigured is returned when the tracker credentials are absent
var ErrNotConfigured = fmt.Errorf("support tracker not configured")

// Client creates support request records in the tracker database
type Client struct {
	cfg     config.SupportConfig
	baseURL string
	client  *http.Client
	logger  *logging.Logger
}

// NewClient creates a support tracker client
func NewClient(cfg config.SupportConfig, logger *logging.Logger) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: "https://api.notion.com",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Request is one contact-form submission
type Request struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type titleProperty struct {
	Title []richText `json:"title"`
}

type richTextProperty struct {
	RichText []richText `json:"rich_text"`
}

type richText struct {
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type emailProperty struct {
	Email string `json:"email"`
}

type statusProperty struct {
	Status statusName `json:"status"`
}

type statusName struct {
	Name string `json:"name"`
}

type createPageRequest struct {
	Parent     pageParent             `json:"parent"`
	Properties map[string]interface{} `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// Submit creates one record in the tracker. New records start in the
// "Not Started" status so the triage board picks them up.
func (c *Client) Submit(ctx context.Context, req Request) error {
	if c.cfg.APIKey == "" || c.cfg.DatabaseID == "" {
		return ErrNotConfigured
	}

	payload := createPageRequest{
		Parent: pageParent{DatabaseID: c.cfg.DatabaseID},
		Properties: map[string]interface{}{
			"Name": titleProperty{
				Title: []richText{{Text: textContent{Content: req.Name}}},
			},
			"Email": emailProperty{Email: req.Email},
			"Message": richTextProperty{
				RichText: []richText{{Text: textContent{Content: req.Message}}},
			},
			"Status": statusProperty{Status: statusName{Name: "Not Started"}},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode support request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/pages", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Notion-Version", notionVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to submit support request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Error("Support tracker rejected request", logging.WithFields(map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(raw),
		}))
		return fmt.Errorf("support tracker returned status %d", resp.StatusCode)
	}

	return nil
}
