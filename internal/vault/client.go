// Package vault reads portal content (prompt libraries, project archives,
// custom GPT listings, and raw files) from the GitHub repository that hosts
// it, via the contents API.
package vault

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/promptvault/server/internal/cache"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/models"
)

const (
	datasetCacheTTL = 10 * time.Second
	fileCacheTTL    = time.Hour

	promptsDataset    = "prompts.json"
	projectsDataset   = "projects.json"
	customGPTsDataset = "customgpts.json"
)

// ErrNotFound is returned when the content repository has no such file
var ErrNotFound = fmt.Errorf("file not found in content repository")

// Client fetches content from the configured GitHub repository
type Client struct {
	cfg     config.VaultConfig
	baseURL string
	client  *http.Client
	cache   cache.Cache
	logger  *logging.Logger
}

// NewClient creates a vault content client
func NewClient(cfg config.VaultConfig, c cache.Cache, logger *logging.Logger) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: "https://api.github.com",
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		cache:  c,
		logger: logger,
	}
}

type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// fetchFile retrieves and base64-decodes one file from the content repository
func (c *Client) fetchFile(ctx context.Context, path string) ([]byte, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, c.cfg.Owner, c.cfg.Repo, path, url.QueryEscape(c.cfg.Branch))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content API returned status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var cr contentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, fmt.Errorf("failed to decode content response: %w", err)
	}

	// The contents API wraps base64 at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	return decoded, nil
}

// dataset fetches and decodes one JSON dataset, returning an empty slice on
// any failure so the portal renders an empty section instead of an error.
func (c *Client) dataset(ctx context.Context, name string) []models.VaultRecord {
	cacheKey := "vault_dataset:" + name
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if records, ok := decodeRecords(cached); ok {
				return records
			}
		}
	}

	data, err := c.fetchFile(ctx, name)
	if err != nil {
		c.logger.Warn("Failed to fetch vault dataset", logging.WithFields(map[string]interface{}{
			"dataset": name,
			"error":   err.Error(),
		}))
		return []models.VaultRecord{}
	}

	var records []models.VaultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		c.logger.Warn("Failed to decode vault dataset", logging.WithFields(map[string]interface{}{
			"dataset": name,
			"error":   err.Error(),
		}))
		return []models.VaultRecord{}
	}

	if c.cache != nil {
		c.cache.SetWithTTL(cacheKey, records, datasetCacheTTL)
	}
	return records
}

// GetPrompts returns the prompt library listing
func (c *Client) GetPrompts(ctx context.Context) []models.VaultRecord {
	return c.dataset(ctx, promptsDataset)
}

// GetProjects returns the project archive listing
func (c *Client) GetProjects(ctx context.Context) []models.VaultRecord {
	return c.dataset(ctx, projectsDataset)
}

// GetCustomGPTs returns the custom GPT listing
func (c *Client) GetCustomGPTs(ctx context.Context) []models.VaultRecord {
	return c.dataset(ctx, customGPTsDataset)
}

// GetPromptByID finds one prompt by its dataset id
func (c *Client) GetPromptByID(ctx context.Context, id string) (*models.VaultRecord, bool) {
	return findByID(c.GetPrompts(ctx), id)
}

// GetProjectByID finds one project by its dataset id
func (c *Client) GetProjectByID(ctx context.Context, id string) (*models.VaultRecord, bool) {
	return findByID(c.GetProjects(ctx), id)
}

// GetFile returns the raw bytes of one repository file plus a content type
// derived from its extension. Used to proxy project PDFs, CSVs, and notebooks.
func (c *Client) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	cacheKey := "vault_file:" + path
	if c.cache != nil {
		if cached, ok := c.cache.Get(cacheKey); ok {
			if s, ok := cached.(string); ok {
				if data, err := base64.StdEncoding.DecodeString(s); err == nil {
					return data, ContentTypeFor(path), nil
				}
			}
		}
	}

	data, err := c.fetchFile(ctx, path)
	if err != nil {
		return nil, "", err
	}

	if c.cache != nil {
		// Stored base64-encoded so the Redis backend's JSON round trip is safe.
		c.cache.SetWithTTL(cacheKey, base64.StdEncoding.EncodeToString(data), fileCacheTTL)
	}
	return data, ContentTypeFor(path), nil
}

// ContentTypeFor maps a vault file path to a response content type
func ContentTypeFor(path string) string {
	switch {
	case strings.HasSuffix(path, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(path, ".csv"):
		return "text/csv"
	case strings.HasSuffix(path, ".ipynb"):
		return "application/json"
	case strings.HasSuffix(path, ".json"):
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

func findByID(records []models.VaultRecord, id string) (*models.VaultRecord, bool) {
	for i := range records {
		if records[i].ID.String() == id {
			return &records[i], true
		}
	}
	return nil, false
}

func decodeRecords(cached interface{}) ([]models.VaultRecord, bool) {
	if records, ok := cached.([]models.VaultRecord); ok {
		return records, true
	}

	data, err := json.Marshal(cached)
	if err != nil {
		return nil, false
	}
	var records []models.VaultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, false
	}
	return records, true
}
