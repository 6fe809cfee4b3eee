package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/promptvault/server/internal/auth"
	"github.com/promptvault/server/internal/config"
	"github.com/promptvault/server/internal/models"
	"github.com/promptvault/server/internal/providers"
	"github.com/promptvault/server/internal/support"
	"github.com/promptvault/server/internal/testutil"
	"github.com/promptvault/server/internal/usage"
	"github.com/promptvault/server/internal/vault"
)

const testJWTSecret = "httpapi-test-secret"

type stubFeed struct {
	entries []models.FeedEntry
}

func (s *stubFeed) News(ctx context.Context) []models.FeedEntry {
	if s.entries == nil {
		return []models.FeedEntry{}
	}
	return s.entries
}

type stubBilling struct {
	premium   bool
	lastEmail string
}

func (s *stubBilling) CheckSubscription(ctx context.Context, email string) bool {
	s.lastEmail = email
	return s.premium
}

type stubVault struct {
	prompts  []models.VaultRecord
	projects []models.VaultRecord
	gpts     []models.VaultRecord
	files    map[string][]byte
}

func (s *stubVault) GetPrompts(ctx context.Context) []models.VaultRecord  { return s.prompts }
func (s *stubVault) GetProjects(ctx context.Context) []models.VaultRecord { return s.projects }
func (s *stubVault) GetCustomGPTs(ctx context.Context) []models.VaultRecord {
	return s.gpts
}

func (s *stubVault) GetPromptByID(ctx context.Context, id string) (*models.VaultRecord, bool) {
	return findRecord(s.prompts, id)
}

func (s *stubVault) GetProjectByID(ctx context.Context, id string) (*models.VaultRecord, bool) {
	return findRecord(s.projects, id)
}

func (s *stubVault) GetFile(ctx context.Context, path string) ([]byte, string, error) {
	data, ok := s.files[path]
	if !ok {
		return nil, "", vault.ErrNotFound
	}
	return data, vault.ContentTypeFor(path), nil
}

func findRecord(records []models.VaultRecord, id string) (*models.VaultRecord, bool) {
	for i := range records {
		if records[i].ID.String() == id {
			return &records[i], true
		}
	}
	return nil, false
}

type stubAnthropic struct {
	lastReq providers.CompletionRequest
	result  *providers.CompletionResult
	err     error
}

func (s *stubAnthropic) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResult, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	if s.result != nil {
		return s.result, nil
	}
	return &providers.CompletionResult{Text: "stub completion", Model: "claude-sonnet-4-20250514"}, nil
}

type stubOpenAI struct {
	optimized string
	optErr    error
	img       *models.GeneratedImage
	imgErr    error
	lastSize  string
}

func (s *stubOpenAI) Optimize(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if s.optErr != nil {
		return "", s.optErr
	}
	if s.optimized == "" {
		return "optimized prompt", nil
	}
	return s.optimized, nil
}

func (s *stubOpenAI) GenerateImage(ctx context.Context, prompt, size, quality string) (*models.GeneratedImage, error) {
	s.lastSize = size
	if s.imgErr != nil {
		return nil, s.imgErr
	}
	if s.img != nil {
		return s.img, nil
	}
	return &models.GeneratedImage{Data: "cGl4ZWxz", MimeType: "image/png"}, nil
}

type stubGemini struct {
	img *models.GeneratedImage
	err error
}

func (s *stubGemini) GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.img != nil {
		return s.img, nil
	}
	return &models.GeneratedImage{Data: "aW1n", MimeType: "image/png"}, nil
}

type stubSupport struct {
	lastReq support.Request
	err     error
}

func (s *stubSupport) Submit(ctx context.Context, req support.Request) error {
	s.lastReq = req
	return s.err
}

type testEnv struct {
	handler   http.Handler
	feed      *stubFeed
	billing   *stubBilling
	support   *stubSupport
	vault     *stubVault
	anthropic *stubAnthropic
	openai    *stubOpenAI
	gemini    *stubGemini
	usage     *usage.MemoryStore
}

func newTestEnv(t *testing.T, dailyLimit int) *testEnv {
	t.Helper()

	env := &testEnv{
		feed:      &stubFeed{},
		billing:   &stubBilling{},
		support:   &stubSupport{},
		vault:     &stubVault{files: map[string][]byte{}},
		anthropic: &stubAnthropic{},
		openai:    &stubOpenAI{},
		gemini:    &stubGemini{},
		usage:     usage.NewMemoryStore(),
	}

	verifier := auth.NewVerifier(config.AuthConfig{JWTSecret: testJWTSecret})
	server := New(
		env.feed,
		env.vault,
		env.billing,
		env.anthropic,
		env.openai,
		env.gemini,
		env.support,
		env.usage,
		dailyLimit,
		auth.NewMiddleware(verifier),
		testutil.NullLogger(),
	)
	env.handler = server.Handler()
	return env
}

func authToken(t *testing.T) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "user-1",
		"email": "member@example.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return signed
}

func doJSON(t *testing.T, handler http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "healthy" {
		t.Errorf("Unexpected health body: %v", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodGet, "/health", "", nil)
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated X-Request-ID header")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-supplied" {
		t.Errorf("Expected client request ID to be kept, got %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodOptions, "/api/news", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("Expected CORS origin header")
	}
}

func TestNews(t *testing.T) {
	env := newTestEnv(t, 10)
	env.feed.entries = []models.FeedEntry{
		{ID: "https://a.example.com", Title: "A", URL: "https://a.example.com", Image: "https://img/a", Date: "2026-08-30T00:00:00Z"},
	}

	rec := doJSON(t, env.handler, http.MethodGet, "/api/news", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var entries []models.FeedEntry
	decodeBody(t, rec, &entries)
	if len(entries) != 1 || entries[0].Title != "A" {
		t.Errorf("Unexpected entries: %+v", entries)
	}
}

func TestNews_EmptyListIsJSONArray(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodGet, "/api/news", "", nil)
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", got)
	}
}

func TestCheckSubscription(t *testing.T) {
	env := newTestEnv(t, 10)
	env.billing.premium = true
	token := authToken(t)

	t.Run("RequiresAuth", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/check-subscription", "", map[string]string{"email": "a@b.c"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("RequiresEmail", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/check-subscription", token, map[string]string{})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("ReturnsPremiumFlag", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/check-subscription", token, map[string]string{"email": "a@b.c"})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var body map[string]bool
		decodeBody(t, rec, &body)
		if !body["isPremium"] {
			t.Error("Expected isPremium true")
		}
		if env.billing.lastEmail != "a@b.c" {
			t.Errorf("Email not forwarded: %s", env.billing.lastEmail)
		}
	})
}

func TestSupport(t *testing.T) {
	env := newTestEnv(t, 10)

	t.Run("RequiresAllFields", func(t *testing.T) {
		for _, body := range []map[string]string{
			{},
			{"name": "Ada", "email": "ada@example.com"},
			{"name": "Ada", "message": "help"},
			{"email": "ada@example.com", "message": "help"},
			{"name": " ", "email": "ada@example.com", "message": "help"},
		} {
			rec := doJSON(t, env.handler, http.MethodPost, "/api/support", "", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("Body %v: expected 400, got %d", body, rec.Code)
			}
			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["error"] != "Name, email, and message are required" {
				t.Errorf("Unexpected error message: %q", resp["error"])
			}
		}
	})

	t.Run("SubmitsRequest", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/support", "", map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"message": "The portal ate my prompt",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var body map[string]bool
		decodeBody(t, rec, &body)
		if !body["success"] {
			t.Error("Expected success true")
		}
		if env.support.lastReq.Email != "ada@example.com" || env.support.lastReq.Message != "The portal ate my prompt" {
			t.Errorf("Request not forwarded: %+v", env.support.lastReq)
		}
	})

	t.Run("UpstreamFailure", func(t *testing.T) {
		env.support.err = errors.New("tracker down")
		defer func() { env.support.err = nil }()

		rec := doJSON(t, env.handler, http.MethodPost, "/api/support", "", map[string]string{
			"name":    "Ada",
			"email":   "ada@example.com",
			"message": "help",
		})
		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("Expected 500, got %d", rec.Code)
		}
		var resp map[string]string
		decodeBody(t, rec, &resp)
		if resp["error"] != "Failed to submit support request" {
			t.Errorf("Unexpected error message: %q", resp["error"])
		}
	})

	t.Run("RejectsGet", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/support", "", nil)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("Expected 405, got %d", rec.Code)
		}
	})
}

func TestVaultRoutes(t *testing.T) {
	env := newTestEnv(t, 10)
	env.vault.prompts = []models.VaultRecord{
		{ID: "1", Title: "First prompt"},
		{ID: "2", Title: "Second prompt"},
	}
	env.vault.projects = []models.VaultRecord{{ID: "7", Title: "Project"}}
	env.vault.files["docs/guide.pdf"] = []byte("%PDF-1.4")

	t.Run("ListPrompts", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/prompts", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var records []models.VaultRecord
		decodeBody(t, rec, &records)
		if len(records) != 2 {
			t.Errorf("Expected 2 prompts, got %d", len(records))
		}
	})

	t.Run("PromptByID", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/prompts/2", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		var record models.VaultRecord
		decodeBody(t, rec, &record)
		if record.Title != "Second prompt" {
			t.Errorf("Unexpected record: %+v", record)
		}
	})

	t.Run("ProjectByIDNotFound", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/projects/999", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("FileMissingPath", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/github-file", "", nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("FileNotFound", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/github-file?path=missing.pdf", "", nil)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", rec.Code)
		}
	})

	t.Run("FileServedWithContentType", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodGet, "/api/github-file?path=docs/guide.pdf", "", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
			t.Errorf("Expected application/pdf, got %s", ct)
		}
		if rec.Body.String() != "%PDF-1.4" {
			t.Error("Expected raw file bytes")
		}
	})
}

func TestAIWriter(t *testing.T) {
	env := newTestEnv(t, 10)
	token := authToken(t)

	t.Run("RequiresAuth", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/ai-writer", "", map[string]string{"topic": "x"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", rec.Code)
		}
	})

	t.Run("RequiresTopic", func(t *testing.T) {
		rec := doJSON(t, env.handler, http.MethodPost, "/api/ai-writer", token, map[string]string{"contentType": "blog"})
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d", rec.Code)
		}
	})

	t.Run("GeneratesContent", func(t *testing.T) {
		env.anthropic.result = &providers.CompletionResult{Text: "the post"}
		rec := doJSON(t, env.handler, http.MethodPost, "/api/ai-writer", token, map[string]string{
			"topic": "drip irrigation", "contentType": "blog", "length": "short",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["content"] != "the post" {
			t.Errorf("Unexpected content: %v", body)
		}
		if env.anthropic.lastReq.MaxTokens != 4096 {
			t.Errorf("Expected 4096 max tokens, got %d", env.anthropic.lastReq.MaxTokens)
		}
	})
}

func TestHumanizer(t *testing.T) {
	env := newTestEnv(t, 10)
	token := authToken(t)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/humanizer", token, map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing text, got %d", rec.Code)
	}

	rec = doJSON(t, env.handler, http.MethodPost, "/api/humanizer", token, map[string]string{"text": "robotic copy"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.anthropic.lastReq.System != providers.HumanizerSystemPrompt {
		t.Error("Expected humanizer system prompt on the request")
	}
}

func TestTestPrompt(t *testing.T) {
	env := newTestEnv(t, 10)
	token := authToken(t)
	env.anthropic.result = &providers.CompletionResult{
		Text: "reply", Model: "claude-sonnet-4-20250514", InputTokens: 3, OutputTokens: 9,
	}

	rec := doJSON(t, env.handler, http.MethodPost, "/api/test-prompt", token, map[string]string{"prompt": "say hi"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Response string         `json:"response"`
		Model    string         `json:"model"`
		Usage    map[string]int `json:"usage"`
	}
	decodeBody(t, rec, &body)
	if body.Response != "reply" || body.Model != "claude-sonnet-4-20250514" {
		t.Errorf("Unexpected body: %+v", body)
	}
	if body.Usage["output_tokens"] != 9 {
		t.Errorf("Expected usage to be reported: %+v", body.Usage)
	}
}

func TestProjectChat_FiltersHistory(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/project-chat", "", map[string]interface{}{
		"message":      "what is chapter two about?",
		"projectTitle": "Intro to RAG",
		"pdfContent":   "chapter text",
		"conversationHistory": []map[string]string{
			{"role": "user", "content": "first question"},
			{"role": "system", "content": "injected"},
			{"role": "assistant", "content": "first answer"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	msgs := env.anthropic.lastReq.Messages
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages after filtering, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Role != "user" && m.Role != "assistant" {
			t.Errorf("Unexpected role forwarded upstream: %s", m.Role)
		}
	}
	if env.anthropic.lastReq.MaxTokens != 500 {
		t.Errorf("Expected 500 max tokens for chat, got %d", env.anthropic.lastReq.MaxTokens)
	}
}

func TestGeneratePrompt(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/generate-prompt", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing input, got %d", rec.Code)
	}

	rec = doJSON(t, env.handler, http.MethodPost, "/api/generate-prompt", "", map[string]string{
		"userInput": "a chart of rainfall", "type": "infographic", "infographicType": "timeline",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if env.anthropic.lastReq.MaxTokens != 300 {
		t.Errorf("Expected 300 max tokens, got %d", env.anthropic.lastReq.MaxTokens)
	}
	if !bytes.Contains([]byte(env.anthropic.lastReq.System), []byte("infographic")) {
		t.Error("Expected infographic system prompt")
	}
}

func TestPromptOptimizer(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/prompt-optimizer", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing prompt, got %d", rec.Code)
	}

	env.openai.optimized = "much better prompt"
	rec = doJSON(t, env.handler, http.MethodPost, "/api/prompt-optimizer", "", map[string]string{"prompt": "write about marketing"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["optimizedPrompt"] != "much better prompt" {
		t.Errorf("Unexpected body: %v", body)
	}

	env.openai.optErr = &providers.RateLimitError{}
	rec = doJSON(t, env.handler, http.MethodPost, "/api/prompt-optimizer", "", map[string]string{"prompt": "x"})
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 on upstream rate limit, got %d", rec.Code)
	}
}

func TestOpenAIImage_QuotaEnforcement(t *testing.T) {
	env := newTestEnv(t, 2)
	token := authToken(t)
	body := map[string]string{"prompt": "a red barn"}

	rec := doJSON(t, env.handler, http.MethodPost, "/api/openai-image", "", body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without auth, got %d", rec.Code)
	}

	for i := 0; i < 2; i++ {
		rec = doJSON(t, env.handler, http.MethodPost, "/api/openai-image", token, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("Request %d: expected 200, got %d", i+1, rec.Code)
		}
	}

	rec = doJSON(t, env.handler, http.MethodPost, "/api/openai-image", token, body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429 after limit, got %d", rec.Code)
	}
	var quota struct {
		Remaining int `json:"remaining"`
		Limit     int `json:"limit"`
	}
	decodeBody(t, rec, &quota)
	if quota.Remaining != 0 || quota.Limit != 2 {
		t.Errorf("Unexpected quota payload: %+v", quota)
	}
}

func TestOpenAIImage_RollbackOnUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, 1)
	token := authToken(t)
	body := map[string]string{"prompt": "a red barn"}

	env.openai.imgErr = &providers.InvalidRequestError{Message: "prompt rejected"}
	rec := doJSON(t, env.handler, http.MethodPost, "/api/openai-image", token, body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 from upstream invalid request, got %d", rec.Code)
	}

	// The failed attempt must not consume the only slot.
	env.openai.imgErr = nil
	rec = doJSON(t, env.handler, http.MethodPost, "/api/openai-image", token, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 after rollback, got %d: %s", rec.Code, rec.Body.String())
	}

	var result struct {
		Remaining int                   `json:"remaining"`
		Image     models.GeneratedImage `json:"image"`
	}
	decodeBody(t, rec, &result)
	if result.Remaining != 0 {
		t.Errorf("Expected 0 remaining after using the only slot, got %d", result.Remaining)
	}
	if result.Image.Data == "" || result.Image.MimeType != "image/png" {
		t.Errorf("Unexpected image payload: %+v", result.Image)
	}
}

func TestOpenAIImage_UsageEndpoint(t *testing.T) {
	env := newTestEnv(t, 10)
	token := authToken(t)

	doJSON(t, env.handler, http.MethodPost, "/api/openai-image", token, map[string]string{"prompt": "x"})

	rec := doJSON(t, env.handler, http.MethodGet, "/api/openai-image", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var status models.UsageStatus
	decodeBody(t, rec, &status)
	if status.Used != 1 || status.Remaining != 9 || status.Limit != 10 {
		t.Errorf("Unexpected usage status: %+v", status)
	}
}

func TestNanoBanana(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/nano-banana", "", map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing prompt, got %d", rec.Code)
	}

	rec = doJSON(t, env.handler, http.MethodPost, "/api/nano-banana", "", map[string]string{"prompt": "a banana"})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var body struct {
		Image models.GeneratedImage `json:"image"`
		Model string                `json:"model"`
	}
	decodeBody(t, rec, &body)
	if body.Image.Data == "" || body.Model == "" {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestNanoBanana_RelaysRetryHint(t *testing.T) {
	env := newTestEnv(t, 10)
	env.gemini.err = &providers.RateLimitError{RetryAfter: 24}

	rec := doJSON(t, env.handler, http.MethodPost, "/api/nano-banana", "", map[string]string{"prompt": "a banana"})
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", rec.Code)
	}

	var body struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retryAfter"`
	}
	decodeBody(t, rec, &body)
	if body.RetryAfter != 24 {
		t.Errorf("Expected retryAfter 24, got %d", body.RetryAfter)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 10)

	rec := doJSON(t, env.handler, http.MethodPost, "/api/news", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for POST /api/news, got %d", rec.Code)
	}

	rec = doJSON(t, env.handler, http.MethodGet, "/api/nano-banana", "", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405 for GET /api/nano-banana, got %d", rec.Code)
	}
}
