package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/promptvault/server/internal/auth"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/providers"
)

// AIAPI handles the text endpoints backed by the Anthropic messages API
type AIAPI struct {
	anthropic      completionProvider
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewAIAPI creates a new AI text API handler
func NewAIAPI(anthropic completionProvider, authMiddleware *auth.Middleware, logger *logging.Logger) *AIAPI {
	return &AIAPI{
		anthropic:      anthropic,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers AI text routes on the given mux
func (api *AIAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/ai-writer", corsMiddleware(api.authMiddleware.RequireAuth(api.handleWriter)))
	mux.HandleFunc("/api/humanizer", corsMiddleware(api.authMiddleware.RequireAuth(api.handleHumanizer)))
	mux.HandleFunc("/api/test-prompt", corsMiddleware(api.authMiddleware.RequireAuth(api.handleTestPrompt)))
	mux.HandleFunc("/api/project-chat", corsMiddleware(api.handleProjectChat))
	mux.HandleFunc("/api/generate-prompt", corsMiddleware(api.handleGeneratePrompt))
}

func (api *AIAPI) handleWriter(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req providers.WriterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		writeError(w, http.StatusBadRequest, "Topic is required")
		return
	}

	result, err := api.anthropic.Complete(r.Context(), providers.CompletionRequest{
		Messages:  []providers.ChatMessage{{Role: "user", Content: providers.BuildWriterPrompt(req)}},
		MaxTokens: 4096,
	})
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to generate content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"content": result.Text})
}

func (api *AIAPI) handleHumanizer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeError(w, http.StatusBadRequest, "Text is required")
		return
	}

	result, err := api.anthropic.Complete(r.Context(), providers.CompletionRequest{
		System:    providers.HumanizerSystemPrompt,
		Messages:  []providers.ChatMessage{{Role: "user", Content: providers.BuildHumanizerPrompt(body.Text)}},
		MaxTokens: 4096,
	})
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to humanize content")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"content": result.Text})
}

// handleTestPrompt runs a user's prompt verbatim and reports token usage
func (api *AIAPI) handleTestPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	result, err := api.anthropic.Complete(r.Context(), providers.CompletionRequest{
		Messages:  []providers.ChatMessage{{Role: "user", Content: body.Prompt}},
		MaxTokens: 4096,
	})
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to test prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"response": result.Text,
		"model":    result.Model,
		"usage": map[string]int{
			"input_tokens":  result.InputTokens,
			"output_tokens": result.OutputTokens,
		},
	})
}

func (api *AIAPI) handleProjectChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Message             string                  `json:"message"`
		ConversationHistory []providers.ChatMessage `json:"conversationHistory"`
		ProjectTitle        string                  `json:"projectTitle"`
		PDFContent          string                  `json:"pdfContent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	// Keep only well-formed turns from the client-supplied history.
	messages := make([]providers.ChatMessage, 0, len(body.ConversationHistory)+1)
	for _, msg := range body.ConversationHistory {
		if msg.Role == "user" || msg.Role == "assistant" {
			messages = append(messages, msg)
		}
	}
	messages = append(messages, providers.ChatMessage{Role: "user", Content: body.Message})

	result, err := api.anthropic.Complete(r.Context(), providers.CompletionRequest{
		System:    providers.BuildProjectChatSystem(body.ProjectTitle, body.PDFContent),
		Messages:  messages,
		MaxTokens: 500,
	})
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to get response from AI")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"response": result.Text})
}

func (api *AIAPI) handleGeneratePrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		UserInput       string `json:"userInput"`
		Type            string `json:"type"`
		Style           string `json:"style"`
		InfographicType string `json:"infographicType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.UserInput) == "" {
		writeError(w, http.StatusBadRequest, "User input is required")
		return
	}

	var systemPrompt string
	switch body.Type {
	case "infographic":
		systemPrompt = providers.BuildInfographicPromptSystem(body.InfographicType, body.Style)
	default:
		systemPrompt = providers.BuildImagePromptSystem(body.Style)
	}

	result, err := api.anthropic.Complete(r.Context(), providers.CompletionRequest{
		System:    systemPrompt,
		Messages:  []providers.ChatMessage{{Role: "user", Content: body.UserInput}},
		MaxTokens: 300,
	})
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to generate prompt")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"prompt": result.Text})
}
