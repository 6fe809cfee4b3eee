package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/promptvault/server/internal/auth"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/providers"
	"github.com/promptvault/server/internal/usage"
)

// ImageAPI handles the prompt optimizer and the two image generation
// backends, including the daily quota on OpenAI images.
type ImageAPI struct {
	optimizer      optimizerProvider
	openaiImages   imageProvider
	gemini         inlineImageProvider
	usageStore     usage.Store
	dailyLimit     int
	authMiddleware *auth.Middleware
	logger         *logging.Logger
}

// NewImageAPI creates a new image API handler
func NewImageAPI(
	optimizer optimizerProvider,
	openaiImages imageProvider,
	gemini inlineImageProvider,
	usageStore usage.Store,
	dailyLimit int,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *ImageAPI {
	return &ImageAPI{
		optimizer:      optimizer,
		openaiImages:   openaiImages,
		gemini:         gemini,
		usageStore:     usageStore,
		dailyLimit:     dailyLimit,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
}

// RegisterRoutes registers image and optimizer routes on the given mux
func (api *ImageAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/prompt-optimizer", corsMiddleware(api.handleOptimizer))
	mux.HandleFunc("/api/openai-image", corsMiddleware(api.authMiddleware.RequireAuth(api.handleOpenAIImage)))
	mux.HandleFunc("/api/nano-banana", corsMiddleware(api.handleNanoBanana))
}

func (api *ImageAPI) handleOptimizer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req providers.OptimizerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	optimized, err := api.optimizer.Optimize(r.Context(), providers.BuildOptimizerSystemPrompt(req), req.Prompt)
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to optimize prompt. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"optimizedPrompt": optimized})
}

func (api *ImageAPI) handleOpenAIImage(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		api.handleImageUsage(w, r)
	case http.MethodPost:
		api.handleImageGenerate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleImageUsage reports today's consumption without changing it
func (api *ImageAPI) handleImageUsage(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())

	used, err := api.usageStore.Peek(r.Context(), userID)
	if err != nil {
		api.logger.Warn("Failed to read image usage", logging.WithField("error", err.Error()))
		used = 0
	}
	remaining := api.dailyLimit - used
	if remaining < 0 {
		remaining = 0
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"used":      used,
		"remaining": remaining,
		"limit":     api.dailyLimit,
	})
}

func (api *ImageAPI) handleImageGenerate(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserID(r.Context())

	var body struct {
		Prompt  string `json:"prompt"`
		Size    string `json:"size"`
		Quality string `json:"quality"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	// Claim a slot before calling upstream. The increment is atomic, so two
	// concurrent requests cannot both take the last slot.
	count, err := api.usageStore.Increment(r.Context(), userID)
	if err != nil {
		// Quota accounting must not take the feature down with it.
		api.logger.Warn("Failed to update image usage", logging.WithField("error", err.Error()))
		count = 1
	}
	if count > api.dailyLimit {
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error":     fmt.Sprintf("Daily limit reached. You can generate up to %d images per day.", api.dailyLimit),
			"limit":     api.dailyLimit,
			"remaining": 0,
		})
		return
	}
	remaining := api.dailyLimit - count

	img, err := api.openaiImages.GenerateImage(r.Context(), body.Prompt, body.Size, body.Quality)
	if err != nil {
		// Give the slot back; the user got nothing for it.
		if rbErr := api.usageStore.Decrement(r.Context(), userID); rbErr != nil {
			api.logger.Warn("Failed to roll back image usage", logging.WithField("error", rbErr.Error()))
		}
		writeProviderError(w, api.logger, err, "Failed to generate image")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"image":     img,
		"remaining": remaining,
		"model":     "gpt-image-1",
	})
}

func (api *ImageAPI) handleNanoBanana(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Prompt      string `json:"prompt"`
		AspectRatio string `json:"aspectRatio"`
		Model       string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "Prompt is required")
		return
	}

	img, err := api.gemini.GenerateImage(r.Context(), body.Prompt)
	if err != nil {
		writeProviderError(w, api.logger, err, "Failed to generate image. Please try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"image": img,
		"model": "gemini-3-pro-image-preview",
	})
}
