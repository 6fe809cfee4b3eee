package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/promptvault/server/internal/auth"
	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/models"
	"github.com/promptvault/server/internal/providers"
	"github.com/promptvault/server/internal/support"
	"github.com/promptvault/server/internal/usage"
)

// The server depends on narrow interfaces so handlers can be tested against
// stubs instead of live upstreams.

type newsProvider interface {
	News(ctx context.Context) []models.FeedEntry
}

type subscriptionChecker interface {
	CheckSubscription(ctx context.Context, email string) bool
}

type supportSubmitter interface {
	Submit(ctx context.Context, req support.Request) error
}

type vaultProvider interface {
	GetPrompts(ctx context.Context) []models.VaultRecord
	GetProjects(ctx context.Context) []models.VaultRecord
	GetCustomGPTs(ctx context.Context) []models.VaultRecord
	GetPromptByID(ctx context.Context, id string) (*models.VaultRecord, bool)
	GetProjectByID(ctx context.Context, id string) (*models.VaultRecord, bool)
	GetFile(ctx context.Context, path string) ([]byte, string, error)
}

type completionProvider interface {
	Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResult, error)
}

type optimizerProvider interface {
	Optimize(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type imageProvider interface {
	GenerateImage(ctx context.Context, prompt, size, quality string) (*models.GeneratedImage, error)
}

type openaiProvider interface {
	optimizerProvider
	imageProvider
}

type inlineImageProvider interface {
	GenerateImage(ctx context.Context, prompt string) (*models.GeneratedImage, error)
}

type Server struct {
	feedSvc        newsProvider
	billingSvc     subscriptionChecker
	supportSvc     supportSubmitter
	authMiddleware *auth.Middleware
	logger         *logging.Logger
	server         *http.Server

	vaultAPI *VaultAPI
	aiAPI    *AIAPI
	imageAPI *ImageAPI
}

func New(
	feedSvc newsProvider,
	vaultClient vaultProvider,
	billingSvc subscriptionChecker,
	anthropic completionProvider,
	openaiSvc openaiProvider,
	gemini inlineImageProvider,
	supportSvc supportSubmitter,
	usageStore usage.Store,
	dailyImageLimit int,
	authMiddleware *auth.Middleware,
	logger *logging.Logger,
) *Server {
	s := &Server{
		feedSvc:        feedSvc,
		billingSvc:     billingSvc,
		supportSvc:     supportSvc,
		authMiddleware: authMiddleware,
		logger:         logger,
	}
	s.vaultAPI = NewVaultAPI(vaultClient, logger)
	s.aiAPI = NewAIAPI(anthropic, authMiddleware, logger)
	s.imageAPI = NewImageAPI(openaiSvc, openaiSvc, gemini, usageStore, dailyImageLimit, authMiddleware, logger)
	return s
}

func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 180 * time.Second,
	}

	s.logger.Info("HTTP API server starting", logging.WithField("addr", addr))
	return s.server.ListenAndServe()
}

// Handler builds the full route table. Split out from Start so tests can
// drive it with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/news", s.corsMiddleware(s.handleNews))
	mux.HandleFunc("/api/check-subscription", s.corsMiddleware(s.authMiddleware.RequireAuth(s.handleCheckSubscription)))
	mux.HandleFunc("/api/support", s.corsMiddleware(s.handleSupport))

	s.vaultAPI.RegisterRoutes(mux, s.corsMiddleware)
	s.aiAPI.RegisterRoutes(mux, s.corsMiddleware)
	s.imageAPI.RegisterRoutes(mux, s.corsMiddleware)

	mux.HandleFunc("/health", s.handleHealth)

	return s.requestIDMiddleware(mux)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// requestIDMiddleware tags every request with an ID for log correlation
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)

		start := time.Now()
		next.ServeHTTP(w, r)

		s.logger.Debug("Request handled", logging.WithFields(map[string]interface{}{
			"requestId": requestID,
			"method":    r.Method,
			"path":      r.URL.Path,
			"duration":  time.Since(start).String(),
		}))
	})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries := s.feedSvc.News(r.Context())
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCheckSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Email) == "" {
		s.writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	isPremium := s.billingSvc.CheckSubscription(r.Context(), body.Email)
	s.writeJSON(w, http.StatusOK, map[string]bool{"isPremium": isPremium})
}

func (s *Server) handleSupport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req support.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Name, email, and message are required")
		return
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "Name, email, and message are required")
		return
	}

	if err := s.supportSvc.Submit(r.Context(), req); err != nil {
		s.logger.Error("Support request submission failed", logging.WithField("error", err.Error()))
		s.writeError(w, http.StatusInternalServerError, "Failed to submit support request")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, data)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	writeError(w, status, message)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeProviderError maps provider failures onto client responses: upstream
// rate limits relay as 429 with any retry hint, upstream 400s keep their
// message, everything else is a generic failure.
func writeProviderError(w http.ResponseWriter, logger *logging.Logger, err error, fallback string) {
	switch e := err.(type) {
	case *providers.RateLimitError:
		payload := map[string]interface{}{
			"error": rateLimitMessage(e),
		}
		if e.RetryAfter > 0 {
			payload["retryAfter"] = e.RetryAfter
		}
		writeJSON(w, http.StatusTooManyRequests, payload)
	case *providers.InvalidRequestError:
		writeError(w, http.StatusBadRequest, e.Error())
	default:
		if err == providers.ErrNotConfigured {
			writeError(w, http.StatusInternalServerError, "API not configured")
			return
		}
		logger.Error("Upstream provider error", logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func rateLimitMessage(e *providers.RateLimitError) string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("Rate limit exceeded. Please wait %d seconds and try again.", e.RetryAfter)
	}
	return "Rate limit exceeded. Please wait a moment and try again."
}
