package httpapi

import (
	"net/http"
	"strings"

	"github.com/promptvault/server/internal/logging"
	"github.com/promptvault/server/internal/vault"
)

// VaultAPI serves the GitHub-hosted content datasets and raw files
type VaultAPI struct {
	vault  vaultProvider
	logger *logging.Logger
}

// NewVaultAPI creates a new vault API handler
func NewVaultAPI(vaultClient vaultProvider, logger *logging.Logger) *VaultAPI {
	return &VaultAPI{
		vault:  vaultClient,
		logger: logger,
	}
}

// RegisterRoutes registers vault routes on the given mux
func (api *VaultAPI) RegisterRoutes(mux *http.ServeMux, corsMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("/api/prompts", corsMiddleware(api.handlePrompts))
	mux.HandleFunc("/api/prompts/", corsMiddleware(api.handlePromptByID))
	mux.HandleFunc("/api/projects", corsMiddleware(api.handleProjects))
	mux.HandleFunc("/api/projects/", corsMiddleware(api.handleProjectByID))
	mux.HandleFunc("/api/customgpts", corsMiddleware(api.handleCustomGPTs))
	mux.HandleFunc("/api/github-file", corsMiddleware(api.handleFile))
}

func (api *VaultAPI) handlePrompts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, api.vault.GetPrompts(r.Context()))
}

func (api *VaultAPI) handleProjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, api.vault.GetProjects(r.Context()))
}

func (api *VaultAPI) handleCustomGPTs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, api.vault.GetCustomGPTs(r.Context()))
}

// handlePromptByID handles GET /api/prompts/{id}
func (api *VaultAPI) handlePromptByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := pathID(r.URL.Path, "/api/prompts/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Prompt ID is required")
		return
	}

	record, ok := api.vault.GetPromptByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "Prompt not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleProjectByID handles GET /api/projects/{id}
func (api *VaultAPI) handleProjectByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := pathID(r.URL.Path, "/api/projects/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Project ID is required")
		return
	}

	record, ok := api.vault.GetProjectByID(r.Context(), id)
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// handleFile handles GET /api/github-file?path=docs/guide.pdf
func (api *VaultAPI) handleFile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filePath := r.URL.Query().Get("path")
	if filePath == "" {
		writeError(w, http.StatusBadRequest, "File path is required")
		return
	}

	data, contentType, err := api.vault.GetFile(r.Context(), filePath)
	if err != nil {
		if err == vault.ErrNotFound {
			writeError(w, http.StatusNotFound, "File not found")
			return
		}
		api.logger.Error("Failed to fetch vault file",
			logging.WithField("path", filePath),
			logging.WithField("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Failed to fetch file")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// pathID extracts the trailing ID segment from a prefixed route
func pathID(path, prefix string) string {
	return strings.TrimSuffix(strings.TrimPrefix(path, prefix), "/")
}
