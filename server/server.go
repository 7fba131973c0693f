package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/clindoc/compkit/internal/models"
	"github.com/clindoc/compkit/internal/types"
	"github.com/clindoc/compkit/pkg/llm"
	"github.com/clindoc/compkit/pkg/taxonomy"
)

// Config carries the service descriptor fields exposed on the health
// endpoint.
type Config struct {
	Service string
	Version string
}

// Server is the identification HTTP service. Every request is handled
// independently with no shared mutable state; the only shared resource
// is the outbound completion client.
type Server struct {
	config    Config
	completer types.Completer
}

func New(config Config, completer types.Completer) *Server {
	if config.Service == "" {
		config.Service = "Clinical Component Identifier API"
	}
	if config.Version == "" {
		config.Version = "1.0.0 (Few-Shot)"
	}
	return &Server{config: config, completer: completer}
}

// Handler builds the route table. CORS applies to /api/* only.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.Handle("/api/identify", cors(http.HandlerFunc(s.handleIdentify)))
	mux.Handle("/api/taxonomy", cors(http.HandlerFunc(s.handleTaxonomy)))
	return mux
}

type identifyRequest struct {
	Text *string `json:"text"`
}

type identifyResponse struct {
	Success         bool               `json:"success"`
	Components      []models.Component `json:"components"`
	TotalComponents int                `json:"total_components"`
	ModelUsed       string             `json:"model_used"`
	Usage           models.Usage       `json:"usage"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.config.Service,
		"model":   s.completer.Model(),
		"version": s.config.Version,
	})
}

func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Text field is required"})
		return
	}

	text := strings.TrimSpace(*req.Text)
	if text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Text cannot be empty"})
		return
	}

	result, usage, err := s.completer.Complete(r.Context(), llm.SystemPrompt, llm.UserMessage(text))
	if err != nil {
		log.Printf("identify error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success":    false,
			"error":      err.Error(),
			"components": []models.Component{},
		})
		return
	}

	components := llm.ParseComponents(result)
	llm.AssignIDs(components)

	writeJSON(w, http.StatusOK, identifyResponse{
		Success:         true,
		Components:      components,
		TotalComponents: len(components),
		ModelUsed:       s.completer.Model(),
		Usage:           usage,
	})
}

func (s *Server) handleTaxonomy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"component_types": taxonomy.Descriptions(),
	})
}

// cors permits all origins for the API routes and short-circuits
// preflight requests.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
