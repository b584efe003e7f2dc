// Package api exposes the guidance system over HTTP
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alevsk/podsec-advisor/internal/checklist"
	"github.com/alevsk/podsec-advisor/internal/logger"
	"github.com/alevsk/podsec-advisor/internal/rag"
	"github.com/alevsk/podsec-advisor/internal/schema"
	"github.com/alevsk/podsec-advisor/internal/vectorstore"
	"github.com/alevsk/podsec-advisor/internal/version"
)

// Server represents the API server
type Server struct {
	router     *mux.Router
	system     *rag.System
	store      *vectorstore.Store
	registry   *version.Registry
	classifier *checklist.Classifier
	timeout    time.Duration
}

// NewServer creates a new API server instance with its dependencies
func NewServer(system *rag.System, store *vectorstore.Store, registry *version.Registry, classifier *checklist.Classifier, timeout time.Duration) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		system:     system,
		store:      store,
		registry:   registry,
		classifier: classifier,
		timeout:    timeout,
	}
	s.routes()
	return s
}

// routes sets up the API routes
func (s *Server) routes() {
	s.router.HandleFunc("/api/v1/health", s.healthCheck).Methods("GET")
	s.router.HandleFunc("/api/v1/analyze", s.analyze).Methods("POST")
	s.router.HandleFunc("/api/v1/question", s.question).Methods("POST")
	s.router.HandleFunc("/api/v1/field-guidance", s.fieldGuidance).Methods("POST")
	s.router.HandleFunc("/api/v1/versions", s.versions).Methods("GET")
	s.router.HandleFunc("/api/v1/version-compatibility", s.versionCompatibility).Methods("GET")
	s.router.HandleFunc("/api/v1/statistics", s.statistics).Methods("GET")
	s.router.HandleFunc("/api/v1/checklist", s.buildChecklist).Methods("POST")
	s.router.HandleFunc("/api/v1/checklist/progress", s.checklistProgress).Methods("POST")
	s.router.HandleFunc("/api/v1/checklist/next", s.checklistNext).Methods("POST")
}

// Handler returns the router for tests and custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start(addr string) error {
	logger.Info().Str("addr", addr).Msg("starting api server")
	server := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.timeout,
		WriteTimeout: s.timeout,
	}
	return server.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"error": detail})
}

// healthCheck handles the health check endpoint
func (s *Server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

type analyzeRequest struct {
	PodYAML           string `json:"podYaml"`
	KubernetesVersion string `json:"kubernetesVersion"`
	TargetLevel       string `json:"targetLevel"`
	UseLLM            bool   `json:"useLlm"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.PodYAML == "" {
		writeError(w, http.StatusBadRequest, "podYaml is required")
		return
	}
	if req.KubernetesVersion != "" {
		if _, err := version.Parse(req.KubernetesVersion); err != nil {
			writeError(w, http.StatusBadRequest, "invalid kubernetesVersion: "+req.KubernetesVersion)
			return
		}
	}

	resp := s.system.AnalyzePod(r.Context(), req.PodYAML, req.KubernetesVersion,
		schema.PolicyLevel(req.TargetLevel), req.UseLLM)
	writeJSON(w, http.StatusOK, resp)
}

type questionRequest struct {
	Question          string `json:"question"`
	KubernetesVersion string `json:"kubernetesVersion"`
	PolicyLevel       string `json:"policyLevel"`
	UseLLM            bool   `json:"useLlm"`
}

func (s *Server) question(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	resp := s.system.AnswerQuestion(r.Context(), req.Question, req.KubernetesVersion,
		schema.PolicyLevel(req.PolicyLevel), req.UseLLM)
	writeJSON(w, http.StatusOK, resp)
}

type fieldGuidanceRequest struct {
	FieldName         string `json:"fieldName"`
	KubernetesVersion string `json:"kubernetesVersion"`
	UseLLM            bool   `json:"useLlm"`
}

func (s *Server) fieldGuidance(w http.ResponseWriter, r *http.Request) {
	var req fieldGuidanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.FieldName == "" {
		writeError(w, http.StatusBadRequest, "fieldName is required")
		return
	}

	resp, err := s.system.FieldGuidance(r.Context(), req.FieldName, req.KubernetesVersion, req.UseLLM)
	if err != nil {
		var unknownField *rag.UnknownFieldError
		if errors.As(err, &unknownField) {
			writeJSON(w, http.StatusNotFound, unknownField)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) versions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"supported": s.registry.Supported(),
		"lts":       s.registry.LTS(),
	})
}

func (s *Server) versionCompatibility(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query().Get("version")
	if v == "" {
		writeError(w, http.StatusBadRequest, "version query parameter is required")
		return
	}
	if _, err := version.Parse(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid version: "+v)
		return
	}

	info := s.registry.Compatibility(v)
	if !s.registry.IsSupported(v) {
		closest, err := s.registry.ClosestSupported(v)
		if err == nil {
			writeJSON(w, http.StatusOK, map[string]any{
				"compatibility":    info,
				"supported":        false,
				"closestSupported": closest,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"compatibility": info,
		"supported":     s.registry.IsSupported(v),
	})
}

func (s *Server) statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Statistics(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "statistics unavailable: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type checklistRequest struct {
	Problem string `json:"problem"`
}

func (s *Server) buildChecklist(w http.ResponseWriter, r *http.Request) {
	var req checklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if req.Problem == "" {
		writeError(w, http.StatusBadRequest, "problem is required")
		return
	}

	classification := s.classifier.Classify(r.Context(), req.Problem)
	tree := checklist.Build(req.Problem, classification.Category, classification.Severity)
	writeJSON(w, http.StatusOK, tree)
}

type checklistProgressRequest struct {
	Tree    json.RawMessage `json:"tree"`
	ItemID  string          `json:"itemId"`
	Checked *bool           `json:"checked"`
}

func (s *Server) checklistProgress(w http.ResponseWriter, r *http.Request) {
	var req checklistProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Tree) == 0 {
		writeError(w, http.StatusBadRequest, "tree is required")
		return
	}

	tree, err := checklist.FromJSON(req.Tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.ItemID != "" {
		checked := true
		if req.Checked != nil {
			checked = *req.Checked
		}
		if err := tree.SetChecked(req.ItemID, checked); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"tree":     tree,
		"progress": tree.Progress(),
	})
}

func (s *Server) checklistNext(w http.ResponseWriter, r *http.Request) {
	var req checklistProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Tree) == 0 {
		writeError(w, http.StatusBadRequest, "tree is required")
		return
	}

	tree, err := checklist.FromJSON(req.Tree)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	next, ok := tree.NextUnchecked()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"done":     true,
			"progress": tree.Progress(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"done":     false,
		"next":     next,
		"progress": tree.Progress(),
	})
}
