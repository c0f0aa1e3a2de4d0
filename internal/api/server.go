// Package api exposes the curriculum catalog and the content generation
// pipeline over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/shiksha-ai/shiksha-server/internal/ai"
	"github.com/shiksha-ai/shiksha-server/internal/archive"
	"github.com/shiksha-ai/shiksha-server/internal/content"
	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

// ContentGenerator is the generation pipeline as the API consumes it.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, req content.ContentRequest) (*content.GeneratedContent, error)
	GenerateQuestions(ctx context.Context, req content.QuestionRequest) (*content.QuestionBatch, error)
	GenerateExplanation(ctx context.Context, req content.ExplanationRequest) (*content.GeneratedContent, error)
	StreamExplanation(ctx context.Context, req content.ExplanationRequest) (<-chan ai.StreamChunk, error)
}

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ServerConfig holds dependencies for the API server.
type ServerConfig struct {
	Generator ContentGenerator
	Catalog   *curriculum.Catalog
	Archive   archive.Store            // nil disables archiving
	Events    archive.EventLogger      // nil disables event logging
	Budget    ai.BudgetChecker         // nil disables budget enforcement
	Readiness map[string]HealthChecker
}

// Server is the HTTP API.
type Server struct {
	generator ContentGenerator
	catalog   *curriculum.Catalog
	archive   archive.Store
	events    archive.EventLogger
	budget    ai.BudgetChecker
	readiness map[string]HealthChecker
	mux       *http.ServeMux
}

// NewServer wires the routes.
func NewServer(cfg ServerConfig) *Server {
	events := cfg.Events
	if events == nil {
		events = archive.NopEventLogger{}
	}
	s := &Server{
		generator: cfg.Generator,
		catalog:   cfg.Catalog,
		archive:   cfg.Archive,
		events:    events,
		budget:    cfg.Budget,
		readiness: cfg.Readiness,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/content/generate", s.handleGenerateContent)
	mux.HandleFunc("POST /api/v1/content/generate/questions", s.handleGenerateQuestions)
	mux.HandleFunc("POST /api/v1/content/generate/explanation", s.handleGenerateExplanation)
	mux.HandleFunc("GET /api/v1/content/types", s.handleContentTypes)
	mux.HandleFunc("GET /api/v1/content/stream", s.handleStream)
	mux.HandleFunc("GET /api/v1/content/records", s.handleListRecords)
	mux.HandleFunc("GET /api/v1/content/records/{id}", s.handleGetRecord)
	mux.HandleFunc("GET /api/v1/curriculum/topics/{subject}/{grade}", s.handleCurriculumTopics)
	mux.HandleFunc("GET /api/v1/curriculum/topic", s.handleTopicDetails)
	mux.HandleFunc("GET /api/v1/curriculum/search", s.handleSearch)
	mux.HandleFunc("GET /api/v1/curriculum/coverage", s.handleCoverage)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux = mux
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// clientID identifies the caller for budgeting and archiving. Anonymous
// callers share one bucket.
func clientID(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	return "anonymous"
}
