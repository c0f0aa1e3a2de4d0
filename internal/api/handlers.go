package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shiksha-ai/shiksha-server/internal/ai"
	"github.com/shiksha-ai/shiksha-server/internal/archive"
	"github.com/shiksha-ai/shiksha-server/internal/content"
	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, kind string) {
	writeJSON(w, status, errorResponse{Error: msg, Kind: kind})
}

// writeGenerationError maps pipeline failures to HTTP statuses: invalid
// requests are the caller's fault, backend failures are mapped by kind, and
// anything unclassified is a 500.
func writeGenerationError(w http.ResponseWriter, err error) {
	var verr *content.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error(), "validation")
		return
	}
	var perr *content.ParseError
	if errors.As(err, &perr) {
		writeError(w, http.StatusBadGateway, "backend returned an unusable response", "malformed")
		return
	}
	if errors.Is(err, content.ErrEmptyBatch) {
		writeError(w, http.StatusBadGateway, err.Error(), "malformed")
		return
	}

	kind := ai.KindOf(err)
	switch kind {
	case ai.ErrKindTimeout:
		writeError(w, http.StatusGatewayTimeout, "generation timed out", kind.String())
	case ai.ErrKindRateLimited:
		writeError(w, http.StatusTooManyRequests, "backend rate limit reached", kind.String())
	case ai.ErrKindAuth, ai.ErrKindUnavailable:
		writeError(w, http.StatusServiceUnavailable, "generation backend unavailable", kind.String())
	case ai.ErrKindMalformed:
		writeError(w, http.StatusBadGateway, "backend returned an unusable response", kind.String())
	default:
		slog.Error("generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), "validation")
		return false
	}
	return true
}

// checkBudget enforces the caller's token budget when one is configured.
func (s *Server) checkBudget(w http.ResponseWriter, r *http.Request) bool {
	if s.budget == nil {
		return true
	}
	ok, err := s.budget.Check(r.Context(), clientID(r))
	if err != nil {
		slog.Warn("budget check failed, allowing request", "error", err)
		return true
	}
	if !ok {
		writeError(w, http.StatusTooManyRequests, "token budget exhausted", "budget")
		return false
	}
	return true
}

func (s *Server) recordUsage(r *http.Request, tokens int) {
	if s.budget == nil || tokens <= 0 {
		return
	}
	if err := s.budget.Record(r.Context(), clientID(r), tokens); err != nil {
		slog.Warn("recording token usage", "error", err)
	}
}

func (s *Server) archiveRecord(r *http.Request, rec archive.Record) {
	if s.archive == nil {
		return
	}
	rec.ClientID = clientID(r)
	if _, err := s.archive.Save(r.Context(), rec); err != nil {
		slog.Warn("archiving generation", "error", err)
	}
}

func (s *Server) logEvent(r *http.Request, eventType string, data map[string]any) {
	err := s.events.LogEvent(r.Context(), archive.Event{
		ClientID:  clientID(r),
		EventType: eventType,
		Data:      data,
	})
	if err != nil {
		slog.Warn("logging event", "error", err)
	}
}

func (s *Server) handleGenerateContent(w http.ResponseWriter, r *http.Request) {
	var req content.ContentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.checkBudget(w, r) {
		return
	}

	result, err := s.generator.GenerateContent(r.Context(), req)
	if err != nil {
		s.logEvent(r, "generation_failed", map[string]any{"kind": "content", "error": err.Error()})
		writeGenerationError(w, err)
		return
	}

	s.recordUsage(r, result.Metadata.TokensUsed)
	s.archiveRecord(r, archive.Record{
		Kind:           "content",
		Subject:        string(result.Subject),
		Grade:          result.Grade,
		Topic:          result.Topic,
		ContentType:    string(result.ContentType),
		CurriculumCode: result.Metadata.CurriculumCode,
		Model:          result.Metadata.Model,
		Fingerprint:    result.Metadata.PromptFingerprint,
		Degraded:       result.Metadata.Degraded,
		TokensUsed:     result.Metadata.TokensUsed,
		Payload:        map[string]any{"content": result.Content},
	})
	s.logEvent(r, "generation_completed", map[string]any{
		"kind":         "content",
		"content_type": string(result.ContentType),
		"degraded":     result.Metadata.Degraded,
		"tokens":       result.Metadata.TokensUsed,
	})

	writeJSON(w, http.StatusOK, result)
}

type questionBatchResponse struct {
	*content.QuestionBatch
	Partial bool `json:"partial"`
}

func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req content.QuestionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.checkBudget(w, r) {
		return
	}

	batch, err := s.generator.GenerateQuestions(r.Context(), req)
	if err != nil {
		s.logEvent(r, "generation_failed", map[string]any{"kind": "questions", "error": err.Error()})
		writeGenerationError(w, err)
		return
	}

	s.recordUsage(r, batch.Metadata.TokensUsed)
	s.archiveRecord(r, archive.Record{
		Kind:           "questions",
		Subject:        string(req.Subject),
		Grade:          req.Grade,
		Topic:          req.Topic,
		ContentType:    string(req.QuestionType),
		CurriculumCode: batch.Metadata.CurriculumCode,
		Model:          batch.Metadata.Model,
		Fingerprint:    batch.Metadata.PromptFingerprint,
		Degraded:       batch.Metadata.Degraded,
		Partial:        batch.Partial(),
		TokensUsed:     batch.Metadata.TokensUsed,
		Payload: map[string]any{
			"requested": batch.Requested,
			"delivered": len(batch.Questions),
			"dropped":   batch.Dropped,
		},
	})
	eventType := "generation_completed"
	if batch.Partial() {
		eventType = "generation_partial"
	}
	s.logEvent(r, eventType, map[string]any{
		"kind":      "questions",
		"requested": batch.Requested,
		"delivered": len(batch.Questions),
	})

	writeJSON(w, http.StatusOK, questionBatchResponse{QuestionBatch: batch, Partial: batch.Partial()})
}

func (s *Server) handleGenerateExplanation(w http.ResponseWriter, r *http.Request) {
	var req content.ExplanationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !s.checkBudget(w, r) {
		return
	}

	result, err := s.generator.GenerateExplanation(r.Context(), req)
	if err != nil {
		s.logEvent(r, "generation_failed", map[string]any{"kind": "explanation", "error": err.Error()})
		writeGenerationError(w, err)
		return
	}

	s.recordUsage(r, result.Metadata.TokensUsed)
	s.archiveRecord(r, archive.Record{
		Kind:           "explanation",
		Subject:        string(result.Subject),
		Grade:          result.Grade,
		Topic:          result.Topic,
		CurriculumCode: result.Metadata.CurriculumCode,
		Model:          result.Metadata.Model,
		Fingerprint:    result.Metadata.PromptFingerprint,
		Degraded:       result.Metadata.Degraded,
		TokensUsed:     result.Metadata.TokensUsed,
		Payload:        map[string]any{"content": result.Content},
	})

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleContentTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"content_types":  content.ContentTypes(),
		"question_types": content.QuestionTypes(),
		"difficulties":   curriculum.Difficulties(),
		"subjects":       curriculum.Subjects(),
	})
}

func (s *Server) handleCurriculumTopics(w http.ResponseWriter, r *http.Request) {
	subject, ok := curriculum.ParseSubject(r.PathValue("subject"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown subject", "validation")
		return
	}
	grade, err := strconv.Atoi(r.PathValue("grade"))
	if err != nil || !curriculum.ValidGrade(grade) {
		writeError(w, http.StatusBadRequest, "grade must be between 1 and 12", "validation")
		return
	}

	sc, ok := s.catalog.SubjectCurriculum(subject, grade)
	if !ok {
		writeError(w, http.StatusNotFound, "no curriculum for this subject and grade", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

func (s *Server) handleTopicDetails(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subject, ok := curriculum.ParseSubject(q.Get("subject"))
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown subject", "validation")
		return
	}
	grade, err := strconv.Atoi(q.Get("grade"))
	if err != nil || !curriculum.ValidGrade(grade) {
		writeError(w, http.StatusBadRequest, "grade must be between 1 and 12", "validation")
		return
	}
	name := q.Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required", "validation")
		return
	}

	details, ok := s.catalog.TopicDetails(subject, grade, name)
	if !ok {
		writeError(w, http.StatusNotFound, "topic not found in curriculum", "not_found")
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := curriculum.SearchFilter{}
	if subj := q.Get("subject"); subj != "" {
		parsed, ok := curriculum.ParseSubject(subj)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown subject", "validation")
			return
		}
		filter.Subject = parsed
	}
	if g := q.Get("grade"); g != "" {
		grade, err := strconv.Atoi(g)
		if err != nil || !curriculum.ValidGrade(grade) {
			writeError(w, http.StatusBadRequest, "grade must be between 1 and 12", "validation")
			return
		}
		filter.Grade = grade
	}

	results := s.catalog.SearchTopics(q.Get("q"), filter)
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q.Get("q"),
		"count":   len(results),
		"results": results,
	})
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	pairs := s.catalog.Coverage()
	if pairs == nil {
		pairs = []curriculum.CoveragePair{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"covered": pairs,
		"topics":  s.catalog.TopicCount(),
	})
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "archive not configured", "not_found")
		return
	}
	q := r.URL.Query()
	filter := archive.ListFilter{
		Subject: q.Get("subject"),
		Kind:    q.Get("kind"),
	}
	if g := q.Get("grade"); g != "" {
		grade, err := strconv.Atoi(g)
		if err != nil {
			writeError(w, http.StatusBadRequest, "grade must be a number", "validation")
			return
		}
		filter.Grade = grade
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be a number", "validation")
			return
		}
		filter.Limit = limit
	}

	records, err := s.archive.List(r.Context(), filter)
	if err != nil {
		slog.Error("listing records", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(records), "records": records})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		writeError(w, http.StatusNotFound, "archive not configured", "not_found")
		return
	}
	rec, err := s.archive.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			writeError(w, http.StatusNotFound, "record not found", "not_found")
			return
		}
		slog.Error("getting record", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{}
	for name, checker := range s.readiness {
		if err := checker.HealthCheck(r.Context()); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}
	state := "ready"
	if status != http.StatusOK {
		state = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": checks})
}
