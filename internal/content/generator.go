package content

import (
	"context"
	"encoding/hex"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/shiksha-ai/shiksha-server/internal/ai"
	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

const (
	defaultTimeout     = 60 * time.Second
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

// Backend produces text completions. The ai.Router satisfies it.
type Backend interface {
	Complete(ctx context.Context, req ai.CompletionRequest) (ai.CompletionResponse, error)
	StreamComplete(ctx context.Context, req ai.CompletionRequest) (<-chan ai.StreamChunk, error)
}

// GeneratorConfig holds dependencies for the content pipeline.
type GeneratorConfig struct {
	Backend     Backend
	Catalog     *curriculum.Catalog
	Model       string        // backend-specific model override, empty for default
	Temperature float64       // default 0.7
	MaxTokens   int           // default 4096
	Timeout     time.Duration // per-generation deadline, default 60s
}

// Generator assembles curriculum context, renders prompts, calls the
// backend, and parses results. Safe for concurrent use; it holds no
// per-request state.
type Generator struct {
	backend     Backend
	catalog     *curriculum.Catalog
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// NewGenerator creates a content generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = defaultTemperature
	}
	return &Generator{
		backend:     cfg.Backend,
		catalog:     cfg.Catalog,
		model:       cfg.Model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
	}
}

// resolveTopic looks the topic up in the catalog, falling back to a
// degraded context when the topic is not covered.
func (g *Generator) resolveTopic(subject curriculum.Subject, grade int, topic string, diff curriculum.Difficulty) TopicContext {
	if d, ok := g.catalog.TopicDetails(subject, grade, topic); ok {
		return resolvedContext(d, diff)
	}
	slog.Info("topic not in curriculum, using degraded context",
		"subject", subject, "grade", grade, "topic", topic)
	return degradedContext(subject, grade, topic, diff)
}

// fingerprint hashes the full prompt text so stored results can be traced
// back to the exact prompt that produced them.
func fingerprint(system, user string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(system))
	h.Write([]byte{0})
	h.Write([]byte(user))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (g *Generator) complete(ctx context.Context, system, user string) (ai.CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	return g.backend.Complete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
}

// GenerateContent produces one piece of educational content.
func (g *Generator) GenerateContent(ctx context.Context, req ContentRequest) (*GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	subject, _ := curriculum.ParseSubject(string(req.Subject))
	tc := g.resolveTopic(subject, req.Grade, req.Topic, req.Difficulty)

	system := systemPrompt(req.ContentType)
	user := contentPrompt(req, tc)

	resp, err := g.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}

	objectives := req.LearningObjectives
	if len(objectives) == 0 {
		objectives = tc.Objectives
	}
	return &GeneratedContent{
		Content:            resp.Content,
		ContentType:        req.ContentType,
		Subject:            subject,
		Grade:              req.Grade,
		Topic:              tc.TopicName,
		Difficulty:         tc.Difficulty,
		LearningObjectives: objectives,
		EstimatedTime:      tc.EstimatedTime,
		Prerequisites:      tc.Prerequisites,
		GeneratedAt:        time.Now().UTC(),
		Metadata: Metadata{
			CurriculumCode:    tc.Code,
			CurriculumChapter: tc.Chapter,
			Model:             resp.Model,
			PromptFingerprint: fingerprint(system, user),
			TokensUsed:        resp.TotalTokens(),
			Degraded:          tc.Degraded,
		},
	}, nil
}

// GenerateQuestions produces a batch of questions. The batch may be partial
// when some items fail to parse; callers distinguish partial from full via
// QuestionBatch.Partial.
func (g *Generator) GenerateQuestions(ctx context.Context, req QuestionRequest) (*QuestionBatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	subject, _ := curriculum.ParseSubject(string(req.Subject))
	tc := g.resolveTopic(subject, req.Grade, req.Topic, req.Difficulty)

	user := questionPrompt(req, tc)
	resp, err := g.complete(ctx, questionSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	raw, dropped, err := parseQuestions(resp.Content, req)
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		slog.Warn("dropped invalid questions from batch",
			"requested", req.NumQuestions, "parsed", len(raw), "dropped", dropped)
	}

	now := time.Now().UTC()
	questions := make([]GeneratedQuestion, 0, len(raw))
	for _, q := range raw {
		questions = append(questions, GeneratedQuestion{
			Question:          q.Question,
			QuestionType:      req.QuestionType,
			Options:           q.Options,
			CorrectAnswer:     q.CorrectAnswer,
			Explanation:       q.Explanation,
			Difficulty:        tc.Difficulty,
			Subject:           subject,
			Grade:             req.Grade,
			Topic:             tc.TopicName,
			LearningObjective: firstObjective(tc.Objectives),
			GeneratedAt:       now,
		})
	}
	return &QuestionBatch{
		Questions: questions,
		Requested: req.NumQuestions,
		Dropped:   dropped,
		Metadata: Metadata{
			CurriculumCode:    tc.Code,
			CurriculumChapter: tc.Chapter,
			Model:             resp.Model,
			PromptFingerprint: fingerprint(questionSystemPrompt, user),
			TokensUsed:        resp.TotalTokens(),
			Degraded:          tc.Degraded,
		},
	}, nil
}

// GenerateExplanation produces a plain-text explanation of one concept.
func (g *Generator) GenerateExplanation(ctx context.Context, req ExplanationRequest) (*GeneratedContent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	subject, _ := curriculum.ParseSubject(string(req.Subject))
	topic := req.Topic
	if topic == "" {
		topic = req.Concept
	}
	tc := g.resolveTopic(subject, req.Grade, topic, req.Difficulty)

	user := explanationPrompt(req, tc)
	resp, err := g.complete(ctx, explanationSystemPrompt, user)
	if err != nil {
		return nil, err
	}

	return &GeneratedContent{
		Content:            resp.Content,
		ContentType:        ContentExplanation,
		Subject:            subject,
		Grade:              req.Grade,
		Topic:              tc.TopicName,
		Difficulty:         tc.Difficulty,
		LearningObjectives: tc.Objectives,
		EstimatedTime:      tc.EstimatedTime,
		Prerequisites:      tc.Prerequisites,
		GeneratedAt:        time.Now().UTC(),
		Metadata: Metadata{
			CurriculumCode:    tc.Code,
			CurriculumChapter: tc.Chapter,
			Model:             resp.Model,
			PromptFingerprint: fingerprint(explanationSystemPrompt, user),
			TokensUsed:        resp.TotalTokens(),
			Degraded:          tc.Degraded,
		},
	}, nil
}

// StreamExplanation streams an explanation chunk by chunk for live
// delivery. The returned channel closes when the stream finishes.
func (g *Generator) StreamExplanation(ctx context.Context, req ExplanationRequest) (<-chan ai.StreamChunk, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	subject, _ := curriculum.ParseSubject(string(req.Subject))
	topic := req.Topic
	if topic == "" {
		topic = req.Concept
	}
	tc := g.resolveTopic(subject, req.Grade, topic, req.Difficulty)

	return g.backend.StreamComplete(ctx, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: "system", Content: explanationSystemPrompt},
			{Role: "user", Content: explanationPrompt(req, tc)},
		},
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
}

func firstObjective(objectives []string) string {
	if len(objectives) == 0 {
		return ""
	}
	return objectives[0]
}
