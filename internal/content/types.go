// Package content implements the content assembly pipeline: a validated
// request plus resolved curriculum context becomes a prompt, the prompt goes
// to a text-generation backend, and the response is parsed into typed
// results.
package content

import (
	"time"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

// ContentType is the kind of educational content to generate.
type ContentType string

const (
	ContentExplanation ContentType = "explanation"
	ContentExample     ContentType = "example"
	ContentExercise    ContentType = "exercise"
	ContentLesson      ContentType = "lesson"
	ContentAssessment  ContentType = "assessment"
)

// ContentTypes returns all content types in enumeration order.
func ContentTypes() []ContentType {
	return []ContentType{ContentExplanation, ContentExample, ContentExercise, ContentLesson, ContentAssessment}
}

// Valid reports whether t is an enumerated content type.
func (t ContentType) Valid() bool {
	switch t {
	case ContentExplanation, ContentExample, ContentExercise, ContentLesson, ContentAssessment:
		return true
	}
	return false
}

// QuestionType is the kind of question to generate.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionLongAnswer     QuestionType = "long_answer"
	QuestionFillBlank      QuestionType = "fill_blank"
	QuestionTrueFalse      QuestionType = "true_false"
)

// QuestionTypes returns all question types in enumeration order.
func QuestionTypes() []QuestionType {
	return []QuestionType{
		QuestionMultipleChoice,
		QuestionShortAnswer,
		QuestionLongAnswer,
		QuestionFillBlank,
		QuestionTrueFalse,
	}
}

// Valid reports whether t is an enumerated question type.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionMultipleChoice, QuestionShortAnswer, QuestionLongAnswer, QuestionFillBlank, QuestionTrueFalse:
		return true
	}
	return false
}

// MaxQuestions bounds a single question batch.
const MaxQuestions = 10

// ContentRequest asks for one piece of educational content. It lives for a
// single pipeline invocation: constructed, validated, consumed, discarded.
type ContentRequest struct {
	Subject            curriculum.Subject    `json:"subject"`
	Grade              int                   `json:"grade"`
	Topic              string                `json:"topic"`
	ContentType        ContentType           `json:"content_type"`
	Difficulty         curriculum.Difficulty `json:"difficulty"`
	LearningObjectives []string              `json:"learning_objectives,omitempty"`
}

// Validate checks the request before any external call is made.
func (r ContentRequest) Validate() error {
	if _, ok := curriculum.ParseSubject(string(r.Subject)); !ok {
		return &ValidationError{Field: "subject", Reason: "unknown subject"}
	}
	if !curriculum.ValidGrade(r.Grade) {
		return &ValidationError{Field: "grade", Reason: "grade must be between 1 and 12"}
	}
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "topic is required"}
	}
	if !r.ContentType.Valid() {
		return &ValidationError{Field: "content_type", Reason: "unsupported content type"}
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Reason: "unsupported difficulty"}
	}
	return nil
}

// QuestionRequest asks for a batch of questions.
type QuestionRequest struct {
	Subject      curriculum.Subject    `json:"subject"`
	Grade        int                   `json:"grade"`
	Topic        string                `json:"topic"`
	QuestionType QuestionType          `json:"question_type"`
	Difficulty   curriculum.Difficulty `json:"difficulty"`
	NumQuestions int                   `json:"num_questions"`
	Context      string                `json:"context,omitempty"`
}

// Validate checks the request before any external call is made.
func (r QuestionRequest) Validate() error {
	if _, ok := curriculum.ParseSubject(string(r.Subject)); !ok {
		return &ValidationError{Field: "subject", Reason: "unknown subject"}
	}
	if !curriculum.ValidGrade(r.Grade) {
		return &ValidationError{Field: "grade", Reason: "grade must be between 1 and 12"}
	}
	if r.Topic == "" {
		return &ValidationError{Field: "topic", Reason: "topic is required"}
	}
	if !r.QuestionType.Valid() {
		return &ValidationError{Field: "question_type", Reason: "unsupported question type"}
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Reason: "unsupported difficulty"}
	}
	if r.NumQuestions < 1 || r.NumQuestions > MaxQuestions {
		return &ValidationError{Field: "num_questions", Reason: "must be between 1 and 10"}
	}
	return nil
}

// ExplanationRequest asks for a plain-text explanation of one concept.
type ExplanationRequest struct {
	Topic      string                `json:"topic"`
	Subject    curriculum.Subject    `json:"subject"`
	Grade      int                   `json:"grade"`
	Concept    string                `json:"concept"`
	Difficulty curriculum.Difficulty `json:"difficulty"`
}

// Validate checks the request before any external call is made.
func (r ExplanationRequest) Validate() error {
	if _, ok := curriculum.ParseSubject(string(r.Subject)); !ok {
		return &ValidationError{Field: "subject", Reason: "unknown subject"}
	}
	if !curriculum.ValidGrade(r.Grade) {
		return &ValidationError{Field: "grade", Reason: "grade must be between 1 and 12"}
	}
	if r.Concept == "" {
		return &ValidationError{Field: "concept", Reason: "concept is required"}
	}
	if r.Difficulty != "" && !r.Difficulty.Valid() {
		return &ValidationError{Field: "difficulty", Reason: "unsupported difficulty"}
	}
	return nil
}

// Metadata carries provenance for a generated result.
type Metadata struct {
	CurriculumCode    string `json:"curriculum_code"`
	CurriculumChapter string `json:"curriculum_chapter"`
	Model             string `json:"model"`
	PromptFingerprint string `json:"prompt_fingerprint"`
	TokensUsed        int    `json:"tokens_used"`
	Degraded          bool   `json:"degraded_context"`
}

// GeneratedContent is the pipeline's content output. Immutable once
// produced.
type GeneratedContent struct {
	Content            string                `json:"content"`
	ContentType        ContentType           `json:"content_type"`
	Subject            curriculum.Subject    `json:"subject"`
	Grade              int                   `json:"grade"`
	Topic              string                `json:"topic"`
	Difficulty         curriculum.Difficulty `json:"difficulty"`
	LearningObjectives []string              `json:"learning_objectives"`
	EstimatedTime      int                   `json:"estimated_time"` // minutes
	Prerequisites      []string              `json:"prerequisites"`
	GeneratedAt        time.Time             `json:"generated_at"`
	Metadata           Metadata              `json:"metadata"`
}

// GeneratedQuestion is one parsed, validated question.
type GeneratedQuestion struct {
	Question          string                `json:"question"`
	QuestionType      QuestionType          `json:"question_type"`
	Options           []string              `json:"options,omitempty"` // multiple choice only
	CorrectAnswer     string                `json:"correct_answer"`
	Explanation       string                `json:"explanation"`
	Difficulty        curriculum.Difficulty `json:"difficulty"`
	Subject           curriculum.Subject    `json:"subject"`
	Grade             int                   `json:"grade"`
	Topic             string                `json:"topic"`
	LearningObjective string                `json:"learning_objective"`
	GeneratedAt       time.Time             `json:"generated_at"`
}

// QuestionBatch is the question pipeline's output. A batch with fewer
// questions than requested is a partial result, distinguishable from both
// full success and total failure.
type QuestionBatch struct {
	Questions []GeneratedQuestion `json:"questions"`
	Requested int                 `json:"requested"`
	Dropped   int                 `json:"dropped"` // items lost to per-item parse failures
	Metadata  Metadata            `json:"metadata"`
}

// Partial reports whether the batch delivered some but not all requested
// questions.
func (b *QuestionBatch) Partial() bool {
	return len(b.Questions) > 0 && len(b.Questions) < b.Requested
}
