package content

import (
	"fmt"
	"strings"

	"github.com/shiksha-ai/shiksha-server/internal/curriculum"
)

// TopicContext is the curriculum grounding for one generation. It is either
// resolved from the catalog or synthesized when the topic is not covered.
type TopicContext struct {
	TopicName     string
	Code          string
	Chapter       string
	ChapterNumber int
	Objectives    []string
	KeyConcepts   []string
	Prerequisites []string
	EstimatedTime int // minutes
	Difficulty    curriculum.Difficulty
	Degraded      bool
}

func subjectAbbrev(s curriculum.Subject) string {
	switch s {
	case curriculum.SubjectMathematics:
		return "MATH"
	case curriculum.SubjectScience:
		return "SCI"
	case curriculum.SubjectEnglish:
		return "ENG"
	case curriculum.SubjectSocialStudies:
		return "SOC"
	}
	return "GEN"
}

// degradedContext builds a synthetic TopicContext for a topic the catalog
// does not cover. Generation proceeds with generic grounding rather than
// failing.
func degradedContext(subject curriculum.Subject, grade int, topic string, diff curriculum.Difficulty) TopicContext {
	if diff == "" {
		diff = curriculum.DifficultyBeginner
	}
	return TopicContext{
		TopicName: topic,
		Code:      fmt.Sprintf("FLEX-%d-%s", grade, subjectAbbrev(subject)),
		Chapter:   fmt.Sprintf("General %s", subject),
		Objectives: []string{
			fmt.Sprintf("Understand the basics of %s", topic),
			fmt.Sprintf("Apply %s in simple problems", topic),
		},
		KeyConcepts:   []string{topic},
		EstimatedTime: 15 + 2*grade,
		Difficulty:    diff,
		Degraded:      true,
	}
}

// resolvedContext maps a catalog hit into a TopicContext.
func resolvedContext(d *curriculum.TopicDetails, diff curriculum.Difficulty) TopicContext {
	if diff == "" {
		diff = d.Difficulty
	}
	return TopicContext{
		TopicName:     d.Name,
		Code:          d.Code,
		Chapter:       d.Chapter,
		ChapterNumber: d.ChapterNumber,
		Objectives:    d.LearningObjectives,
		KeyConcepts:   d.KeyConcepts,
		Prerequisites: d.Prerequisites,
		EstimatedTime: d.EstimatedHours * 60,
		Difficulty:    diff,
	}
}

const identityPreamble = "You are an expert teacher creating educational content for school students in India. " +
	"Use simple language appropriate for the grade level, relatable Indian contexts and examples, " +
	"and align strictly with the given curriculum."

// systemPrompt returns the instruction block for one content type. Pure:
// same inputs always yield the same string.
func systemPrompt(ct ContentType) string {
	switch ct {
	case ContentExplanation:
		return identityPreamble + "\n\nWrite a clear, step-by-step explanation of the topic. " +
			"Start from what the student already knows, introduce one idea at a time, and close with a short summary."
	case ContentExample:
		return identityPreamble + "\n\nWrite worked examples for the topic. " +
			"Show every step of the working and explain why each step is taken."
	case ContentExercise:
		return identityPreamble + "\n\nWrite practice exercises for the topic, ordered from easy to hard. " +
			"Do not include answers inline; list them at the end."
	case ContentLesson:
		return identityPreamble + "\n\nWrite a complete lesson plan for the topic: " +
			"introduction, main teaching points, activities, and a closing recap."
	case ContentAssessment:
		return identityPreamble + "\n\nWrite an assessment for the topic with a mix of question styles " +
			"and a marking scheme at the end."
	}
	return identityPreamble
}

// contentPrompt renders the user prompt for content generation. Pure: it
// performs no I/O and reads no clocks.
func contentPrompt(req ContentRequest, tc TopicContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create %s content for the following topic.\n\n", req.ContentType)
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Grade: %d\n", req.Grade)
	fmt.Fprintf(&b, "Topic: %s\n", tc.TopicName)
	fmt.Fprintf(&b, "Chapter: %s\n", tc.Chapter)
	fmt.Fprintf(&b, "Difficulty: %s\n", tc.Difficulty)
	objectives := req.LearningObjectives
	if len(objectives) == 0 {
		objectives = tc.Objectives
	}
	if len(objectives) > 0 {
		b.WriteString("\nLearning objectives:\n")
		for _, o := range objectives {
			fmt.Fprintf(&b, "- %s\n", o)
		}
	}
	if len(tc.KeyConcepts) > 0 {
		fmt.Fprintf(&b, "\nKey concepts to cover: %s\n", strings.Join(tc.KeyConcepts, ", "))
	}
	if len(tc.Prerequisites) > 0 {
		fmt.Fprintf(&b, "Assumed prior knowledge: %s\n", strings.Join(tc.Prerequisites, ", "))
	}
	if tc.Degraded {
		b.WriteString("\nThis topic is outside the standard curriculum sequence; keep the treatment self-contained.\n")
	}
	return b.String()
}

const questionSystemPrompt = identityPreamble + "\n\nGenerate questions strictly as a JSON array. " +
	"Each element must be an object with the keys: question, options (array of strings, empty unless multiple choice), " +
	"correct_answer, explanation. Return only the JSON array, no surrounding prose."

// questionPrompt renders the user prompt for question generation. Pure.
func questionPrompt(req QuestionRequest, tc TopicContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate exactly %d %s questions.\n\n", req.NumQuestions, questionTypeLabel(req.QuestionType))
	fmt.Fprintf(&b, "Subject: %s\n", req.Subject)
	fmt.Fprintf(&b, "Grade: %d\n", req.Grade)
	fmt.Fprintf(&b, "Topic: %s\n", tc.TopicName)
	fmt.Fprintf(&b, "Difficulty: %s\n", tc.Difficulty)
	if len(tc.Objectives) > 0 {
		b.WriteString("\nLearning objectives:\n")
		for _, o := range tc.Objectives {
			fmt.Fprintf(&b, "- %s\n", o)
		}
	}
	if req.Context != "" {
		fmt.Fprintf(&b, "\nAdditional context:\n%s\n", req.Context)
	}
	if req.QuestionType == QuestionMultipleChoice {
		b.WriteString("\nEach question must have exactly 4 options with one correct answer.\n")
	}
	return b.String()
}

func questionTypeLabel(t QuestionType) string {
	return strings.ReplaceAll(string(t), "_", " ")
}

const explanationSystemPrompt = identityPreamble + "\n\nExplain one concept in plain prose. " +
	"No headings, no lists; a short connected explanation a student can read in a few minutes."

// explanationPrompt renders the user prompt for a concept explanation. Pure.
func explanationPrompt(req ExplanationRequest, tc TopicContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain the concept %q for a grade %d %s student.\n", req.Concept, req.Grade, req.Subject)
	fmt.Fprintf(&b, "It comes up in the topic %q", tc.TopicName)
	if tc.Chapter != "" {
		fmt.Fprintf(&b, " (chapter: %s)", tc.Chapter)
	}
	b.WriteString(".\n")
	fmt.Fprintf(&b, "Pitch the explanation at %s level.\n", tc.Difficulty)
	return b.String()
}
