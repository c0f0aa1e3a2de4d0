package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// questionItemSchema validates one question object from the backend before
// it is decoded. Items that fail are dropped, not fatal.
const questionItemSchema = `{
	"type": "object",
	"required": ["question", "correct_answer", "explanation"],
	"properties": {
		"question": {"type": "string", "minLength": 1},
		"options": {"type": "array", "items": {"type": "string"}},
		"correct_answer": {"type": "string", "minLength": 1},
		"explanation": {"type": "string"}
	}
}`

var questionItemLoader = gojsonschema.NewStringLoader(questionItemSchema)

// extractJSONArray pulls the first JSON array out of a model reply. Models
// routinely wrap JSON in markdown fences or surrounding prose.
func extractJSONArray(s string) (string, error) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return "", &ParseError{Stage: "extract", Err: errors.New("no JSON array in response")}
	}
	return s[start : end+1], nil
}

type rawQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
}

// parseQuestions turns a backend reply into validated questions. Invalid
// items are dropped individually; the whole parse fails only when the
// response is not a JSON array at all or every item is invalid.
func parseQuestions(raw string, req QuestionRequest) ([]rawQuestion, int, error) {
	arr, err := extractJSONArray(raw)
	if err != nil {
		return nil, 0, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, 0, &ParseError{Stage: "decode", Err: err}
	}

	questions := make([]rawQuestion, 0, len(items))
	dropped := 0
	for _, item := range items {
		result, err := gojsonschema.Validate(questionItemLoader, gojsonschema.NewBytesLoader(item))
		if err != nil || !result.Valid() {
			dropped++
			continue
		}
		var q rawQuestion
		if err := json.Unmarshal(item, &q); err != nil {
			dropped++
			continue
		}
		if req.QuestionType == QuestionMultipleChoice && len(q.Options) < 2 {
			dropped++
			continue
		}
		if len(questions) == req.NumQuestions {
			// over-delivery is truncated, not counted as a drop
			break
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, dropped, fmt.Errorf("%w (%d invalid items)", ErrEmptyBatch, dropped)
	}
	return questions, dropped, nil
}
