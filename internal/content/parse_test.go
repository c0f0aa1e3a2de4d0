package content

import (
	"errors"
	"testing"
)

func TestExtractJSONArrayFenced(t *testing.T) {
	raw := "Here are your questions:\n```json\n[{\"question\": \"q\"}]\n```\nHope that helps!"
	got, err := extractJSONArray(raw)
	if err != nil {
		t.Fatal(err)
	}
	if got != `[{"question": "q"}]` {
		t.Errorf("extracted %q", got)
	}
}

func TestExtractJSONArrayBare(t *testing.T) {
	got, err := extractJSONArray(`  [1, 2]  `)
	if err != nil {
		t.Fatal(err)
	}
	if got != "[1, 2]" {
		t.Errorf("extracted %q", got)
	}
}

func TestExtractJSONArrayMissing(t *testing.T) {
	_, err := extractJSONArray("I'm sorry, I can't produce JSON today.")
	var perr *ParseError
	if !errors.As(err, &perr) || perr.Stage != "extract" {
		t.Fatalf("want extract ParseError, got %v", err)
	}
}

func TestParseQuestionsFullBatch(t *testing.T) {
	raw := `[
		{"question": "2+2?", "options": ["3","4","5","6"], "correct_answer": "4", "explanation": "basic addition"},
		{"question": "3+3?", "options": ["5","6","7","8"], "correct_answer": "6", "explanation": "basic addition"}
	]`
	req := QuestionRequest{QuestionType: QuestionMultipleChoice, NumQuestions: 2}

	qs, dropped, err := parseQuestions(raw, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 || dropped != 0 {
		t.Errorf("got %d questions, %d dropped", len(qs), dropped)
	}
	if qs[0].CorrectAnswer != "4" {
		t.Errorf("answer = %q", qs[0].CorrectAnswer)
	}
}

func TestParseQuestionsDropsInvalidItems(t *testing.T) {
	raw := `[
		{"question": "valid?", "correct_answer": "yes", "explanation": "ok"},
		{"question": "", "correct_answer": "missing question", "explanation": ""},
		{"correct_answer": "no question key", "explanation": ""},
		{"question": "also valid?", "correct_answer": "yes", "explanation": "ok"}
	]`
	req := QuestionRequest{QuestionType: QuestionShortAnswer, NumQuestions: 4}

	qs, dropped, err := parseQuestions(raw, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 {
		t.Errorf("got %d questions, want 2", len(qs))
	}
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
}

func TestParseQuestionsMultipleChoiceNeedsOptions(t *testing.T) {
	raw := `[{"question": "pick one", "options": [], "correct_answer": "a", "explanation": ""}]`
	req := QuestionRequest{QuestionType: QuestionMultipleChoice, NumQuestions: 1}

	_, dropped, err := parseQuestions(raw, req)
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("want ErrEmptyBatch, got %v", err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
}

func TestParseQuestionsAllInvalid(t *testing.T) {
	raw := `[{"nonsense": true}, {"more": "nonsense"}]`
	req := QuestionRequest{QuestionType: QuestionShortAnswer, NumQuestions: 2}

	if _, _, err := parseQuestions(raw, req); !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("want ErrEmptyBatch, got %v", err)
	}
}

func TestParseQuestionsTruncatesOverDelivery(t *testing.T) {
	raw := `[
		{"question": "a?", "correct_answer": "1", "explanation": ""},
		{"question": "b?", "correct_answer": "2", "explanation": ""},
		{"question": "c?", "correct_answer": "3", "explanation": ""}
	]`
	req := QuestionRequest{QuestionType: QuestionShortAnswer, NumQuestions: 2}

	qs, dropped, err := parseQuestions(raw, req)
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 2 {
		t.Errorf("got %d questions, want 2", len(qs))
	}
	if dropped != 0 {
		t.Errorf("truncated extras counted as drops: %d", dropped)
	}
}

func TestParseQuestionsNotAnArray(t *testing.T) {
	_, _, err := parseQuestions(`["not", "objects", "but valid json"] trailing`, QuestionRequest{NumQuestions: 1, QuestionType: QuestionShortAnswer})
	if !errors.Is(err, ErrEmptyBatch) {
		t.Fatalf("want ErrEmptyBatch for array of non-objects, got %v", err)
	}
}
