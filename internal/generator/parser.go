package generator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adsp-prep/backend/internal/models"
)

// GeneratedQuestion is the structured payload the model must return for a
// generation call.
type GeneratedQuestion struct {
	Question      string                  `json:"question"`
	Options       []models.QuestionOption `json:"options"`
	CorrectAnswer int                     `json:"correct_answer"`
	Explanation   string                  `json:"explanation"`
}

// ValidationVerdict is the structured payload for a validation call.
type ValidationVerdict struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

// ParseResponse decodes a model response into a GeneratedQuestion. Enclosing
// code fences are stripped first; any decode failure or schema violation is a
// Malformed generation error and is never retried.
func ParseResponse(responseBody string) (*GeneratedQuestion, error) {
	cleaned := stripCodeFences(responseBody)

	var q GeneratedQuestion
	dec := json.NewDecoder(bytes.NewReader([]byte(cleaned)))
	if err := dec.Decode(&q); err != nil {
		return nil, &GenerationError{Kind: FailureMalformed, Err: fmt.Errorf("decode response: %w", err)}
	}

	if err := validateQuestion(&q); err != nil {
		return nil, &GenerationError{Kind: FailureMalformed, Err: err}
	}

	return &q, nil
}

// ParseValidationResponse decodes a model verdict for the validation flow.
func ParseValidationResponse(responseBody string) (*ValidationVerdict, error) {
	cleaned := stripCodeFences(responseBody)

	var v ValidationVerdict
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, &GenerationError{Kind: FailureMalformed, Err: fmt.Errorf("decode verdict: %w", err)}
	}
	if v.Status != string(models.ValidationValid) && v.Status != string(models.ValidationInvalid) {
		return nil, &GenerationError{Kind: FailureMalformed, Err: fmt.Errorf("unexpected verdict status %q", v.Status)}
	}
	return &v, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

const (
	minOptions = 4
	maxOptions = 7
)

func validateQuestion(q *GeneratedQuestion) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Options) < minOptions || len(q.Options) > maxOptions {
		return fmt.Errorf("expected %d-%d options, got %d", minOptions, maxOptions, len(q.Options))
	}
	for i, opt := range q.Options {
		if opt.Index != i {
			return fmt.Errorf("option %d has index %d, expected %d", i+1, opt.Index, i)
		}
		if strings.TrimSpace(opt.Text) == "" {
			return fmt.Errorf("option %d has empty text", i+1)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return fmt.Errorf("correct_answer %d out of range [0, %d]", q.CorrectAnswer, len(q.Options)-1)
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fmt.Errorf("empty explanation")
	}
	return nil
}
