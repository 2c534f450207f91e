package generator

import (
	"strings"
	"testing"
)

const validQuestionJSON = `{
  "question": "다음 중 데이터베이스의 특징으로 옳지 않은 것은?",
  "options": [
    {"index": 0, "text": "통합된 데이터"},
    {"index": 1, "text": "저장된 데이터"},
    {"index": 2, "text": "공용 데이터"},
    {"index": 3, "text": "일회성 데이터"}
  ],
  "correct_answer": 3,
  "explanation": "데이터베이스는 통합, 저장, 공용, 변화되는 데이터의 집합입니다."
}`

func TestParseResponse(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		q, err := ParseResponse(validQuestionJSON)
		if err != nil {
			t.Fatalf("ParseResponse: %v", err)
		}
		if q.Question == "" {
			t.Error("empty question")
		}
		if len(q.Options) != 4 {
			t.Errorf("got %d options, want 4", len(q.Options))
		}
		if q.CorrectAnswer != 3 {
			t.Errorf("correct_answer = %d, want 3", q.CorrectAnswer)
		}
	})

	t.Run("fenced with json tag", func(t *testing.T) {
		if _, err := ParseResponse("```json\n" + validQuestionJSON + "\n```"); err != nil {
			t.Fatalf("ParseResponse: %v", err)
		}
	})

	t.Run("fenced without tag", func(t *testing.T) {
		if _, err := ParseResponse("```\n" + validQuestionJSON + "\n```"); err != nil {
			t.Fatalf("ParseResponse: %v", err)
		}
	})

	t.Run("missing correct_answer defaults to zero", func(t *testing.T) {
		body := strings.Replace(validQuestionJSON, `"correct_answer": 3,`, "", 1)
		q, err := ParseResponse(body)
		if err != nil {
			t.Fatalf("ParseResponse: %v", err)
		}
		if q.CorrectAnswer != 0 {
			t.Errorf("correct_answer = %d, want 0", q.CorrectAnswer)
		}
	})
}

func TestParseResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not JSON", "여기 문제가 있습니다: 데이터란 무엇인가?"},
		{"empty question", `{"question": "", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"},{"index":2,"text":"c"},{"index":3,"text":"d"}], "correct_answer": 0, "explanation": "e"}`},
		{"too few options", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"}], "correct_answer": 0, "explanation": "e"}`},
		{"too many options", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"},{"index":2,"text":"c"},{"index":3,"text":"d"},{"index":4,"text":"e"},{"index":5,"text":"f"},{"index":6,"text":"g"},{"index":7,"text":"h"}], "correct_answer": 0, "explanation": "e"}`},
		{"non-sequential indexes", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":2,"text":"b"},{"index":1,"text":"c"},{"index":3,"text":"d"}], "correct_answer": 0, "explanation": "e"}`},
		{"correct_answer out of range", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"},{"index":2,"text":"c"},{"index":3,"text":"d"}], "correct_answer": 4, "explanation": "e"}`},
		{"negative correct_answer", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"},{"index":2,"text":"c"},{"index":3,"text":"d"}], "correct_answer": -1, "explanation": "e"}`},
		{"empty option text", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":""},{"index":2,"text":"c"},{"index":3,"text":"d"}], "correct_answer": 0, "explanation": "e"}`},
		{"empty explanation", `{"question": "q", "options": [{"index":0,"text":"a"},{"index":1,"text":"b"},{"index":2,"text":"c"},{"index":3,"text":"d"}], "correct_answer": 0, "explanation": ""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse(tt.body)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if Kind(err) != FailureMalformed {
				t.Errorf("Kind = %v, want malformed", Kind(err))
			}
		})
	}
}

func TestParseValidationResponse(t *testing.T) {
	t.Run("valid verdict", func(t *testing.T) {
		v, err := ParseValidationResponse("```json\n{\"status\": \"valid\", \"reason\": \"정답과 해설이 텍스트와 일치합니다.\"}\n```")
		if err != nil {
			t.Fatalf("ParseValidationResponse: %v", err)
		}
		if v.Status != "valid" {
			t.Errorf("status = %q, want valid", v.Status)
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := ParseValidationResponse(`{"status": "maybe", "reason": "unsure"}`)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if Kind(err) != FailureMalformed {
			t.Errorf("Kind = %v, want malformed", Kind(err))
		}
	})
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFences(tt.in); got != tt.want {
				t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
