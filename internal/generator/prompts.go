package generator

import "fmt"

// SystemPrompt frames the model as a Korean certification-exam item writer.
func SystemPrompt() string {
	return `당신은 교육용 문제 생성 전문가입니다. 자격증 시험 수준의 객관식 문제를 생성합니다.
응답은 반드시 요청된 JSON 형식만 포함해야 하며, 다른 텍스트를 덧붙이지 마세요.`
}

// BuildUserPrompt asks for exactly one multiple-choice question grounded in
// the supplied source text. category is the full topic path shown to the
// model for context (e.g. "ADsP > 데이터 이해 > 데이터베이스").
func BuildUserPrompt(category, sourceText string) string {
	return fmt.Sprintf(`%s 주제의 객관식 문제 1개를 생성하세요.

텍스트: %s

다음 JSON 형식으로 응답하세요:
{
  "question": "문제 내용",
  "options": [
    {"index": 0, "text": "선택지 1"},
    {"index": 1, "text": "선택지 2"},
    {"index": 2, "text": "선택지 3"},
    {"index": 3, "text": "선택지 4"}
  ],
  "correct_answer": 0,
  "explanation": "해설"
}

요구사항:
- 명확한 문제
- 선택지 4개 (index: 0-3)
- 정답 인덱스 (0-3)
- 간결한 해설
- 주어진 텍스트에 근거한 내용만 사용`, category, sourceText)
}

// BuildValidationPrompt asks the model to judge an already-stored question
// against the topic's source text.
func BuildValidationPrompt(category, sourceText, question string, options []string, correctAnswer int, explanation string) string {
	optionList := ""
	for i, opt := range options {
		optionList += fmt.Sprintf("%d. %s\n", i, opt)
	}
	return fmt.Sprintf(`다음은 %s 주제의 객관식 문제입니다. 주어진 텍스트에 근거하여 문제가 타당한지 검증하세요.

텍스트: %s

문제: %s
선택지:
%s정답 인덱스: %d
해설: %s

다음 JSON 형식으로 응답하세요:
{
  "status": "valid",
  "reason": "판정 근거"
}

status는 "valid" 또는 "invalid" 중 하나여야 합니다.
정답이 틀렸거나, 문제가 텍스트와 무관하거나, 선택지에 복수 정답이 있으면 "invalid"로 판정하세요.`, category, sourceText, question, optionList, correctAnswer, explanation)
}
