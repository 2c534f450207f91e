package models

import "time"

// QuestionOption is one answer choice. Index is the option's position in the
// stored order; exactly one option index matches Question.CorrectAnswer.
type QuestionOption struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Question is a persisted multiple-choice question. SubTopicID is nil for
// questions created through the flat-subject generate endpoint before the
// topic hierarchy existed.
type Question struct {
	ID            int64            `json:"id"`
	SubjectID     int64            `json:"subject_id"`
	SubTopicID    *int64           `json:"sub_topic_id,omitempty"`
	Question      string           `json:"question"`
	Options       []QuestionOption `json:"options"`
	CorrectAnswer int              `json:"correct_answer"`
	Explanation   string           `json:"explanation"`
	SourceHash    string           `json:"-"`
	SourceURL     *string          `json:"source_url,omitempty"`
	SourceText    *string          `json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
}

// QuizResponse is the question as served to clients. CorrectAnswer is nil
// while an exam is in progress.
type QuizResponse struct {
	ID            int64            `json:"id"`
	SubjectID     int64            `json:"subject_id"`
	SubTopicID    *int64           `json:"sub_topic_id,omitempty"`
	Question      string           `json:"question"`
	Options       []QuestionOption `json:"options"`
	CorrectAnswer *int             `json:"correct_answer"`
	Explanation   string           `json:"explanation,omitempty"`
	SourceURL     *string          `json:"source_url,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}

// ToResponse copies a Question into its serving form.
func (q *Question) ToResponse() QuizResponse {
	correct := q.CorrectAnswer
	opts := make([]QuestionOption, len(q.Options))
	copy(opts, q.Options)
	return QuizResponse{
		ID:            q.ID,
		SubjectID:     q.SubjectID,
		SubTopicID:    q.SubTopicID,
		Question:      q.Question,
		Options:       opts,
		CorrectAnswer: &correct,
		Explanation:   q.Explanation,
		SourceURL:     q.SourceURL,
		CreatedAt:     q.CreatedAt,
	}
}

type QuizListResponse struct {
	Quizzes []QuizResponse `json:"quizzes"`
	Total   int            `json:"total"`
}

// ── Generation Requests ─────────────────────────────────

// QuizCreateRequest is the ad-hoc single-question generation request.
// SourceType "url" expects a video URL whose transcript becomes the source
// text; "text" expects the text inline.
type QuizCreateRequest struct {
	SourceType string `json:"source_type"`
	SourceURL  string `json:"source_url,omitempty"`
	SourceText string `json:"source_text,omitempty"`
	SubjectID  *int64 `json:"subject_id,omitempty"`
}

// StudyQuizRequest asks for a batch of questions for one sub-topic.
type StudyQuizRequest struct {
	SubTopicID int64 `json:"sub_topic_id"`
	QuizCount  int   `json:"quiz_count"`
}

type StudyQuizListResponse struct {
	Quizzes    []QuizResponse `json:"quizzes"`
	TotalCount int            `json:"total_count"`
}

// NextQuizRequest asks for a single fresh question, excluding ones the
// caller has already seen this session.
type NextQuizRequest struct {
	SubTopicID     int64   `json:"sub_topic_id"`
	ExcludeQuizIDs []int64 `json:"exclude_quiz_ids,omitempty"`
}

// QuizUpdateRequest carries corrected question fields. Nil fields are left
// untouched.
type QuizUpdateRequest struct {
	Question      *string          `json:"question,omitempty"`
	Options       []QuestionOption `json:"options,omitempty"`
	CorrectAnswer *int             `json:"correct_answer,omitempty"`
	Explanation   *string          `json:"explanation,omitempty"`
}

// ── Validation ──────────────────────────────────────────

type ValidationStatus string

const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// QuizValidation is one timestamped validation verdict for a question.
// The latest record by ValidatedAt wins when several exist.
type QuizValidation struct {
	ID          int64            `json:"id"`
	QuizID      int64            `json:"quiz_id"`
	Status      ValidationStatus `json:"validation_status"`
	Score       *float64         `json:"validation_score,omitempty"`
	Feedback    *string          `json:"feedback,omitempty"`
	Issues      []string         `json:"issues,omitempty"`
	ValidatedAt time.Time        `json:"validated_at"`
}

type QuizValidationResponse struct {
	QuizID   int64    `json:"quiz_id"`
	IsValid  bool     `json:"is_valid"`
	Category string   `json:"category"`
	Score    float64  `json:"validation_score"`
	Feedback string   `json:"feedback"`
	Issues   []string `json:"issues"`
}

type QuizDashboardResponse struct {
	TotalQuizzes             int            `json:"total_quizzes"`
	QuizzesByCategory        map[string]int `json:"quizzes_by_category"`
	ValidationStatus         map[string]int `json:"validation_status"`
	RecentQuizzes            []QuizResponse `json:"recent_quizzes"`
	QuizzesNeedingValidation []QuizResponse `json:"quizzes_needing_validation"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
