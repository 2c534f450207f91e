package models

import "time"

// ExamRecord binds one question to an exam session. UserAnswer stays nil
// until the first (and only) submission for that (session, question) pair.
type ExamRecord struct {
	ID            int64     `json:"id"`
	ExamSessionID string    `json:"exam_session_id"`
	QuizID        int64     `json:"quiz_id"`
	UserAnswer    *int      `json:"user_answer"`
	IsCorrect     *bool     `json:"is_correct"`
	CreatedAt     time.Time `json:"created_at"`
}

type ExamStartRequest struct {
	SubjectID *int64 `json:"subject_id,omitempty"`
	QuizCount int    `json:"quiz_count"`
}

type ExamSubmitRequest struct {
	ExamSessionID string `json:"exam_session_id"`
	QuizID        int64  `json:"quiz_id"`
	UserAnswer    int    `json:"user_answer"`
}

type ExamStartResponse struct {
	ExamSessionID string         `json:"exam_session_id"`
	Quizzes       []QuizResponse `json:"quizzes"`
	Total         int            `json:"total"`
}

type ExamRecordResponse struct {
	ID         int64        `json:"id"`
	QuizID     int64        `json:"quiz_id"`
	UserAnswer *int         `json:"user_answer"`
	IsCorrect  *bool        `json:"is_correct"`
	Quiz       QuizResponse `json:"quiz"`
	CreatedAt  time.Time    `json:"created_at"`
}

type ExamResultResponse struct {
	ExamSessionID  string               `json:"exam_session_id"`
	SubjectID      int64                `json:"subject_id"`
	TotalQuestions int                  `json:"total_questions"`
	CorrectCount   int                  `json:"correct_count"`
	IncorrectCount int                  `json:"incorrect_count"`
	Records        []ExamRecordResponse `json:"records"`
	CreatedAt      time.Time            `json:"created_at"`
}
