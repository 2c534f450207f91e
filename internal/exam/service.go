package exam

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/adsp-prep/backend/internal/models"
)

const defaultExamSize = 10

// QuestionStore is the slice of the question pool the exam flow needs.
type QuestionStore interface {
	GetQuestion(id int64) (*models.Question, error)
	RandomBySubject(subjectID int64, limit int) ([]models.Question, error)
	CountBySubject(subjectID int64) (int, error)
}

// RecordStore persists per-session answer records.
type RecordStore interface {
	CreateSession(sessionID string, quizIDs []int64) ([]models.ExamRecord, error)
	GetRecord(sessionID string, quizID int64) (*models.ExamRecord, error)
	SetAnswer(recordID int64, answer int, correct bool) (bool, error)
	ListBySession(sessionID string) ([]models.ExamRecord, error)
}

type Service struct {
	questions QuestionStore
	records   RecordStore
}

func NewService(questions QuestionStore, records RecordStore) *Service {
	return &Service{questions: questions, records: records}
}

// Start draws a fixed random set of questions for a subject and opens a
// session over them. Served questions hide the correct answer and
// explanation until submission.
func (s *Service) Start(ctx context.Context, req models.ExamStartRequest) (*models.ExamStartResponse, error) {
	count := req.QuizCount
	if count <= 0 {
		count = defaultExamSize
	}
	subjectID := int64(1)
	if req.SubjectID != nil {
		subjectID = *req.SubjectID
	}

	poolSize, err := s.questions.CountBySubject(subjectID)
	if err != nil {
		return nil, err
	}
	if poolSize < count {
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("subject %d has only %d questions, %d requested", subjectID, poolSize, count),
		}
	}

	drawn, err := s.questions.RandomBySubject(subjectID, count)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	quizIDs := make([]int64, len(drawn))
	for i, q := range drawn {
		quizIDs[i] = q.ID
	}
	if _, err := s.records.CreateSession(sessionID, quizIDs); err != nil {
		return nil, err
	}

	quizzes := make([]models.QuizResponse, len(drawn))
	for i, q := range drawn {
		quizzes[i] = examView(&q)
	}
	return &models.ExamStartResponse{
		ExamSessionID: sessionID,
		Quizzes:       quizzes,
		Total:         len(quizzes),
	}, nil
}

// SubmitAnswer records the caller's answer for one question of a session.
// Each (session, question) pair accepts exactly one submission.
func (s *Service) SubmitAnswer(ctx context.Context, req models.ExamSubmitRequest) (*models.ExamRecordResponse, error) {
	record, err := s.records.GetRecord(req.ExamSessionID, req.QuizID)
	if err != nil {
		return nil, err
	}
	if record.UserAnswer != nil {
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("quiz %d already answered in session %s", req.QuizID, req.ExamSessionID),
		}
	}

	q, err := s.questions.GetQuestion(req.QuizID)
	if err != nil {
		return nil, err
	}
	if req.UserAnswer < 0 || req.UserAnswer >= len(q.Options) {
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("answer %d out of range for quiz %d", req.UserAnswer, req.QuizID),
		}
	}

	correct := req.UserAnswer == q.CorrectAnswer
	applied, err := s.records.SetAnswer(record.ID, req.UserAnswer, correct)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Lost a race with a concurrent submission for the same pair.
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("quiz %d already answered in session %s", req.QuizID, req.ExamSessionID),
		}
	}

	answer := req.UserAnswer
	return &models.ExamRecordResponse{
		ID:         record.ID,
		QuizID:     q.ID,
		UserAnswer: &answer,
		IsCorrect:  &correct,
		Quiz:       q.ToResponse(),
		CreatedAt:  record.CreatedAt,
	}, nil
}

// Result scores a finished (or in-progress) session.
func (s *Service) Result(ctx context.Context, sessionID string) (*models.ExamResultResponse, error) {
	records, err := s.records.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &models.NotFoundError{Resource: "exam_session", ID: sessionID}
	}

	resp := &models.ExamResultResponse{
		ExamSessionID:  sessionID,
		TotalQuestions: len(records),
		CreatedAt:      records[0].CreatedAt,
	}
	for _, rec := range records {
		q, err := s.questions.GetQuestion(rec.QuizID)
		if err != nil {
			return nil, err
		}
		resp.SubjectID = q.SubjectID
		if rec.IsCorrect != nil {
			if *rec.IsCorrect {
				resp.CorrectCount++
			} else {
				resp.IncorrectCount++
			}
		}
		resp.Records = append(resp.Records, models.ExamRecordResponse{
			ID:         rec.ID,
			QuizID:     rec.QuizID,
			UserAnswer: rec.UserAnswer,
			IsCorrect:  rec.IsCorrect,
			Quiz:       q.ToResponse(),
			CreatedAt:  rec.CreatedAt,
		})
	}
	return resp, nil
}

// examView strips everything that would give the answer away.
func examView(q *models.Question) models.QuizResponse {
	resp := q.ToResponse()
	resp.CorrectAnswer = nil
	resp.Explanation = ""
	return resp
}
