// Package exam runs fixed-set exam sessions: a random draw at session start,
// one answer per question, and a score report at the end.
package exam

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/adsp-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSession inserts one record per drawn question in a single
// transaction so a half-created session never exists.
func (s *Store) CreateSession(sessionID string, quizIDs []int64) ([]models.ExamRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin exam session: %w", err)
	}
	defer tx.Rollback()

	records := make([]models.ExamRecord, 0, len(quizIDs))
	for _, quizID := range quizIDs {
		var rec models.ExamRecord
		err := tx.QueryRow(
			`INSERT INTO exam_records (exam_session_id, quiz_id)
			 VALUES ($1, $2)
			 RETURNING id, exam_session_id, quiz_id, user_answer, is_correct, created_at`,
			sessionID, quizID,
		).Scan(&rec.ID, &rec.ExamSessionID, &rec.QuizID, &rec.UserAnswer, &rec.IsCorrect, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("create exam record: %w", err)
		}
		records = append(records, rec)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit exam session: %w", err)
	}
	return records, nil
}

func (s *Store) GetRecord(sessionID string, quizID int64) (*models.ExamRecord, error) {
	var rec models.ExamRecord
	err := s.db.QueryRow(
		`SELECT id, exam_session_id, quiz_id, user_answer, is_correct, created_at
		 FROM exam_records WHERE exam_session_id = $1 AND quiz_id = $2`,
		sessionID, quizID,
	).Scan(&rec.ID, &rec.ExamSessionID, &rec.QuizID, &rec.UserAnswer, &rec.IsCorrect, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "exam_record", ID: fmt.Sprintf("%s/%d", sessionID, quizID)}
	}
	if err != nil {
		return nil, fmt.Errorf("get exam record: %w", err)
	}
	return &rec, nil
}

// SetAnswer records the submission only when no answer exists yet; the
// guard in the WHERE clause makes double submission lose the race even
// across concurrent requests.
func (s *Store) SetAnswer(recordID int64, answer int, correct bool) (bool, error) {
	res, err := s.db.Exec(
		`UPDATE exam_records SET user_answer = $1, is_correct = $2
		 WHERE id = $3 AND user_answer IS NULL`,
		answer, correct, recordID,
	)
	if err != nil {
		return false, fmt.Errorf("set exam answer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set exam answer: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) ListBySession(sessionID string) ([]models.ExamRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, exam_session_id, quiz_id, user_answer, is_correct, created_at
		 FROM exam_records WHERE exam_session_id = $1 ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list exam records: %w", err)
	}
	defer rows.Close()

	var records []models.ExamRecord
	for rows.Next() {
		var rec models.ExamRecord
		if err := rows.Scan(&rec.ID, &rec.ExamSessionID, &rec.QuizID, &rec.UserAnswer, &rec.IsCorrect, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan exam record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
