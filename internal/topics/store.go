// Package topics serves the subject > main-topic > sub-topic hierarchy and
// manages the core-content each sub-topic's questions are generated from.
package topics

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

func (s *Store) GetSubject(id int64) (*models.Subject, error) {
	var sub models.Subject
	err := s.db.QueryRow(
		`SELECT id, name, description, created_at FROM subjects WHERE id = $1`, id,
	).Scan(&sub.ID, &sub.Name, &sub.Description, &sub.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "subject", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get subject: %w", err)
	}
	return &sub, nil
}

func (s *Store) ListSubjects() ([]models.Subject, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.name, s.description, s.created_at, COUNT(q.id)
		 FROM subjects s
		 LEFT JOIN quizzes q ON q.subject_id = s.id
		 GROUP BY s.id, s.name, s.description, s.created_at
		 ORDER BY s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var subjects []models.Subject
	for rows.Next() {
		var sub models.Subject
		var quizCount int
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Description, &sub.CreatedAt, &quizCount); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		sub.QuizCount = &quizCount
		subjects = append(subjects, sub)
	}
	return subjects, rows.Err()
}

func (s *Store) ListMainTopics(subjectID int64) ([]models.MainTopic, error) {
	rows, err := s.db.Query(
		`SELECT id, subject_id, name, description, created_at
		 FROM main_topics WHERE subject_id = $1 ORDER BY id`,
		subjectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list main topics: %w", err)
	}
	defer rows.Close()

	var topics []models.MainTopic
	for rows.Next() {
		var t models.MainTopic
		if err := rows.Scan(&t.ID, &t.SubjectID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan main topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

func (s *Store) ListSubTopics(mainTopicID int64) ([]models.SubTopic, error) {
	rows, err := s.db.Query(
		`SELECT id, main_topic_id, name, description, core_content, source_type, created_at, updated_at
		 FROM sub_topics WHERE main_topic_id = $1 ORDER BY id`,
		mainTopicID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sub topics: %w", err)
	}
	defer rows.Close()

	var topics []models.SubTopic
	for rows.Next() {
		var t models.SubTopic
		if err := rows.Scan(&t.ID, &t.MainTopicID, &t.Name, &t.Description,
			&t.CoreContent, &t.SourceType, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sub topic: %w", err)
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// GetSubTopicWithContent loads a sub-topic joined with its ancestors so
// callers get the full category path alongside the core-content.
func (s *Store) GetSubTopicWithContent(id int64) (*models.SubTopic, error) {
	var t models.SubTopic
	err := s.db.QueryRow(
		`SELECT st.id, st.main_topic_id, st.name, st.description, st.core_content,
		        st.source_type, st.created_at, st.updated_at,
		        mt.name, subj.id, subj.name
		 FROM sub_topics st
		 JOIN main_topics mt ON st.main_topic_id = mt.id
		 JOIN subjects subj ON mt.subject_id = subj.id
		 WHERE st.id = $1`,
		id,
	).Scan(&t.ID, &t.MainTopicID, &t.Name, &t.Description, &t.CoreContent,
		&t.SourceType, &t.CreatedAt, &t.UpdatedAt,
		&t.MainTopicName, &t.SubjectID, &t.SubjectName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "sub_topic", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get sub topic: %w", err)
	}
	return &t, nil
}

// AppendCoreContent adds a fragment to a sub-topic's core-content. Existing
// content is kept and the fragment concatenated after a separator; updated_at
// moves so the supply planner sees the topic as changed.
func (s *Store) AppendCoreContent(id int64, fragment, sourceType string) (*models.SubTopic, error) {
	res, err := s.db.Exec(
		`UPDATE sub_topics
		 SET core_content = CASE
		         WHEN core_content IS NULL OR core_content = '' THEN $1
		         ELSE core_content || E'\n\n---\n\n' || $1
		     END,
		     source_type = $2,
		     updated_at = NOW()
		 WHERE id = $3`,
		fragment, sourceType, id,
	)
	if err != nil {
		return nil, fmt.Errorf("append core content: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("append core content: %w", err)
	}
	if affected == 0 {
		return nil, &models.NotFoundError{Resource: "sub_topic", ID: id}
	}
	return s.GetSubTopicWithContent(id)
}
