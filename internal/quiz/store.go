package quiz

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/adsp-prep/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const questionCols = `id, subject_id, sub_topic_id, question, options, correct_answer,
	        explanation, source_hash, source_url, source_text, created_at`

func scanQuestion(row interface{ Scan(...any) error }) (*models.Question, error) {
	var q models.Question
	var optionsJSON []byte
	err := row.Scan(&q.ID, &q.SubjectID, &q.SubTopicID, &q.Question, &optionsJSON,
		&q.CorrectAnswer, &q.Explanation, &q.SourceHash, &q.SourceURL, &q.SourceText, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(optionsJSON, &q.Options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	return &q, nil
}

// ── Question Pool ───────────────────────────────────────

func (s *Store) GetQuestion(id int64) (*models.Question, error) {
	q, err := scanQuestion(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM quizzes WHERE id = $1`, questionCols), id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "quiz", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

// GetBySourceHash returns (nil, nil) when no question carries the hash.
func (s *Store) GetBySourceHash(hash string) (*models.Question, error) {
	q, err := scanQuestion(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM quizzes WHERE source_hash = $1`, questionCols), hash,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz by hash: %w", err)
	}
	return q, nil
}

// ListByTopic samples up to limit questions for a sub-topic in random order,
// skipping any excluded ids.
func (s *Store) ListByTopic(subTopicID int64, limit int, excludeIDs []int64) ([]models.Question, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM quizzes
		 WHERE sub_topic_id = $1 AND NOT (id = ANY($2))
		 ORDER BY RANDOM() LIMIT $3`, questionCols),
		subTopicID, pq.Array(excludeIDs), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list quizzes by topic: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *Store) CountByTopic(subTopicID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes WHERE sub_topic_id = $1`, subTopicID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quizzes by topic: %w", err)
	}
	return count, nil
}

// LatestByTopic returns the most recently created question for a sub-topic,
// or (nil, nil) for an empty pool.
func (s *Store) LatestByTopic(subTopicID int64) (*models.Question, error) {
	q, err := scanQuestion(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM quizzes WHERE sub_topic_id = $1
		 ORDER BY created_at DESC LIMIT 1`, questionCols),
		subTopicID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest quiz by topic: %w", err)
	}
	return q, nil
}

// Create persists a question. Concurrent requests can race on the uniqueness
// key; a collision means someone else already stored the same content, so the
// existing row is returned instead of an error.
func (s *Store) Create(q *models.Question) (*models.Question, error) {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}

	created, err := scanQuestion(s.db.QueryRow(
		fmt.Sprintf(`INSERT INTO quizzes (subject_id, sub_topic_id, question, options,
		         correct_answer, explanation, source_hash, source_url, source_text)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING %s`, questionCols),
		q.SubjectID, q.SubTopicID, q.Question, optionsJSON,
		q.CorrectAnswer, q.Explanation, q.SourceHash, q.SourceURL, q.SourceText,
	))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			existing, lookupErr := s.GetBySourceHash(q.SourceHash)
			if lookupErr != nil {
				return nil, lookupErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return created, nil
}

// Update overwrites the correctable fields of a question.
func (s *Store) Update(q *models.Question) (*models.Question, error) {
	optionsJSON, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}

	res, err := s.db.Exec(
		`UPDATE quizzes SET question = $1, options = $2, correct_answer = $3, explanation = $4
		 WHERE id = $5`,
		q.Question, optionsJSON, q.CorrectAnswer, q.Explanation, q.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	if affected == 0 {
		return nil, &models.NotFoundError{Resource: "quiz", ID: q.ID}
	}
	return s.GetQuestion(q.ID)
}

// ReassignTopic moves a question to another sub-topic. Used when a
// fingerprint collision surfaces the same content filed under a different
// topic.
func (s *Store) ReassignTopic(id, subTopicID int64) error {
	_, err := s.db.Exec(`UPDATE quizzes SET sub_topic_id = $1 WHERE id = $2`, subTopicID, id)
	if err != nil {
		return fmt.Errorf("reassign quiz topic: %w", err)
	}
	return nil
}

// RandomBySubject samples questions across a whole subject, for exam draws.
func (s *Store) RandomBySubject(subjectID int64, limit int) ([]models.Question, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM quizzes WHERE subject_id = $1
		 ORDER BY RANDOM() LIMIT $2`, questionCols),
		subjectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("random quizzes by subject: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *Store) CountBySubject(subjectID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes WHERE subject_id = $1`, subjectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count quizzes by subject: %w", err)
	}
	return count, nil
}

func (s *Store) CountAll() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count quizzes: %w", err)
	}
	return count, nil
}

// CountByCategory groups the pool by its full topic path.
func (s *Store) CountByCategory() (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(sub.name, '미분류'), COUNT(*)
		 FROM quizzes q
		 LEFT JOIN sub_topics sub ON q.sub_topic_id = sub.id
		 GROUP BY sub.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("count quizzes by category: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var count int
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		counts[name] = count
	}
	return counts, rows.Err()
}

func (s *Store) ListRecent(limit int) ([]models.Question, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM quizzes ORDER BY created_at DESC LIMIT $1`, questionCols),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent quizzes: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func collectQuestions(rows *sql.Rows) ([]models.Question, error) {
	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quiz: %w", err)
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}

// ── Validation Records ──────────────────────────────────

func (s *Store) CreateValidation(v *models.QuizValidation) error {
	issuesJSON, err := json.Marshal(v.Issues)
	if err != nil {
		return fmt.Errorf("encode issues: %w", err)
	}
	err = s.db.QueryRow(
		`INSERT INTO quiz_validations (quiz_id, validation_status, validation_score, feedback, issues)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, validated_at`,
		v.QuizID, v.Status, v.Score, v.Feedback, issuesJSON,
	).Scan(&v.ID, &v.ValidatedAt)
	if err != nil {
		return fmt.Errorf("create validation: %w", err)
	}
	return nil
}

// LatestValidation returns the newest verdict for a question, (nil, nil) when
// it has never been validated.
func (s *Store) LatestValidation(quizID int64) (*models.QuizValidation, error) {
	var v models.QuizValidation
	var issuesJSON []byte
	err := s.db.QueryRow(
		`SELECT id, quiz_id, validation_status, validation_score, feedback, issues, validated_at
		 FROM quiz_validations WHERE quiz_id = $1
		 ORDER BY validated_at DESC LIMIT 1`,
		quizID,
	).Scan(&v.ID, &v.QuizID, &v.Status, &v.Score, &v.Feedback, &issuesJSON, &v.ValidatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest validation: %w", err)
	}
	if len(issuesJSON) > 0 {
		if err := json.Unmarshal(issuesJSON, &v.Issues); err != nil {
			return nil, fmt.Errorf("decode issues: %w", err)
		}
	}
	return &v, nil
}

// ValidationStatusCounts buckets every question by its latest verdict;
// questions with no verdict count as pending.
func (s *Store) ValidationStatusCounts() (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT COALESCE(latest.validation_status, 'pending'), COUNT(*)
		 FROM quizzes q
		 LEFT JOIN LATERAL (
		     SELECT validation_status FROM quiz_validations v
		     WHERE v.quiz_id = q.id
		     ORDER BY v.validated_at DESC LIMIT 1
		 ) latest ON TRUE
		 GROUP BY latest.validation_status`,
	)
	if err != nil {
		return nil, fmt.Errorf("validation status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// NeedingValidation lists questions that have never received a conclusive
// verdict, oldest first.
func (s *Store) NeedingValidation(limit int) ([]models.Question, error) {
	rows, err := s.db.Query(
		fmt.Sprintf(`SELECT %s FROM quizzes q
		 WHERE NOT EXISTS (
		     SELECT 1 FROM quiz_validations v
		     WHERE v.quiz_id = q.id AND v.validation_status <> 'pending'
		 )
		 ORDER BY q.created_at ASC LIMIT $1`,
			qualifiedQuestionCols("q")),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list quizzes needing validation: %w", err)
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func qualifiedQuestionCols(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.subject_id, %[1]s.sub_topic_id, %[1]s.question, %[1]s.options,
	        %[1]s.correct_answer, %[1]s.explanation, %[1]s.source_hash, %[1]s.source_url,
	        %[1]s.source_text, %[1]s.created_at`, alias)
}
