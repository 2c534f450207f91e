package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/adsp-prep/backend/internal/generator"
	"github.com/adsp-prep/backend/internal/models"
	"github.com/adsp-prep/backend/internal/similarity"
)

// dedupRetryCap bounds regeneration attempts per batch slot when the model
// keeps producing near-duplicates of the existing pool.
const dedupRetryCap = 3

// defaultBatchSize is used when a batch request does not name a count.
const defaultBatchSize = 10

// QuestionStore is the persistence surface the orchestrators depend on.
type QuestionStore interface {
	GetQuestion(id int64) (*models.Question, error)
	GetBySourceHash(hash string) (*models.Question, error)
	ListByTopic(subTopicID int64, limit int, excludeIDs []int64) ([]models.Question, error)
	CountByTopic(subTopicID int64) (int, error)
	LatestByTopic(subTopicID int64) (*models.Question, error)
	Create(q *models.Question) (*models.Question, error)
	Update(q *models.Question) (*models.Question, error)
	ReassignTopic(id, subTopicID int64) error
	CountAll() (int, error)
	CountByCategory() (map[string]int, error)
	ListRecent(limit int) ([]models.Question, error)
	NeedingValidation(limit int) ([]models.Question, error)
	CreateValidation(v *models.QuizValidation) error
	LatestValidation(quizID int64) (*models.QuizValidation, error)
	ValidationStatusCounts() (map[string]int, error)
}

// TopicStore resolves topics and their generation source text.
type TopicStore interface {
	GetSubject(id int64) (*models.Subject, error)
	GetSubTopicWithContent(id int64) (*models.SubTopic, error)
}

// GenerationClient is the upstream model boundary.
type GenerationClient interface {
	GenerateQuestion(ctx context.Context, category, sourceText string) (*generator.GeneratedQuestion, error)
	ValidateQuestion(ctx context.Context, category, sourceText, question string, options []string, correctAnswer int, explanation string) (*generator.ValidationVerdict, error)
}

// TranscriptFetcher resolves a video URL to its transcript text.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoURL string) (string, error)
}

// Service coordinates the question pool, the supply policy, deduplication,
// generation, and variation.
type Service struct {
	store       QuestionStore
	topics      TopicStore
	gen         GenerationClient
	transcripts TranscriptFetcher
	varier      *Varier
}

func NewService(store QuestionStore, topics TopicStore, gen GenerationClient, transcripts TranscriptFetcher, varier *Varier) *Service {
	return &Service{
		store:       store,
		topics:      topics,
		gen:         gen,
		transcripts: transcripts,
		varier:      varier,
	}
}

// loadTopic fetches a sub-topic and its core-content, rejecting topics that
// have nothing to generate from.
func (s *Service) loadTopic(subTopicID int64) (*models.SubTopic, string, error) {
	topic, err := s.topics.GetSubTopicWithContent(subTopicID)
	if err != nil {
		return nil, "", err
	}
	if topic.CoreContent == nil || strings.TrimSpace(*topic.CoreContent) == "" {
		return nil, "", &models.InvalidRequestError{
			Reason: fmt.Sprintf("sub-topic %d has no core content to generate from", subTopicID),
		}
	}
	return topic, *topic.CoreContent, nil
}

// contentChanged reports whether the topic's source material was modified
// after the newest pooled question was created. An empty pool always counts
// as changed.
func contentChanged(topic *models.SubTopic, latest *models.Question) bool {
	if latest == nil {
		return true
	}
	return topic.UpdatedAt.After(latest.CreatedAt)
}

// batchItem is one slot of an assembling batch. mandatoryVary marks
// duplicates that must not be served verbatim.
type batchItem struct {
	question      models.Question
	mandatoryVary bool
}

// GenerateStudyBatch serves a batch for one sub-topic, mixing pool questions
// and fresh generations per the supply plan. Upstream failure mid-batch keeps
// whatever was already assembled; the error only propagates when nothing at
// all could be served.
func (s *Service) GenerateStudyBatch(ctx context.Context, req models.StudyQuizRequest) (*models.StudyQuizListResponse, error) {
	count := req.QuizCount
	if count <= 0 {
		count = defaultBatchSize
	}

	topic, core, err := s.loadTopic(req.SubTopicID)
	if err != nil {
		return nil, err
	}

	poolSize, err := s.store.CountByTopic(topic.ID)
	if err != nil {
		return nil, err
	}
	latest, err := s.store.LatestByTopic(topic.ID)
	if err != nil {
		return nil, err
	}
	changed := contentChanged(topic, latest)
	plan := PlanSupply(poolSize, count, changed)

	var items []batchItem

	// Over-fetch cached candidates, then keep only pairwise-dissimilar ones.
	// Whatever the filter rejects shifts to generation.
	candidates, err := s.store.ListByTopic(topic.ID, plan.Cached*2, nil)
	if err != nil {
		return nil, err
	}
	candidateTexts := make([]string, len(candidates))
	for i, c := range candidates {
		candidateTexts[i] = c.Question
	}
	selected := similarity.SelectNonDuplicates(candidateTexts, similarity.Threshold, plan.Cached)
	for _, idx := range selected {
		items = append(items, batchItem{question: candidates[idx]})
	}
	newCount := plan.New + (plan.Cached - len(selected))

	// Fresh generations are deduped against the entire pool, not just this
	// batch.
	var pool []models.Question
	if poolSize > 0 {
		pool, err = s.store.ListByTopic(topic.ID, poolSize, nil)
		if err != nil {
			return nil, err
		}
	}
	poolTexts := make([]string, len(pool))
	for i, p := range pool {
		poolTexts[i] = p.Question
	}

	var genFailure error
slots:
	for slot := 0; slot < newCount; slot++ {
		retry := 0
		for {
			gq, err := s.gen.GenerateQuestion(ctx, topic.Category(), core)
			if err != nil {
				genFailure = err
				break slots
			}

			bestIdx, score := similarity.BestMatch(gq.Question, poolTexts)
			if score < similarity.Threshold {
				created, err := s.persistGenerated(gq, topic, Fingerprint(core, topic.ID, slot, retry))
				if err != nil {
					return nil, err
				}
				items = append(items, batchItem{question: *created})
				pool = append(pool, *created)
				poolTexts = append(poolTexts, created.Question)
				continue slots
			}

			retry++
			if retry <= dedupRetryCap {
				continue
			}

			if !changed {
				// Nothing new in the source material, so regenerating will
				// keep circling the same content. Serve the closest existing
				// question instead, varied so it is not a verbatim repeat.
				log.Printf("[quiz] dedup retries exhausted for sub-topic %d slot %d, reusing pooled question", topic.ID, slot)
				items = append(items, batchItem{question: pool[bestIdx], mandatoryVary: true})
			} else {
				// The source changed recently, so the near-duplicate signal
				// is likely stale. Keep the generated question but force
				// variation.
				log.Printf("[quiz] dedup retries exhausted for sub-topic %d slot %d with fresh content, accepting near-duplicate", topic.ID, slot)
				created, err := s.persistGenerated(gq, topic, Fingerprint(core, topic.ID, slot, retry))
				if err != nil {
					return nil, err
				}
				items = append(items, batchItem{question: *created, mandatoryVary: true})
				pool = append(pool, *created)
				poolTexts = append(poolTexts, created.Question)
			}
			continue slots
		}
	}

	if genFailure != nil {
		if len(items) == 0 {
			return nil, genFailure
		}
		log.Printf("[quiz] WARN: generation aborted for sub-topic %d, returning %d of %d requested: %v",
			topic.ID, len(items), count, genFailure)
	}

	quizzes := make([]models.QuizResponse, 0, len(items))
	for _, item := range items {
		varied, _ := s.varier.MaybeVary(item.question, item.mandatoryVary)
		quizzes = append(quizzes, varied.ToResponse())
	}

	return &models.StudyQuizListResponse{Quizzes: quizzes, TotalCount: len(quizzes)}, nil
}

// persistGenerated stores a generated question under the topic, resolving
// fingerprint races to the already-stored row. A collision filed under a
// different topic is re-homed here.
func (s *Service) persistGenerated(gq *generator.GeneratedQuestion, topic *models.SubTopic, fingerprint string) (*models.Question, error) {
	q := &models.Question{
		SubjectID:     topic.SubjectID,
		SubTopicID:    &topic.ID,
		Question:      gq.Question,
		Options:       gq.Options,
		CorrectAnswer: gq.CorrectAnswer,
		Explanation:   gq.Explanation,
		SourceHash:    fingerprint,
	}
	created, err := s.store.Create(q)
	if err != nil {
		return nil, err
	}
	if created.SubTopicID == nil || *created.SubTopicID != topic.ID {
		if err := s.store.ReassignTopic(created.ID, topic.ID); err != nil {
			return nil, err
		}
		created.SubTopicID = &topic.ID
		created.SubjectID = topic.SubjectID
	}
	return created, nil
}

// GetNextQuestion serves a single question the caller has not seen yet,
// generating only when the usable pool is nearly exhausted.
func (s *Service) GetNextQuestion(ctx context.Context, req models.NextQuizRequest) (*models.QuizResponse, error) {
	topic, core, err := s.loadTopic(req.SubTopicID)
	if err != nil {
		return nil, err
	}

	list, err := s.store.ListByTopic(topic.ID, 1, req.ExcludeQuizIDs)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		varied, _ := s.varier.MaybeVary(list[0], false)
		resp := varied.ToResponse()
		return &resp, nil
	}

	total, err := s.store.CountByTopic(topic.ID)
	if err != nil {
		return nil, err
	}
	available := total - len(req.ExcludeQuizIDs)
	if available >= 3 {
		// The draw above should have found something; log it and generate
		// anyway rather than failing the caller.
		log.Printf("[quiz] WARN: no question drawn for sub-topic %d despite %d available", topic.ID, available)
	}

	fingerprint := Fingerprint(core, topic.ID, total, 0)
	if existing, err := s.store.GetBySourceHash(fingerprint); err != nil {
		return nil, err
	} else if existing != nil {
		varied := s.varier.Vary(*existing)
		resp := varied.ToResponse()
		return &resp, nil
	}

	gq, err := s.gen.GenerateQuestion(ctx, topic.Category(), core)
	if err != nil {
		return nil, err
	}
	created, err := s.persistGenerated(gq, topic, fingerprint)
	if err != nil {
		return nil, err
	}
	resp := created.ToResponse()
	return &resp, nil
}

// GenerateFromSource is the ad-hoc path: one question from caller-supplied
// text or a video URL, cached by source hash so identical input never spends
// a second generation call.
func (s *Service) GenerateFromSource(ctx context.Context, req models.QuizCreateRequest) (*models.QuizResponse, error) {
	var sourceText string
	var sourceURL *string

	switch req.SourceType {
	case "text":
		if strings.TrimSpace(req.SourceText) == "" {
			return nil, &models.InvalidRequestError{Reason: "source_text is required for source_type text"}
		}
		sourceText = req.SourceText
	case "url":
		if strings.TrimSpace(req.SourceURL) == "" {
			return nil, &models.InvalidRequestError{Reason: "source_url is required for source_type url"}
		}
		text, err := s.transcripts.Fetch(ctx, req.SourceURL)
		if err != nil {
			return nil, fmt.Errorf("fetch transcript: %w", err)
		}
		sourceText = text
		url := req.SourceURL
		sourceURL = &url
	default:
		return nil, &models.InvalidRequestError{Reason: "source_type must be text or url"}
	}

	hash := SourceHash(sourceText)
	if existing, err := s.store.GetBySourceHash(hash); err != nil {
		return nil, err
	} else if existing != nil {
		resp := existing.ToResponse()
		return &resp, nil
	}

	subjectID := int64(1)
	if req.SubjectID != nil {
		subjectID = *req.SubjectID
	}
	subject, err := s.topics.GetSubject(subjectID)
	if err != nil {
		return nil, err
	}

	gq, err := s.gen.GenerateQuestion(ctx, subject.Name, sourceText)
	if err != nil {
		return nil, err
	}

	created, err := s.store.Create(&models.Question{
		SubjectID:     subjectID,
		Question:      gq.Question,
		Options:       gq.Options,
		CorrectAnswer: gq.CorrectAnswer,
		Explanation:   gq.Explanation,
		SourceHash:    hash,
		SourceURL:     sourceURL,
		SourceText:    &sourceText,
	})
	if err != nil {
		return nil, err
	}

	resp := created.ToResponse()
	return &resp, nil
}

// ValidateQuiz asks the model to judge a stored question against its source
// material and records the verdict.
func (s *Service) ValidateQuiz(ctx context.Context, quizID int64) (*models.QuizValidationResponse, error) {
	q, err := s.store.GetQuestion(quizID)
	if err != nil {
		return nil, err
	}

	category := "미분류"
	var source string
	if q.SubTopicID != nil {
		topic, core, err := s.loadTopic(*q.SubTopicID)
		if err != nil {
			return nil, err
		}
		category = topic.Category()
		source = core
	} else if q.SourceText != nil && strings.TrimSpace(*q.SourceText) != "" {
		source = *q.SourceText
	} else {
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("quiz %d has no source material to validate against", quizID),
		}
	}

	options := make([]string, len(q.Options))
	for i, opt := range q.Options {
		options[i] = opt.Text
	}

	verdict, err := s.gen.ValidateQuestion(ctx, category, source, q.Question, options, q.CorrectAnswer, q.Explanation)
	if err != nil {
		return nil, err
	}

	score := 0.0
	if verdict.Status == string(models.ValidationValid) {
		score = 1.0
	}
	record := &models.QuizValidation{
		QuizID:   q.ID,
		Status:   models.ValidationStatus(verdict.Status),
		Score:    &score,
		Feedback: &verdict.Reason,
	}
	if err := s.store.CreateValidation(record); err != nil {
		return nil, err
	}

	return &models.QuizValidationResponse{
		QuizID:   q.ID,
		IsValid:  verdict.Status == string(models.ValidationValid),
		Category: category,
		Score:    score,
		Feedback: verdict.Reason,
	}, nil
}

// UpdateQuestion applies a correction to a stored question. Fields left nil
// in the request keep their current value; the corrected question must still
// be structurally sound.
func (s *Service) UpdateQuestion(quizID int64, req models.QuizUpdateRequest) (*models.QuizResponse, error) {
	q, err := s.store.GetQuestion(quizID)
	if err != nil {
		return nil, err
	}

	if req.Question != nil {
		if strings.TrimSpace(*req.Question) == "" {
			return nil, &models.InvalidRequestError{Reason: "question must not be empty"}
		}
		q.Question = *req.Question
	}
	if req.Options != nil {
		if len(req.Options) < 2 {
			return nil, &models.InvalidRequestError{Reason: "at least two options are required"}
		}
		for i := range req.Options {
			if strings.TrimSpace(req.Options[i].Text) == "" {
				return nil, &models.InvalidRequestError{Reason: "option text must not be empty"}
			}
			req.Options[i].Index = i
		}
		q.Options = req.Options
	}
	if req.CorrectAnswer != nil {
		q.CorrectAnswer = *req.CorrectAnswer
	}
	if req.Explanation != nil {
		q.Explanation = *req.Explanation
	}

	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return nil, &models.InvalidRequestError{
			Reason: fmt.Sprintf("correct_answer %d out of range for %d options", q.CorrectAnswer, len(q.Options)),
		}
	}

	updated, err := s.store.Update(q)
	if err != nil {
		return nil, err
	}
	resp := updated.ToResponse()
	return &resp, nil
}

// GetValidation returns the latest verdict for a question; a question that
// was never validated reports as pending.
func (s *Service) GetValidation(quizID int64) (*models.QuizValidation, error) {
	if _, err := s.store.GetQuestion(quizID); err != nil {
		return nil, err
	}
	v, err := s.store.LatestValidation(quizID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return &models.QuizValidation{QuizID: quizID, Status: models.ValidationPending}, nil
	}
	return v, nil
}

// Dashboard summarizes the pool for the admin view.
func (s *Service) Dashboard(ctx context.Context) (*models.QuizDashboardResponse, error) {
	total, err := s.store.CountAll()
	if err != nil {
		return nil, err
	}
	byCategory, err := s.store.CountByCategory()
	if err != nil {
		return nil, err
	}
	byStatus, err := s.store.ValidationStatusCounts()
	if err != nil {
		return nil, err
	}
	recent, err := s.store.ListRecent(10)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.NeedingValidation(10)
	if err != nil {
		return nil, err
	}

	return &models.QuizDashboardResponse{
		TotalQuizzes:             total,
		QuizzesByCategory:        byCategory,
		ValidationStatus:         byStatus,
		RecentQuizzes:            toResponses(recent),
		QuizzesNeedingValidation: toResponses(pending),
	}, nil
}

func toResponses(questions []models.Question) []models.QuizResponse {
	out := make([]models.QuizResponse, len(questions))
	for i := range questions {
		out[i] = questions[i].ToResponse()
	}
	return out
}
