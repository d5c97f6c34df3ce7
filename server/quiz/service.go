package quiz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"log/slog"

	"github.com/hrygo/studysense/server/ai"
	"github.com/hrygo/studysense/server/content"
	"github.com/hrygo/studysense/store"
)

// DefaultQuestionCount is used when a request does not specify a count.
const DefaultQuestionCount = 10

// Service orchestrates the quiz lifecycle: scope the chunk pool, sample
// evidence, call the generation collaborator, and own submission, saved
// progress, discard, retake and the review queue.
type Service struct {
	store     *store.Store
	generator ai.Generator
	sampler   *content.Sampler
}

func NewService(st *store.Store, generator ai.Generator, sampler *content.Sampler) *Service {
	return &Service{
		store:     st,
		generator: generator,
		sampler:   sampler,
	}
}

// GenerateQuiz runs one generation request end to end. A cancelled context
// returns context.Canceled with no quiz created, even when the collaborator
// response arrives after the cancellation; callers must not surface that as
// an error.
func (s *Service) GenerateQuiz(ctx context.Context, req GenerateRequest) (*store.Quiz, error) {
	if req.Mode == "" {
		req.Mode = ModeStandard
	}
	if req.Difficulty == "" {
		req.Difficulty = DifficultyNormal
	}
	if req.QuestionCount <= 0 {
		req.QuestionCount = DefaultQuestionCount
	}
	if req.Mode == ModeDrill && strings.TrimSpace(req.DrillTopic) == "" {
		return nil, ErrDrillTopicRequired
	}

	pool, err := s.store.ChunkPool(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load chunk pool")
	}

	scoped := scopeChunks(pool, req)
	if len(scoped) == 0 {
		return nil, ErrInsufficientEvidence
	}

	evidence := s.sampler.Sample(scoped, content.DefaultSampleCap)
	topics := content.ExtractTopics(pool)
	asked, err := s.askedPrompts(ctx)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req, evidence, topics, asked)
	payload, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, context.Canceled
		}
		return nil, err
	}
	// The caller may have cancelled while the response was in flight; the
	// pending result is discarded unconditionally.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	now := time.Now().Unix()
	quiz := &store.Quiz{
		ID:            uuid.NewString(),
		Mode:          req.Mode,
		Difficulty:    req.Difficulty,
		QuestionCount: req.QuestionCount,
		FocusTopics:   req.FocusTopics,
		DrillTopic:    req.DrillTopic,
		Objectives:    req.Objectives,
		Flashcards:    payload.Flashcards,
		CreatedTs:     now,
	}
	for _, question := range payload.Questions {
		question.ID = shortuuid.New()
		quiz.Questions = append(quiz.Questions, question)
	}

	if _, err := s.store.CreateQuiz(ctx, quiz); err != nil {
		return nil, errors.Wrap(err, "failed to persist quiz")
	}
	slog.Info("quiz generated",
		"quiz", quiz.ID,
		"mode", quiz.Mode,
		"questions", len(quiz.Questions),
		"flashcards", len(quiz.Flashcards))
	return quiz, nil
}

// scopeChunks narrows the pool to the requested topics. Retrieval keeps the
// whole pool as candidates; only the evidence sample is bounded.
func scopeChunks(pool []content.Chunk, req GenerateRequest) []content.Chunk {
	switch {
	case req.Mode == ModeDrill:
		return content.Search(pool, req.DrillTopic, len(pool))
	case len(req.FocusTopics) > 0:
		return content.Search(pool, strings.Join(req.FocusTopics, " "), len(pool))
	default:
		return pool
	}
}

// askedPrompts collects every prompt from previously generated quizzes so
// the generator can be told not to repeat them.
func (s *Service) askedPrompts(ctx context.Context) ([]string, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list quizzes")
	}
	var prompts []string
	for _, quiz := range quizzes {
		for _, question := range quiz.Questions {
			prompts = append(prompts, question.Prompt)
		}
	}
	return prompts, nil
}

// Submit grades the answers, records exactly one attempt and removes any
// saved progress. A quiz that already has an attempt cannot be submitted
// again; a retake generates a new quiz instead.
func (s *Service) Submit(ctx context.Context, quizID string, answers map[string]store.Answer, elapsedSeconds int) (*store.Attempt, error) {
	quiz, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}

	existing, err := s.store.ListAttempts(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, ErrAlreadySubmitted
	}

	score, total := ScoreAttempt(quiz, answers)
	attempt := &store.Attempt{
		ID:             uuid.NewString(),
		QuizID:         quizID,
		Answers:        answers,
		Score:          score,
		Total:          total,
		ElapsedSeconds: elapsedSeconds,
		SubmittedTs:    time.Now().Unix(),
	}
	if _, err := s.store.CreateAttempt(ctx, attempt); err != nil {
		return nil, errors.Wrap(err, "failed to persist attempt")
	}
	if err := s.store.DeleteProgress(ctx, quizID); err != nil {
		slog.Warn("failed to delete saved progress after submission", "quiz", quizID, "error", err)
	}
	return attempt, nil
}

// SaveProgress snapshots an in-progress quiz, replacing any earlier
// snapshot for the same quiz.
func (s *Service) SaveProgress(ctx context.Context, progress *store.SavedProgress) (*store.SavedProgress, error) {
	quiz, err := s.store.GetQuiz(ctx, progress.QuizID)
	if err != nil {
		return nil, err
	}
	if quiz == nil {
		return nil, ErrQuizNotFound
	}
	progress.SavedTs = time.Now().Unix()
	return s.store.UpsertProgress(ctx, progress)
}

// ResumeProgress returns the saved snapshot and deletes it; the snapshot is
// ephemeral and a later pause writes a fresh one.
func (s *Service) ResumeProgress(ctx context.Context, quizID string) (*store.SavedProgress, error) {
	progress, err := s.store.GetProgress(ctx, quizID)
	if err != nil || progress == nil {
		return nil, err
	}
	if err := s.store.DeleteProgress(ctx, quizID); err != nil {
		return nil, err
	}
	return progress, nil
}

// Discard deletes saved progress and, when the quiz has never been
// submitted, the quiz itself.
func (s *Service) Discard(ctx context.Context, quizID string) error {
	if err := s.store.DeleteProgress(ctx, quizID); err != nil {
		return err
	}
	attempts, err := s.store.ListAttempts(ctx, quizID)
	if err != nil {
		return err
	}
	if len(attempts) == 0 {
		return s.store.DeleteQuiz(ctx, quizID)
	}
	return nil
}

// Retake generates a new quiz with the same settings as an earlier one. The
// earlier quiz's prompts are already in the exclusion list, so the new quiz
// avoids duplicating them.
func (s *Service) Retake(ctx context.Context, quizID string) (*store.Quiz, error) {
	previous, err := s.store.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if previous == nil {
		return nil, ErrQuizNotFound
	}
	return s.GenerateQuiz(ctx, GenerateRequest{
		Mode:          previous.Mode,
		Difficulty:    previous.Difficulty,
		QuestionCount: previous.QuestionCount,
		FocusTopics:   previous.FocusTopics,
		DrillTopic:    previous.DrillTopic,
		Objectives:    previous.Objectives,
	})
}

// ReviewQueue recomputes the spaced review buckets from every submitted
// attempt's missed questions.
func (s *Service) ReviewQueue(ctx context.Context, now time.Time) (map[int][]MissedQuestion, error) {
	quizzes, err := s.store.ListQuizzes(ctx)
	if err != nil {
		return nil, err
	}
	questionsByQuiz := make(map[string]*store.Quiz, len(quizzes))
	for _, quiz := range quizzes {
		questionsByQuiz[quiz.ID] = quiz
	}

	attempts, err := s.store.ListAttempts(ctx, "")
	if err != nil {
		return nil, err
	}

	var missed []MissedQuestion
	for _, attempt := range attempts {
		quiz, ok := questionsByQuiz[attempt.QuizID]
		if !ok {
			continue
		}
		for i := range quiz.Questions {
			question := &quiz.Questions[i]
			if Grade(question, attempt.Answers[question.ID]) {
				continue
			}
			missed = append(missed, MissedQuestion{
				QuizID:     quiz.ID,
				QuestionID: question.ID,
				Prompt:     question.Prompt,
				Topic:      question.Topic,
				MissedTs:   attempt.SubmittedTs,
			})
		}
	}

	return ReviewBuckets(missed, now), nil
}
