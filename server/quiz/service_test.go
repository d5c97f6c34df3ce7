package quiz

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/studysense/server/ai"
	"github.com/hrygo/studysense/server/content"
	"github.com/hrygo/studysense/store"
	storetest "github.com/hrygo/studysense/store/test"
)

// MockGenerator is a mock for ai.Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (*ai.Payload, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.Payload), args.Error(1)
}

func newTestService(t *testing.T) (*Service, *store.Store, *MockGenerator) {
	t.Helper()
	ts := storetest.NewTestingStore(t)
	generator := &MockGenerator{}
	service := NewService(ts, generator, content.NewSampler(1))
	return service, ts, generator
}

func seedDocument(t *testing.T, ts *store.Store, name, text string) {
	t.Helper()
	_, err := ts.CreateDocument(context.Background(), &store.Document{
		ID:     name,
		Name:   name,
		Chunks: content.Split(text, name, 500),
	})
	require.NoError(t, err)
}

func samplePayload() *ai.Payload {
	return &ai.Payload{
		Questions: []store.Question{
			{
				Type:    store.QuestionTypeMultipleChoice,
				Topic:   "Cell Biology",
				Prompt:  "Which organelle produces ATP?",
				Options: []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi"},
				Correct: []string{"Mitochondria"},
			},
			{
				Type:    store.QuestionTypeShortAnswer,
				Topic:   "Cell Biology",
				Prompt:  "Name the powerhouse of the cell.",
				Correct: []string{"Mitochondria"},
			},
		},
	}
}

func TestGenerateQuiz_HappyPath(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP. The nucleus stores DNA.")

	generator.On("Generate", mock.Anything, mock.Anything).Return(samplePayload(), nil)

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2})
	require.NoError(t, err)
	require.NotNil(t, quiz)
	assert.Equal(t, ModeStandard, quiz.Mode)
	require.Len(t, quiz.Questions, 2)
	assert.NotEmpty(t, quiz.Questions[0].ID)
	assert.NotEqual(t, quiz.Questions[0].ID, quiz.Questions[1].ID)

	persisted, err := ts.GetQuiz(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, quiz.ID, persisted.ID)
}

func TestGenerateQuiz_NoDocuments(t *testing.T) {
	service, _, generator := newTestService(t)

	_, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 10})
	assert.True(t, errors.Is(err, ErrInsufficientEvidence))
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_DrillRequiresTopic(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")

	_, err := service.GenerateQuiz(context.Background(), GenerateRequest{Mode: ModeDrill})
	assert.True(t, errors.Is(err, ErrDrillTopicRequired))
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_DrillWithNoMatchingChunks(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")

	_, err := service.GenerateQuiz(context.Background(), GenerateRequest{
		Mode:       ModeDrill,
		DrillTopic: "quantum chromodynamics",
	})
	assert.True(t, errors.Is(err, ErrInsufficientEvidence))
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestGenerateQuiz_CancelledLeavesNoQuiz(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")

	ctx, cancel := context.WithCancel(context.Background())
	// The collaborator response arrives successfully, but the caller
	// cancelled while it was in flight: the result must be discarded.
	generator.On("Generate", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		cancel()
	}).Return(samplePayload(), nil)

	_, err := service.GenerateQuiz(ctx, GenerateRequest{QuestionCount: 2})
	assert.True(t, errors.Is(err, context.Canceled))

	quizzes, err := ts.ListQuizzes(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quizzes)
}

func TestGenerateQuiz_EmptyGenerationIsRecoverable(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")

	generator.On("Generate", mock.Anything, mock.Anything).Return(nil, ai.ErrEmptyGeneration)

	_, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 5})
	assert.True(t, errors.Is(err, ai.ErrEmptyGeneration))

	quizzes, listErr := ts.ListQuizzes(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, quizzes)
}

func TestSubmit_Lifecycle(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")
	generator.On("Generate", mock.Anything, mock.Anything).Return(samplePayload(), nil)

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2})
	require.NoError(t, err)

	// Pause first so submission can clear the snapshot.
	_, err = service.SaveProgress(context.Background(), &store.SavedProgress{QuizID: quiz.ID, CurrentIndex: 1})
	require.NoError(t, err)

	answers := map[string]store.Answer{
		quiz.Questions[0].ID: {Text: "Mitochondria"},
		quiz.Questions[1].ID: {Text: "chloroplast"},
	}
	attempt, err := service.Submit(context.Background(), quiz.ID, answers, 120)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Score)
	assert.Equal(t, 2, attempt.Total)
	assert.Equal(t, 120, attempt.ElapsedSeconds)

	progress, err := ts.GetProgress(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, progress, "submission should delete saved progress")

	_, err = service.Submit(context.Background(), quiz.ID, answers, 10)
	assert.True(t, errors.Is(err, ErrAlreadySubmitted))
}

func TestSubmit_UnknownQuiz(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.Submit(context.Background(), "missing", nil, 0)
	assert.True(t, errors.Is(err, ErrQuizNotFound))
}

func TestResumeProgress_DeletesSnapshot(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")
	generator.On("Generate", mock.Anything, mock.Anything).Return(samplePayload(), nil)

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2})
	require.NoError(t, err)

	_, err = service.SaveProgress(context.Background(), &store.SavedProgress{QuizID: quiz.ID, CurrentIndex: 1, TimerEnabled: true})
	require.NoError(t, err)

	progress, err := service.ResumeProgress(context.Background(), quiz.ID)
	require.NoError(t, err)
	require.NotNil(t, progress)
	assert.Equal(t, 1, progress.CurrentIndex)
	assert.True(t, progress.TimerEnabled)

	again, err := service.ResumeProgress(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, again)
}

func TestDiscard_UnsubmittedDeletesQuiz(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")
	generator.On("Generate", mock.Anything, mock.Anything).Return(samplePayload(), nil)

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2})
	require.NoError(t, err)

	require.NoError(t, service.Discard(context.Background(), quiz.ID))
	gone, err := ts.GetQuiz(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestDiscard_SubmittedKeepsQuiz(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")
	generator.On("Generate", mock.Anything, mock.Anything).Return(samplePayload(), nil)

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2})
	require.NoError(t, err)
	_, err = service.Submit(context.Background(), quiz.ID, nil, 0)
	require.NoError(t, err)

	require.NoError(t, service.Discard(context.Background(), quiz.ID))
	kept, err := ts.GetQuiz(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestRetake_ExcludesPreviousPrompts(t *testing.T) {
	service, ts, generator := newTestService(t)
	seedDocument(t, ts, "bio.txt", "Mitochondria produce ATP in cells.")

	generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return !strings.Contains(prompt, "Which organelle produces ATP?")
	})).Return(samplePayload(), nil).Once()

	quiz, err := service.GenerateQuiz(context.Background(), GenerateRequest{QuestionCount: 2, Difficulty: DifficultyHard})
	require.NoError(t, err)

	generator.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "Which organelle produces ATP?")
	})).Return(samplePayload(), nil).Once()

	retaken, err := service.Retake(context.Background(), quiz.ID)
	require.NoError(t, err)
	assert.NotEqual(t, quiz.ID, retaken.ID)
	assert.Equal(t, DifficultyHard, retaken.Difficulty)
	generator.AssertExpectations(t)
}

func TestReviewQueue_MissedQuestionBucketed(t *testing.T) {
	service, ts, _ := newTestService(t)

	quiz := &store.Quiz{
		ID:   "quiz-1",
		Mode: ModeStandard,
		Questions: []store.Question{
			{ID: "q1", Type: store.QuestionTypeShortAnswer, Prompt: "Define osmosis.", Topic: "Transport", Correct: []string{"water diffusion"}},
			{ID: "q2", Type: store.QuestionTypeShortAnswer, Prompt: "Define ATP.", Correct: []string{"energy currency"}},
		},
	}
	_, err := ts.CreateQuiz(context.Background(), quiz)
	require.NoError(t, err)

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	_, err = ts.CreateAttempt(context.Background(), &store.Attempt{
		ID:     "att-1",
		QuizID: "quiz-1",
		Answers: map[string]store.Answer{
			"q1": {Text: "wrong"},
			"q2": {Text: "energy currency"},
		},
		Score:       1,
		Total:       2,
		SubmittedTs: now.AddDate(0, 0, -7).Unix(),
	})
	require.NoError(t, err)

	buckets, err := service.ReviewQueue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, buckets[7], 1)
	assert.Equal(t, "q1", buckets[7][0].QuestionID)
	assert.Equal(t, "Transport", buckets[7][0].Topic)
	assert.Empty(t, buckets[3])
}
